package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/config"
	"github.com/yeremiapane/restaurant-storefront/database"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/router"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/toggle"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *utils.TokenManager
	deps   router.Deps
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupRouterForTest wires the full router on an in-memory database.
func setupRouterForTest(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenInMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)

	cfg := &config.Config{
		CORSOrigin:     "*",
		UploadDir:      t.TempDir(),
		PublicBaseURL:  "http://test.local",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	board := toggle.NewBoard(20 * time.Millisecond)
	window := 30 * 24 * time.Hour

	settings := services.NewSettingsService(db, board)
	_, err = settings.Reload(context.Background())
	require.NoError(t, err)

	orders := services.NewOrderService(db, settings, window)
	history := services.NewHistoryService(db, settings, window)
	orders.Changed = history.Invalidate

	deps := router.Deps{
		Config:       cfg,
		Tokens:       tokens,
		Auth:         services.NewAuthService(db, tokens),
		Settings:     settings,
		Reservations: services.NewReservationService(db, settings),
		Menu:         services.NewMenuService(db, services.NewLocalImageStore(cfg.UploadDir, cfg.PublicBaseURL), board),
		Orders:       orders,
		History:      history,
		Sections:     services.NewSectionService(db, board),
		Dashboard:    services.NewDashboardService(db),
		Hub:          realtime.NewHub(),
		StreamTables: database.WatchedTables,
	}
	return &testApp{db: db, router: router.SetupRouter(deps), tokens: tokens, deps: deps}
}

// customer creates an account directly and returns it with a valid token.
func (a *testApp) customer(t *testing.T, email string, admin bool) (models.Customer, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	c := models.Customer{Email: email, Password: string(hashed), FullName: "Test User", IsAdmin: admin}
	require.NoError(t, a.db.Create(&c).Error)
	token, err := a.tokens.GenerateToken(c.ID)
	require.NoError(t, err)
	return c, token
}

func (a *testApp) menuItem(t *testing.T, name string, price float64, tags ...string) models.MenuItem {
	t.Helper()
	var cat models.MenuCategory
	if err := a.db.Where("slug = ?", "mains").First(&cat).Error; err != nil {
		cat = models.MenuCategory{Name: "Mains", Slug: "mains", IsActive: true}
		require.NoError(t, a.db.Create(&cat).Error)
	}
	item := models.MenuItem{CategoryID: cat.ID, Name: name, Price: price, IsAvailable: true, DietaryTags: append([]string{}, tags...)}
	require.NoError(t, a.db.Omit("Category").Create(&item).Error)
	return item
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}
