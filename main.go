package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/config"
	"github.com/yeremiapane/restaurant-storefront/database"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/router"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/toggle"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

// application is the wired storefront: HTTP routes plus the change monitor
// feeding the websocket hub, the caches and the optional broker.
type application struct {
	router  *gin.Engine
	monitor *services.ChangeMonitor
	amqp    *realtime.AMQPPublisher
}

func newApplication(ctx context.Context, cfg *config.Config, db *gorm.DB) (*application, error) {
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	board := toggle.NewBoard(cfg.ToggleStatusDelay)
	returnWindow := time.Duration(cfg.ReturnWindowDays) * 24 * time.Hour

	settings := services.NewSettingsService(db, board)
	_, err := settings.Reload(ctx)
	if err != nil {
		return nil, err
	}
	images := services.NewLocalImageStore(cfg.UploadDir, cfg.PublicBaseURL)
	history := services.NewHistoryService(db, settings, returnWindow)
	dashboard := services.NewDashboardService(db)
	if err := dashboard.LoadRecent(ctx); err != nil {
		utils.ErrorLogger.Printf("Error loading recent orders: %v", err)
	}
	hub := realtime.NewHub()
	orders := services.NewOrderService(db, settings, returnWindow)
	orders.Changed = history.Invalidate
	reservations := services.NewReservationService(db, settings)
	if reservations.Location, err = cfg.Location(); err != nil {
		return nil, err
	}

	app := &application{}
	sinks := []realtime.Sink{hub, dashboard, history, settings}
	if cfg.AMQPURL != "" {
		publisher, err := realtime.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			utils.ErrorLogger.Printf("AMQP disabled, could not connect: %v", err)
		} else {
			app.amqp = publisher
			sinks = append(sinks, publisher)
			utils.InfoLogger.Printf("Publishing changes to exchange %s", cfg.AMQPExchange)
		}
	}
	app.monitor = services.NewChangeMonitor(db, cfg.ChangePollInterval, sinks...)

	app.router = router.SetupRouter(router.Deps{
		Config:       cfg,
		Tokens:       tokens,
		Auth:         services.NewAuthService(db, tokens),
		Settings:     settings,
		Reservations: reservations,
		Menu:         services.NewMenuService(db, images, board),
		Orders:       orders,
		History:      history,
		Sections:     services.NewSectionService(db, board),
		Dashboard:    dashboard,
		Hub:          hub,
		StreamTables: database.WatchedTables,
	})
	return app, nil
}

func (a *application) close() {
	a.amqp.Close()
}

func main() {
	utils.InitLogger()
	cfg := config.Load()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RegisterChangefeed(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to register changefeed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, db)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to start: %v", err)
	}
	defer app.close()

	app.monitor.Start()
	defer app.monitor.Stop()

	app.router.SetTrustedProxies([]string{"127.0.0.1"})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: app.router}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)

	select {
	case <-ctx.Done():
		utils.InfoLogger.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.ErrorLogger.Printf("Shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}
}
