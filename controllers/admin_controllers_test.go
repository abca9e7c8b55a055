package controllers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/toggle"
)

func TestDashboardStats(t *testing.T) {
	app := setupRouterForTest(t)
	customer, _ := app.customer(t, "buyer@example.com", false)
	_, admin := app.customer(t, "admin@example.com", true)
	app.deliveredOrder(t, customer.ID, time.Now(), app.menuItem(t, "Pad Thai", 12))

	w := app.do(t, http.MethodGet, "/admin/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats services.DashboardStats
	decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, 12.0, stats.TotalRevenue)
	assert.Equal(t, int64(1), stats.Customers)
	assert.Equal(t, int64(1), stats.OrdersByStatus[models.OrderStatusDelivered])
}

func TestDownloadReport(t *testing.T) {
	app := setupRouterForTest(t)
	_, admin := app.customer(t, "admin@example.com", true)

	w := app.do(t, http.MethodGet, "/admin/dashboard/report", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dashboard-")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestSections(t *testing.T) {
	app := setupRouterForTest(t)
	_, admin := app.customer(t, "admin@example.com", true)

	w := app.do(t, http.MethodGet, "/sections", "", nil)
	var sections []models.SpecialSection
	decode(t, w, &sections)
	total := len(sections)
	require.NotZero(t, total)

	w = app.do(t, http.MethodPut, "/admin/sections/featured", admin, services.SectionInput{Title: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Section title is required", decode(t, w, nil).Message)

	w = app.do(t, http.MethodPost, "/admin/sections/featured/toggle", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state toggle.State
	decode(t, w, &state)
	assert.False(t, state.Value)

	w = app.do(t, http.MethodGet, "/sections", "", nil)
	decode(t, w, &sections)
	assert.Len(t, sections, total-1)

	w = app.do(t, http.MethodPost, "/admin/sections/unknown/toggle", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
