package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
)

func TestDashboardStats(t *testing.T) {
	env := newEnv(t)
	svc := NewDashboardService(env.db)
	now := time.Now()
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	cat := env.category(t, "Mains")
	curry := env.menuItem(t, cat.ID, "Curry", 10)
	soup := env.menuItem(t, cat.ID, "Soup", 6)
	require.NoError(t, env.db.Model(&soup).Update("is_available", false).Error)
	user := env.customer(t, "buyer@example.com", false)
	env.customer(t, "boss@example.com", true)

	paid := env.order(t, user.ID, models.OrderStatusDelivered, now, curry)
	require.NoError(t, env.db.Model(&paid).Update("payment_status", models.PaymentStatusPaid).Error)
	old := env.order(t, user.ID, models.OrderStatusDelivered, now.AddDate(0, 0, -3), curry, curry)
	require.NoError(t, env.db.Model(&old).Update("payment_status", models.PaymentStatusPaid).Error)
	env.order(t, user.ID, models.OrderStatusPending, now, soup)
	require.NoError(t, env.db.Create(&models.OrderFeedback{OrderID: paid.ID, UserID: user.ID, Rating: 4}).Error)
	require.NoError(t, env.db.Create(&models.ReturnRequest{OrderID: old.ID, UserID: user.ID, Reason: "damaged", Status: models.ReturnStatusPending}).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.TodayOrders)
	assert.Equal(t, 30.0, stats.TotalRevenue)
	assert.Equal(t, 10.0, stats.TodayRevenue)
	assert.Equal(t, 12.0, stats.AverageOrderValue)
	assert.Equal(t, int64(2), stats.OrdersByStatus[models.OrderStatusDelivered])
	assert.Equal(t, int64(1), stats.OrdersByStatus[models.OrderStatusPending])
	assert.Equal(t, int64(1), stats.PendingReturns)
	assert.Equal(t, int64(2), stats.MenuItems)
	assert.Equal(t, int64(1), stats.AvailableMenuItems)
	assert.Equal(t, int64(1), stats.Customers)
	assert.Equal(t, 4.0, stats.AverageRating)
	assert.Len(t, stats.RecentOrders, 3)
}

func TestDashboardRecentOrdersFollowEvents(t *testing.T) {
	env := newEnv(t)
	svc := NewDashboardService(env.db)
	ctx := context.Background()
	user := env.customer(t, "buyer@example.com", false)
	first := env.order(t, user.ID, models.OrderStatusPending, time.Now())
	require.NoError(t, svc.LoadRecent(ctx))

	second := models.Order{ID: first.ID + 1, UserID: user.ID, Status: models.OrderStatusPending}
	require.NoError(t, svc.Publish(ctx, realtime.Event{Table: "orders", Action: models.ActionInsert, RecordID: int64(second.ID), Record: second}))

	first.Status = models.OrderStatusConfirmed
	require.NoError(t, svc.Publish(ctx, realtime.Event{Table: "orders", Action: models.ActionUpdate, RecordID: int64(first.ID), Record: first}))

	items := svc.recent.Items()
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, models.OrderStatusConfirmed, items[1].Status)

	require.NoError(t, svc.Publish(ctx, realtime.Event{Table: "orders", Action: models.ActionDelete, RecordID: int64(second.ID)}))
	assert.Len(t, svc.recent.Items(), 1)
}

func TestRenderPDFs(t *testing.T) {
	settings := models.StoreSettings{StoreName: "Café Luna", Currency: "€", Address: "1 Main St"}
	stats := DashboardStats{
		TotalOrders:    4,
		TotalRevenue:   1234.5,
		OrdersByStatus: map[string]int64{"pending": 1, "delivered": 3},
		RecentOrders:   []models.Order{{ID: 9, Status: "pending", OrderTotal: 12}},
		GeneratedAt:    time.Now(),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderDashboardPDF(&buf, stats, settings))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	order := models.Order{ID: 9, Status: "delivered", Subtotal: 10, Tax: 1, OrderTotal: 11, CreatedAt: time.Now(),
		OrderItems: []models.OrderItem{{Quantity: 2, UnitPrice: 5, MenuItem: models.MenuItem{Name: "Crème brûlée"}}}}
	buf.Reset()
	require.NoError(t, RenderOrderReceiptPDF(&buf, order, settings))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
