package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
)

func TestChangeMonitorPublishesAndMarksProcessed(t *testing.T) {
	env := newEnv(t)
	var events []realtime.Event
	sink := realtime.SinkFunc(func(_ context.Context, ev realtime.Event) error {
		events = append(events, ev)
		return nil
	})
	cm := NewChangeMonitor(env.db, time.Second, sink)
	ctx := context.Background()

	// drain the seed changes
	_, err := cm.Poll(ctx)
	require.NoError(t, err)
	events = nil

	cat := env.category(t, "Mains")
	item := env.menuItem(t, cat.ID, "Curry", 12)
	require.NoError(t, env.db.Model(&item).Update("price", 13).Error)
	require.NoError(t, env.db.Delete(&models.MenuItem{}, item.ID).Error)

	n, err := cm.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	var itemEvents []realtime.Event
	for _, ev := range events {
		if ev.Table == "menu_items" {
			itemEvents = append(itemEvents, ev)
		}
	}
	require.Len(t, itemEvents, 1, "the insert and update of a row deleted before the poll are skipped")
	assert.Equal(t, models.ActionDelete, itemEvents[0].Action)
	assert.Nil(t, itemEvents[0].Record)
	assert.Equal(t, "menu_categories", events[0].Table)
	assert.NotNil(t, events[0].Record)

	var pending int64
	env.db.Model(&models.DBChange{}).Where("processed = ?", false).Count(&pending)
	assert.Zero(t, pending)

	n, err = cm.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestChangeMonitorAttachesRecords(t *testing.T) {
	env := newEnv(t)
	var got []realtime.Event
	cm := NewChangeMonitor(env.db, time.Second, realtime.SinkFunc(func(_ context.Context, ev realtime.Event) error {
		if ev.Table == "orders" {
			got = append(got, ev)
		}
		return nil
	}))
	user := env.customer(t, "buyer@example.com", false)
	order := env.order(t, user.ID, models.OrderStatusPending, time.Now())

	_, err := cm.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ActionInsert, got[0].Action)
	record, ok := got[0].Record.(models.Order)
	require.True(t, ok)
	assert.Equal(t, order.ID, record.ID)
	assert.Equal(t, user.ID, record.UserID)
}
