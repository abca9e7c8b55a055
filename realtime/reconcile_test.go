package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/restaurant-storefront/models"
)

func orderID(o models.Order) uint { return o.ID }

func orders(ids ...uint) []models.Order {
	out := make([]models.Order, len(ids))
	for i, id := range ids {
		out[i] = models.Order{ID: id, Status: models.OrderStatusPending}
	}
	return out
}

func ids(list []models.Order) []uint {
	out := make([]uint, len(list))
	for i, o := range list {
		out[i] = o.ID
	}
	return out
}

func TestReconcileInsertPrepends(t *testing.T) {
	list := orders(2, 1)
	rec := models.Order{ID: 3}

	got := Reconcile(list, orderID, models.ActionInsert, 3, &rec)

	assert.Equal(t, []uint{3, 2, 1}, ids(got))
	assert.Equal(t, []uint{2, 1}, ids(list), "input untouched")
}

func TestReconcileUpdateReplacesByID(t *testing.T) {
	list := orders(3, 2, 1)
	rec := models.Order{ID: 2, Status: models.OrderStatusDelivered}

	got := Reconcile(list, orderID, models.ActionUpdate, 2, &rec)

	assert.Equal(t, []uint{3, 2, 1}, ids(got))
	assert.Equal(t, models.OrderStatusDelivered, got[1].Status)
	assert.Equal(t, models.OrderStatusPending, list[1].Status)
}

func TestReconcileUpdateOfUnknownRowIsNoop(t *testing.T) {
	list := orders(2, 1)
	rec := models.Order{ID: 9}
	assert.Equal(t, []uint{2, 1}, ids(Reconcile(list, orderID, models.ActionUpdate, 9, &rec)))
}

func TestReconcileDeleteFilters(t *testing.T) {
	got := Reconcile(orders(3, 2, 1), orderID, models.ActionDelete, 2, nil)
	assert.Equal(t, []uint{3, 1}, ids(got))
}

func TestLiveListAppliesEventsAndCaps(t *testing.T) {
	live := NewLiveList("orders", orderID, 3)
	live.Reset(orders(3, 2, 1))

	live.Apply(Event{Table: "orders", Action: models.ActionInsert, RecordID: 4, Record: models.Order{ID: 4}})
	assert.Equal(t, []uint{4, 3, 2}, ids(live.Items()))

	live.Apply(Event{Table: "orders", Action: models.ActionUpdate, RecordID: 3, Record: &models.Order{ID: 3, Status: models.OrderStatusCancelled}})
	assert.Equal(t, models.OrderStatusCancelled, live.Items()[1].Status)

	live.Apply(Event{Table: "menu_items", Action: models.ActionDelete, RecordID: 4})
	assert.Len(t, live.Items(), 3, "other tables ignored")

	live.Apply(Event{Table: "orders", Action: models.ActionDelete, RecordID: 4})
	assert.Equal(t, []uint{3, 2}, ids(live.Items()))
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "orders.update", RoutingKey(Event{Table: "orders", Action: models.ActionUpdate}))
	assert.Equal(t, "menu_items.insert", RoutingKey(Event{Table: "menu_items", Action: models.ActionInsert}))
}
