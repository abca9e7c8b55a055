package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/models"
)

func TestRequestReturn(t *testing.T) {
	env := newEnv(t)
	svc := NewOrderService(env.db, env.settings, returnWindow)
	user := env.customer(t, "buyer@example.com", false)
	delivered := env.order(t, user.ID, models.OrderStatusDelivered, time.Now().Add(-24*time.Hour))
	pending := env.order(t, user.ID, models.OrderStatusPending, time.Now())
	ctx := context.Background()

	_, err := svc.RequestReturn(ctx, user.ID, delivered.ID, ReturnInput{})
	assert.EqualError(t, err, "Please select a reason for the return")

	_, err = svc.RequestReturn(ctx, user.ID, pending.ID, ReturnInput{Reason: "damaged"})
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.EqualError(t, err, "Only delivered orders can be returned")

	_, err = svc.RequestReturn(ctx, user.ID+100, delivered.ID, ReturnInput{Reason: "damaged"})
	assert.ErrorIs(t, err, ErrNotFound)

	request, err := svc.RequestReturn(ctx, user.ID, delivered.ID, ReturnInput{Reason: "damaged", ReasonDetails: " lid was cracked "})
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusPending, request.Status)
	assert.Equal(t, "lid was cracked", request.ReasonDetails)

	_, err = svc.RequestReturn(ctx, user.ID, delivered.ID, ReturnInput{Reason: "damaged"})
	assert.EqualError(t, err, "A return request already exists for this order")
}

func TestRequestReturnDisabled(t *testing.T) {
	env := newEnv(t)
	svc := NewOrderService(env.db, env.settings, returnWindow)
	user := env.customer(t, "buyer@example.com", false)
	order := env.order(t, user.ID, models.OrderStatusDelivered, time.Now())

	_, err := env.settings.ToggleFlag(context.Background(), "enable_returns")
	require.NoError(t, err)

	_, err = svc.RequestReturn(context.Background(), user.ID, order.ID, ReturnInput{Reason: "damaged"})
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestModerateReturn(t *testing.T) {
	env := newEnv(t)
	svc := NewOrderService(env.db, env.settings, returnWindow)
	user := env.customer(t, "buyer@example.com", false)
	order := env.order(t, user.ID, models.OrderStatusDelivered, time.Now())
	ctx := context.Background()

	request, err := svc.RequestReturn(ctx, user.ID, order.ID, ReturnInput{Reason: "wrong_item"})
	require.NoError(t, err)

	_, err = svc.ModerateReturn(ctx, request.ID, models.ReturnStatusCompleted, "")
	assert.Error(t, err, "pending requests must be approved first")

	approved, err := svc.ModerateReturn(ctx, request.ID, models.ReturnStatusApproved, "Refund at pickup")
	require.NoError(t, err)
	assert.Equal(t, "Refund at pickup", approved.AdminNotes)

	_, err = svc.ModerateReturn(ctx, request.ID, models.ReturnStatusCompleted, "done")
	require.NoError(t, err)

	var reloaded models.Order
	require.NoError(t, env.db.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.PaymentStatusRefunded, reloaded.PaymentStatus)

	queue, err := svc.ListReturns(ctx, models.ReturnStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}

func TestSubmitFeedback(t *testing.T) {
	env := newEnv(t)
	svc := NewOrderService(env.db, env.settings, returnWindow)
	user := env.customer(t, "buyer@example.com", false)
	delivered := env.order(t, user.ID, models.OrderStatusDelivered, time.Now())
	preparing := env.order(t, user.ID, models.OrderStatusPreparing, time.Now())
	ctx := context.Background()

	_, err := svc.SubmitFeedback(ctx, user.ID, delivered.ID, FeedbackInput{Rating: 6})
	assert.EqualError(t, err, "Rating must be between 1 and 5")

	_, err = svc.SubmitFeedback(ctx, user.ID, preparing.ID, FeedbackInput{Rating: 4})
	assert.ErrorIs(t, err, ErrNotEligible)

	fb, err := svc.SubmitFeedback(ctx, user.ID, delivered.ID, FeedbackInput{Rating: 5, Comment: "Lovely"})
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)

	_, err = svc.SubmitFeedback(ctx, user.ID, delivered.ID, FeedbackInput{Rating: 3})
	assert.ErrorIs(t, err, ErrConflict)

	all, err := svc.ListFeedback(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
