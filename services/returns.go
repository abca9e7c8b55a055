package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

const maxReturnDetails = 1000

var returnTransitions = map[string][]string{
	models.ReturnStatusPending:  {models.ReturnStatusApproved, models.ReturnStatusRejected},
	models.ReturnStatusApproved: {models.ReturnStatusCompleted},
}

// ReturnReasons are the choices offered by the return form.
var ReturnReasons = []string{
	"wrong_item",
	"damaged",
	"missing_items",
	"quality_issue",
	"late_delivery",
	"other",
}

// ReturnIneligibility explains why order cannot be returned, or returns ""
// if it can. An order is returnable when it was delivered, is at most
// window old and has no return request yet.
func ReturnIneligibility(order models.Order, hasReturn bool, now time.Time, window time.Duration) string {
	switch {
	case order.Status != models.OrderStatusDelivered:
		return "Only delivered orders can be returned"
	case now.Sub(order.CreatedAt) > window:
		return fmt.Sprintf("The %d-day return window has closed", int(window.Hours()/24))
	case hasReturn:
		return "A return request already exists for this order"
	}
	return ""
}

func ReturnEligible(order models.Order, hasReturn bool, now time.Time, window time.Duration) bool {
	return ReturnIneligibility(order, hasReturn, now, window) == ""
}

type ReturnInput struct {
	Reason        string `json:"reason"`
	ReasonDetails string `json:"reason_details"`
}

// RequestReturn files a return request for one of userID's orders.
func (s *OrderService) RequestReturn(ctx context.Context, userID, orderID uint, in ReturnInput) (models.ReturnRequest, error) {
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return models.ReturnRequest{}, err
	}
	if !settings.EnableReturns {
		return models.ReturnRequest{}, newError(ErrFeatureDisabled, "Return requests are currently disabled")
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return models.ReturnRequest{}, invalid("reason", "Please select a reason for the return")
	}
	if !validReason(reason) {
		return models.ReturnRequest{}, invalid("reason", fmt.Sprintf("Unknown return reason %q", reason))
	}
	if len(in.ReasonDetails) > maxReturnDetails {
		return models.ReturnRequest{}, invalid("reason_details", "Details must be 1000 characters or fewer")
	}

	request := models.ReturnRequest{
		OrderID:       orderID,
		UserID:        userID,
		Status:        models.ReturnStatusPending,
		Reason:        reason,
		ReasonDetails: strings.TrimSpace(in.ReasonDetails),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFound(err, "order")
		}
		if order.UserID != userID {
			return newError(ErrNotFound, "order not found")
		}

		var existing int64
		if err := tx.Model(&models.ReturnRequest{}).Where("order_id = ?", orderID).Count(&existing).Error; err != nil {
			return err
		}
		if why := ReturnIneligibility(order, existing > 0, s.Now(), s.ReturnWindow); why != "" {
			return newError(ErrNotEligible, "%s", why)
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return models.ReturnRequest{}, err
	}

	utils.InfoLogger.Printf("Return request %d filed for order %d", request.ID, orderID)
	s.changed(userID)
	return request, nil
}

func validReason(reason string) bool {
	for _, r := range ReturnReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// ListReturns returns return requests for the admin queue, newest first.
func (s *OrderService) ListReturns(ctx context.Context, status string) ([]models.ReturnRequest, error) {
	query := s.DB.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	var requests []models.ReturnRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ModerateReturn moves a return request to status. Completing a return
// marks the order refunded.
func (s *OrderService) ModerateReturn(ctx context.Context, id uint, status, notes string) (models.ReturnRequest, error) {
	var request models.ReturnRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, id).Error; err != nil {
			return notFound(err, "return request")
		}
		if !allowedTransition(returnTransitions, request.Status, status) {
			return invalid("status", fmt.Sprintf("Cannot change return request from %s to %s", request.Status, status))
		}

		request.Status = status
		request.AdminNotes = strings.TrimSpace(notes)
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":      request.Status,
			"admin_notes": request.AdminNotes,
		}).Error; err != nil {
			return err
		}
		if status == models.ReturnStatusCompleted {
			return tx.Model(&models.Order{ID: request.OrderID}).Update("payment_status", models.PaymentStatusRefunded).Error
		}
		return nil
	})
	if err != nil {
		return models.ReturnRequest{}, err
	}

	utils.InfoLogger.Printf("Return request %d moved to %s", id, status)
	s.changed(request.UserID)
	return request, nil
}
