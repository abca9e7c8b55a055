package services

import (
	"context"
	"strings"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

const maxFeedbackComment = 2000

type FeedbackInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitFeedback records the customer's rating of a delivered order. Each
// order takes feedback once.
func (s *OrderService) SubmitFeedback(ctx context.Context, userID, orderID uint, in FeedbackInput) (models.OrderFeedback, error) {
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return models.OrderFeedback{}, err
	}
	if !settings.EnableFeedback {
		return models.OrderFeedback{}, newError(ErrFeatureDisabled, "Feedback is currently disabled")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return models.OrderFeedback{}, invalid("rating", "Rating must be between 1 and 5")
	}
	if len(in.Comment) > maxFeedbackComment {
		return models.OrderFeedback{}, invalid("comment", "Comment must be 2000 characters or fewer")
	}

	feedback := models.OrderFeedback{
		OrderID: orderID,
		UserID:  userID,
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFound(err, "order")
		}
		if order.UserID != userID {
			return newError(ErrNotFound, "order not found")
		}
		if order.Status != models.OrderStatusDelivered {
			return newError(ErrNotEligible, "Feedback can only be left for delivered orders")
		}

		var existing int64
		if err := tx.Model(&models.OrderFeedback{}).Where("order_id = ?", orderID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return newError(ErrConflict, "Feedback has already been submitted for this order")
		}
		return tx.Create(&feedback).Error
	})
	if err != nil {
		return models.OrderFeedback{}, err
	}

	utils.InfoLogger.Printf("Feedback for order %d: %d stars", orderID, feedback.Rating)
	s.changed(userID)
	return feedback, nil
}

// ListFeedback returns all feedback, newest first.
func (s *OrderService) ListFeedback(ctx context.Context) ([]models.OrderFeedback, error) {
	var feedback []models.OrderFeedback
	if err := s.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}
