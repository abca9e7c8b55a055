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

const maxItemQuantity = 99

var orderTransitions = map[string][]string{
	models.OrderStatusPending:        {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:      {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:      {models.OrderStatusOutForDelivery},
	models.OrderStatusOutForDelivery: {models.OrderStatusDelivered},
}

// OrderService handles checkout, order administration, return requests and
// feedback.
type OrderService struct {
	DB           *gorm.DB
	Settings     *SettingsService
	ReturnWindow time.Duration
	Now          func() time.Time

	// Changed is told which customer's orders were written.
	Changed func(userID uint)
}

func (s *OrderService) changed(userID uint) {
	if s.Changed != nil {
		s.Changed(userID)
	}
}

func NewOrderService(db *gorm.DB, settings *SettingsService, returnWindow time.Duration) *OrderService {
	return &OrderService{DB: db, Settings: settings, ReturnWindow: returnWindow, Now: time.Now}
}

type CheckoutItem struct {
	MenuItemID     uint              `json:"menu_item_id"`
	Quantity       int               `json:"quantity"`
	VariantDetails map[string]string `json:"variant_details"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items"`
	ShippingAddress string         `json:"shipping_address"`
	Pickup          bool           `json:"pickup"`
}

// Totals is the price breakdown of an order.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	Tax          float64 `json:"tax"`
	ShippingCost float64 `json:"shipping_cost"`
	Total        float64 `json:"total"`
}

// PriceOrder applies the store tax rate and shipping rules to subtotal.
// Shipping is free for pickup and when the free shipping threshold is set
// and reached.
func PriceOrder(subtotal float64, settings models.StoreSettings, pickup bool) Totals {
	t := Totals{Subtotal: utils.RoundMoney(subtotal)}
	t.Tax = utils.RoundMoney(t.Subtotal * settings.TaxRate / 100)
	if !pickup {
		t.ShippingCost = settings.ShippingCost
		if settings.FreeShippingThreshold > 0 && t.Subtotal >= settings.FreeShippingThreshold {
			t.ShippingCost = 0
		}
	}
	t.Total = utils.RoundMoney(t.Subtotal + t.Tax + t.ShippingCost)
	return t
}

// Checkout places an order for userID at current menu prices.
func (s *OrderService) Checkout(ctx context.Context, userID uint, req CheckoutRequest) (models.Order, error) {
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if !settings.EnableOnlineOrdering || settings.MaintenanceMode {
		return models.Order{}, newError(ErrFeatureDisabled, "Online ordering is currently unavailable")
	}
	if req.Pickup && !settings.EnablePickup {
		return models.Order{}, newError(ErrFeatureDisabled, "Pickup is currently unavailable")
	}
	if !req.Pickup {
		if !settings.EnableDelivery {
			return models.Order{}, newError(ErrFeatureDisabled, "Delivery is currently unavailable")
		}
		if strings.TrimSpace(req.ShippingAddress) == "" {
			return models.Order{}, invalid("shipping_address", "Shipping address is required for delivery")
		}
	}
	if len(req.Items) == 0 {
		return models.Order{}, invalid("items", "Your cart is empty")
	}

	ids := make([]uint, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 || it.Quantity > maxItemQuantity {
			return models.Order{}, invalid("quantity", fmt.Sprintf("Quantity must be between 1 and %d", maxItemQuantity))
		}
		ids = append(ids, it.MenuItemID)
	}

	order := models.Order{
		UserID:          userID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var menuItems []models.MenuItem
		if err := tx.Where("id IN ?", ids).Find(&menuItems).Error; err != nil {
			return err
		}
		byID := make(map[uint]models.MenuItem, len(menuItems))
		for _, m := range menuItems {
			byID[m.ID] = m
		}

		var subtotal float64
		for _, it := range req.Items {
			m, ok := byID[it.MenuItemID]
			if !ok {
				return invalid("items", fmt.Sprintf("Menu item %d does not exist", it.MenuItemID))
			}
			if !m.IsAvailable {
				return invalid("items", fmt.Sprintf("%s is currently unavailable", m.Name))
			}
			order.OrderItems = append(order.OrderItems, models.OrderItem{
				MenuItemID:     m.ID,
				Quantity:       it.Quantity,
				UnitPrice:      m.Price,
				VariantDetails: it.VariantDetails,
			})
			subtotal += m.Price * float64(it.Quantity)
		}

		if settings.MinOrderAmount > 0 && subtotal < settings.MinOrderAmount {
			return invalid("items", fmt.Sprintf("Minimum order amount is %s", utils.FormatCurrency(settings.MinOrderAmount, settings.Currency)))
		}

		totals := PriceOrder(subtotal, settings, req.Pickup)
		order.Subtotal = totals.Subtotal
		order.Tax = totals.Tax
		order.ShippingCost = totals.ShippingCost
		order.OrderTotal = totals.Total

		return tx.Omit("OrderItems.MenuItem").Create(&order).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	utils.InfoLogger.Printf("Order %d placed by user %d, total %s", order.ID, userID, utils.FormatCurrency(order.OrderTotal, settings.Currency))
	s.changed(userID)
	return s.load(ctx, order.ID)
}

func (s *OrderService) load(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Preload("OrderItems.MenuItem").First(&order, id).Error
	if err != nil {
		return models.Order{}, notFound(err, "order")
	}
	return order, nil
}

// Get returns any order with its items.
func (s *OrderService) Get(ctx context.Context, id uint) (models.Order, error) {
	return s.load(ctx, id)
}

// GetForUser returns the order only if it belongs to userID.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID uint) (models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.UserID != userID {
		return models.Order{}, newError(ErrNotFound, "order not found")
	}
	return order, nil
}

// AdminList returns every order, newest first.
func (s *OrderService) AdminList(ctx context.Context, status string) ([]models.Order, error) {
	query := s.DB.WithContext(ctx).Preload("OrderItems.MenuItem").Order("created_at DESC, id DESC")
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order along the fulfilment flow. Delivering a cash
// order marks it paid.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (models.Order, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFound(err, "order")
		}
		if !allowedTransition(orderTransitions, order.Status, status) {
			return invalid("status", fmt.Sprintf("Cannot change order from %s to %s", order.Status, status))
		}

		updates := map[string]interface{}{"status": status}
		if status == models.OrderStatusDelivered && order.PaymentStatus == models.PaymentStatusPending {
			updates["payment_status"] = models.PaymentStatusPaid
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	utils.InfoLogger.Printf("Order %d status changed to %s", orderID, status)
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	s.changed(order.UserID)
	return order, nil
}
