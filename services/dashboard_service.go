package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

// RecentOrdersLimit is the length of the dashboard's live order list.
const RecentOrdersLimit = 10

type DashboardStats struct {
	TotalOrders          int64            `json:"total_orders"`
	TodayOrders          int64            `json:"today_orders"`
	TotalRevenue         float64          `json:"total_revenue"`
	TodayRevenue         float64          `json:"today_revenue"`
	AverageOrderValue    float64          `json:"average_order_value"`
	OrdersByStatus       map[string]int64 `json:"orders_by_status"`
	PendingReturns       int64            `json:"pending_returns"`
	ReservationsByStatus map[string]int64 `json:"reservations_by_status"`
	UpcomingReservations int64            `json:"upcoming_reservations"`
	MenuItems            int64            `json:"menu_items"`
	AvailableMenuItems   int64            `json:"available_menu_items"`
	Customers            int64            `json:"customers"`
	AverageRating        float64          `json:"average_rating"`
	RecentOrders         []models.Order   `json:"recent_orders"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

// DashboardService computes admin statistics. The recent orders list is
// loaded once and then kept current from change events.
type DashboardService struct {
	DB     *gorm.DB
	Now    func() time.Time
	recent *realtime.LiveList[models.Order]

	mu     sync.Mutex
	loaded bool
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		DB:     db,
		Now:    time.Now,
		recent: realtime.NewLiveList("orders", func(o models.Order) uint { return o.ID }, RecentOrdersLimit),
	}
}

type statusCount struct {
	Status string
	Count  int64
}

func (s *DashboardService) countByStatus(ctx context.Context, model interface{}) (map[string]int64, error) {
	var rows []statusCount
	if err := s.DB.WithContext(ctx).Model(model).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *DashboardService) sum(ctx context.Context, query *gorm.DB, expr string) (float64, error) {
	var v sql.NullFloat64
	if err := query.WithContext(ctx).Select(expr).Row().Scan(&v); err != nil {
		return 0, err
	}
	return v.Float64, nil
}

// LoadRecent reads the newest orders into the live list.
func (s *DashboardService) LoadRecent(ctx context.Context) error {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Preload("OrderItems.MenuItem").
		Order("created_at DESC, id DESC").
		Limit(RecentOrdersLimit).
		Find(&orders).Error; err != nil {
		return err
	}
	s.recent.Reset(orders)
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Publish feeds order changes into the recent orders list.
func (s *DashboardService) Publish(_ context.Context, ev realtime.Event) error {
	s.recent.Apply(ev)
	return nil
}

func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	now := s.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	db := s.DB.WithContext(ctx)

	stats := DashboardStats{GeneratedAt: now}
	var err error

	if err = db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return stats, err
	}
	if err = db.Model(&models.Order{}).Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).Count(&stats.TodayOrders).Error; err != nil {
		return stats, err
	}

	paid := db.Model(&models.Order{}).Where("payment_status = ?", models.PaymentStatusPaid)
	if stats.TotalRevenue, err = s.sum(ctx, paid, "SUM(order_total)"); err != nil {
		return stats, err
	}
	paidToday := db.Model(&models.Order{}).Where("payment_status = ? AND created_at >= ? AND created_at < ?", models.PaymentStatusPaid, dayStart, dayEnd)
	if stats.TodayRevenue, err = s.sum(ctx, paidToday, "SUM(order_total)"); err != nil {
		return stats, err
	}
	valued := db.Model(&models.Order{}).Where("status <> ?", models.OrderStatusCancelled)
	if stats.AverageOrderValue, err = s.sum(ctx, valued, "AVG(order_total)"); err != nil {
		return stats, err
	}

	if stats.OrdersByStatus, err = s.countByStatus(ctx, &models.Order{}); err != nil {
		return stats, err
	}
	if stats.ReservationsByStatus, err = s.countByStatus(ctx, &models.Reservation{}); err != nil {
		return stats, err
	}
	if err = db.Model(&models.ReturnRequest{}).Where("status = ?", models.ReturnStatusPending).Count(&stats.PendingReturns).Error; err != nil {
		return stats, err
	}
	if err = db.Model(&models.Reservation{}).
		Where("reserved_at >= ? AND status IN ?", now, []string{models.ReservationPending, models.ReservationConfirmed}).
		Count(&stats.UpcomingReservations).Error; err != nil {
		return stats, err
	}
	if err = db.Model(&models.MenuItem{}).Count(&stats.MenuItems).Error; err != nil {
		return stats, err
	}
	if err = db.Model(&models.MenuItem{}).Where("is_available = ?", true).Count(&stats.AvailableMenuItems).Error; err != nil {
		return stats, err
	}
	if err = db.Model(&models.Customer{}).Where("is_admin = ?", false).Count(&stats.Customers).Error; err != nil {
		return stats, err
	}
	if stats.AverageRating, err = s.sum(ctx, db.Model(&models.OrderFeedback{}), "AVG(rating)"); err != nil {
		return stats, err
	}

	stats.TotalRevenue = utils.RoundMoney(stats.TotalRevenue)
	stats.TodayRevenue = utils.RoundMoney(stats.TodayRevenue)
	stats.AverageOrderValue = utils.RoundMoney(stats.AverageOrderValue)
	stats.AverageRating = utils.RoundMoney(stats.AverageRating)

	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		if err = s.LoadRecent(ctx); err != nil {
			return stats, err
		}
	}
	stats.RecentOrders = s.recent.Items()
	if stats.RecentOrders == nil {
		stats.RecentOrders = []models.Order{}
	}
	return stats, nil
}
