package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

// OrderFilter narrows the order history. A Status of "" or "all" matches
// every order.
type OrderFilter struct {
	Status string
	Search string
	From   *time.Time
	To     *time.Time
}

func (f OrderFilter) active() bool {
	return (f.Status != "" && f.Status != "all") || strings.TrimSpace(f.Search) != "" || f.From != nil || f.To != nil
}

func (f OrderFilter) matches(order *models.Order) bool {
	if f.Status != "" && f.Status != "all" && order.Status != f.Status {
		return false
	}
	if f.From != nil && order.CreatedAt.Before(*f.From) {
		return false
	}
	// To is a calendar day and includes the whole day
	if f.To != nil && !order.CreatedAt.Before(f.To.AddDate(0, 0, 1)) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(f.Search), "#")))
	if term == "" {
		return true
	}
	if strconv.FormatUint(uint64(order.ID), 10) == term {
		return true
	}
	for _, item := range order.OrderItems {
		if strings.Contains(strings.ToLower(item.MenuItem.Name), term) {
			return true
		}
	}
	return false
}

// SortOrders returns a copy of orders, newest first with ties broken by id.
func SortOrders(orders []models.Order) []models.Order {
	out := append([]models.Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// FilterOrders returns the sorted orders matching f. orders is not modified,
// so an empty filter restores the full sorted list.
func FilterOrders(orders []models.Order, f OrderFilter) []models.Order {
	sorted := SortOrders(orders)
	if !f.active() {
		return sorted
	}
	out := make([]models.Order, 0, len(sorted))
	for i := range sorted {
		if f.matches(&sorted[i]) {
			out = append(out, sorted[i])
		}
	}
	return out
}

// HistoryEntry is one order row of the history page.
type HistoryEntry struct {
	models.Order
	ReturnRequest    *models.ReturnRequest `json:"return_request,omitempty"`
	Feedback         *models.OrderFeedback `json:"feedback,omitempty"`
	ReturnEligible   bool                  `json:"return_eligible"`
	CanLeaveFeedback bool                  `json:"can_leave_feedback"`
}

type HistoryResult struct {
	Orders          []HistoryEntry `json:"orders"`
	Total           int            `json:"total"`
	Filtered        bool           `json:"filtered"`
	ReturnsEnabled  bool           `json:"returns_enabled"`
	FeedbackEnabled bool           `json:"feedback_enabled"`
}

// historyRelated is what the second fetch of a refresh returns.
type historyRelated struct {
	returns  map[uint]models.ReturnRequest
	feedback map[uint]models.OrderFeedback
}

type (
	orderLoader   func(ctx context.Context, userID uint) ([]models.Order, error)
	relatedLoader func(ctx context.Context, orderIDs []uint) (historyRelated, error)
)

// HistoryView is the cached history of one customer. Every refresh takes a
// new generation; the related-rows fetch of a refresh is applied only while
// its generation is still current. The superseded fetch itself runs to
// completion.
type HistoryView struct {
	userID uint

	mu       sync.Mutex
	gen      uint64
	stale    bool
	lastUsed time.Time
	orders   []models.Order
	returns  map[uint]models.ReturnRequest
	feedback map[uint]models.OrderFeedback
}

func newHistoryView(userID uint) *HistoryView {
	return &HistoryView{
		userID:   userID,
		stale:    true,
		returns:  map[uint]models.ReturnRequest{},
		feedback: map[uint]models.OrderFeedback{},
	}
}

func (v *HistoryView) invalidate() {
	v.mu.Lock()
	v.stale = true
	v.mu.Unlock()
}

// touch marks the view used at now and reports whether it needs a refresh.
func (v *HistoryView) touch(now time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = now
	return v.stale
}

func (v *HistoryView) refresh(ctx context.Context, loadOrders orderLoader, loadRelated relatedLoader) error {
	// an invalidation arriving while loading marks the view stale again
	v.mu.Lock()
	v.stale = false
	v.mu.Unlock()

	orders, err := loadOrders(ctx, v.userID)
	if err != nil {
		v.invalidate()
		return err
	}

	v.mu.Lock()
	v.gen++
	token := v.gen
	v.orders = SortOrders(orders)
	ids := make([]uint, len(v.orders))
	for i, o := range v.orders {
		ids[i] = o.ID
	}
	v.mu.Unlock()

	related, err := loadRelated(ctx, ids)
	if err != nil {
		v.invalidate()
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.gen {
		return nil
	}
	v.returns = related.returns
	v.feedback = related.feedback
	return nil
}

func (v *HistoryView) snapshot() ([]models.Order, map[uint]models.ReturnRequest, map[uint]models.OrderFeedback) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.orders, v.returns, v.feedback
}

// DefaultMaxHistoryViews bounds the number of cached customer histories.
const DefaultMaxHistoryViews = 1000

// HistoryService caches one HistoryView per customer. A view is reloaded on
// the next read after a change event or an Invalidate for its customer. The
// least recently read view is dropped once MaxViews is exceeded.
type HistoryService struct {
	DB           *gorm.DB
	Settings     *SettingsService
	ReturnWindow time.Duration
	MaxViews     int
	Now          func() time.Time

	loadOrders  orderLoader
	loadRelated relatedLoader

	mu    sync.Mutex
	views map[uint]*HistoryView
}

func NewHistoryService(db *gorm.DB, settings *SettingsService, returnWindow time.Duration) *HistoryService {
	s := &HistoryService{
		DB:           db,
		Settings:     settings,
		ReturnWindow: returnWindow,
		MaxViews:     DefaultMaxHistoryViews,
		Now:          time.Now,
		views:        make(map[uint]*HistoryView),
	}
	s.loadOrders = s.fetchOrders
	s.loadRelated = s.fetchRelated
	return s
}

func (s *HistoryService) fetchOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).Preload("OrderItems.MenuItem").Where("user_id = ?", userID).Find(&orders).Error
	return orders, err
}

func (s *HistoryService) fetchRelated(ctx context.Context, orderIDs []uint) (historyRelated, error) {
	related := historyRelated{
		returns:  make(map[uint]models.ReturnRequest),
		feedback: make(map[uint]models.OrderFeedback),
	}
	if len(orderIDs) == 0 {
		return related, nil
	}

	var requests []models.ReturnRequest
	if err := s.DB.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&requests).Error; err != nil {
		return related, err
	}
	for _, r := range requests {
		related.returns[r.OrderID] = r
	}

	var feedback []models.OrderFeedback
	if err := s.DB.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&feedback).Error; err != nil {
		return related, err
	}
	for _, f := range feedback {
		related.feedback[f.OrderID] = f
	}
	return related, nil
}

func (s *HistoryService) view(userID uint) *HistoryView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[userID]
	if !ok {
		v = newHistoryView(userID)
		s.views[userID] = v
		s.evictLocked(userID)
	}
	return v
}

// evictLocked drops the least recently read views other than keep until the
// map fits MaxViews.
func (s *HistoryService) evictLocked(keep uint) {
	for s.MaxViews > 0 && len(s.views) > s.MaxViews {
		var (
			oldest   uint
			oldestAt time.Time
			found    bool
		)
		for id, v := range s.views {
			if id == keep {
				continue
			}
			v.mu.Lock()
			used := v.lastUsed
			v.mu.Unlock()
			if !found || used.Before(oldestAt) {
				oldest, oldestAt, found = id, used, true
			}
		}
		if !found {
			return
		}
		delete(s.views, oldest)
	}
}

// Invalidate marks userID's cached history for reload on its next read.
func (s *HistoryService) Invalidate(userID uint) {
	s.mu.Lock()
	v, ok := s.views[userID]
	s.mu.Unlock()
	if ok {
		v.invalidate()
	}
}

func (s *HistoryService) invalidateAll() {
	s.mu.Lock()
	views := make([]*HistoryView, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()
	for _, v := range views {
		v.invalidate()
	}
}

// History returns userID's filtered history, reloading the view when it is
// stale.
func (s *HistoryService) History(ctx context.Context, userID uint, filter OrderFilter) (HistoryResult, error) {
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return HistoryResult{}, err
	}

	now := s.Now()
	v := s.view(userID)
	if v.touch(now) {
		if err := v.refresh(ctx, s.loadOrders, s.loadRelated); err != nil {
			utils.LogError("load order history", err, map[string]interface{}{"user_id": userID})
			return HistoryResult{}, err
		}
	}

	orders, returns, feedback := v.snapshot()
	result := HistoryResult{
		Orders:          []HistoryEntry{},
		Total:           len(orders),
		Filtered:        filter.active(),
		ReturnsEnabled:  settings.EnableReturns,
		FeedbackEnabled: settings.EnableFeedback,
	}
	for _, o := range FilterOrders(orders, filter) {
		entry := HistoryEntry{Order: o}
		if r, ok := returns[o.ID]; ok {
			r := r
			entry.ReturnRequest = &r
		}
		if f, ok := feedback[o.ID]; ok {
			f := f
			entry.Feedback = &f
		}
		entry.ReturnEligible = settings.EnableReturns && ReturnEligible(o, entry.ReturnRequest != nil, now, s.ReturnWindow)
		entry.CanLeaveFeedback = settings.EnableFeedback && o.Status == models.OrderStatusDelivered && entry.Feedback == nil
		result.Orders = append(result.Orders, entry)
	}
	return result, nil
}

// Publish invalidates the cached view of the customer an order, return
// request or feedback belongs to. Deletes carry no record and invalidate
// every view.
func (s *HistoryService) Publish(_ context.Context, ev realtime.Event) error {
	var userID uint
	switch r := ev.Record.(type) {
	case models.Order:
		userID = r.UserID
	case *models.Order:
		userID = r.UserID
	case models.ReturnRequest:
		userID = r.UserID
	case *models.ReturnRequest:
		userID = r.UserID
	case models.OrderFeedback:
		userID = r.UserID
	case *models.OrderFeedback:
		userID = r.UserID
	case nil:
		switch ev.Table {
		case "orders", "return_requests", "order_feedback":
			s.invalidateAll()
		}
		return nil
	default:
		return nil
	}

	s.Invalidate(userID)
	return nil
}
