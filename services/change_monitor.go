package services

import (
	"context"
	"errors"
	"time"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

// ChangeMonitor polls the db_changes log and publishes every unprocessed
// change, with the current row attached, to its sinks.
type ChangeMonitor struct {
	DB        *gorm.DB
	Sinks     []realtime.Sink
	StopChan  chan struct{}
	Interval  time.Duration
	BatchSize int
}

type recordLoader func(db *gorm.DB, id int64) (interface{}, error)

func loadAs[T any](preloads ...string) recordLoader {
	return func(db *gorm.DB, id int64) (interface{}, error) {
		var record T
		q := db
		for _, p := range preloads {
			q = q.Preload(p)
		}
		if err := q.First(&record, id).Error; err != nil {
			return nil, err
		}
		return record, nil
	}
}

var recordLoaders = map[string]recordLoader{
	"orders":               loadAs[models.Order]("OrderItems.MenuItem"),
	"order_items":          loadAs[models.OrderItem](),
	"return_requests":      loadAs[models.ReturnRequest](),
	"order_feedback":       loadAs[models.OrderFeedback](),
	"menu_items":           loadAs[models.MenuItem]("Category"),
	"menu_categories":      loadAs[models.MenuCategory](),
	"special_sections":     loadAs[models.SpecialSection](),
	"store_settings":       loadAs[models.StoreSettings](),
	"reservation_settings": loadAs[models.ReservationSettings](),
	"reservations":         loadAs[models.Reservation](),
}

func NewChangeMonitor(db *gorm.DB, interval time.Duration, sinks ...realtime.Sink) *ChangeMonitor {
	if interval <= 0 {
		interval = time.Second
	}
	return &ChangeMonitor{
		DB:        db,
		Sinks:     sinks,
		StopChan:  make(chan struct{}),
		Interval:  interval,
		BatchSize: 100,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := cm.Poll(context.Background()); err != nil {
					utils.ErrorLogger.Printf("Error processing changes: %v", err)
				}
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

// Poll publishes one batch of unprocessed changes in log order and marks
// them processed. Sink failures are logged and do not hold the batch back.
func (cm *ChangeMonitor) Poll(ctx context.Context) (int, error) {
	var changes []models.DBChange
	if err := cm.DB.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(cm.BatchSize).
		Find(&changes).Error; err != nil {
		return 0, err
	}
	if len(changes) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(changes))
	for _, change := range changes {
		ev, ok := cm.event(ctx, change)
		if ok {
			cm.publish(ctx, ev)
		}
		ids = append(ids, change.ID)
	}

	if err := cm.DB.WithContext(ctx).Model(&models.DBChange{}).
		Where("id IN ?", ids).
		Update("processed", true).Error; err != nil {
		return 0, err
	}

	utils.InfoLogger.Printf("Processed %d changes", len(changes))
	return len(changes), nil
}

func (cm *ChangeMonitor) event(ctx context.Context, change models.DBChange) (realtime.Event, bool) {
	ev := realtime.Event{
		Table:    change.TableName,
		Action:   change.ActionType,
		RecordID: change.RecordID,
		At:       change.ChangedAt,
	}
	if change.ActionType == models.ActionDelete {
		return ev, true
	}

	load, ok := recordLoaders[change.TableName]
	if !ok {
		return ev, true
	}
	record, err := load(cm.DB.WithContext(ctx), change.RecordID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// deleted before we got to it; the delete change follows
		return ev, false
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching %s %d: %v", change.TableName, change.RecordID, err)
		return ev, false
	}
	ev.Record = record
	return ev, true
}

func (cm *ChangeMonitor) publish(ctx context.Context, ev realtime.Event) {
	for _, sink := range cm.Sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			utils.ErrorLogger.Printf("Error publishing %s %s %d: %v", ev.Table, ev.Action, ev.RecordID, err)
		}
	}
}
