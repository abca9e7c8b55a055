package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

const clockLayout = "15:04"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var reservationTransitions = map[string][]string{
	models.ReservationPending:   {models.ReservationConfirmed, models.ReservationCancelled},
	models.ReservationConfirmed: {models.ReservationCompleted, models.ReservationCancelled, models.ReservationNoShow},
}

// ReservationService books tables. Opening hours, slots and closed days are
// read in Location, the store's wall clock.
type ReservationService struct {
	DB       *gorm.DB
	Settings *SettingsService
	Location *time.Location
	Now      func() time.Time
}

func NewReservationService(db *gorm.DB, settings *SettingsService) *ReservationService {
	return &ReservationService{DB: db, Settings: settings, Location: time.Local, Now: time.Now}
}

// parseClock turns "HH:MM" into minutes after midnight.
func parseClock(field, value string) (int, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, invalid(field, fmt.Sprintf("Invalid time %q, expected HH:MM", value))
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateReservationSettings checks in and normalizes its closed days.
func ValidateReservationSettings(in *models.ReservationSettings) error {
	opening, err := parseClock("opening_time", in.OpeningTime)
	if err != nil {
		return err
	}
	closing, err := parseClock("closing_time", in.ClosingTime)
	if err != nil {
		return err
	}
	if opening >= closing {
		return invalid("opening_time", "Opening time must be before closing time")
	}
	if in.SlotMinutes < 5 || in.SlotMinutes > 240 {
		return invalid("slot_minutes", "Slot length must be between 5 and 240 minutes")
	}
	if in.SlotMinutes > closing-opening {
		return invalid("slot_minutes", "Slot length cannot exceed opening hours")
	}
	if in.MinPartySize < 1 {
		return invalid("min_party_size", "Minimum party size must be at least 1")
	}
	if in.MaxPartySize < in.MinPartySize {
		return invalid("max_party_size", "Maximum party size cannot be below the minimum")
	}
	if in.MaxPerSlot < 1 {
		return invalid("max_per_slot", "At least one reservation per slot is required")
	}
	if in.AdvanceDays < 0 || in.AdvanceDays > 365 {
		return invalid("advance_days", "Advance booking must be between 0 and 365 days")
	}

	days := make([]string, 0, len(in.ClosedDays))
	seen := map[string]bool{}
	for _, d := range in.ClosedDays {
		d = strings.ToLower(strings.TrimSpace(d))
		if _, ok := weekdays[d]; !ok {
			return invalid("closed_days", fmt.Sprintf("Unknown weekday %q", d))
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	in.ClosedDays = days
	in.OpeningTime = fmt.Sprintf("%02d:%02d", opening/60, opening%60)
	in.ClosingTime = fmt.Sprintf("%02d:%02d", closing/60, closing%60)
	return nil
}

func (s *ReservationService) GetSettings(ctx context.Context) (models.ReservationSettings, error) {
	var settings models.ReservationSettings
	if err := s.DB.WithContext(ctx).Order("id").First(&settings).Error; err != nil {
		return models.ReservationSettings{}, notFound(err, "reservation settings")
	}
	return settings, nil
}

// UpdateSettings validates in and saves it over the settings row.
func (s *ReservationService) UpdateSettings(ctx context.Context, in models.ReservationSettings) (models.ReservationSettings, error) {
	if err := ValidateReservationSettings(&in); err != nil {
		return models.ReservationSettings{}, err
	}

	current, err := s.GetSettings(ctx)
	if err != nil {
		return models.ReservationSettings{}, err
	}
	in.ID = current.ID
	if in.ClosedDays == nil {
		in.ClosedDays = []string{}
	}

	// Select("*") so false booleans are written
	if err := s.DB.WithContext(ctx).Model(&in).Select("*").Omit("id").Updates(&in).Error; err != nil {
		utils.LogError("update reservation settings", err, nil)
		return models.ReservationSettings{}, err
	}
	utils.InfoLogger.Printf("Reservation settings updated (id=%d)", in.ID)
	return s.GetSettings(ctx)
}

type ReservationRequest struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	PartySize  int       `json:"party_size"`
	ReservedAt time.Time `json:"reserved_at"`
	Notes      string    `json:"notes"`
}

// checkBookable validates req against the booking rules.
func checkBookable(req ReservationRequest, settings models.ReservationSettings, now time.Time) error {
	if strings.TrimSpace(req.Name) == "" {
		return invalid("name", "Name is required")
	}
	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Phone) == "" {
		return invalid("email", "An email address or phone number is required")
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return invalid("email", "Email address is invalid")
		}
	}
	if req.PartySize < settings.MinPartySize || req.PartySize > settings.MaxPartySize {
		return invalid("party_size", fmt.Sprintf("Party size must be between %d and %d", settings.MinPartySize, settings.MaxPartySize))
	}
	if req.ReservedAt.IsZero() || !req.ReservedAt.After(now) {
		return invalid("reserved_at", "Reservation time must be in the future")
	}
	if req.ReservedAt.After(now.AddDate(0, 0, settings.AdvanceDays+1)) {
		return invalid("reserved_at", fmt.Sprintf("Reservations can be made at most %d days in advance", settings.AdvanceDays))
	}

	day := strings.ToLower(req.ReservedAt.Weekday().String())
	for _, closed := range settings.ClosedDays {
		if strings.EqualFold(closed, day) {
			return invalid("reserved_at", fmt.Sprintf("We are closed on %s", req.ReservedAt.Weekday()))
		}
	}

	opening, err := parseClock("opening_time", settings.OpeningTime)
	if err != nil {
		return err
	}
	closing, err := parseClock("closing_time", settings.ClosingTime)
	if err != nil {
		return err
	}
	start := req.ReservedAt.Hour()*60 + req.ReservedAt.Minute()
	if start < opening || start+settings.SlotMinutes > closing {
		return invalid("reserved_at", fmt.Sprintf("Reservations are accepted between %s and %s", settings.OpeningTime, settings.ClosingTime))
	}
	if (start-opening)%settings.SlotMinutes != 0 || req.ReservedAt.Second() != 0 || req.ReservedAt.Nanosecond() != 0 {
		return invalid("reserved_at", fmt.Sprintf("Reservation time must start on a %d-minute slot", settings.SlotMinutes))
	}
	return nil
}

// Create books a table. customerID is nil for guests.
func (s *ReservationService) Create(ctx context.Context, req ReservationRequest, customerID *uint) (models.Reservation, error) {
	store, err := s.Settings.Get(ctx)
	if err != nil {
		return models.Reservation{}, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return models.Reservation{}, err
	}
	if !store.EnableReservations || !settings.IsEnabled || store.MaintenanceMode {
		return models.Reservation{}, newError(ErrFeatureDisabled, "Reservations are currently closed")
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	req.ReservedAt = req.ReservedAt.In(loc)
	if err := checkBookable(req, settings, s.Now()); err != nil {
		return models.Reservation{}, err
	}
	slotStart := req.ReservedAt.UTC()
	slotEnd := slotStart.Add(time.Duration(settings.SlotMinutes) * time.Minute)

	reservation := models.Reservation{
		CustomerID: customerID,
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		PartySize:  req.PartySize,
		ReservedAt: slotStart,
		Status:     models.ReservationPending,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if settings.AutoConfirm {
		reservation.Status = models.ReservationConfirmed
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Reservation{}).
			Where("reserved_at >= ? AND reserved_at < ? AND status IN ?", slotStart, slotEnd, []string{models.ReservationPending, models.ReservationConfirmed}).
			Count(&taken).Error; err != nil {
			return err
		}
		if int(taken) >= settings.MaxPerSlot {
			return newError(ErrConflict, "This time slot is fully booked")
		}
		return tx.Create(&reservation).Error
	})
	if err != nil {
		return models.Reservation{}, err
	}
	reservation.ReservedAt = req.ReservedAt

	utils.InfoLogger.Printf("Reservation %d created for %s at %s", reservation.ID, reservation.Name, reservation.ReservedAt.Format(time.RFC3339))
	return reservation, nil
}

// List returns reservations ordered by time. An empty status or "all" lists everything.
func (s *ReservationService) List(ctx context.Context, status string) ([]models.Reservation, error) {
	query := s.DB.WithContext(ctx).Order("reserved_at ASC, id ASC")
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *ReservationService) ListForCustomer(ctx context.Context, customerID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.DB.WithContext(ctx).Where("customer_id = ?", customerID).Order("reserved_at DESC").Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// UpdateStatus moves a reservation along its allowed transitions.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint, status string) (models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return models.Reservation{}, notFound(err, "reservation")
	}
	if !allowedTransition(reservationTransitions, reservation.Status, status) {
		return models.Reservation{}, invalid("status", fmt.Sprintf("Cannot change reservation from %s to %s", reservation.Status, status))
	}
	if err := s.DB.WithContext(ctx).Model(&reservation).Update("status", status).Error; err != nil {
		return models.Reservation{}, err
	}
	utils.InfoLogger.Printf("Reservation %d status changed to %s", reservation.ID, status)
	return reservation, nil
}

func allowedTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
