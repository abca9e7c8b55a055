package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/models"
)

func newReservationService(env *testEnv, now time.Time) *ReservationService {
	s := NewReservationService(env.db, env.settings)
	s.Now = func() time.Time { return now }
	return s
}

func TestReservationSettingsOpeningAfterClosing(t *testing.T) {
	env := newEnv(t)
	svc := newReservationService(env, time.Now())
	updates := countUpdates(t, env.db, "reservation_settings")

	current, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	current.OpeningTime = "12:00"
	current.ClosingTime = "11:00"

	_, err = svc.UpdateSettings(context.Background(), current)
	assert.EqualError(t, err, "Opening time must be before closing time")
	assert.Zero(t, *updates)
}

func TestReservationSettingsMalformedTime(t *testing.T) {
	in := models.ReservationSettings{OpeningTime: "noon", ClosingTime: "22:00", SlotMinutes: 30, MinPartySize: 1, MaxPartySize: 4, MaxPerSlot: 1}
	err := ValidateReservationSettings(&in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "opening_time", verr.Field)
}

func TestReservationSettingsUpdateNormalizes(t *testing.T) {
	env := newEnv(t)
	svc := newReservationService(env, time.Now())

	in, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	in.OpeningTime = "9:30"
	in.ClosedDays = []string{"Monday", "monday", " TUESDAY "}
	in.AutoConfirm = true
	in.IsEnabled = false

	saved, err := svc.UpdateSettings(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "09:30", saved.OpeningTime)
	assert.Equal(t, []string{"monday", "tuesday"}, saved.ClosedDays)
	assert.True(t, saved.AutoConfirm)
	assert.False(t, saved.IsEnabled)
}

func tomorrowAt(now time.Time, hour, minute int) time.Time {
	d := now.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, now.Location())
}

func TestCreateReservation(t *testing.T) {
	env := newEnv(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newReservationService(env, now)
	ctx := context.Background()

	req := ReservationRequest{Name: "Ana", Email: "ana@example.com", PartySize: 4, ReservedAt: tomorrowAt(now, 19, 0)}
	res, err := svc.Create(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, res.Status)

	list, err := svc.List(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err := svc.UpdateStatus(ctx, res.ID, models.ReservationConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, updated.Status)

	_, err = svc.UpdateStatus(ctx, res.ID, models.ReservationPending)
	assert.Error(t, err)
}

func TestCreateReservationRules(t *testing.T) {
	env := newEnv(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newReservationService(env, now)
	ctx := context.Background()

	base := ReservationRequest{Name: "Bo", Phone: "555-0100", PartySize: 2, ReservedAt: tomorrowAt(now, 19, 0)}

	offSlot := base
	offSlot.ReservedAt = tomorrowAt(now, 19, 10)
	_, err := svc.Create(ctx, offSlot, nil)
	assert.EqualError(t, err, "Reservation time must start on a 30-minute slot")

	late := base
	late.ReservedAt = tomorrowAt(now, 21, 45)
	_, err = svc.Create(ctx, late, nil)
	assert.EqualError(t, err, "Reservations are accepted between 11:00 and 22:00")

	past := base
	past.ReservedAt = now.Add(-time.Hour)
	_, err = svc.Create(ctx, past, nil)
	assert.EqualError(t, err, "Reservation time must be in the future")

	crowd := base
	crowd.PartySize = 40
	_, err = svc.Create(ctx, crowd, nil)
	assert.EqualError(t, err, "Party size must be between 1 and 10")

	far := base
	far.ReservedAt = tomorrowAt(now.AddDate(0, 0, 60), 19, 0)
	_, err = svc.Create(ctx, far, nil)
	assert.EqualError(t, err, "Reservations can be made at most 30 days in advance")
}

func TestCreateReservationSlotCapacity(t *testing.T) {
	env := newEnv(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newReservationService(env, now)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	settings.MaxPerSlot = 1
	settings.AutoConfirm = true
	_, err = svc.UpdateSettings(ctx, settings)
	require.NoError(t, err)

	req := ReservationRequest{Name: "Cy", Email: "cy@example.com", PartySize: 2, ReservedAt: tomorrowAt(now, 20, 0)}
	first, err := svc.Create(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, first.Status)

	_, err = svc.Create(ctx, req, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateReservationClosed(t *testing.T) {
	env := newEnv(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := newReservationService(env, now)
	ctx := context.Background()

	_, err := env.settings.ToggleFlag(ctx, "enable_reservations")
	require.NoError(t, err)

	_, err = svc.Create(ctx, ReservationRequest{Name: "Di", Email: "di@example.com", PartySize: 2, ReservedAt: tomorrowAt(now, 19, 0)}, nil)
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestCreateReservationUsesStoreClock(t *testing.T) {
	env := newEnv(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newReservationService(env, now)
	svc.Location = time.UTC
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	settings.MaxPerSlot = 1
	_, err = svc.UpdateSettings(ctx, settings)
	require.NoError(t, err)

	plusOne := time.FixedZone("UTC+1", 3600)
	minusOne := time.FixedZone("UTC-1", -3600)

	first, err := svc.Create(ctx, ReservationRequest{Name: "Ed", Email: "ed@example.com", PartySize: 2,
		ReservedAt: time.Date(2026, 3, 11, 18, 0, 0, 0, time.UTC)}, nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, first.ReservedAt.Location())

	_, err = svc.Create(ctx, ReservationRequest{Name: "Flo", Email: "flo@example.com", PartySize: 2,
		ReservedAt: time.Date(2026, 3, 11, 19, 0, 0, 0, plusOne)}, nil)
	assert.ErrorIs(t, err, ErrConflict, "the same instant in another offset is the same slot")

	// 10:30 at UTC-1 is 11:30 on the store clock
	early, err := svc.Create(ctx, ReservationRequest{Name: "Gus", Email: "gus@example.com", PartySize: 2,
		ReservedAt: time.Date(2026, 3, 11, 10, 30, 0, 0, minusOne)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 11, early.ReservedAt.Hour())

	// 22:00 at UTC+1 is 21:00 on the store clock
	_, err = svc.Create(ctx, ReservationRequest{Name: "Hal", Email: "hal@example.com", PartySize: 2,
		ReservedAt: time.Date(2026, 3, 11, 22, 0, 0, 0, plusOne)}, nil)
	require.NoError(t, err)

	var stored int64
	require.NoError(t, env.db.Model(&models.Reservation{}).Count(&stored).Error)
	assert.Equal(t, int64(3), stored)
}
