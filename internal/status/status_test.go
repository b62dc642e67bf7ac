package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

func orderAt(status model.OrderStatus, updatedAt time.Time) model.Order {
	return model.Order{
		Base:   model.Base{CreatedAt: updatedAt, UpdatedAt: updatedAt},
		Status: status,
	}
}

func reservationAt(status model.ReservationStatus, date, clock string, updatedAt time.Time) model.Reservation {
	return model.Reservation{
		Base:            model.Base{CreatedAt: updatedAt, UpdatedAt: updatedAt},
		ReservationDate: date,
		ReservationTime: clock,
		Status:          status,
	}
}

func TestDeriveOrderBeforeCutoff(t *testing.T) {
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 23, 38, 59, 0, time.UTC)

	got := DeriveOrder(orderAt(model.OrderStatusPending, day), now)
	assert.Equal(t, model.OrderStatusPending, got.Status)
}

func TestDeriveOrderPastCutoffCompletes(t *testing.T) {
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 23, 40, 0, 0, time.UTC)

	got := DeriveOrder(orderAt(model.OrderStatusPending, day), now)
	assert.Equal(t, model.OrderStatusCompleted, got.Status)
}

func TestDeriveOrderNextDayStillCompletes(t *testing.T) {
	// Even days later the cutoff branch wins over the end-of-day branch,
	// so a stale pending order lands on completed rather than past.
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

	got := DeriveOrder(orderAt(model.OrderStatusPending, day), now)
	assert.Equal(t, model.OrderStatusCompleted, got.Status)
}

func TestDeriveOrderNonPendingUntouched(t *testing.T) {
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := day.Add(72 * time.Hour)

	for _, status := range []model.OrderStatus{
		model.OrderStatusCompleted,
		model.OrderStatusCancelled,
		model.OrderStatusPast,
	} {
		got := DeriveOrder(orderAt(status, day), now)
		assert.Equal(t, status, got.Status)
	}
}

func TestDeriveOrderIdempotent(t *testing.T) {
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 23, 45, 0, 0, time.UTC)

	once := DeriveOrder(orderAt(model.OrderStatusPending, day), now)
	twice := DeriveOrder(once, now)
	assert.Equal(t, once.Status, twice.Status)
}

func TestDeriveOrderCaseInsensitiveStatus(t *testing.T) {
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 23, 40, 0, 0, time.UTC)

	got := DeriveOrder(orderAt(model.OrderStatus("Pending"), day), now)
	assert.Equal(t, model.OrderStatusCompleted, got.Status)
}

func TestDeriveReservationCompletedSticky(t *testing.T) {
	stamp := time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC)
	now := stamp.Add(30 * 24 * time.Hour)

	got := DeriveReservation(reservationAt(model.ReservationStatusCompleted, "2026-02-10", "18:00", stamp), now)
	assert.Equal(t, model.ReservationStatusCompleted, got.Status)
}

func TestDeriveReservationCancelledArchives(t *testing.T) {
	stamp := time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC)

	got := DeriveReservation(reservationAt(model.ReservationStatusCancelled, "2026-02-10", "18:00", stamp), stamp)
	assert.Equal(t, model.ReservationStatusPast, got.Status)
}

func TestDeriveReservationExpiresAfterScheduledDay(t *testing.T) {
	stamp := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	r := reservationAt(model.ReservationStatusPending, "2026-02-10", "18:00", stamp)

	// Still the scheduled day: no change, even well past the time slot.
	now := time.Date(2026, 2, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, model.ReservationStatusPending, DeriveReservation(r, now).Status)

	// One second past midnight the reservation expires.
	now = time.Date(2026, 2, 11, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, model.ReservationStatusPast, DeriveReservation(r, now).Status)
}

func TestDeriveReservationSecondsPrecisionTime(t *testing.T) {
	stamp := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	r := reservationAt(model.ReservationStatusPending, "2026-02-10", "18:30:45", stamp)

	now := time.Date(2026, 2, 11, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, model.ReservationStatusPast, DeriveReservation(r, now).Status)
}

func TestDeriveReservationMalformedDateFallsBack(t *testing.T) {
	stamp := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	r := reservationAt(model.ReservationStatusPending, "not-a-date", "18:00", stamp)

	// Falls back to the record's own timestamps: expired the day after.
	now := time.Date(2026, 2, 10, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, model.ReservationStatusPast, DeriveReservation(r, now).Status)
}

func TestAnnotateOrdersHidesAndPurges(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fresh := orderAt(model.OrderStatusPast, now.Add(-24*time.Hour))
	stale := orderAt(model.OrderStatusPast, now.Add(-4*24*time.Hour))
	ancient := orderAt(model.OrderStatusPast, now.Add(-400*24*time.Hour))
	open := orderAt(model.OrderStatusPending, now.Add(-time.Hour))

	out := AnnotateOrders([]model.Order{fresh, stale, ancient, open}, now)

	assert.Len(t, out, 3)
	assert.False(t, out[0].IsHidden)
	assert.True(t, out[1].IsHidden)
	assert.Equal(t, model.OrderStatusPending, out[2].Status)
	assert.False(t, out[2].IsHidden)
}

func TestAnnotateReservationsAgesOutCancelled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recent := reservationAt(model.ReservationStatusCancelled, "2026-02-28", "18:00", now.Add(-24*time.Hour))
	stale := reservationAt(model.ReservationStatusCancelled, "2026-02-20", "18:00", now.Add(-5*24*time.Hour))
	ancient := reservationAt(model.ReservationStatusCancelled, "2025-01-01", "18:00", now.Add(-400*24*time.Hour))

	out := AnnotateReservations([]model.Reservation{recent, stale, ancient}, now)

	assert.Len(t, out, 2)
	assert.Equal(t, model.ReservationStatusPast, out[0].Status)
	assert.False(t, out[0].IsHidden)
	assert.True(t, out[1].IsHidden)
}

func TestAnnotateOrdersEmptySlice(t *testing.T) {
	assert.Empty(t, AnnotateOrders(nil, time.Now()))
}

func TestAnnotateOrdersLeavesInputIntact(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []model.Order{
		orderAt(model.OrderStatusPast, now.Add(-400*24*time.Hour)),
		orderAt(model.OrderStatusPast, now.Add(-4*24*time.Hour)),
		orderAt(model.OrderStatusPending, now.Add(-time.Hour)),
	}

	out := AnnotateOrders(in, now)

	assert.Len(t, out, 2)
	assert.Equal(t, model.OrderStatusPast, in[0].Status)
	assert.False(t, in[1].IsHidden)
	assert.Equal(t, model.OrderStatusPending, in[2].Status)
}

func TestAnnotateOrdersMatchesPastCaseInsensitively(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	shouting := orderAt(model.OrderStatus("Past"), now.Add(-4*24*time.Hour))

	out := AnnotateOrders([]model.Order{shouting}, now)

	assert.Len(t, out, 1)
	assert.True(t, out[0].IsHidden)
}
