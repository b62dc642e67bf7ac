// Package status computes point-in-time lifecycle status for orders and
// reservations. There is no background scheduler: the read path calls
// these pure functions with the current clock, so a pending ticket
// becomes past the instant a client asks. Applying a pass twice at the
// same clock yields the same result.
package status

import (
	"strings"
	"time"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

const (
	// Production cutoff: a still-pending order past this time of day
	// (local) is assumed completed by the kitchen.
	cutoffHour, cutoffMinute = 23, 39

	// HideThreshold soft-hides old past/cancelled records from default
	// views; PurgeThreshold drops them from returned collections
	// entirely.
	HideThreshold  = 3 * 24 * time.Hour
	PurgeThreshold = 365 * 24 * time.Hour
)

// DeriveOrder rewrites a pending order's status based on the clock.
// The production-cutoff check runs before the end-of-day check, and
// since 23:39 precedes 23:59 on the same date, a pending order past
// cutoff always becomes completed; the past branch only fires with a
// malformed record date. Preserved as-is pending product clarification.
func DeriveOrder(o model.Order, now time.Time) model.Order {
	if !strings.EqualFold(string(o.Status), string(model.OrderStatusPending)) {
		return o
	}

	day := recordDate(o.UpdatedAt, o.CreatedAt, now.Location())
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), cutoffHour, cutoffMinute, 0, 0, now.Location())
	endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999_000_000, now.Location())

	switch {
	case now.After(cutoff):
		o.Status = model.OrderStatusCompleted
	case now.After(endOfDay):
		o.Status = model.OrderStatusPast
	}
	return o
}

// DeriveReservation rewrites a reservation's status based on the clock
// and its scheduled wall-clock date. Completed is sticky; cancelled is
// archived as past; a pending reservation expires at end of day of its
// scheduled date.
func DeriveReservation(r model.Reservation, now time.Time) model.Reservation {
	switch {
	case strings.EqualFold(string(r.Status), string(model.ReservationStatusCompleted)):
		return r
	case strings.EqualFold(string(r.Status), string(model.ReservationStatusCancelled)):
		r.Status = model.ReservationStatusPast
		return r
	}

	scheduled, ok := parseScheduled(r.ReservationDate, r.ReservationTime, now.Location())
	if !ok {
		scheduled = recordDate(r.UpdatedAt, r.CreatedAt, now.Location())
	}
	endOfDay := time.Date(scheduled.Year(), scheduled.Month(), scheduled.Day(), 23, 59, 59, 999_000_000, now.Location())
	if now.After(endOfDay) {
		r.Status = model.ReservationStatusPast
	}
	return r
}

// AnnotateOrders derives statuses, marks stale past orders hidden, and
// purges very old ones. The input slice is left untouched; callers may
// hold cached copies of it.
func AnnotateOrders(orders []model.Order, now time.Time) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		o = DeriveOrder(o, now)
		if strings.EqualFold(string(o.Status), string(model.OrderStatusPast)) {
			age := now.Sub(lastTouched(o.UpdatedAt, o.CreatedAt))
			if age > PurgeThreshold {
				continue
			}
			o.IsHidden = age > HideThreshold
		}
		out = append(out, o)
	}
	return out
}

// AnnotateReservations is the reservation counterpart: past and
// cancelled records age out of view.
func AnnotateReservations(reservations []model.Reservation, now time.Time) []model.Reservation {
	out := make([]model.Reservation, 0, len(reservations))
	for _, r := range reservations {
		derived := DeriveReservation(r, now)
		archived := strings.EqualFold(string(derived.Status), string(model.ReservationStatusPast)) ||
			strings.EqualFold(string(r.Status), string(model.ReservationStatusCancelled))
		if archived {
			age := now.Sub(lastTouched(derived.UpdatedAt, derived.CreatedAt))
			if age > PurgeThreshold {
				continue
			}
			derived.IsHidden = age > HideThreshold
		}
		out = append(out, derived)
	}
	return out
}

// parseScheduled interprets "2006-01-02" + "15:04[:05]" as local wall
// clock. Parsing these as UTC would shift every cutoff by the server's
// timezone offset.
func parseScheduled(date, clock string, loc *time.Location) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	if clock == "" {
		clock = "00:00"
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, date+" "+clock, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func recordDate(updated, created time.Time, loc *time.Location) time.Time {
	return lastTouched(updated, created).In(loc)
}

func lastTouched(updated, created time.Time) time.Time {
	if !updated.IsZero() {
		return updated
	}
	return created
}
