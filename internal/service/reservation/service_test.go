package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
)

type fakeRepo struct {
	err   error
	calls int
}

func (f *fakeRepo) Get(_ context.Context, _ uuid.UUID) (*model.Reservation, error) {
	f.calls++
	return nil, f.err
}

func (f *fakeRepo) List(_ context.Context, _ *model.ReservationFilters) ([]model.Reservation, error) {
	f.calls++
	return nil, f.err
}

type fakeMirror struct {
	rows []map[string]interface{}
}

func (f *fakeMirror) List(_ context.Context, table string) ([]map[string]interface{}, error) {
	if table != "reservations" {
		return nil, nil
	}
	return f.rows, nil
}

func mirrorReservationRow(id, branchID uuid.UUID, date, clock string, at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":               id.String(),
		"branch_id":        branchID.String(),
		"customer_name":    "Ana",
		"customer_phone":   "555-0101",
		"customer_email":   "",
		"party_size":       float64(4),
		"reservation_date": date,
		"reservation_time": clock,
		"status":           "pending",
		"notes":            "",
		"created_at":       at.Format(time.RFC3339Nano),
		"updated_at":       at.Format(time.RFC3339Nano),
	}
}

func TestListReservationsFallsBackToMirrorOnNetworkError(t *testing.T) {
	branchID := uuid.New()
	resID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakeRepo{err: errors.New("dial tcp 10.0.0.1:5432: connection refused")}
	mirror := &fakeMirror{rows: []map[string]interface{}{
		mirrorReservationRow(resID, branchID, "2026-03-01", "19:00", now.Add(-time.Hour)),
	}}
	health := syncpkg.NewHealth(syncpkg.WithClock(func() time.Time { return now }))

	svc := NewService(repo, nil, nil, nil, mirror, health, nil).WithClock(func() time.Time { return now })

	out, err := svc.ListReservations(context.Background(), &model.ReservationFilters{BranchID: branchID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, resID, out[0].ID)
	assert.Equal(t, 4, out[0].PartySize)
	assert.Equal(t, model.ReservationStatusPending, out[0].Status)
	assert.False(t, health.Healthy())
}

func TestGetReservationReadsMirrorWhileBreakerOpen(t *testing.T) {
	branchID := uuid.New()
	resID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakeRepo{}
	mirror := &fakeMirror{rows: []map[string]interface{}{
		mirrorReservationRow(resID, branchID, "2026-03-01", "19:00", now.Add(-time.Hour)),
	}}
	health := syncpkg.NewHealth(syncpkg.WithClock(func() time.Time { return now }))
	health.MarkFailure(errors.New("connection refused"))

	svc := NewService(repo, nil, nil, nil, mirror, health, nil).WithClock(func() time.Time { return now })

	res, err := svc.GetReservation(context.Background(), resID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", res.CustomerName)
	assert.Equal(t, 0, repo.calls)
}
