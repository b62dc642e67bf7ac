package order

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
	orders []model.Order
	err    error
	calls  int
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Order, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			return &f.orders[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRepo) List(_ context.Context, _ *model.OrderFilters) ([]model.Order, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func (f *fakeRepo) NextTicketNumber(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, errors.New("sequence unavailable")
}

type fakeMirror struct {
	tables map[string][]map[string]interface{}
}

func (f *fakeMirror) List(_ context.Context, table string) ([]map[string]interface{}, error) {
	return f.tables[table], nil
}

// mirrorOrderRow builds a row the way it comes back from the mirror
// store: numbers as float64, timestamps as RFC 3339 strings.
func mirrorOrderRow(id, branchID uuid.UUID, status string, at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":            id.String(),
		"branch_id":     branchID.String(),
		"staff_id":      uuid.New().String(),
		"ticket_number": float64(17),
		"customer_name": "Walk-in",
		"status":        status,
		"total_cents":   float64(5400),
		"notes":         "",
		"created_at":    at.Format(time.RFC3339Nano),
		"updated_at":    at.Format(time.RFC3339Nano),
	}
}

func TestListOrdersFallsBackToMirrorOnNetworkError(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakeRepo{err: errors.New("dial tcp 10.0.0.1:5432: connection refused")}
	mirror := &fakeMirror{tables: map[string][]map[string]interface{}{
		"orders": {mirrorOrderRow(orderID, branchID, "completed", now.Add(-time.Hour))},
	}}
	health := syncpkg.NewHealth(syncpkg.WithClock(func() time.Time { return now }))

	svc := NewService(repo, nil, mirror, health, nil).WithClock(func() time.Time { return now })

	orders, err := svc.ListOrders(context.Background(), &model.OrderFilters{BranchID: branchID})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)
	assert.Equal(t, 17, orders[0].TicketNumber)
	assert.Equal(t, int64(5400), orders[0].TotalCents)
	assert.False(t, health.Healthy())
}

func TestListOrdersSkipsRemoteWhileBreakerOpen(t *testing.T) {
	branchID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo := &fakeRepo{err: errors.New("pq: syntax error")}
	mirror := &fakeMirror{tables: map[string][]map[string]interface{}{
		"orders": {mirrorOrderRow(uuid.New(), branchID, "completed", now.Add(-time.Hour))},
	}}
	health := syncpkg.NewHealth(syncpkg.WithClock(func() time.Time { return now }))
	health.MarkFailure(errors.New("connection refused"))

	svc := NewService(repo, nil, mirror, health, nil).WithClock(func() time.Time { return now })

	orders, err := svc.ListOrders(context.Background(), &model.OrderFilters{BranchID: branchID})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 0, repo.calls)
}

func TestListOrdersMirrorFiltersBranchAndStatus(t *testing.T) {
	branchID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mirror := &fakeMirror{tables: map[string][]map[string]interface{}{
		"orders": {
			mirrorOrderRow(uuid.New(), branchID, "completed", now.Add(-time.Hour)),
			mirrorOrderRow(uuid.New(), branchID, "cancelled", now.Add(-time.Hour)),
			mirrorOrderRow(uuid.New(), uuid.New(), "completed", now.Add(-time.Hour)),
		},
	}}
	health := syncpkg.NewHealth(syncpkg.WithClock(func() time.Time { return now }))
	health.MarkFailure(errors.New("connection refused"))

	svc := NewService(&fakeRepo{}, nil, mirror, health, nil).WithClock(func() time.Time { return now })

	orders, err := svc.ListOrders(context.Background(), &model.OrderFilters{
		BranchID: branchID,
		Status:   model.OrderStatusCompleted,
	})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestGetOrderFromMirrorIncludesItems(t *testing.T) {
	branchID := uuid.New()
	orderID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mirror := &fakeMirror{tables: map[string][]map[string]interface{}{
		"orders": {mirrorOrderRow(orderID, branchID, "completed", now.Add(-time.Hour))},
		"order_items": {
			{
				"id":          uuid.New().String(),
				"order_id":    orderID.String(),
				"menu_item":   "cortado",
				"quantity":    float64(2),
				"price_cents": float64(2700),
				"modifiers":   "oat milk",
			},
			{
				"id":          uuid.New().String(),
				"order_id":    uuid.New().String(),
				"menu_item":   "concha",
				"quantity":    float64(1),
				"price_cents": float64(1800),
				"modifiers":   "",
			},
		},
	}}
	health := syncpkg.NewHealth(syncpkg.WithClock(func() time.Time { return now }))
	health.MarkFailure(errors.New("connection refused"))

	svc := NewService(&fakeRepo{}, nil, mirror, health, nil).WithClock(func() time.Time { return now })

	order, err := svc.GetOrder(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "cortado", order.Items[0].MenuItem)
	assert.Equal(t, int64(2700), order.Items[0].PriceCents)
}

func TestGetOrderRemoteErrorSurfacesWhenLogical(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{err: errors.New("pq: relation does not exist")}
	health := syncpkg.NewHealth(syncpkg.WithClock(func() time.Time { return now }))

	svc := NewService(repo, nil, &fakeMirror{}, health, nil).WithClock(func() time.Time { return now })

	_, err := svc.GetOrder(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, health.Healthy())
}
