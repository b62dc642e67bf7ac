package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
	"github.com/driano7/Xoco-POS-sub003/internal/status"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
	apperrors "github.com/driano7/Xoco-POS-sub003/pkg/errors"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
)

// Service owns the order/ticket lifecycle. Writes go through the
// resilient writer so a till keeps taking orders with the hosted
// database down; reads run the status derivation pass, which is the
// only thing that ever ages a pending ticket out.
type Service struct {
	repo   repository.OrderRepository
	writer *syncpkg.Writer
	mirror repository.LocalMirror
	health *syncpkg.Health
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo repository.OrderRepository, writer *syncpkg.Writer, mirror repository.LocalMirror, health *syncpkg.Health, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		writer: writer,
		mirror: mirror,
		health: health,
		logger: log,
		now:    time.Now,
	}
}

// offline reports whether reads should go to the local mirror instead
// of attempting the remote store.
func (s *Service) offline() bool {
	return s.mirror != nil && s.health != nil && !s.health.ShouldPreferRemote()
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateOrder(ctx context.Context, claims *model.TokenClaims, req *model.CreateOrderRequest) (*model.Order, *syncpkg.Result, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, nil, apperrors.BadRequest("invalid branch id", err)
	}

	now := s.now()
	order := &model.Order{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:     branchID,
		StaffID:      claims.StaffID,
		CustomerName: req.CustomerName,
		Status:       model.OrderStatusPending,
		Notes:        req.Notes,
	}

	ticket, err := s.repo.NextTicketNumber(ctx, branchID)
	if err != nil {
		// Offline: fall back to a time-derived ticket number so the
		// till is never blocked on the remote sequence.
		ticket = int(now.Unix() % 100000)
	}
	order.TicketNumber = ticket

	itemRows := make([]map[string]interface{}, 0, len(req.Items))
	var total int64
	for _, item := range req.Items {
		total += item.PriceCents * int64(item.Quantity)
		orderItem := model.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItem:   item.MenuItem,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
			Modifiers:  item.Modifiers,
		}
		order.Items = append(order.Items, orderItem)
		itemRows = append(itemRows, map[string]interface{}{
			"id":          orderItem.ID.String(),
			"order_id":    order.ID.String(),
			"menu_item":   orderItem.MenuItem,
			"quantity":    orderItem.Quantity,
			"price_cents": orderItem.PriceCents,
			"modifiers":   orderItem.Modifiers,
		})
	}
	order.TotalCents = total

	ops := []model.SyncOp{
		{
			Kind:  model.SyncOpInsert,
			Table: "orders",
			Rows:  []map[string]interface{}{orderRow(order)},
		},
		{
			Kind:  model.SyncOpInsert,
			Table: "order_items",
			Rows:  itemRows,
		},
	}

	result, err := s.writer.Apply(ctx, "orders:insert", ops, model.JSONMap{
		"staff_id": claims.StaffID.String(),
		"ticket":   order.TicketNumber,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, result, nil
}

func (s *Service) UpdateOrder(ctx context.Context, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, *syncpkg.Result, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}

	if req.Status != nil {
		if order.Status == model.OrderStatusCancelled && *req.Status != model.OrderStatusCancelled {
			return nil, nil, apperrors.BadRequest("cannot reopen a cancelled order", nil)
		}
		order.Status = *req.Status
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	order.UpdatedAt = s.now()

	ops := []model.SyncOp{{
		Kind:        model.SyncOpUpsert,
		Table:       "orders",
		Rows:        []map[string]interface{}{orderRow(order)},
		ConflictKey: "id",
	}}

	result, err := s.writer.Apply(ctx, "orders:update", ops, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, result, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.offline() {
		return s.getFromMirror(ctx, id)
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		if s.mirror != nil && s.health != nil && s.health.IsTransient(err) {
			s.health.MarkFailure(err)
			return s.getFromMirror(ctx, id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	derived := status.DeriveOrder(*order, s.now())
	derived.Items = order.Items
	return &derived, nil
}

// ListOrders fetches and runs the derivation pass: statuses are
// recomputed from the clock, stale past tickets come back hidden, and
// ancient ones are dropped entirely. While the remote store is down the
// list comes from the local mirror, so the till still sees the tickets
// it wrote during the outage.
func (s *Service) ListOrders(ctx context.Context, filters *model.OrderFilters) ([]model.Order, error) {
	if s.offline() {
		return s.listFromMirror(ctx, filters)
	}
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		if s.mirror != nil && s.health != nil && s.health.IsTransient(err) {
			s.health.MarkFailure(err)
			return s.listFromMirror(ctx, filters)
		}
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return s.present(orders, filters), nil
}

func (s *Service) present(orders []model.Order, filters *model.OrderFilters) []model.Order {
	orders = status.AnnotateOrders(orders, s.now())
	if filters.IncludeHidden {
		return orders
	}
	visible := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if !o.IsHidden {
			visible = append(visible, o)
		}
	}
	return visible
}

func (s *Service) getFromMirror(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	rows, err := s.mirror.List(ctx, "orders")
	if err != nil {
		return nil, fmt.Errorf("failed to read local orders: %w", err)
	}
	for _, row := range rows {
		o, ok := orderFromRow(row)
		if !ok || o.ID != id {
			continue
		}
		if itemRows, err := s.mirror.List(ctx, "order_items"); err == nil {
			for _, ir := range itemRows {
				if item, ok := orderItemFromRow(ir); ok && item.OrderID == id {
					o.Items = append(o.Items, item)
				}
			}
		}
		derived := status.DeriveOrder(o, s.now())
		derived.Items = o.Items
		return &derived, nil
	}
	return nil, fmt.Errorf("order %s not found", id)
}

func (s *Service) listFromMirror(ctx context.Context, filters *model.OrderFilters) ([]model.Order, error) {
	rows, err := s.mirror.List(ctx, "orders")
	if err != nil {
		return nil, fmt.Errorf("failed to read local orders: %w", err)
	}
	var orders []model.Order
	for _, row := range rows {
		o, ok := orderFromRow(row)
		if !ok || o.BranchID != filters.BranchID {
			continue
		}
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		orders = append(orders, o)
	}
	return s.present(orders, filters), nil
}

// orderFromRow is the inverse of orderRow for mirror reads. Mirror
// rows went through a JSON round trip, so numbers come back as float64
// and timestamps as RFC 3339 strings.
func orderFromRow(row map[string]interface{}) (model.Order, bool) {
	id, err := uuid.Parse(rowString(row, "id"))
	if err != nil {
		return model.Order{}, false
	}
	branchID, err := uuid.Parse(rowString(row, "branch_id"))
	if err != nil {
		return model.Order{}, false
	}
	staffID, _ := uuid.Parse(rowString(row, "staff_id"))
	return model.Order{
		Base: model.Base{
			ID:        id,
			CreatedAt: rowTime(row, "created_at"),
			UpdatedAt: rowTime(row, "updated_at"),
		},
		BranchID:     branchID,
		StaffID:      staffID,
		TicketNumber: int(rowInt(row, "ticket_number")),
		CustomerName: rowString(row, "customer_name"),
		Status:       model.OrderStatus(rowString(row, "status")),
		TotalCents:   rowInt(row, "total_cents"),
		Notes:        rowString(row, "notes"),
	}, true
}

func orderItemFromRow(row map[string]interface{}) (model.OrderItem, bool) {
	id, err := uuid.Parse(rowString(row, "id"))
	if err != nil {
		return model.OrderItem{}, false
	}
	orderID, err := uuid.Parse(rowString(row, "order_id"))
	if err != nil {
		return model.OrderItem{}, false
	}
	return model.OrderItem{
		ID:         id,
		OrderID:    orderID,
		MenuItem:   rowString(row, "menu_item"),
		Quantity:   int(rowInt(row, "quantity")),
		PriceCents: rowInt(row, "price_cents"),
		Modifiers:  rowString(row, "modifiers"),
	}, true
}

func rowString(row map[string]interface{}, key string) string {
	s, _ := row[key].(string)
	return s
}

func rowInt(row map[string]interface{}, key string) int64 {
	switch v := row[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func rowTime(row map[string]interface{}, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func orderRow(o *model.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":            o.ID.String(),
		"branch_id":     o.BranchID.String(),
		"staff_id":      o.StaffID.String(),
		"ticket_number": o.TicketNumber,
		"customer_name": o.CustomerName,
		"status":        string(o.Status),
		"total_cents":   o.TotalCents,
		"notes":         o.Notes,
		"created_at":    o.CreatedAt,
		"updated_at":    o.UpdatedAt,
	}
}
