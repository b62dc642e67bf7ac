package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
)

type orderRepository struct {
	BaseRepository
}

func NewOrderRepository(base BaseRepository) repository.OrderRepository {
	return &orderRepository{base}
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	query := `
		SELECT id, branch_id, staff_id, ticket_number, customer_name, status,
		       total_cents, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, menu_item, quantity, price_cents, modifiers
		FROM order_items
		WHERE order_id = $1
		ORDER BY menu_item
	`
	if err := r.db.SelectContext(ctx, &order.Items, itemsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filters *model.OrderFilters) ([]model.Order, error) {
	query := `
		SELECT id, branch_id, staff_id, ticket_number, customer_name, status,
		       total_cents, notes, created_at, updated_at
		FROM orders
		WHERE branch_id = $1
	`
	args := []interface{}{filters.BranchID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.StaffID != uuid.Nil {
		args = append(args, filters.StaffID)
		query += fmt.Sprintf(" AND staff_id = $%d", len(args))
	}
	if !filters.StartDate.IsZero() {
		args = append(args, filters.StartDate)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filters.EndDate.IsZero() {
		args = append(args, filters.EndDate)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var orders []model.Order
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) NextTicketNumber(ctx context.Context, branchID uuid.UUID) (int, error) {
	var n int
	query := `
		SELECT COALESCE(MAX(ticket_number), 0) + 1
		FROM orders
		WHERE branch_id = $1 AND created_at::date = CURRENT_DATE
	`
	if err := r.db.GetContext(ctx, &n, query, branchID); err != nil {
		return 0, fmt.Errorf("failed to compute next ticket number: %w", err)
	}
	return n, nil
}
