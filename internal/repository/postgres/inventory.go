package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
)

type inventoryRepository struct {
	BaseRepository
}

func NewInventoryRepository(base BaseRepository) repository.InventoryRepository {
	return &inventoryRepository{base}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (
			id, branch_id, name, sku, unit, quantity, reorder_level,
			cost_cents, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.BranchID, item.Name, item.SKU, item.Unit,
		item.Quantity, item.ReorderLevel, item.CostCents,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := `SELECT * FROM inventory_items WHERE id = $1`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("inventory item %s not found", id)
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context, branchID uuid.UUID) ([]*model.InventoryItem, error) {
	var items []*model.InventoryItem
	query := `SELECT * FROM inventory_items WHERE branch_id = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &items, query, branchID); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

func (r *inventoryRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta float64) (*model.InventoryItem, error) {
	var item model.InventoryItem
	query := `
		UPDATE inventory_items
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2 AND quantity + $1 >= 0
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &item, query, delta, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("stock adjustment would leave item %s negative", id)
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return &item, nil
}
