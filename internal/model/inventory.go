package model

import (
	"github.com/google/uuid"
)

type InventoryItem struct {
	Base
	BranchID     uuid.UUID `db:"branch_id" json:"branch_id"`
	Name         string    `db:"name" json:"name"`
	SKU          string    `db:"sku" json:"sku"`
	Unit         string    `db:"unit" json:"unit"`
	Quantity     float64   `db:"quantity" json:"quantity"`
	ReorderLevel float64   `db:"reorder_level" json:"reorder_level"`
	CostCents    int64     `db:"cost_cents" json:"cost_cents"`
}

// LowStock reports whether the item is at or below its reorder level.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

type CreateInventoryItemRequest struct {
	BranchID     string  `json:"branch_id" binding:"required,uuid"`
	Name         string  `json:"name" binding:"required,max=120"`
	SKU          string  `json:"sku" binding:"required,max=64"`
	Unit         string  `json:"unit" binding:"required,max=16"`
	Quantity     float64 `json:"quantity" binding:"min=0"`
	ReorderLevel float64 `json:"reorder_level" binding:"min=0"`
	CostCents    int64   `json:"cost_cents" binding:"min=0"`
}

type AdjustStockRequest struct {
	Delta  float64 `json:"delta" binding:"required"`
	Reason string  `json:"reason" binding:"required,max=250"`
}
