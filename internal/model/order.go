package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusPast      OrderStatus = "past"
)

type Order struct {
	Base
	BranchID     uuid.UUID   `db:"branch_id" json:"branch_id"`
	StaffID      uuid.UUID   `db:"staff_id" json:"staff_id"`
	TicketNumber int         `db:"ticket_number" json:"ticket_number"`
	CustomerName string      `db:"customer_name" json:"customer_name,omitempty"`
	Status       OrderStatus `db:"status" json:"status"`
	TotalCents   int64       `db:"total_cents" json:"total_cents"`
	Notes        string      `db:"notes" json:"notes,omitempty"`
	Items        []OrderItem `db:"-" json:"items,omitempty"`

	// IsHidden is derived on read by the status engine, never persisted.
	IsHidden bool `db:"-" json:"is_hidden"`
}

type OrderItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OrderID    uuid.UUID `db:"order_id" json:"order_id"`
	MenuItem   string    `db:"menu_item" json:"menu_item"`
	Quantity   int       `db:"quantity" json:"quantity"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	Modifiers  string    `db:"modifiers" json:"modifiers,omitempty"`
}

type CreateOrderRequest struct {
	BranchID     string                   `json:"branch_id" binding:"required,uuid"`
	CustomerName string                   `json:"customer_name" binding:"max=120"`
	Notes        string                   `json:"notes" binding:"max=500"`
	Items        []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	MenuItem   string `json:"menu_item" binding:"required,max=120"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	PriceCents int64  `json:"price_cents" binding:"required,min=0"`
	Modifiers  string `json:"modifiers" binding:"max=250"`
}

type UpdateOrderRequest struct {
	Status *OrderStatus `json:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Notes  *string      `json:"notes" binding:"omitempty,max=500"`
}

type OrderFilters struct {
	BranchID      uuid.UUID
	StaffID       uuid.UUID
	Status        OrderStatus
	StartDate     time.Time
	EndDate       time.Time
	IncludeHidden bool
}
