package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

type Payment struct {
	Base
	BranchID    uuid.UUID     `db:"branch_id" json:"branch_id"`
	OrderID     uuid.UUID     `db:"order_id" json:"order_id"`
	Method      PaymentMethod `db:"method" json:"method"`
	AmountCents int64         `db:"amount_cents" json:"amount_cents"`
	TipCents    int64         `db:"tip_cents" json:"tip_cents"`
	Reference   string        `db:"reference" json:"reference,omitempty"`
}

type RecordPaymentRequest struct {
	BranchID    string `json:"branch_id" binding:"required,uuid"`
	OrderID     string `json:"order_id" binding:"required,uuid"`
	Method      string `json:"method" binding:"required,oneof=cash card transfer"`
	AmountCents int64  `json:"amount_cents" binding:"required,min=1"`
	TipCents    int64  `json:"tip_cents" binding:"min=0"`
	Reference   string `json:"reference" binding:"max=120"`
}

// DailySummary aggregates takings for a branch on a single business day.
type DailySummary struct {
	BranchID      uuid.UUID `json:"branch_id"`
	Date          string    `json:"date"`
	TotalCents    int64     `json:"total_cents"`
	TipCents      int64     `json:"tip_cents"`
	PaymentCount  int       `json:"payment_count"`
	ByMethod      map[PaymentMethod]int64 `json:"by_method"`
	GeneratedAt   time.Time `json:"generated_at"`
}
