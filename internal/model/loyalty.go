package model

import (
	"time"

	"github.com/google/uuid"
)

type LoyaltyAccount struct {
	Base
	BranchID      uuid.UUID  `db:"branch_id" json:"branch_id"`
	CustomerName  string     `db:"customer_name" json:"customer_name"`
	CustomerPhone string     `db:"customer_phone" json:"customer_phone"`
	Points        int        `db:"points" json:"points"`
	Visits        int        `db:"visits" json:"visits"`
	LastVisitAt   *time.Time `db:"last_visit_at" json:"last_visit_at,omitempty"`
}

type CreateLoyaltyAccountRequest struct {
	BranchID      string `json:"branch_id" binding:"required,uuid"`
	CustomerName  string `json:"customer_name" binding:"required,max=120"`
	CustomerPhone string `json:"customer_phone" binding:"required,max=32"`
}

type AddLoyaltyPointsRequest struct {
	Points int `json:"points" binding:"required,min=1,max=1000"`
}
