package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusPast      ReservationStatus = "past"
)

// Reservation keeps the scheduled date and time as wall-clock strings
// ("2006-01-02" and "15:04" or "15:04:05") exactly as entered at the till.
// They are interpreted in the branch's local timezone, never UTC.
type Reservation struct {
	Base
	BranchID        uuid.UUID         `db:"branch_id" json:"branch_id"`
	CustomerName    string            `db:"customer_name" json:"customer_name"`
	CustomerPhone   string            `db:"customer_phone" json:"customer_phone,omitempty"`
	CustomerEmail   string            `db:"customer_email" json:"customer_email,omitempty"`
	PartySize       int               `db:"party_size" json:"party_size"`
	ReservationDate string            `db:"reservation_date" json:"reservation_date"`
	ReservationTime string            `db:"reservation_time" json:"reservation_time"`
	Status          ReservationStatus `db:"status" json:"status"`
	Notes           string            `db:"notes" json:"notes,omitempty"`

	// IsHidden is derived on read by the status engine, never persisted.
	IsHidden bool `db:"-" json:"is_hidden"`
}

type CreateReservationRequest struct {
	BranchID        string `json:"branch_id" binding:"required,uuid"`
	CustomerName    string `json:"customer_name" binding:"required,max=120"`
	CustomerPhone   string `json:"customer_phone" binding:"max=32"`
	CustomerEmail   string `json:"customer_email" binding:"omitempty,email"`
	PartySize       int    `json:"party_size" binding:"required,min=1,max=40"`
	ReservationDate string `json:"reservation_date" binding:"required,datetime=2006-01-02"`
	ReservationTime string `json:"reservation_time" binding:"required"`
	Notes           string `json:"notes" binding:"max=500"`
}

type UpdateReservationRequest struct {
	Status          *ReservationStatus `json:"status" binding:"omitempty,oneof=pending completed cancelled"`
	PartySize       *int               `json:"party_size" binding:"omitempty,min=1,max=40"`
	ReservationDate *string            `json:"reservation_date" binding:"omitempty,datetime=2006-01-02"`
	ReservationTime *string            `json:"reservation_time"`
	Notes           *string            `json:"notes" binding:"omitempty,max=500"`
}

type ReservationFilters struct {
	BranchID      uuid.UUID
	Status        ReservationStatus
	StartDate     time.Time
	EndDate       time.Time
	IncludeHidden bool
}
