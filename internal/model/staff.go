package model

import (
	"time"

	"github.com/google/uuid"
)

type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "admin"
	StaffRoleManager StaffRole = "manager"
	StaffRoleBarista StaffRole = "barista"
)

type Staff struct {
	Base
	BranchID     uuid.UUID  `db:"branch_id" json:"branch_id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         StaffRole  `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

type CreateStaffRequest struct {
	BranchID string `json:"branch_id" binding:"required,uuid"`
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin manager barista"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenClaims struct {
	StaffID  uuid.UUID `json:"staff_id"`
	BranchID uuid.UUID `json:"branch_id"`
	Email    string    `json:"email"`
	Role     StaffRole `json:"role"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Staff        *Staff `json:"staff"`
}
