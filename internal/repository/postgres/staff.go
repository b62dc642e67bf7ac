package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
)

type staffRepository struct {
	BaseRepository
}

func NewStaffRepository(base BaseRepository) repository.StaffRepository {
	return &staffRepository{base}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, branch_id, name, email, password_hash, role, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		staff.ID, staff.BranchID, staff.Name, staff.Email,
		staff.PasswordHash, staff.Role, staff.Active,
		staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	query := `SELECT * FROM staff WHERE id = $1`
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("staff member %s not found", id)
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	var staff model.Staff
	query := `SELECT * FROM staff WHERE email = $1 AND active = true`
	if err := r.db.GetContext(ctx, &staff, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("staff member not found")
		}
		return nil, fmt.Errorf("failed to get staff member by email: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error) {
	var staff []*model.Staff
	query := `SELECT * FROM staff WHERE branch_id = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &staff, query, branchID); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	query := `
		UPDATE staff
		SET name = $1, email = $2, role = $3, active = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		staff.Name, staff.Email, staff.Role, staff.Active,
		staff.UpdatedAt, staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff member: %w", err)
	}
	return nil
}

func (r *staffRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE staff SET last_login_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}
