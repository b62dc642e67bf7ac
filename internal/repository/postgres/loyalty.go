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

type loyaltyRepository struct {
	BaseRepository
}

func NewLoyaltyRepository(base BaseRepository) repository.LoyaltyRepository {
	return &loyaltyRepository{base}
}

func (r *loyaltyRepository) Create(ctx context.Context, account *model.LoyaltyAccount) error {
	query := `
		INSERT INTO loyalty_accounts (
			id, branch_id, customer_name, customer_phone, points, visits,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.BranchID, account.CustomerName,
		account.CustomerPhone, account.Points, account.Visits,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loyalty account: %w", err)
	}
	return nil
}

func (r *loyaltyRepository) Get(ctx context.Context, id uuid.UUID) (*model.LoyaltyAccount, error) {
	var account model.LoyaltyAccount
	query := `SELECT * FROM loyalty_accounts WHERE id = $1`
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("loyalty account %s not found", id)
		}
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}
	return &account, nil
}

func (r *loyaltyRepository) GetByPhone(ctx context.Context, branchID uuid.UUID, phone string) (*model.LoyaltyAccount, error) {
	var account model.LoyaltyAccount
	query := `SELECT * FROM loyalty_accounts WHERE branch_id = $1 AND customer_phone = $2`
	if err := r.db.GetContext(ctx, &account, query, branchID, phone); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("loyalty account not found")
		}
		return nil, fmt.Errorf("failed to get loyalty account by phone: %w", err)
	}
	return &account, nil
}

func (r *loyaltyRepository) AddPoints(ctx context.Context, id uuid.UUID, points int, visitAt time.Time) (*model.LoyaltyAccount, error) {
	var account model.LoyaltyAccount
	query := `
		UPDATE loyalty_accounts
		SET points = points + $1, visits = visits + 1,
		    last_visit_at = $2, updated_at = $2
		WHERE id = $3
		RETURNING *
	`
	if err := r.db.GetContext(ctx, &account, query, points, visitAt, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("loyalty account %s not found", id)
		}
		return nil, fmt.Errorf("failed to add loyalty points: %w", err)
	}
	return &account, nil
}
