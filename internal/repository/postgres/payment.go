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

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(base BaseRepository) repository.PaymentRepository {
	return &paymentRepository{base}
}

func (r *paymentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	query := `SELECT * FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("payment %s not found", id)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListForDay(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*model.Payment, error) {
	var payments []*model.Payment
	query := `
		SELECT * FROM payments
		WHERE branch_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &payments, query, branchID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
