package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
)

type reservationRepository struct {
	BaseRepository
}

func NewReservationRepository(base BaseRepository) repository.ReservationRepository {
	return &reservationRepository{base}
}

func (r *reservationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var res model.Reservation
	query := `
		SELECT id, branch_id, customer_name, customer_phone, customer_email, party_size,
		       reservation_date, reservation_time, status, notes,
		       created_at, updated_at
		FROM reservations
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &res, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reservation %s not found", id)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &res, nil
}

func (r *reservationRepository) List(ctx context.Context, filters *model.ReservationFilters) ([]model.Reservation, error) {
	query := `
		SELECT id, branch_id, customer_name, customer_phone, customer_email, party_size,
		       reservation_date, reservation_time, status, notes,
		       created_at, updated_at
		FROM reservations
		WHERE branch_id = $1
	`
	args := []interface{}{filters.BranchID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filters.StartDate.IsZero() {
		args = append(args, filters.StartDate.Format("2006-01-02"))
		query += fmt.Sprintf(" AND reservation_date >= $%d", len(args))
	}
	if !filters.EndDate.IsZero() {
		args = append(args, filters.EndDate.Format("2006-01-02"))
		query += fmt.Sprintf(" AND reservation_date <= $%d", len(args))
	}
	query += " ORDER BY reservation_date, reservation_time"

	var reservations []model.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}
