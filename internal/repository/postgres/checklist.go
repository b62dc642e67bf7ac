package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
)

type checklistRepository struct {
	BaseRepository
}

func NewChecklistRepository(base BaseRepository) repository.ChecklistRepository {
	return &checklistRepository{base}
}

func (r *checklistRepository) Get(ctx context.Context, id uuid.UUID) (*model.ComplianceChecklist, error) {
	var checklist model.ComplianceChecklist
	query := `SELECT * FROM compliance_checklists WHERE id = $1`
	if err := r.db.GetContext(ctx, &checklist, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("checklist %s not found", id)
		}
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	return &checklist, nil
}

func (r *checklistRepository) List(ctx context.Context, branchID uuid.UUID, kind model.ChecklistKind, limit int) ([]*model.ComplianceChecklist, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT * FROM compliance_checklists
		WHERE branch_id = $1
	`
	args := []interface{}{branchID}
	if kind != "" {
		args = append(args, kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY completed_at DESC LIMIT $%d", len(args))

	var checklists []*model.ComplianceChecklist
	if err := r.db.SelectContext(ctx, &checklists, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}
	return checklists, nil
}
