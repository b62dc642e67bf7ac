package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/email"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
	apperrors "github.com/driano7/Xoco-POS-sub003/pkg/errors"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
)

// Service handles hygiene and pest control checklist submissions.
// Submissions are till writes and go through the resilient writer; a
// checklist filled in during an outage must not be lost.
type Service struct {
	repo    repository.ChecklistRepository
	writer  *syncpkg.Writer
	emailer email.Service
	logger  *logger.Logger
	now     func() time.Time
}

func NewService(repo repository.ChecklistRepository, writer *syncpkg.Writer, emailer email.Service, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		writer:  writer,
		emailer: emailer,
		logger:  log,
		now:     time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, claims *model.TokenClaims, req *model.SubmitChecklistRequest) (*model.ComplianceChecklist, *syncpkg.Result, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, nil, apperrors.BadRequest("invalid branch id", err)
	}

	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode checklist items: %w", err)
	}

	allPassed := true
	var failed []string
	for _, item := range req.Items {
		if !item.OK {
			allPassed = false
			failed = append(failed, item.Label)
		}
	}

	now := s.now()
	checklist := &model.ComplianceChecklist{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:    branchID,
		Kind:        model.ChecklistKind(req.Kind),
		Items:       items,
		CompletedBy: claims.StaffID,
		AllPassed:   allPassed,
		CompletedAt: now,
	}

	ops := []model.SyncOp{{
		Kind:  model.SyncOpInsert,
		Table: "compliance_checklists",
		Rows: []map[string]interface{}{{
			"id":           checklist.ID.String(),
			"branch_id":    checklist.BranchID.String(),
			"kind":         string(checklist.Kind),
			"items":        string(items),
			"completed_by": checklist.CompletedBy.String(),
			"all_passed":   checklist.AllPassed,
			"completed_at": checklist.CompletedAt,
			"created_at":   checklist.CreatedAt,
			"updated_at":   checklist.UpdatedAt,
		}},
	}}

	result, err := s.writer.Apply(ctx, "checklists:insert", ops, model.JSONMap{"kind": req.Kind})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to submit checklist: %w", err)
	}

	if !allPassed && s.emailer != nil {
		if err := s.emailer.SendChecklistAlert(ctx, branchID.String(), req.Kind, failed); err != nil {
			s.logger.Warn("failed to send checklist alert", "branch_id", branchID.String(), "kind", req.Kind)
		}
	}
	return checklist, result, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ComplianceChecklist, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, branchID uuid.UUID, kind model.ChecklistKind, limit int) ([]*model.ComplianceChecklist, error) {
	return s.repo.List(ctx, branchID, kind, limit)
}
