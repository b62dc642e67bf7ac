package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
	syncpkg "github.com/driano7/Xoco-POS-sub003/internal/sync"
	"github.com/driano7/Xoco-POS-sub003/pkg/cache"
	apperrors "github.com/driano7/Xoco-POS-sub003/pkg/errors"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
)

type Service struct {
	repo   repository.PaymentRepository
	writer *syncpkg.Writer
	cache  *cache.Cache
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo repository.PaymentRepository, writer *syncpkg.Writer, c *cache.Cache, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		writer: writer,
		cache:  c,
		logger: log,
		now:    time.Now,
	}
}

func (s *Service) RecordPayment(ctx context.Context, req *model.RecordPaymentRequest) (*model.Payment, *syncpkg.Result, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, nil, apperrors.BadRequest("invalid branch id", err)
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, nil, apperrors.BadRequest("invalid order id", err)
	}

	now := s.now()
	payment := &model.Payment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:    branchID,
		OrderID:     orderID,
		Method:      model.PaymentMethod(req.Method),
		AmountCents: req.AmountCents,
		TipCents:    req.TipCents,
		Reference:   req.Reference,
	}

	ops := []model.SyncOp{{
		Kind:  model.SyncOpInsert,
		Table: "payments",
		Rows: []map[string]interface{}{{
			"id":           payment.ID.String(),
			"branch_id":    payment.BranchID.String(),
			"order_id":     payment.OrderID.String(),
			"method":       string(payment.Method),
			"amount_cents": payment.AmountCents,
			"tip_cents":    payment.TipCents,
			"reference":    payment.Reference,
			"created_at":   payment.CreatedAt,
			"updated_at":   payment.UpdatedAt,
		}},
	}}

	result, err := s.writer.Apply(ctx, "payments:insert", ops, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	// New takings invalidate the day's cached summary.
	if s.cache != nil {
		day := now.Format("2006-01-02")
		if err := s.cache.Invalidate(ctx, summaryKey(branchID, day)); err != nil {
			s.logger.Warn("failed to invalidate summary cache", "branch_id", branchID.String(), "date", day)
		}
	}
	return payment, result, nil
}

// DailySummary aggregates one branch's takings for a business day,
// cached for the dashboard's refresh cadence.
func (s *Service) DailySummary(ctx context.Context, branchID uuid.UUID, day time.Time) (*model.DailySummary, error) {
	key := summaryKey(branchID, day.Format("2006-01-02"))
	if s.cache != nil {
		var cached model.DailySummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)
	payments, err := s.repo.ListForDay(ctx, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	summary := &model.DailySummary{
		BranchID:    branchID,
		Date:        from.Format("2006-01-02"),
		ByMethod:    make(map[model.PaymentMethod]int64),
		GeneratedAt: s.now(),
	}
	for _, p := range payments {
		summary.TotalCents += p.AmountCents
		summary.TipCents += p.TipCents
		summary.PaymentCount++
		summary.ByMethod[p.Method] += p.AmountCents
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary); err != nil {
			s.logger.Warn("failed to cache daily summary", "key", key)
		}
	}
	return summary, nil
}

func summaryKey(branchID uuid.UUID, day string) string {
	return fmt.Sprintf("payments:summary:%s:%s", branchID, day)
}
