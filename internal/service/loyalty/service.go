package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
	apperrors "github.com/driano7/Xoco-POS-sub003/pkg/errors"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
	"github.com/driano7/Xoco-POS-sub003/pkg/validator"
)

type Service struct {
	repo   repository.LoyaltyRepository
	valid  *validator.Validator
	logger *logger.Logger
}

func NewService(repo repository.LoyaltyRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, valid: validator.New(), logger: log}
}

func (s *Service) CreateAccount(ctx context.Context, req *model.CreateLoyaltyAccountRequest) (*model.LoyaltyAccount, error) {
	if err := s.valid.Validate(req); err != nil {
		return nil, apperrors.BadRequest("invalid loyalty account", err)
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid branch id", err)
	}

	if existing, err := s.repo.GetByPhone(ctx, branchID, req.CustomerPhone); err == nil {
		return existing, apperrors.Conflict(fmt.Sprintf("account already exists for phone %s", req.CustomerPhone), nil)
	}

	now := time.Now()
	account := &model.LoyaltyAccount{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:      branchID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create loyalty account: %w", err)
	}
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*model.LoyaltyAccount, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) FindByPhone(ctx context.Context, branchID uuid.UUID, phone string) (*model.LoyaltyAccount, error) {
	return s.repo.GetByPhone(ctx, branchID, phone)
}

func (s *Service) AddPoints(ctx context.Context, id uuid.UUID, req *model.AddLoyaltyPointsRequest) (*model.LoyaltyAccount, error) {
	account, err := s.repo.AddPoints(ctx, id, req.Points, time.Now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("loyalty points added", "account_id", id.String(), "points", req.Points)
	return account, nil
}
