package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/model"
	"github.com/driano7/Xoco-POS-sub003/internal/repository"
	"github.com/driano7/Xoco-POS-sub003/pkg/auth"
	apperrors "github.com/driano7/Xoco-POS-sub003/pkg/errors"
	"github.com/driano7/Xoco-POS-sub003/pkg/logger"
	"github.com/driano7/Xoco-POS-sub003/pkg/security"
)

type Service struct {
	repo   repository.StaffRepository
	jwt    auth.JWTService
	hasher security.PasswordHasher
	logger *logger.Logger
}

func NewService(repo repository.StaffRepository, jwt auth.JWTService, hasher security.PasswordHasher, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		jwt:    jwt,
		hasher: hasher,
		logger: log,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	staff, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	if err := s.hasher.Compare(staff.PasswordHash, req.Password); err != nil {
		s.logger.Warn("failed login attempt", "email", req.Email)
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	access, err := s.jwt.GenerateAccessToken(staff)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate access token: %w", err))
	}
	refresh, err := s.jwt.GenerateRefreshToken(staff)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate refresh token: %w", err))
	}

	if err := s.repo.RecordLogin(ctx, staff.ID, time.Now()); err != nil {
		// Login bookkeeping must not block the session.
		s.logger.Warn("failed to record login time", "staff_id", staff.ID.String())
	}

	return &model.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Staff:        staff,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	staff, err := s.repo.Get(ctx, claims.StaffID)
	if err != nil || !staff.Active {
		return nil, apperrors.Unauthorized(fmt.Errorf("staff account unavailable"))
	}

	access, err := s.jwt.GenerateAccessToken(staff)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate access token: %w", err))
	}
	refresh, err := s.jwt.GenerateRefreshToken(staff)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate refresh token: %w", err))
	}

	return &model.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Staff:        staff,
	}, nil
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	return s.jwt.ValidateToken(token)
}

func (s *Service) CreateStaff(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid branch id", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	now := time.Now()
	staff := &model.Staff{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:     branchID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.StaffRole(req.Role),
		Active:       true,
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create staff member: %w", err))
	}
	return staff, nil
}
