package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/driano7/Xoco-POS-sub003/internal/config"
	"github.com/driano7/Xoco-POS-sub003/internal/model"
)

type JWTService interface {
	GenerateAccessToken(staff *model.Staff) (string, error)
	GenerateRefreshToken(staff *model.Staff) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
	ValidateRefreshToken(token string) (*model.TokenClaims, error)
}

type jwtService struct {
	secret        []byte
	refreshSecret []byte
	expiry        time.Duration
	refreshExpiry time.Duration
}

func NewJWTService(cfg config.JWTConfig) JWTService {
	return &jwtService{
		secret:        []byte(cfg.Secret),
		refreshSecret: []byte(cfg.RefreshSecret),
		expiry:        time.Duration(cfg.ExpiryHours) * time.Hour,
		refreshExpiry: time.Duration(cfg.RefreshExpiryHours) * time.Hour,
	}
}

func (s *jwtService) GenerateAccessToken(staff *model.Staff) (string, error) {
	return s.generate(staff, s.secret, s.expiry)
}

func (s *jwtService) GenerateRefreshToken(staff *model.Staff) (string, error) {
	return s.generate(staff, s.refreshSecret, s.refreshExpiry)
}

func (s *jwtService) generate(staff *model.Staff, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       staff.ID.String(),
		"branch_id": staff.BranchID.String(),
		"email":     staff.Email,
		"role":      string(staff.Role),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(token string) (*model.TokenClaims, error) {
	return validate(token, s.secret)
}

func (s *jwtService) ValidateRefreshToken(token string) (*model.TokenClaims, error) {
	return validate(token, s.refreshSecret)
}

func validate(tokenStr string, secret []byte) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	staffID, err := uuid.Parse(fmt.Sprint(claims["sub"]))
	if err != nil {
		return nil, fmt.Errorf("invalid staff id in token: %w", err)
	}
	branchID, err := uuid.Parse(fmt.Sprint(claims["branch_id"]))
	if err != nil {
		return nil, fmt.Errorf("invalid branch id in token: %w", err)
	}

	return &model.TokenClaims{
		StaffID:  staffID,
		BranchID: branchID,
		Email:    fmt.Sprint(claims["email"]),
		Role:     model.StaffRole(fmt.Sprint(claims["role"])),
	}, nil
}
