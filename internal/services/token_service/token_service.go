package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/jwt"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/repository"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenRevoked      = errors.New("token revoked")
	ErrTokenNotInStorage = errors.New("token not found in storage")
)

type TokenService struct {
	log        *slog.Logger
	repo       repository.TokenRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(log *slog.Logger, repo repository.TokenRepository, secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		log:        log,
		repo:       repo,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateTokens issues an access/refresh pair and remembers the refresh token.
func (s *TokenService) GenerateTokens(ctx context.Context, admin models.Admin) (models.TokenPair, error) {
	const op = "token_service.GenerateTokens"

	now := s.now()

	access, _, err := jwt.NewToken(admin, jwt.KindAccess, s.secret, s.accessTTL, now)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	refresh, _, err := jwt.NewToken(admin, jwt.KindRefresh, s.secret, s.refreshTTL, now)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SaveRefreshToken(ctx, admin.ID.String(), refresh, s.refreshTTL); err != nil {
		s.log.Error("failed to save refresh token", slog.String("op", op), sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TokenPair{
		AdminID:      admin.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// RefreshTokens rotates a refresh token: the presented one is consumed and a
// new pair is issued.
func (s *TokenService) RefreshTokens(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "token_service.RefreshTokens"
	log := s.log.With(slog.String("op", op))

	claims, err := jwt.Parse(refreshToken, jwt.KindRefresh, s.secret)
	if err != nil {
		log.Warn("refresh token rejected", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	adminID := claims.AdminID.String()

	exists, err := s.repo.GetRefreshToken(ctx, adminID, refreshToken)
	if err != nil {
		log.Error("failed to look up refresh token", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		log.Warn("refresh token not in storage", slog.String("admin_id", adminID))
		return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, ErrTokenNotInStorage)
	}

	if err := s.repo.DeleteRefreshToken(ctx, adminID, refreshToken); err != nil {
		log.Error("failed to consume refresh token", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.GenerateTokens(ctx, models.Admin{ID: claims.AdminID, Email: claims.Email})
}

// ValidateAccess verifies an access token and checks it was not revoked.
func (s *TokenService) ValidateAccess(ctx context.Context, accessToken string) (models.TokenClaims, error) {
	const op = "token_service.ValidateAccess"

	claims, err := jwt.Parse(accessToken, jwt.KindAccess, s.secret)
	if err != nil {
		return models.TokenClaims{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	revoked, err := s.repo.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return models.TokenClaims{}, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return models.TokenClaims{}, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return claims, nil
}

// Revoke blacklists the access token until it expires and drops every refresh
// token of its admin.
func (s *TokenService) Revoke(ctx context.Context, claims models.TokenClaims) error {
	const op = "token_service.Revoke"

	if claims.JTI != "" {
		if err := s.repo.RevokeAccessToken(ctx, claims.JTI, claims.ExpiresAt.Sub(s.now())); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.repo.DeleteAllAdminTokens(ctx, claims.AdminID.String()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
