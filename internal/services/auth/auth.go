package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Auth struct {
	log    *slog.Logger
	admins AdminProvider
	tokens TokenIssuer
}

type AdminProvider interface {
	AdminByEmail(ctx context.Context, email string) (models.Admin, error)
}

type TokenIssuer interface {
	GenerateTokens(ctx context.Context, admin models.Admin) (models.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (models.TokenPair, error)
	ValidateAccess(ctx context.Context, accessToken string) (models.TokenClaims, error)
	Revoke(ctx context.Context, claims models.TokenClaims) error
}

func New(log *slog.Logger, admins AdminProvider, tokens TokenIssuer) *Auth {
	return &Auth{
		log:    log,
		admins: admins,
		tokens: tokens,
	}
}

func (a *Auth) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	const op = "auth.Login"

	email = models.NormalizeEmail(email)
	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login admin")

	admin, err := a.admins.AdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("admin not found")
			return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get admin", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(admin.Password, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := a.tokens.GenerateTokens(ctx, admin)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in")

	return pair, nil
}

// Logout ends the token session the claims belong to.
func (a *Auth) Logout(ctx context.Context, claims models.TokenClaims) error {
	const op = "auth.Logout"

	if err := a.tokens.Revoke(ctx, claims); err != nil {
		a.log.Error("failed to revoke tokens", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("admin logged out", slog.String("op", op), slog.String("admin_id", claims.AdminID.String()))

	return nil
}

func (a *Auth) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "auth.Refresh"

	pair, err := a.tokens.RefreshTokens(ctx, refreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

func (a *Auth) ValidateAccess(ctx context.Context, accessToken string) (models.TokenClaims, error) {
	return a.tokens.ValidateAccess(ctx, accessToken)
}
