package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/repository"
	"elite_blog/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var (
	ErrUserExist    = errors.New("user already exist")
	ErrUserNotFound = errors.New("user not found")
)

// UserService provisions admin accounts. Sign-in lives in the auth package.
type UserService struct {
	log  *slog.Logger
	repo repository.AdminRepository
}

func NewUserService(log *slog.Logger, repo repository.AdminRepository) *UserService {
	return &UserService{log: log, repo: repo}
}

func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (uuid.UUID, error) {
	const op = "user_service.CreateAdmin"

	email = models.NormalizeEmail(email)
	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	if err := validateCredentials(email, password); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.SaveAdmin(ctx, email, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("admin already exist")
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrUserExist)
		}
		log.Error("failed to save admin", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin created", slog.String("admin_id", id.String()))

	return id, nil
}

// EnsureAdmin creates the account unless one with this email already exists.
// An existing account keeps its password.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (uuid.UUID, bool, error) {
	const op = "user_service.EnsureAdmin"

	admin, err := s.repo.AdminByEmail(ctx, models.NormalizeEmail(email))
	if err == nil {
		return admin.ID, false, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return uuid.Nil, false, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.CreateAdmin(ctx, email, password)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return id, true, nil
}

func (s *UserService) ResetPassword(ctx context.Context, email, password string) error {
	const op = "user_service.ResetPassword"

	email = models.NormalizeEmail(email)
	log := s.log.With(slog.String("op", op), slog.String("email", email))

	if err := validateCredentials(email, password); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	admin, err := s.repo.AdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdatePassword(ctx, admin.ID, passHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password reset")

	return nil
}

func validateCredentials(email, password string) error {
	var problems []string
	if !strings.Contains(email, "@") {
		problems = append(problems, "a valid email is required")
	}
	if len(password) < minPasswordLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(problems) > 0 {
		return models.NewValidationError(problems...)
	}

	return nil
}
