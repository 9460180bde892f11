package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) SaveAdmin(ctx context.Context, email string, passHash []byte) (uuid.UUID, error) {
	args := m.Called(ctx, email, passHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAdminRepository) AdminByEmail(ctx context.Context, email string) (models.Admin, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Admin), args.Error(1)
}

func (m *MockAdminRepository) AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Admin), args.Error(1)
}

func (m *MockAdminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passHash []byte) error {
	args := m.Called(ctx, id, passHash)
	return args.Error(0)
}

func hashMatches(password string) interface{} {
	return mock.MatchedBy(func(hash []byte) bool {
		return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	})
}

func TestUserService_CreateAdmin(t *testing.T) {
	ctx := context.Background()
	password := gofakeit.Password(true, true, true, false, false, 12)
	id := uuid.New()

	tests := []struct {
		name      string
		email     string
		password  string
		mockSetup func(repo *MockAdminRepository)
		wantErr   error
		wantValid bool
	}{
		{
			name:     "created with normalised email",
			email:    "  Admin@Example.com ",
			password: password,
			mockSetup: func(repo *MockAdminRepository) {
				repo.On("SaveAdmin", ctx, "admin@example.com", hashMatches(password)).Return(id, nil).Once()
			},
		},
		{
			name:     "duplicate",
			email:    "admin@example.com",
			password: password,
			mockSetup: func(repo *MockAdminRepository) {
				repo.On("SaveAdmin", ctx, "admin@example.com", mock.Anything).Return(uuid.Nil, storage.ErrUserExists).Once()
			},
			wantErr: ErrUserExist,
		},
		{
			name:      "short password",
			email:     "admin@example.com",
			password:  "short",
			mockSetup: func(repo *MockAdminRepository) {},
			wantValid: true,
		},
		{
			name:      "bad email",
			email:     "admin",
			password:  password,
			mockSetup: func(repo *MockAdminRepository) {},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAdminRepository)
			tt.mockSetup(repo)
			service := NewUserService(slog.Default(), repo)

			got, err := service.CreateAdmin(ctx, tt.email, tt.password)

			switch {
			case tt.wantValid:
				var vErr *models.ValidationError
				assert.ErrorAs(t, err, &vErr)
				repo.AssertNotCalled(t, "SaveAdmin", mock.Anything, mock.Anything, mock.Anything)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, id, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	existing := models.Admin{ID: uuid.New(), Email: "admin@example.com"}

	t.Run("existing account untouched", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("AdminByEmail", ctx, "admin@example.com").Return(existing, nil).Once()

		id, created, err := NewUserService(slog.Default(), repo).EnsureAdmin(ctx, "admin@example.com", "whatever-123")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, id)
		repo.AssertNotCalled(t, "SaveAdmin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing account created", func(t *testing.T) {
		repo := new(MockAdminRepository)
		newID := uuid.New()
		repo.On("AdminByEmail", ctx, "admin@example.com").Return(models.Admin{}, storage.ErrUserNotFound).Once()
		repo.On("SaveAdmin", ctx, "admin@example.com", hashMatches("secret-pass")).Return(newID, nil).Once()

		id, created, err := NewUserService(slog.Default(), repo).EnsureAdmin(ctx, "admin@example.com", "secret-pass")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, newID, id)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(MockAdminRepository)
		repo.On("AdminByEmail", ctx, "admin@example.com").Return(models.Admin{}, errors.New("db down")).Once()

		_, _, err := NewUserService(slog.Default(), repo).EnsureAdmin(ctx, "admin@example.com", "secret-pass")
		assert.ErrorContains(t, err, "db down")
	})
}

func TestUserService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	admin := models.Admin{ID: uuid.New(), Email: "admin@example.com"}

	repo := new(MockAdminRepository)
	repo.On("AdminByEmail", ctx, "admin@example.com").Return(admin, nil).Once()
	repo.On("UpdatePassword", ctx, admin.ID, hashMatches("brand-new-pass")).Return(nil).Once()
	repo.On("AdminByEmail", ctx, "ghost@example.com").Return(models.Admin{}, storage.ErrUserNotFound).Once()

	service := NewUserService(slog.Default(), repo)

	require.NoError(t, service.ResetPassword(ctx, "admin@example.com", "brand-new-pass"))
	assert.ErrorIs(t, service.ResetPassword(ctx, "ghost@example.com", "brand-new-pass"), ErrUserNotFound)
	repo.AssertExpectations(t)
}
