package repository

import (
	"context"
	"time"

	"elite_blog/internal/domain/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type PostRepository interface {
	GetPosts(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	GetPostByID(ctx context.Context, id int64) (models.Post, error)
	// SavePost inserts the post and claims its pending uploads in one transaction.
	SavePost(ctx context.Context, post models.Post) (models.Post, error)
	// UpdatePost applies a partial update in one transaction and returns the
	// keys the post no longer references.
	UpdatePost(ctx context.Context, id int64, upd models.PostUpdate) (models.Post, []string, error)
	// DeletePost removes the row and returns the keys it referenced.
	DeletePost(ctx context.Context, id int64) ([]string, error)
}

type GalleryRepository interface {
	GetImages(ctx context.Context) ([]models.GalleryImage, error)
	SaveImages(ctx context.Context, images []models.GalleryImage) ([]models.GalleryImage, error)
	DeleteImage(ctx context.Context, id int64) (string, error)
}

type UploadRepository interface {
	SavePending(ctx context.Context, upload models.PendingUpload) error
	GetPending(ctx context.Context, keys []string) ([]models.PendingUpload, error)
	// ProtectedKeys returns keys under collection that records reference or
	// that were staged at or after pendingSince.
	ProtectedKeys(ctx context.Context, collection models.Collection, pendingSince time.Time) (map[string]struct{}, error)
	DeleteStalePending(ctx context.Context, before time.Time) (int64, error)
}

type AdminRepository interface {
	SaveAdmin(ctx context.Context, email string, passHash []byte) (uuid.UUID, error)
	AdminByEmail(ctx context.Context, email string) (models.Admin, error)
	AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passHash []byte) error
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, adminID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, adminID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, adminID, token string) error
	DeleteAllAdminTokens(ctx context.Context, adminID string) error
	RevokeAccessToken(ctx context.Context, jti string, ttl time.Duration) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)
}
