package repository

import (
	"context"
	"fmt"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
)

// UploadRepo is the staging ledger of uploaded files not yet used by a record.
type UploadRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUploadRepository(db *pgxpool.Pool) *UploadRepo {
	return &UploadRepo{
		db: db,
		sb: newBuilder(),
	}
}

func (r *UploadRepo) SavePending(ctx context.Context, upload models.PendingUpload) error {
	const op = "repository.UploadRepo.SavePending"

	query, args, err := r.sb.Insert("pending_uploads").
		Columns("key", "collection", "url", "size", "content_type").
		Values(upload.Key, string(upload.Collection), upload.URL, upload.Size, upload.ContentType).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetPending returns the pending rows for keys. Unknown keys are skipped.
func (r *UploadRepo) GetPending(ctx context.Context, keys []string) ([]models.PendingUpload, error) {
	const op = "repository.UploadRepo.GetPending"

	if len(keys) == 0 {
		return []models.PendingUpload{}, nil
	}

	query, args, err := r.sb.Select("key", "collection", "url", "size", "content_type", "created_at").
		From("pending_uploads").
		Where(keysAny("key", keys)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	uploads := make([]models.PendingUpload, 0, len(keys))
	for rows.Next() {
		var (
			u          models.PendingUpload
			collection string
		)
		if err := rows.Scan(&u.Key, &collection, &u.URL, &u.Size, &u.ContentType, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.Collection = models.Collection(collection)
		uploads = append(uploads, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return uploads, nil
}

func (r *UploadRepo) ProtectedKeys(ctx context.Context, collection models.Collection, pendingSince time.Time) (map[string]struct{}, error) {
	const op = "repository.UploadRepo.ProtectedKeys"

	var query string
	args := []interface{}{collection.Prefix() + "%", string(collection), pendingSince}

	switch collection {
	case models.CollectionBlog:
		query = `
			SELECT image_key FROM posts WHERE image_key LIKE $1
			UNION
			SELECT k FROM posts, unnest(additional_image_keys) AS k WHERE k LIKE $1
			UNION
			SELECT key FROM pending_uploads WHERE collection = $2 AND created_at >= $3`
	case models.CollectionGallery:
		query = `
			SELECT image_key FROM gallery_images WHERE image_key LIKE $1
			UNION
			SELECT key FROM pending_uploads WHERE collection = $2 AND created_at >= $3`
	default:
		return nil, fmt.Errorf("%s: unknown collection %q", op, collection)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys[key] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return keys, nil
}

func (r *UploadRepo) DeleteStalePending(ctx context.Context, before time.Time) (int64, error) {
	const op = "repository.UploadRepo.DeleteStalePending"

	query, args, err := r.sb.Delete("pending_uploads").
		Where(sq.Lt{"created_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

// claimPending removes keys from the ledger inside tx. Every key must be a
// pending upload of collection, otherwise storage.ErrUploadNotFound.
func claimPending(ctx context.Context, tx querier, sb sq.StatementBuilderType, collection models.Collection, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sb.Delete("pending_uploads").
		Where(keysAny("key", keys)).
		Where(sq.Eq{"collection": string(collection)}).
		Suffix("RETURNING key").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	claimed := make(map[string]struct{}, len(keys))
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		claimed[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, k := range keys {
		if _, ok := claimed[k]; !ok {
			return fmt.Errorf("%w: %s", storage.ErrUploadNotFound, k)
		}
	}

	return nil
}
