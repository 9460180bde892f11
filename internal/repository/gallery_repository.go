package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type GalleryRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewGalleryRepository(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: newBuilder(),
	}
}

var galleryColumns = []string{"id", "title", "photographer", "image_key", "image_url", "created_at"}

func scanGalleryImage(row scanner) (models.GalleryImage, error) {
	var img models.GalleryImage
	err := row.Scan(
		&img.ID,
		&img.Title,
		&img.Photographer,
		&img.ImageKey,
		&img.ImageURL,
		&img.CreatedAt,
	)

	return img, err
}

func (r *GalleryRepo) GetImages(ctx context.Context) ([]models.GalleryImage, error) {
	const op = "repository.GalleryRepo.GetImages"

	query, args, err := r.sb.Select(galleryColumns...).
		From("gallery_images").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	images := make([]models.GalleryImage, 0)
	for rows.Next() {
		img, err := scanGalleryImage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

// SaveImages inserts one row per image and claims their pending uploads in a
// single transaction. Rows come back in input order.
func (r *GalleryRepo) SaveImages(ctx context.Context, images []models.GalleryImage) ([]models.GalleryImage, error) {
	const op = "repository.GalleryRepo.SaveImages"

	if len(images) == 0 {
		return []models.GalleryImage{}, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ib := r.sb.Insert("gallery_images").
		Columns("title", "photographer", "image_key", "image_url")

	keys := make([]string, 0, len(images))
	for _, img := range images {
		ib = ib.Values(img.Title, img.Photographer, img.ImageKey, img.ImageURL)
		keys = append(keys, img.ImageKey)
	}

	query, args, err := ib.Suffix("RETURNING " + strings.Join(galleryColumns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	saved := make([]models.GalleryImage, 0, len(images))
	for rows.Next() {
		img, err := scanGalleryImage(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		saved = append(saved, img)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := claimPending(ctx, tx, r.sb, models.CollectionGallery, keys); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

func (r *GalleryRepo) DeleteImage(ctx context.Context, id int64) (string, error) {
	const op = "repository.GalleryRepo.DeleteImage"

	query, args, err := r.sb.Delete("gallery_images").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING image_key").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var key string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&key); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrGalleryImageNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return key, nil
}
