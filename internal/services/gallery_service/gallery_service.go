package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/metrics"
	"elite_blog/internal/repository"
	"elite_blog/internal/storage"
	"elite_blog/internal/storage/objectstorage"
	"elite_blog/internal/transport/http/dto"
)

type PendingUploads interface {
	GetPending(ctx context.Context, keys []string) ([]models.PendingUpload, error)
}

type GalleryService struct {
	log     *slog.Logger
	repo    repository.GalleryRepository
	uploads PendingUploads
	files   objectstorage.Storage
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository, uploads PendingUploads, files objectstorage.Storage) *GalleryService {
	return &GalleryService{
		log:     log,
		repo:    repo,
		uploads: uploads,
		files:   files,
	}
}

func (s *GalleryService) ListImages(ctx context.Context) ([]models.GalleryImage, error) {
	const op = "gallery_service.ListImages"

	images, err := s.repo.GetImages(ctx)
	if err != nil {
		s.log.Error("failed to list gallery", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

// CreateImages stores one gallery row per key, all sharing title and
// photographer. Every key must be a pending gallery upload.
func (s *GalleryService) CreateImages(ctx context.Context, req dto.CreateGalleryRequest) ([]models.GalleryImage, error) {
	const op = "gallery_service.CreateImages"
	log := s.log.With(slog.String("op", op))

	var problems []string

	title := strings.TrimSpace(req.Title)
	if title == "" {
		problems = append(problems, "title is required")
	}
	if len(req.ImageKeys) == 0 {
		problems = append(problems, "at least one image is required")
	}
	seen := make(map[string]struct{}, len(req.ImageKeys))
	for _, k := range req.ImageKeys {
		if _, dup := seen[k]; dup {
			problems = append(problems, fmt.Sprintf("image %q listed twice", k))
			break
		}
		seen[k] = struct{}{}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError(problems...))
	}

	photographer := strings.TrimSpace(req.Photographer)
	if photographer == "" {
		photographer = models.DefaultPhotographer
	}

	rows, err := s.uploads.GetPending(ctx, req.ImageKeys)
	if err != nil {
		log.Error("failed to read pending uploads", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pending := make(map[string]models.PendingUpload, len(rows))
	for _, p := range rows {
		pending[p.Key] = p
	}

	images := make([]models.GalleryImage, 0, len(req.ImageKeys))
	for _, k := range req.ImageKeys {
		p, ok := pending[k]
		if !ok || p.Collection != models.CollectionGallery {
			log.Warn("image not available", slog.String("key", k))
			return nil, fmt.Errorf("%s: %w: %s", op, storage.ErrUploadNotFound, k)
		}
		images = append(images, models.GalleryImage{
			Title:        title,
			Photographer: photographer,
			ImageKey:     p.Key,
			ImageURL:     p.URL,
		})
	}

	saved, err := s.repo.SaveImages(ctx, images)
	if err != nil {
		log.Error("failed to save gallery images", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery images created", slog.Int("count", len(saved)))

	return saved, nil
}

// DeleteImage removes the row, then its stored file. A storage failure leaves
// the row deleted and is reported as *models.PartialDeleteError.
func (s *GalleryService) DeleteImage(ctx context.Context, id int64) error {
	const op = "gallery_service.DeleteImage"
	log := s.log.With(slog.String("op", op), slog.Int64("image_id", id))

	key, err := s.repo.DeleteImage(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrGalleryImageNotFound) {
			log.Error("failed to delete gallery image", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	failed, err := objectstorage.DeleteEach(ctx, s.files, []string{key})
	if len(failed) > 0 {
		log.Error("failed to remove stored file", slog.String("key", key), sl.Err(err))
		metrics.StorageDeleteFailures.WithLabelValues(string(models.CollectionGallery)).Inc()
		return fmt.Errorf("%s: %w", op, &models.PartialDeleteError{FailedKeys: failed, Err: err})
	}

	log.Info("gallery image deleted")

	return nil
}
