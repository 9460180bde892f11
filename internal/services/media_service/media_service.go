package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/metrics"
	"elite_blog/internal/storage"
	"elite_blog/internal/storage/objectstorage"
	"elite_blog/internal/transport/http/dto"
)

const sniffLen = 512

// UploadLedger records files that were stored but not yet used by a record.
type UploadLedger interface {
	SavePending(ctx context.Context, upload models.PendingUpload) error
}

type MediaService struct {
	log     *slog.Logger
	ledger  UploadLedger
	files   objectstorage.Storage
	maxSize int64
	now     func() time.Time
}

func NewMediaService(log *slog.Logger, ledger UploadLedger, files objectstorage.Storage, maxSize int64) *MediaService {
	return &MediaService{
		log:     log,
		ledger:  ledger,
		files:   files,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// UploadBatch stores files one after another under the collection and stages
// each of them. The first failure stops the batch; files stored before it are
// kept and reported in *models.UploadBatchError.
func (s *MediaService) UploadBatch(ctx context.Context, input dto.UploadInput) ([]models.StoredFile, error) {
	const op = "media_service.UploadBatch"
	log := s.log.With(
		slog.String("op", op),
		slog.String("collection", string(input.Collection)),
	)

	if !input.Collection.Valid() {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError(fmt.Sprintf("unknown collection %q", input.Collection)))
	}
	if len(input.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("no files provided"))
	}

	log.Info("uploading batch", slog.Int("files", len(input.Files)))

	uploaded := make([]models.StoredFile, 0, len(input.Files))
	for _, fh := range input.Files {
		file, err := s.upload(ctx, input.Collection, fh)
		if err != nil {
			result := "failed"
			if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrInvalidFileType) {
				result = "rejected"
				log.Warn("file rejected", slog.String("file", fh.Filename), sl.Err(err))
			} else {
				log.Error("file upload failed", slog.String("file", fh.Filename), sl.Err(err))
			}
			metrics.UploadsTotal.WithLabelValues(string(input.Collection), result).Inc()

			return uploaded, fmt.Errorf("%s: %w", op, &models.UploadBatchError{
				Uploaded:   uploaded,
				FailedFile: fh.Filename,
				Err:        err,
			})
		}

		metrics.UploadsTotal.WithLabelValues(string(input.Collection), "ok").Inc()
		uploaded = append(uploaded, file)
	}

	log.Info("batch uploaded", slog.Int("files", len(uploaded)))

	return uploaded, nil
}

func (s *MediaService) upload(ctx context.Context, collection models.Collection, fh *multipart.FileHeader) (models.StoredFile, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return models.StoredFile{}, fmt.Errorf("%w: %d bytes, limit %d", storage.ErrFileTooLarge, fh.Size, s.maxSize)
	}

	src, err := fh.Open()
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("open: %w", err)
	}
	defer src.Close()

	contentType, err := sniffImage(src)
	if err != nil {
		return models.StoredFile{}, err
	}

	key := objectstorage.NewKey(collection, fh.Filename, contentType, s.now())

	if err := s.files.Put(ctx, key, src, fh.Size, contentType); err != nil {
		return models.StoredFile{}, fmt.Errorf("store %s: %w", key, err)
	}

	pending := models.PendingUpload{
		Key:         key,
		Collection:  collection,
		URL:         s.files.PublicURL(key),
		Size:        fh.Size,
		ContentType: contentType,
	}
	if err := s.ledger.SavePending(ctx, pending); err != nil {
		return models.StoredFile{}, fmt.Errorf("stage %s: %w", key, err)
	}

	return pending.File(), nil
}

// sniffImage checks that src holds a decodable image and returns its content
// type. src is rewound before returning.
func sniffImage(src io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read: %w", err)
	}
	head = head[:n]

	cfg, format, err := image.DecodeConfig(io.MultiReader(bytes.NewReader(head), src))
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrInvalidFileType, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", fmt.Errorf("%w: empty image", storage.ErrInvalidFileType)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/" + format
	}

	return contentType, nil
}
