package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/storage/objectstorage"
)

// LocalFileStorage keeps media on the local disk and serves them under baseURL.
type LocalFileStorage struct {
	baseDir string
	baseURL string
}

var (
	_ objectstorage.Storage       = (*LocalFileStorage)(nil)
	_ objectstorage.HealthChecker = (*LocalFileStorage)(nil)
)

var ErrInvalidKey = errors.New("invalid storage key")

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: baseURL,
	}, nil
}

func (s *LocalFileStorage) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) error {
	const op = "storage.filestorage.Put"

	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := s.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("%s: failed to create directories: %w", op, err)
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("%s: failed to create destination file: %w", op, err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var copyErr error

	go func() {
		_, copyErr = io.Copy(dst, body)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return fmt.Errorf("%s: failed to copy file: %w", op, copyErr)
		}
	case <-ctx.Done():
		<-done
		_ = os.Remove(filePath)
		return ctx.Err()
	}

	return nil
}

func (s *LocalFileStorage) Delete(_ context.Context, key string) error {
	const op = "storage.filestorage.Delete"

	filePath, err := s.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *LocalFileStorage) List(ctx context.Context, prefix string) ([]models.StoredObject, error) {
	const op = "storage.filestorage.List"

	var objects []models.StoredObject

	err := filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		objects = append(objects, models.StoredObject{
			Key:          key,
			URL:          s.PublicURL(key),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return objects, nil
}

func (s *LocalFileStorage) PublicURL(key string) string {
	return objectstorage.JoinURL(s.baseURL, key)
}

// GetFullPath maps key to its location on disk.
func (s *LocalFileStorage) GetFullPath(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

// HealthCheck reports whether the base directory is still a usable directory.
func (s *LocalFileStorage) HealthCheck(ctx context.Context) error {
	const op = "storage.filestorage.HealthCheck"

	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.GetBaseDir())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %s is not a directory", op, s.GetBaseDir())
	}

	return nil
}

// path resolves key inside baseDir and rejects keys escaping it.
func (s *LocalFileStorage) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}

	full := s.GetFullPath(key)
	rel, err := filepath.Rel(s.baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return full, nil
}
