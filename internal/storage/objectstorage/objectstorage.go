// Package objectstorage holds the media store contract and its S3 driver.
package objectstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"elite_blog/internal/domain/models"

	"github.com/google/uuid"
)

// Storage is a flat key/value store for media files addressed by key.
// Delete of a missing key is not an error.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]models.StoredObject, error)
	PublicURL(key string) string
}

// HealthChecker is implemented by stores that can report reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

const tokenLen = 10

var extByContentType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// extsByContentType lists the file name extensions kept as-is for a type.
var extsByContentType = map[string][]string{
	"image/jpeg": {"jpg", "jpeg"},
	"image/png":  {"png"},
	"image/gif":  {"gif"},
	"image/webp": {"webp"},
	"image/bmp":  {"bmp"},
	"image/tiff": {"tif", "tiff"},
}

// NewKey builds "<collection>/<unix-ms>-<token>.<ext>". See Ext for the extension.
func NewKey(collection models.Collection, originalName, contentType string, now time.Time) string {
	return fmt.Sprintf("%s%d-%s.%s", collection.Prefix(), now.UnixMilli(), randomToken(), Ext(originalName, contentType))
}

// Ext keeps the original name's extension only when it is a known spelling
// for the sniffed content type. Anything else, including extensions carrying
// URL metacharacters, is replaced by the content type's canonical extension.
func Ext(originalName, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalName), "."))
	if slices.Contains(extsByContentType[contentType], ext) {
		return ext
	}

	if ext, ok := extByContentType[contentType]; ok {
		return ext
	}

	return "bin"
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLen]
}

// JoinURL appends a key to a base URL with exactly one slash between them.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// DeleteEach issues one Delete per key and returns the keys that failed
// together with their joined errors. It does not stop at the first failure.
func DeleteEach(ctx context.Context, st Storage, keys []string) ([]string, error) {
	var (
		failed []string
		errs   []error
	)

	for _, key := range keys {
		if err := st.Delete(ctx, key); err != nil {
			failed = append(failed, key)
			errs = append(errs, err)
		}
	}

	return failed, errors.Join(errs...)
}
