package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/metrics"
	"elite_blog/internal/repository"
	"elite_blog/internal/storage"
	"elite_blog/internal/storage/objectstorage"
	"elite_blog/internal/transport/http/dto"
)

// CategoryResolver maps a category name to its row.
type CategoryResolver interface {
	Resolve(ctx context.Context, name string) (models.Category, error)
}

// PendingUploads is the read side of the upload staging ledger.
type PendingUploads interface {
	GetPending(ctx context.Context, keys []string) ([]models.PendingUpload, error)
}

type BlogService struct {
	log        *slog.Logger
	posts      repository.PostRepository
	uploads    PendingUploads
	categories CategoryResolver
	files      objectstorage.Storage
}

func NewBlogService(
	log *slog.Logger,
	posts repository.PostRepository,
	uploads PendingUploads,
	categories CategoryResolver,
	files objectstorage.Storage,
) *BlogService {
	return &BlogService{
		log:        log,
		posts:      posts,
		uploads:    uploads,
		categories: categories,
		files:      files,
	}
}

// ListPosts lists posts in the given order. An explicit category id wins over
// a category name; an unknown name yields an empty list.
func (s *BlogService) ListPosts(ctx context.Context, q dto.PostListQuery, order models.PostOrder) ([]models.Post, error) {
	const op = "blog_service.ListPosts"
	log := s.log.With(slog.String("op", op))

	filter := models.PostFilter{CategoryID: q.CategoryID, OrderBy: order}

	if filter.CategoryID == 0 && q.Category != "" {
		category, err := s.categories.Resolve(ctx, q.Category)
		if err != nil {
			if errors.Is(err, storage.ErrCategoryNotFound) {
				log.Debug("unknown category filter", slog.String("category", q.Category))
				return []models.Post{}, nil
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		filter.CategoryID = category.ID
	}

	posts, err := s.posts.GetPosts(ctx, filter)
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return posts, nil
}

func (s *BlogService) GetPost(ctx context.Context, id int64) (models.Post, error) {
	const op = "blog_service.GetPost"

	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrPostNotFound) {
			s.log.Error("failed to get post", slog.String("op", op), slog.Int64("post_id", id), sl.Err(err))
		}
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

func (s *BlogService) CreatePost(ctx context.Context, req dto.CreatePostRequest) (models.Post, error) {
	const op = "blog_service.CreatePost"
	log := s.log.With(slog.String("op", op))

	var problems []string

	title := strings.TrimSpace(req.Title)
	if title == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		problems = append(problems, "content is required")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(req.ImageKeys) == 0 {
		problems = append(problems, "at least one image is required")
	} else if dup := firstDuplicate(req.ImageKeys); dup != "" {
		problems = append(problems, fmt.Sprintf("image %q listed twice", dup))
	}
	if len(problems) > 0 {
		return models.Post{}, fmt.Errorf("%s: %w", op, models.NewValidationError(problems...))
	}

	files, err := s.pendingFiles(ctx, req.ImageKeys, nil)
	if err != nil {
		log.Warn("images not available", sl.Err(err))
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	post := models.Post{
		Title:   title,
		Content: req.Content,
		Date:    date,
	}
	if req.CategoryID != 0 {
		categoryID := req.CategoryID
		post.CategoryID = &categoryID
	}
	post.SetImages(files)

	saved, err := s.posts.SavePost(ctx, post)
	if err != nil {
		log.Error("failed to save post", sl.Err(err))
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post created", slog.Int64("post_id", saved.ID), slog.Int("images", len(files)))

	return saved, nil
}

// UpdatePost changes only the provided fields. Images dropped by the update
// are removed from storage after the row is committed; when that fails the
// updated post is returned together with a *models.PartialDeleteError.
func (s *BlogService) UpdatePost(ctx context.Context, id int64, req dto.UpdatePostRequest) (models.Post, error) {
	const op = "blog_service.UpdatePost"
	log := s.log.With(slog.String("op", op), slog.Int64("post_id", id))

	var (
		upd      models.PostUpdate
		problems []string
	)

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			problems = append(problems, "title must not be blank")
		}
		upd.Title = &title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			problems = append(problems, "content must not be blank")
		}
		upd.Content = req.Content
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			problems = append(problems, err.Error())
		}
		upd.Date = &date
	}
	if req.CategoryID != nil {
		if *req.CategoryID < 0 {
			problems = append(problems, "category_id must not be negative")
		}
		upd.CategoryID = req.CategoryID
	}
	if req.ImageKeys != nil {
		keys := *req.ImageKeys
		if len(keys) == 0 {
			problems = append(problems, "at least one image is required")
		} else if dup := firstDuplicate(keys); dup != "" {
			problems = append(problems, fmt.Sprintf("image %q listed twice", dup))
		}
	}
	if len(problems) > 0 {
		return models.Post{}, fmt.Errorf("%s: %w", op, models.NewValidationError(problems...))
	}

	if req.ImageKeys != nil {
		current, err := s.posts.GetPostByID(ctx, id)
		if err != nil {
			return models.Post{}, fmt.Errorf("%s: %w", op, err)
		}

		files, err := s.pendingFiles(ctx, *req.ImageKeys, ownedFiles(current))
		if err != nil {
			log.Warn("images not available", sl.Err(err))
			return models.Post{}, fmt.Errorf("%s: %w", op, err)
		}
		upd.Images = files
	}

	if upd.Empty() {
		return models.Post{}, fmt.Errorf("%s: %w", op, models.NewValidationError("nothing to update"))
	}

	updated, removed, err := s.posts.UpdatePost(ctx, id, upd)
	if err != nil {
		if !errors.Is(err, storage.ErrPostNotFound) {
			log.Error("failed to update post", sl.Err(err))
		}
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post updated", slog.Int("removed_images", len(removed)))

	if err := s.removeFiles(ctx, log, removed); err != nil {
		return updated, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// DeletePost removes the row first, then one stored file per image key. The
// row deletion stands even when some files could not be removed.
func (s *BlogService) DeletePost(ctx context.Context, id int64) error {
	const op = "blog_service.DeletePost"
	log := s.log.With(slog.String("op", op), slog.Int64("post_id", id))

	keys, err := s.posts.DeletePost(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrPostNotFound) {
			log.Error("failed to delete post", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post deleted", slog.Int("images", len(keys)))

	if err := s.removeFiles(ctx, log, keys); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *BlogService) removeFiles(ctx context.Context, log *slog.Logger, keys []string) error {
	failed, err := objectstorage.DeleteEach(ctx, s.files, keys)
	if len(failed) == 0 {
		return nil
	}

	log.Error("failed to remove stored files", slog.Any("keys", failed), sl.Err(err))
	metrics.StorageDeleteFailures.WithLabelValues(string(models.CollectionBlog)).Add(float64(len(failed)))

	return &models.PartialDeleteError{FailedKeys: failed, Err: err}
}

// pendingFiles resolves keys in order. A key is usable when the post already
// owns it or it is a pending upload of the blog collection.
func (s *BlogService) pendingFiles(ctx context.Context, keys []string, owned map[string]models.StoredFile) ([]models.StoredFile, error) {
	lookup := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := owned[k]; !ok {
			lookup = append(lookup, k)
		}
	}

	pending := make(map[string]models.PendingUpload, len(lookup))
	if len(lookup) > 0 {
		rows, err := s.uploads.GetPending(ctx, lookup)
		if err != nil {
			return nil, err
		}
		for _, p := range rows {
			pending[p.Key] = p
		}
	}

	files := make([]models.StoredFile, 0, len(keys))
	for _, k := range keys {
		if f, ok := owned[k]; ok {
			files = append(files, f)
			continue
		}

		p, ok := pending[k]
		if !ok || p.Collection != models.CollectionBlog {
			return nil, fmt.Errorf("%w: %s", storage.ErrUploadNotFound, k)
		}
		files = append(files, p.File())
	}

	return files, nil
}

func ownedFiles(p models.Post) map[string]models.StoredFile {
	owned := make(map[string]models.StoredFile, len(p.AdditionalImageKeys)+1)
	if p.ImageKey != "" {
		owned[p.ImageKey] = models.StoredFile{Key: p.ImageKey, URL: p.ImageURL}
	}
	for i, k := range p.AdditionalImageKeys {
		var url string
		if i < len(p.AdditionalImages) {
			url = p.AdditionalImages[i]
		}
		owned[k] = models.StoredFile{Key: k, URL: url}
	}

	return owned
}

func parseDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("date is required")
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", raw)
	}

	return date, nil
}

func firstDuplicate(keys []string) string {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return k
		}
		seen[k] = struct{}{}
	}

	return ""
}
