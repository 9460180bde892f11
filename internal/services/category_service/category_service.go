package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/repository"
	"elite_blog/internal/storage"

	"github.com/patrickmn/go-cache"
)

const snapshotKey = "categories"

// CategoryStore is the shared list of categories. One instance is built at
// startup and injected wherever categories are read or changed.
type CategoryStore struct {
	log   *slog.Logger
	repo  repository.CategoryRepository
	cache *cache.Cache
	// mu serialises snapshot read-modify-write. gen counts snapshot writes;
	// a load started before a write must not replace it.
	mu  sync.Mutex
	gen uint64
}

func NewCategoryStore(log *slog.Logger, repo repository.CategoryRepository, ttl time.Duration) *CategoryStore {
	return &CategoryStore{
		log:   log,
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

// List returns categories ordered by name, loading them on first use.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	const op = "category_service.List"

	if cached, ok := s.cache.Get(snapshotKey); ok {
		return clone(cached.([]models.Category)), nil
	}

	categories, err := s.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return categories, nil
}

// Refresh reloads the snapshot from the database. When Add or Remove changed
// the snapshot while the load was in flight, the loaded rows are discarded
// and the newer snapshot is returned.
func (s *CategoryStore) Refresh(ctx context.Context) ([]models.Category, error) {
	const op = "category_service.Refresh"
	log := s.log.With(slog.String("op", op))

	s.mu.Lock()
	started := s.gen
	s.mu.Unlock()

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		log.Error("failed to load categories", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != started {
		log.Debug("stale category load discarded")
		if cached, ok := s.cache.Get(snapshotKey); ok {
			return clone(cached.([]models.Category)), nil
		}
		return clone(categories), nil
	}

	s.gen++
	s.cache.SetDefault(snapshotKey, categories)
	log.Debug("categories loaded", slog.Int("count", len(categories)))

	return clone(categories), nil
}

func (s *CategoryStore) Add(ctx context.Context, name string) (models.Category, error) {
	const op = "category_service.Add"
	log := s.log.With(slog.String("op", op))

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("%s: %w", op, models.NewValidationError("category name is required"))
	}

	category, err := s.repo.SaveCategory(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrCategoryExists) {
			log.Warn("category already exists", slog.String("name", name))
		} else {
			log.Error("failed to save category", sl.Err(err))
		}
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.gen++
	if cached, ok := s.cache.Get(snapshotKey); ok {
		next := append(clone(cached.([]models.Category)), category)
		sort.SliceStable(next, func(i, j int) bool { return next[i].Name < next[j].Name })
		s.cache.SetDefault(snapshotKey, next)
	}
	s.mu.Unlock()

	log.Info("category added", slog.Int64("id", category.ID), slog.String("name", category.Name))

	return category, nil
}

// Remove deletes a category. Posts referencing it are left without a category.
func (s *CategoryStore) Remove(ctx context.Context, id int64) error {
	const op = "category_service.Remove"
	log := s.log.With(slog.String("op", op), slog.Int64("id", id))

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, storage.ErrCategoryNotFound) {
			log.Warn("category not found")
		} else {
			log.Error("failed to delete category", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.gen++
	if cached, ok := s.cache.Get(snapshotKey); ok {
		current := cached.([]models.Category)
		next := make([]models.Category, 0, len(current))
		for _, c := range current {
			if c.ID != id {
				next = append(next, c)
			}
		}
		s.cache.SetDefault(snapshotKey, next)
	}
	s.mu.Unlock()

	log.Info("category removed")

	return nil
}

// Resolve finds a category by exact name.
func (s *CategoryStore) Resolve(ctx context.Context, name string) (models.Category, error) {
	const op = "category_service.Resolve"

	categories, err := s.List(ctx)
	if err != nil {
		return models.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, c := range categories {
		if c.Name == name {
			return c, nil
		}
	}

	return models.Category{}, fmt.Errorf("%s: %w", op, storage.ErrCategoryNotFound)
}

func clone(in []models.Category) []models.Category {
	out := make([]models.Category, len(in))
	copy(out, in)
	return out
}
