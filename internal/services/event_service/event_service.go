package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/repository"
	"elite_blog/internal/storage"
	"elite_blog/internal/transport/http/dto"
)

type CategoryResolver interface {
	Resolve(ctx context.Context, name string) (models.Category, error)
}

// EventService splits posts around the current day: upcoming ones from today
// on in ascending date order, past ones newest first.
type EventService struct {
	log        *slog.Logger
	posts      repository.PostRepository
	categories CategoryResolver
}

func NewEventService(log *slog.Logger, posts repository.PostRepository, categories CategoryResolver) *EventService {
	return &EventService{
		log:        log,
		posts:      posts,
		categories: categories,
	}
}

func (s *EventService) ListEvents(ctx context.Context, now time.Time, q dto.PostListQuery) (models.Events, error) {
	const op = "event_service.ListEvents"
	log := s.log.With(slog.String("op", op))

	events := models.Events{Upcoming: []models.Post{}, Past: []models.Post{}}

	categoryID := q.CategoryID
	if categoryID == 0 && q.Category != "" {
		category, err := s.categories.Resolve(ctx, q.Category)
		if err != nil {
			if errors.Is(err, storage.ErrCategoryNotFound) {
				return events, nil
			}
			return models.Events{}, fmt.Errorf("%s: %w", op, err)
		}
		categoryID = category.ID
	}

	today := Today(now)

	upcoming, err := s.posts.GetPosts(ctx, models.PostFilter{
		CategoryID: categoryID,
		DateFrom:   &today,
		OrderBy:    models.PostOrderDateAsc,
	})
	if err != nil {
		log.Error("failed to list upcoming events", sl.Err(err))
		return models.Events{}, fmt.Errorf("%s: %w", op, err)
	}

	past, err := s.posts.GetPosts(ctx, models.PostFilter{
		CategoryID: categoryID,
		DateBefore: &today,
		OrderBy:    models.PostOrderDateDesc,
	})
	if err != nil {
		log.Error("failed to list past events", sl.Err(err))
		return models.Events{}, fmt.Errorf("%s: %w", op, err)
	}

	events.Upcoming = upcoming
	events.Past = past

	return events, nil
}

// Today is the calendar day of now, as stored in a DATE column.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
