package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/metrics"
	"elite_blog/internal/storage/objectstorage"
)

var ErrSweepRunning = errors.New("sweep already running")

// Ledger answers which stored keys are still in use.
type Ledger interface {
	ProtectedKeys(ctx context.Context, collection models.Collection, pendingSince time.Time) (map[string]struct{}, error)
	DeleteStalePending(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper reclaims stored files that no record references: uploads never
// committed, and files whose deletion failed after their record was removed.
type Sweeper struct {
	log    *slog.Logger
	ledger Ledger
	files  objectstorage.Storage
	grace  time.Duration
	now    func() time.Time

	running sync.Mutex
}

func NewSweeper(log *slog.Logger, ledger Ledger, files objectstorage.Storage, grace time.Duration) *Sweeper {
	return &Sweeper{
		log:    log,
		ledger: ledger,
		files:  files,
		grace:  grace,
		now:    time.Now,
	}
}

// Run reconciles every collection once. Only objects older than the grace
// period are candidates. With dryRun nothing is deleted.
func (s *Sweeper) Run(ctx context.Context, dryRun bool) (models.SweepReport, error) {
	const op = "sweep_service.Run"
	log := s.log.With(slog.String("op", op), slog.Bool("dry_run", dryRun))

	if !s.running.TryLock() {
		return models.SweepReport{}, fmt.Errorf("%s: %w", op, ErrSweepRunning)
	}
	defer s.running.Unlock()

	report := models.SweepReport{
		DryRun:    dryRun,
		Orphans:   []models.StoredObject{},
		Deleted:   []string{},
		StartedAt: s.now(),
	}
	cutoff := report.StartedAt.Add(-s.grace)

	// Stale ledger rows go first so a late commit of one of them fails
	// instead of racing the object deletion below.
	if !dryRun {
		stale, err := s.ledger.DeleteStalePending(ctx, cutoff)
		if err != nil {
			log.Error("failed to drop stale pending uploads", sl.Err(err))
			return report, fmt.Errorf("%s: %w", op, err)
		}
		report.StalePending = int(stale)
	}

	for _, collection := range models.Collections {
		if err := s.sweepCollection(ctx, log, collection, cutoff, &report); err != nil {
			return report, fmt.Errorf("%s: %w", op, err)
		}
	}

	report.FinishedAt = s.now()

	log.Info("sweep finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("orphans", len(report.Orphans)),
		slog.Int("deleted", len(report.Deleted)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("stale_pending", report.StalePending),
	)

	return report, nil
}

func (s *Sweeper) sweepCollection(ctx context.Context, log *slog.Logger, collection models.Collection, cutoff time.Time, report *models.SweepReport) error {
	objects, err := s.files.List(ctx, collection.Prefix())
	if err != nil {
		log.Error("failed to list objects", slog.String("collection", string(collection)), sl.Err(err))
		return fmt.Errorf("list %s: %w", collection, err)
	}
	report.Scanned += len(objects)

	// Read after listing, so anything committed meanwhile is seen as protected.
	protected, err := s.ledger.ProtectedKeys(ctx, collection, cutoff)
	if err != nil {
		return fmt.Errorf("protected keys %s: %w", collection, err)
	}

	var orphans []string
	for _, obj := range objects {
		if _, ok := protected[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		report.Orphans = append(report.Orphans, obj)
		orphans = append(orphans, obj.Key)
	}

	if report.DryRun || len(orphans) == 0 {
		return nil
	}

	failed, err := objectstorage.DeleteEach(ctx, s.files, orphans)
	if len(failed) > 0 {
		log.Warn("some orphans could not be deleted", slog.Any("keys", failed), sl.Err(err))
		report.Failed = append(report.Failed, failed...)
	}

	deleted := len(orphans) - len(failed)
	metrics.SweptObjects.WithLabelValues(string(collection)).Add(float64(deleted))

	failedSet := make(map[string]struct{}, len(failed))
	for _, k := range failed {
		failedSet[k] = struct{}{}
	}
	for _, k := range orphans {
		if _, ok := failedSet[k]; !ok {
			report.Deleted = append(report.Deleted, k)
		}
	}

	return nil
}

// Schedule runs the sweeper every interval until ctx is done. The returned
// channel is closed once the loop has exited. A non-positive interval
// schedules nothing and returns an already closed channel.
func (s *Sweeper) Schedule(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})

	if interval <= 0 {
		s.log.Warn("sweeper not scheduled", slog.Duration("interval", interval))
		close(done)
		return done
	}

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.log.Info("sweeper scheduled", slog.Duration("interval", interval))

		for {
			select {
			case <-ctx.Done():
				s.log.Info("sweeper stopped")
				return
			case <-ticker.C:
				if _, err := s.Run(ctx, false); err != nil && !errors.Is(err, ErrSweepRunning) {
					s.log.Error("scheduled sweep failed", sl.Err(err))
				}
			}
		}
	}()

	return done
}
