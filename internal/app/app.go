package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "elite_blog/internal/app/http"
	"elite_blog/internal/config"
	"elite_blog/internal/middleware"
	"elite_blog/internal/repository"
	"elite_blog/internal/services/auth"
	blog "elite_blog/internal/services/blog_service"
	categories "elite_blog/internal/services/category_service"
	events "elite_blog/internal/services/event_service"
	gallery "elite_blog/internal/services/gallery_service"
	media "elite_blog/internal/services/media_service"
	sweep "elite_blog/internal/services/sweep_service"
	tokens "elite_blog/internal/services/token_service"
	users "elite_blog/internal/services/user_service"
	filestorage "elite_blog/internal/storage/filestorage"
	"elite_blog/internal/storage/objectstorage"
	"elite_blog/internal/storage/postgresql"
	redisapp "elite_blog/internal/storage/redis"
	httprouters "elite_blog/internal/transport/http"
)

type App struct {
	log *slog.Logger
	cfg *config.Config

	HTTPServer *httpapp.Server
	Sweeper    *sweep.Sweeper
	Users      *users.UserService
	Categories *categories.CategoryStore

	db    *postgresql.Storage
	redis *redisapp.Client
}

// New connects postgres, redis and the media store and wires every service.
// The schema is migrated before anything else touches the database.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	db, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	files, uploadsDir, err := NewMediaStore(cfg)
	if err != nil {
		db.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	repo := repository.NewRepository(db.Pool())

	categoryStore := categories.NewCategoryStore(log, repo.Category, cfg.Categories.CacheTTL)
	tokenService := tokens.NewTokenService(log, repository.NewRedisTokenRepo(rdb), cfg.Auth.TokenSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authService := auth.New(log, repo.Admin, tokenService)
	sweeper := sweep.NewSweeper(log, repo.Upload, files, cfg.Sweeper.GracePeriod)

	routers := httprouters.NewRouter(log, httprouters.Services{
		Auth:       authService,
		Blog:       blog.NewBlogService(log, repo.Post, repo.Upload, categoryStore, files),
		Events:     events.NewEventService(log, repo.Post, categoryStore),
		Categories: categoryStore,
		Gallery:    gallery.NewGalleryService(log, repo.Gallery, repo.Upload, files),
		Media:      media.NewMediaService(log, repo.Upload, files, cfg.Uploads.MaxSize),
		Sweeper:    sweeper,
	})
	routers.AddHealthCheck("postgres", func(ctx context.Context) error { return db.Pool().Ping(ctx) })
	routers.AddHealthCheck("redis", rdb.HealthCheck)
	if check, ok := mediaHealthCheck(files); ok {
		routers.AddHealthCheck("object_storage", check)
	}

	server := httpapp.New(log, cfg.HTTP, cfg.Auth.SessionSecret, routers, middleware.AdminGate(log, authService))
	if uploadsDir != "" {
		server.ServeUploads(uploadsDir)
	}
	server.BuildRouters()

	return &App{
		log:        log,
		cfg:        cfg,
		HTTPServer: server,
		Sweeper:    sweeper,
		Users:      users.NewUserService(log, repo.Admin),
		Categories: categoryStore,
		db:         db,
		redis:      rdb,
	}, nil
}

// NewMediaStore picks the storage driver. For the local driver the returned
// directory is served under /uploads.
func NewMediaStore(cfg *config.Config) (objectstorage.Storage, string, error) {
	switch cfg.ObjectStorage.Driver {
	case config.StorageDriverS3:
		s3, err := objectstorage.NewS3(objectstorage.S3Config{
			Bucket:          cfg.ObjectStorage.Bucket,
			Region:          cfg.ObjectStorage.Region,
			Endpoint:        cfg.ObjectStorage.Endpoint,
			AccessKeyID:     cfg.ObjectStorage.AccessKeyID,
			SecretAccessKey: cfg.ObjectStorage.SecretAccessKey,
			PublicBaseURL:   cfg.ObjectStorage.PublicBaseURL,
			PathStyle:       cfg.ObjectStorage.PathStyle,
		})
		if err != nil {
			return nil, "", err
		}
		return s3, "", nil

	case config.StorageDriverLocal:
		local, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
		if err != nil {
			return nil, "", err
		}
		return local, local.GetBaseDir(), nil
	}

	return nil, "", fmt.Errorf("unknown storage driver %q", cfg.ObjectStorage.Driver)
}

// mediaHealthCheck exposes the store's own reachability check, if it has one.
func mediaHealthCheck(files objectstorage.Storage) (httprouters.HealthCheck, bool) {
	hc, ok := files.(objectstorage.HealthChecker)
	if !ok {
		return nil, false
	}

	return hc.HealthCheck, true
}

// Bootstrap creates the configured admin when it does not exist yet.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.cfg.Auth.AdminEmail == "" {
		return nil
	}

	id, created, err := a.Users.EnsureAdmin(ctx, a.cfg.Auth.AdminEmail, a.cfg.Auth.AdminPassword)
	if err != nil {
		return fmt.Errorf("app.Bootstrap: %w", err)
	}
	if created {
		a.log.Info("admin created", slog.String("admin_id", id.String()))
	}

	return nil
}

// StartSweeper schedules the orphan sweeper when enabled. The returned channel
// closes once the loop exits.
func (a *App) StartSweeper(ctx context.Context) <-chan struct{} {
	if !a.cfg.Sweeper.Enabled {
		done := make(chan struct{})
		close(done)
		return done
	}

	return a.Sweeper.Schedule(ctx, a.cfg.Sweeper.Interval)
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("failed to stop http server", slog.String("error", err.Error()))
	}
	if err := a.redis.Close(); err != nil {
		a.log.Warn("failed to close redis", slog.String("error", err.Error()))
	}
	a.db.Stop()
}
