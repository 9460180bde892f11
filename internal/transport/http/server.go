package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/logger/sl"
	"elite_blog/internal/services/auth"
	sweep "elite_blog/internal/services/sweep_service"
	tokens "elite_blog/internal/services/token_service"
	"elite_blog/internal/storage"
	"elite_blog/internal/transport/http/dto"
	"elite_blog/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"

	_ "elite_blog/docs"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	Logout(ctx context.Context, claims models.TokenClaims) error
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

type BlogService interface {
	ListPosts(ctx context.Context, q dto.PostListQuery, order models.PostOrder) ([]models.Post, error)
	GetPost(ctx context.Context, id int64) (models.Post, error)
	CreatePost(ctx context.Context, req dto.CreatePostRequest) (models.Post, error)
	UpdatePost(ctx context.Context, id int64, req dto.UpdatePostRequest) (models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type EventService interface {
	ListEvents(ctx context.Context, now time.Time, q dto.PostListQuery) (models.Events, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Add(ctx context.Context, name string) (models.Category, error)
	Remove(ctx context.Context, id int64) error
	Resolve(ctx context.Context, name string) (models.Category, error)
}

type GalleryService interface {
	ListImages(ctx context.Context) ([]models.GalleryImage, error)
	CreateImages(ctx context.Context, req dto.CreateGalleryRequest) ([]models.GalleryImage, error)
	DeleteImage(ctx context.Context, id int64) error
}

type MediaService interface {
	UploadBatch(ctx context.Context, input dto.UploadInput) ([]models.StoredFile, error)
}

type Sweeper interface {
	Run(ctx context.Context, dryRun bool) (models.SweepReport, error)
}

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

type Services struct {
	Auth       AuthService
	Blog       BlogService
	Events     EventService
	Categories CategoryService
	Gallery    GalleryService
	Media      MediaService
	Sweeper    Sweeper
}

type Routers struct {
	log          *slog.Logger
	Auth         AuthService
	Blog         BlogService
	Events       EventService
	Categories   CategoryService
	Gallery      GalleryService
	Media        MediaService
	Sweeper      Sweeper
	healthChecks map[string]HealthCheck
	now          func() time.Time
}

func NewRouter(log *slog.Logger, s Services) *Routers {
	return &Routers{
		log:          log,
		Auth:         s.Auth,
		Blog:         s.Blog,
		Events:       s.Events,
		Categories:   s.Categories,
		Gallery:      s.Gallery,
		Media:        s.Media,
		Sweeper:      s.Sweeper,
		healthChecks: make(map[string]HealthCheck),
		now:          time.Now,
	}
}

func (r *Routers) AddHealthCheck(name string, check HealthCheck) {
	r.healthChecks[name] = check
}

// Health godoc
// @Summary Health check
// @Description Pings every backing service.
// @Tags ops
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 503 {object} response.Response{data=map[string]string}
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(r.healthChecks))
	for name, check := range r.healthChecks {
		if err := check(ctx); err != nil {
			r.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
			result[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}

	if status != http.StatusOK {
		return c.JSON(status, response.Response{Status: "error", Data: result})
	}

	return c.JSON(status, response.SuccessResponse(result))
}

// fail maps a service error onto a status code and a JSON body.
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error) error {
	var (
		vErr *models.ValidationError
		pErr *models.PartialDeleteError
		bErr *models.UploadBatchError
	)

	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", strings.Join(vErr.Errors, "; ")))

	case errors.As(err, &bErr):
		status := http.StatusBadGateway
		code := "upload_failed"
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			status, code = http.StatusRequestEntityTooLarge, "file_too_large"
		case errors.Is(err, storage.ErrInvalidFileType):
			status, code = http.StatusUnsupportedMediaType, "invalid_file_type"
		default:
			log.Error("upload batch failed", sl.Err(err))
		}
		uploaded := bErr.Uploaded
		if uploaded == nil {
			uploaded = []models.StoredFile{}
		}
		return c.JSON(status, dto.UploadFailureResponse{
			Status:     "error",
			Error:      code,
			Details:    bErr.Err.Error(),
			FailedFile: bErr.FailedFile,
			Uploaded:   uploaded,
		})

	case errors.As(err, &pErr):
		return c.JSON(http.StatusMultiStatus, response.Response{
			Status:  "partial",
			Data:    map[string][]string{"failed_keys": pErr.FailedKeys},
			Message: "record deleted, some stored files could not be removed",
		})

	case errors.Is(err, storage.ErrPostNotFound),
		errors.Is(err, storage.ErrGalleryImageNotFound),
		errors.Is(err, storage.ErrCategoryNotFound):
		return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("not_found", rootMessage(err)))

	case errors.Is(err, storage.ErrUploadNotFound):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("upload_not_found", rootMessage(err)))

	case errors.Is(err, storage.ErrCategoryExists), errors.Is(err, storage.ErrUserExists):
		return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails("conflict", rootMessage(err)))

	case errors.Is(err, sweep.ErrSweepRunning):
		return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails("sweep_running", sweep.ErrSweepRunning.Error()))

	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails(auth.ErrInvalidCredentials.Error()))

	case errors.Is(err, tokens.ErrInvalidToken), errors.Is(err, tokens.ErrTokenRevoked):
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails("invalid token"))

	case errors.Is(err, context.Canceled):
		return c.NoContent(499)
	}

	log.Error("request failed", sl.Err(err))

	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

// rootMessage strips the "op: op: " chain and keeps the innermost message.
func rootMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		storage.ErrPostNotFound,
		storage.ErrGalleryImageNotFound,
		storage.ErrCategoryNotFound,
		storage.ErrUploadNotFound,
		storage.ErrCategoryExists,
		storage.ErrUserExists,
	} {
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
	}

	return msg
}

// bindAndValidate decodes the request into req. A returned error is an
// *echo.HTTPError carrying the JSON body for the client.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	return nil
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_id", name+" must be a positive integer"))
	}

	return id, nil
}
