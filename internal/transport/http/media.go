package http

import (
	"log/slog"
	"net/http"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/transport/http/dto"
	"elite_blog/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

const uploadField = "files"

// UploadFiles godoc
// @Summary Upload images
// @Description Stores the files under the collection in order. Uploaded keys stay pending until a post or gallery entry uses them.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param collection path string true "blog or gallery"
// @Param files formData file true "Images"
// @Success 201 {object} response.Response{data=dto.UploadResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} dto.UploadFailureResponse
// @Failure 415 {object} dto.UploadFailureResponse
// @Failure 502 {object} dto.UploadFailureResponse
// @Router /api/v1/admin/uploads/{collection} [post]
func (r *Routers) UploadFiles(c echo.Context) error {
	const op = "http.routers.UploadFiles"
	log := r.log.With(slog.String("op", op))

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails("multipart form expected"))
	}
	defer form.RemoveAll() //nolint:errcheck

	files, err := r.Media.UploadBatch(c.Request().Context(), dto.UploadInput{
		Collection: models.Collection(c.Param("collection")),
		Files:      form.File[uploadField],
	})
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.UploadResponse{Files: files}))
}

// ListOrphans godoc
// @Summary Orphaned files
// @Description Dry run of the sweeper: stored files no record or recent upload references.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.SweepReport}
// @Router /api/v1/admin/storage/orphans [get]
func (r *Routers) ListOrphans(c echo.Context) error {
	const op = "http.routers.ListOrphans"
	log := r.log.With(slog.String("op", op))

	report, err := r.Sweeper.Run(c.Request().Context(), true)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(report))
}

// Sweep godoc
// @Summary Delete orphaned files
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dry_run query bool false "Only report"
// @Success 200 {object} response.Response{data=models.SweepReport}
// @Failure 409 {object} response.ErrorResponse "A sweep is already running"
// @Router /api/v1/admin/storage/sweep [post]
func (r *Routers) Sweep(c echo.Context) error {
	const op = "http.routers.Sweep"
	log := r.log.With(slog.String("op", op))

	var req dto.SweepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if c.QueryParam("dry_run") == "true" {
		req.DryRun = true
	}

	report, err := r.Sweeper.Run(c.Request().Context(), req.DryRun)
	if err != nil {
		return r.fail(c, log, err)
	}

	log.Info("sweep requested", slog.Bool("dry_run", req.DryRun), slog.Int("deleted", len(report.Deleted)))

	return c.JSON(http.StatusOK, response.SuccessResponse(report))
}
