package http

import (
	"log/slog"
	"net/http"

	"elite_blog/internal/transport/http/dto"
	"elite_blog/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListGallery godoc
// @Summary List gallery images
// @Tags gallery
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.GalleryImageResponse}
// @Router /api/v1/gallery [get]
func (r *Routers) ListGallery(c echo.Context) error {
	const op = "http.routers.ListGallery"
	log := r.log.With(slog.String("op", op))

	images, err := r.Gallery.ListImages(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewGalleryImageResponses(images)))
}

// CreateGalleryImages godoc
// @Summary Add gallery images
// @Description One image per key, all sharing title and photographer.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGalleryRequest true "Images"
// @Success 201 {object} response.Response{data=[]dto.GalleryImageResponse}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/admin/gallery [post]
func (r *Routers) CreateGalleryImages(c echo.Context) error {
	const op = "http.routers.CreateGalleryImages"
	log := r.log.With(slog.String("op", op))

	var req dto.CreateGalleryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	images, err := r.Gallery.CreateImages(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewGalleryImageResponses(images)))
}

// DeleteGalleryImage godoc
// @Summary Delete a gallery image
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Image id"
// @Success 204
// @Success 207 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/gallery/{id} [delete]
func (r *Routers) DeleteGalleryImage(c echo.Context) error {
	const op = "http.routers.DeleteGalleryImage"
	log := r.log.With(slog.String("op", op))

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := r.Gallery.DeleteImage(c.Request().Context(), id); err != nil {
		return r.fail(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}
