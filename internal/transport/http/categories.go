package http

import (
	"log/slog"
	"net/http"
	"strings"

	"elite_blog/internal/middleware"
	"elite_blog/internal/transport/http/dto"
	"elite_blog/internal/transport/http/dto/response"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Category}
// @Router /api/v1/categories [get]
func (r *Routers) ListCategories(c echo.Context) error {
	const op = "http.routers.ListCategories"
	log := r.log.With(slog.String("op", op))

	categories, err := r.Categories.List(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(categories))
}

// CreateCategory godoc
// @Summary Create a category
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Category"
// @Success 201 {object} response.Response{data=models.Category}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/admin/categories [post]
func (r *Routers) CreateCategory(c echo.Context) error {
	const op = "http.routers.CreateCategory"
	log := r.log.With(slog.String("op", op))

	var req dto.CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := r.Categories.Add(c.Request().Context(), req.Name)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(category))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Posts in the category stay, without a category.
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Category id"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/categories/{id} [delete]
func (r *Routers) DeleteCategory(c echo.Context) error {
	const op = "http.routers.DeleteCategory"
	log := r.log.With(slog.String("op", op))

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := r.Categories.Remove(c.Request().Context(), id); err != nil {
		return r.fail(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetSelectedCategory godoc
// @Summary Selected category
// @Description The category this visitor filters by, kept in the session.
// @Tags categories
// @Produce json
// @Success 200 {object} response.Response{data=dto.SelectedCategoryResponse}
// @Router /api/v1/categories/selected [get]
func (r *Routers) GetSelectedCategory(c echo.Context) error {
	name := selectedCategory(c)

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.SelectedCategoryResponse{
		Name:     name,
		Selected: name != "",
	}))
}

// SelectCategory godoc
// @Summary Select a category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body dto.SelectCategoryRequest true "Category name"
// @Success 200 {object} response.Response{data=dto.SelectedCategoryResponse}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/categories/selected [put]
func (r *Routers) SelectCategory(c echo.Context) error {
	const op = "http.routers.SelectCategory"
	log := r.log.With(slog.String("op", op))

	var req dto.SelectCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	category, err := r.Categories.Resolve(c.Request().Context(), strings.TrimSpace(req.Name))
	if err != nil {
		return r.fail(c, log, err)
	}

	if err := saveSelection(c, category.Name); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.SelectedCategoryResponse{
		Name:     category.Name,
		Selected: true,
	}))
}

// ClearSelectedCategory godoc
// @Summary Clear the category selection
// @Tags categories
// @Produce json
// @Success 200 {object} response.Response{data=dto.SelectedCategoryResponse}
// @Router /api/v1/categories/selected [delete]
func (r *Routers) ClearSelectedCategory(c echo.Context) error {
	const op = "http.routers.ClearSelectedCategory"
	log := r.log.With(slog.String("op", op))

	if err := saveSelection(c, ""); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.SelectedCategoryResponse{}))
}

func saveSelection(c echo.Context, name string) error {
	sess, err := session.Get(middleware.SessionName, c)
	if err != nil {
		return err
	}

	if name == "" {
		delete(sess.Values, middleware.SessionCategory)
	} else {
		sess.Values[middleware.SessionCategory] = name
	}

	return sess.Save(c.Request(), c.Response())
}
