package http

import (
	"errors"
	"log/slog"
	"net/http"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/lib/markdown"
	"elite_blog/internal/middleware"
	"elite_blog/internal/transport/http/dto"
	"elite_blog/internal/transport/http/dto/response"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// ListPosts godoc
// @Summary List blog posts
// @Description Newest first. Filters by category id or name; without a filter the visitor's selected category applies.
// @Tags posts
// @Produce json
// @Param category query string false "Category name"
// @Param category_id query int false "Category id"
// @Success 200 {object} response.Response{data=[]dto.PostResponse}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/posts [get]
func (r *Routers) ListPosts(c echo.Context) error {
	const op = "http.routers.ListPosts"
	log := r.log.With(slog.String("op", op))

	var q dto.PostListQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if q.Category == "" && q.CategoryID == 0 {
		q.Category = selectedCategory(c)
	}

	posts, err := r.Blog.ListPosts(c.Request().Context(), q, models.PostOrderDateDesc)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.publicPosts(log, posts)))
}

// GetPost godoc
// @Summary Get a blog post
// @Tags posts
// @Produce json
// @Param id path int true "Post id"
// @Success 200 {object} response.Response{data=dto.PostResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/posts/{id} [get]
func (r *Routers) GetPost(c echo.Context) error {
	const op = "http.routers.GetPost"
	log := r.log.With(slog.String("op", op))

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := r.Blog.GetPost(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.publicPost(log, post)))
}

// ListEvents godoc
// @Summary Events
// @Description Posts dated today or later in ascending order, and earlier posts newest first.
// @Tags posts
// @Produce json
// @Param category query string false "Category name"
// @Param category_id query int false "Category id"
// @Success 200 {object} response.Response{data=dto.EventsResponse}
// @Router /api/v1/events [get]
func (r *Routers) ListEvents(c echo.Context) error {
	const op = "http.routers.ListEvents"
	log := r.log.With(slog.String("op", op))

	var q dto.PostListQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if q.Category == "" && q.CategoryID == 0 {
		q.Category = selectedCategory(c)
	}

	events, err := r.Events.ListEvents(c.Request().Context(), r.now(), q)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.EventsResponse{
		Upcoming: r.publicPosts(log, events.Upcoming),
		Past:     r.publicPosts(log, events.Past),
	}))
}

// AdminListPosts godoc
// @Summary List posts for the admin panel
// @Description Most recently created first, with storage keys.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]dto.PostResponse}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/admin/posts [get]
func (r *Routers) AdminListPosts(c echo.Context) error {
	const op = "http.routers.AdminListPosts"
	log := r.log.With(slog.String("op", op))

	var q dto.PostListQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	posts, err := r.Blog.ListPosts(c.Request().Context(), q, models.PostOrderCreatedDesc)
	if err != nil {
		return r.fail(c, log, err)
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, adminPost(p))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(out))
}

// CreatePost godoc
// @Summary Create a post
// @Description image_keys must be pending blog uploads; the first becomes the primary image.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} response.Response{data=dto.PostResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Category not found"
// @Router /api/v1/admin/posts [post]
func (r *Routers) CreatePost(c echo.Context) error {
	const op = "http.routers.CreatePost"
	log := r.log.With(slog.String("op", op))

	var req dto.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := r.Blog.CreatePost(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(adminPost(post)))
}

// UpdatePost godoc
// @Summary Update a post
// @Description Partial update. Images dropped from image_keys are removed from storage; 207 when that fails.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post id"
// @Param request body dto.UpdatePostRequest true "Changed fields"
// @Success 200 {object} response.Response{data=dto.PostResponse}
// @Success 207 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/posts/{id} [patch]
func (r *Routers) UpdatePost(c echo.Context) error {
	const op = "http.routers.UpdatePost"
	log := r.log.With(slog.String("op", op))

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := r.Blog.UpdatePost(c.Request().Context(), id, req)
	if err != nil {
		var pErr *models.PartialDeleteError
		if errors.As(err, &pErr) {
			return c.JSON(http.StatusMultiStatus, response.Response{
				Status: "partial",
				Data: map[string]interface{}{
					"post":        adminPost(post),
					"failed_keys": pErr.FailedKeys,
				},
				Message: "post updated, some replaced files could not be removed",
			})
		}
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(adminPost(post)))
}

// DeletePost godoc
// @Summary Delete a post
// @Description Deletes the post, then its stored images. 207 lists images that could not be removed.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post id"
// @Success 204
// @Success 207 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/admin/posts/{id} [delete]
func (r *Routers) DeletePost(c echo.Context) error {
	const op = "http.routers.DeletePost"
	log := r.log.With(slog.String("op", op))

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := r.Blog.DeletePost(c.Request().Context(), id); err != nil {
		return r.fail(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (r *Routers) publicPost(log *slog.Logger, p models.Post) dto.PostResponse {
	resp := dto.NewPostResponse(p)

	html, err := markdown.Render(p.Content)
	if err != nil {
		log.Warn("failed to render post content", slog.Int64("post_id", p.ID), slog.String("error", err.Error()))
		return resp
	}
	resp.ContentHTML = html

	return resp
}

func (r *Routers) publicPosts(log *slog.Logger, posts []models.Post) []dto.PostResponse {
	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, r.publicPost(log, p))
	}

	return out
}

func adminPost(p models.Post) dto.PostResponse {
	resp := dto.NewPostResponse(p)
	resp.ImageKeys = p.ImageKeys()

	return resp
}

func selectedCategory(c echo.Context) string {
	sess, err := session.Get(middleware.SessionName, c)
	if err != nil {
		return ""
	}

	name, _ := sess.Values[middleware.SessionCategory].(string)

	return name
}
