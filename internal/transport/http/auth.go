package http

import (
	"log/slog"
	"net/http"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/middleware"
	"elite_blog/internal/transport/http/dto/request"
	"elite_blog/internal/transport/http/dto/response"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// Login godoc
// @Summary Admin sign-in
// @Description Checks the credentials, returns an access/refresh token pair and marks the session as authenticated.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/auth/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"
	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := r.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return r.fail(c, log, err)
	}

	sess, err := session.Get(middleware.SessionName, c)
	if err != nil {
		return r.fail(c, log, err)
	}
	sess.Values[middleware.SessionAdminID] = pair.AdminID.String()
	sess.Values[middleware.SessionEmail] = models.NormalizeEmail(req.Email)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Refresh godoc
// @Summary Rotate tokens
// @Description Exchanges a refresh token for a new pair. The presented token stops working.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"
	log := r.log.With(slog.String("op", op))

	var req request.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := r.Auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Logout godoc
// @Summary Sign out
// @Description Revokes the access token, drops refresh tokens and clears the session.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/auth/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"
	log := r.log.With(slog.String("op", op))

	claims, ok := middleware.Claims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := r.Auth.Logout(c.Request().Context(), claims); err != nil {
		return r.fail(c, log, err)
	}

	if sess, err := session.Get(middleware.SessionName, c); err == nil {
		delete(sess.Values, middleware.SessionAdminID)
		delete(sess.Values, middleware.SessionEmail)
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Warn("failed to clear session", slog.String("error", err.Error()))
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{"state": string(models.AuthStateUnauthenticated)}))
}

// State godoc
// @Summary Session state
// @Description Reports whether the caller's session is signed in.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /api/v1/auth/state [get]
func (r *Routers) State(c echo.Context) error {
	state := models.AuthStateUnauthenticated
	data := map[string]string{}

	if claims, ok := middleware.SessionClaims(c); ok {
		state = models.AuthStateAuthenticated
		data["email"] = claims.Email
	}
	data["state"] = string(state)

	return c.JSON(http.StatusOK, response.SuccessResponse(data))
}
