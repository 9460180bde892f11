package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	SessionName = "session"

	SessionAdminID  = "admin_id"
	SessionEmail    = "email"
	SessionCategory = "selected_category"

	claimsKey = "admin_claims"
)

type AccessValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (models.TokenClaims, error)
}

// AdminGate lets a request through with a valid, non-revoked Bearer access
// token or an authenticated session. Anything else gets 401.
func AdminGate(log *slog.Logger, validator AccessValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			const op = "middleware.AdminGate"

			if token, ok := bearerToken(c.Request()); ok {
				claims, err := validator.ValidateAccess(c.Request().Context(), token)
				if err != nil {
					log.Warn("access token rejected", slog.String("op", op), slog.String("error", err.Error()))
					return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails("invalid or revoked access token"))
				}
				c.Set(claimsKey, claims)
				return next(c)
			}

			if claims, ok := SessionClaims(c); ok {
				c.Set(claimsKey, claims)
				return next(c)
			}

			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed.WithDetails("authentication required"))
		}
	}
}

// Claims returns what AdminGate attached to the request.
func Claims(c echo.Context) (models.TokenClaims, bool) {
	claims, ok := c.Get(claimsKey).(models.TokenClaims)
	return claims, ok
}

// SessionClaims reads the admin identity stored in the session cookie.
func SessionClaims(c echo.Context) (models.TokenClaims, bool) {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return models.TokenClaims{}, false
	}

	raw, _ := sess.Values[SessionAdminID].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return models.TokenClaims{}, false
	}

	email, _ := sess.Values[SessionEmail].(string)

	return models.TokenClaims{AdminID: id, Email: email}, true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}
