package httpapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"elite_blog/internal/config"
	"elite_blog/internal/domain/models"
	appmiddleware "elite_blog/internal/middleware"
	httprouters "elite_blog/internal/transport/http"

	"github.com/stretchr/testify/suite"
)

type rejectAll struct{}

func (rejectAll) ValidateAccess(context.Context, string) (models.TokenClaims, error) {
	return models.TokenClaims{}, errors.New("token rejected")
}

type ServerSuite struct {
	suite.Suite
	srv *Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	log := slog.Default()
	routers := httprouters.NewRouter(log, httprouters.Services{})
	routers.AddHealthCheck("noop", func(context.Context) error { return nil })

	srv := New(log, config.HTTPConfig{Port: "0", CORSOrigins: []string{"*"}}, "test-session-secret", routers,
		appmiddleware.AdminGate(log, rejectAll{}))
	srv.ServeUploads(s.T().TempDir())
	srv.BuildRouters()

	s.srv = srv
}

func (s *ServerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) TestAdminRoutesAreGated() {
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/admin/posts"},
		{http.MethodPost, "/api/v1/admin/posts"},
		{http.MethodPatch, "/api/v1/admin/posts/1"},
		{http.MethodDelete, "/api/v1/admin/posts/1"},
		{http.MethodPost, "/api/v1/admin/categories"},
		{http.MethodDelete, "/api/v1/admin/categories/1"},
		{http.MethodPost, "/api/v1/admin/gallery"},
		{http.MethodDelete, "/api/v1/admin/gallery/1"},
		{http.MethodPost, "/api/v1/admin/uploads/blog"},
		{http.MethodGet, "/api/v1/admin/storage/orphans"},
		{http.MethodPost, "/api/v1/admin/storage/sweep"},
		{http.MethodPost, "/api/v1/auth/logout"},
	}

	for _, rt := range routes {
		s.Run(rt.method+" "+rt.path, func() {
			s.Equal(http.StatusUnauthorized, s.serve(httptest.NewRequest(rt.method, rt.path, nil)).Code)

			req := httptest.NewRequest(rt.method, rt.path, nil)
			req.Header.Set("Authorization", "Bearer forged")
			s.Equal(http.StatusUnauthorized, s.serve(req).Code)
		})
	}
}

func (s *ServerSuite) TestOpsRoutes() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"noop":"ok"`)

	rec = s.serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "http_requests_total")

	s.Equal(http.StatusNotFound, s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)).Code)
}

func (s *ServerSuite) TestPublicRoutesAreOpen() {
	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/auth/state", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), string(models.AuthStateUnauthenticated))
}
