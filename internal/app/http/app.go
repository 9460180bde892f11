package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"elite_blog/internal/config"
	appmiddleware "elite_blog/internal/middleware"
	httprouters "elite_blog/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	gate    echo.MiddlewareFunc
	addr    string
	uploads string
}

// New builds the echo instance with the shared middleware chain. gate guards
// the admin routes and logout.
func New(log *slog.Logger, cfg config.HTTPConfig, sessionSecret string, routers *httprouters.Routers, gate echo.MiddlewareFunc) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Timeout
	e.Server.WriteTimeout = cfg.Timeout
	e.Server.IdleTimeout = cfg.IdleTimeout

	e.Validator = &CustomValidator{validator: validator.New()}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
	}))
	e.Use(middleware.Recover())
	e.Use(session.Middleware(store))
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			log.Info("request", attrs...)

			return nil
		},
	}))

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		gate:    gate,
		addr:    net.JoinHostPort(cfg.Host, cfg.Port),
	}
}

// ServeUploads exposes dir under /uploads. Only used with the local storage driver.
func (s *Server) ServeUploads(dir string) {
	s.uploads = dir
}

// Handler is the fully routed echo instance.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info("starting http server", slog.String("op", op), slog.String("addr", s.addr))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s: could not shutdown server gracefully: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	if s.uploads != "" {
		s.e.Static("/uploads", s.uploads)
	}

	api := s.e.Group("/api/v1")
	{
		api.GET("/posts", s.routers.ListPosts)
		api.GET("/posts/:id", s.routers.GetPost)
		api.GET("/events", s.routers.ListEvents)
		api.GET("/gallery", s.routers.ListGallery)

		api.GET("/categories", s.routers.ListCategories)
		api.GET("/categories/selected", s.routers.GetSelectedCategory)
		api.PUT("/categories/selected", s.routers.SelectCategory)
		api.DELETE("/categories/selected", s.routers.ClearSelectedCategory)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", s.routers.Login)
			authGroup.POST("/refresh", s.routers.Refresh)
			authGroup.POST("/logout", s.routers.Logout, s.gate)
			authGroup.GET("/state", s.routers.State)
		}

		admin := api.Group("/admin", s.gate)
		{
			admin.GET("/posts", s.routers.AdminListPosts)
			admin.POST("/posts", s.routers.CreatePost)
			admin.PATCH("/posts/:id", s.routers.UpdatePost)
			admin.DELETE("/posts/:id", s.routers.DeletePost)

			admin.POST("/categories", s.routers.CreateCategory)
			admin.DELETE("/categories/:id", s.routers.DeleteCategory)

			admin.POST("/gallery", s.routers.CreateGalleryImages)
			admin.DELETE("/gallery/:id", s.routers.DeleteGalleryImage)

			admin.POST("/uploads/:collection", s.routers.UploadFiles)

			admin.GET("/storage/orphans", s.routers.ListOrphans)
			admin.POST("/storage/sweep", s.routers.Sweep)
		}
	}
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}

	return len(origins) == 0
}
