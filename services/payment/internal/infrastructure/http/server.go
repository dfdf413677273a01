package http

import (
	"context"
	"net"
	"net/http"

	apperrors "github.com/creatorhub/support-backend/pkg/errors"
	pkglogger "github.com/creatorhub/support-backend/pkg/logger"
	handlers "github.com/creatorhub/support-backend/services/payment/internal/adapter/handler/http"
	"github.com/creatorhub/support-backend/services/payment/internal/config"
	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/middleware/auth"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

// NewServer builds the echo server with every route mounted. Request
// metrics go to registry, which also backs /metrics.
func NewServer(cfg *config.Config, logger *zap.Logger, h *handlers.Handlers, registry *prometheus.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = newIPExtractor(cfg.Server.HTTP.TrustedProxies)
	e.Validator = handlers.NewRequestValidator()
	pkglogger.WithEchoLogger(e, logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: newRequestID,
	}))
	e.Use(pkglogger.NewEchoRequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			handlers.IdempotencyKeyHeader,
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  cfg.Service.Name,
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(newRateLimiter(cfg.RateLimit))

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: registry,
	}))

	if !cfg.Auth.Enabled() {
		logger.Warn("auth.jwt_secret is empty, payment routes are unauthenticated")
	}
	h.RegisterRoutes(e, auth.JWTMiddleware(auth.JWTConfig{
		Secret:    cfg.Auth.JWTSecret,
		Logger:    logger,
		SkipPaths: handlers.PublicPaths,
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
	}
}

func (s *Server) Start() error {
	addr := s.config.Server.HTTP.Addr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for in-process tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// newRateLimiter limits each client IP to cfg.Requests per cfg.Window.
// Health and metrics checks are exempt.
func newRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
			Burst:     cfg.Requests,
			ExpiresIn: cfg.Window,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewAppError(apperrors.ErrInternal, http.StatusText(http.StatusInternalServerError), err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.NewAppError(apperrors.ErrRateLimited, domainErrors.MsgTooManyRequests, err)
		},
	})
}

// newIPExtractor believes X-Forwarded-For only when the peer is one of
// trustedProxies. Without proxies the socket address is the client.
func newIPExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

func newRequestID() string {
	id, err := gonanoid.New()
	if err != nil {
		return ""
	}
	return id
}
