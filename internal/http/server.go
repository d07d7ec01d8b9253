// Package http provides the HTTP API for recalld.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fernwehlabs/recalld/internal/corpus"
	"github.com/fernwehlabs/recalld/internal/embeddings"
	"github.com/fernwehlabs/recalld/internal/logging"
	"github.com/fernwehlabs/recalld/internal/recall"
	"github.com/fernwehlabs/recalld/internal/tenant"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server exposes the ingestion and query entry points over HTTP.
type Server struct {
	echo    *echo.Echo
	service *recall.Service
	store   *corpus.Store
	logger  *logging.Logger
	config  *Config
}

// NewServer creates the HTTP server.
func NewServer(service *recall.Service, store *corpus.Store, logger *logging.Logger, cfg *Config) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("recall service cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("corpus store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 4000}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestContextMiddleware())
	e.Use(NewHTTPMetrics(logger.Underlying()).Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info(c.Request().Context(), "http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	})

	s := &Server{
		echo:    e,
		service: service,
		store:   store,
		logger:  logger,
		config:  cfg,
	}
	s.registerRoutes()
	return s, nil
}

// requestContextMiddleware threads the request ID and demo tenant into
// the request context for log correlation and per-tenant filtering.
func requestContextMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
				ctx = logging.WithRequestID(ctx, requestID)
			}
			ctx = tenant.WithUserID(ctx, tenant.DemoUserID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/ingest/text", s.handleIngestText)
	v1.POST("/query", s.handleQuery)
}

// Echo returns the underlying echo instance so the caller can attach
// extra handlers (e.g. /metrics).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	sources, chunks := s.store.CountsForUser(tenant.UserIDFromContext(c.Request().Context()))
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sources: sources, Chunks: chunks})
}

func (s *Server) handleIngestText(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ingest := recall.IngestRequest{Text: req.Text, Title: req.Title}
	if req.ContentTime != "" {
		t, err := time.Parse(time.RFC3339, req.ContentTime)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "content_time must be RFC 3339")
		}
		ingest.ContentTime = t
	}

	result, err := s.service.Ingest(c.Request().Context(), ingest)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, IngestResponse{
		SourceID:    result.SourceID,
		ChunksAdded: result.ChunksAdded,
	})
}

func (s *Server) handleQuery(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.service.Query(c.Request().Context(), recall.QueryRequest{Question: req.Question})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, QueryResponse{
		Answer:           result.Answer,
		ContextUsedCount: result.ContextUsedCount,
	})
}

// mapServiceError translates the recall error taxonomy to HTTP status
// codes. Generation failures never arrive here; the service absorbs
// them into degraded answers.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, recall.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, recall.ErrEmptyCorpus):
		return echo.NewHTTPError(http.StatusConflict, recall.ErrEmptyCorpus.Error())
	case errors.Is(err, embeddings.ErrUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "embedding capability unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// Start starts the HTTP server and blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
