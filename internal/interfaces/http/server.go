// Package http exposes the form catalogue, drafts, records and reference
// data over REST.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/erp-forms/internal/application/service"
	"github.com/garyjia/erp-forms/internal/export"
	"github.com/garyjia/erp-forms/internal/metrics"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		Mode:            gin.ReleaseMode,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services the handlers call.
type Services struct {
	Database   Pinger
	Forms      service.FormService
	Drafts     service.DraftService
	References service.ReferenceService
	Exporter   *export.InvoiceExporter
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	gin.SetMode(config.Mode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error("Handler panicked", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Error: "internal error"})
	}))
	s.router.Use(s.observe())
}

// observe logs each request and records its latency under the matched
// route template, so /api/drafts/:id is one series rather than one per id.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		s.logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", route,
			"status", status,
			"latency", elapsed.String(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)

	s.router.GET("/health", handlers.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		// Catalogue and stateless computation
		api.GET("/forms", handlers.ListForms)
		api.GET("/forms/:form", handlers.GetForm)
		api.POST("/forms/:form/compute", handlers.ComputeForm)
		api.POST("/forms/:form/validate", handlers.ValidateForm)

		// Drafts
		api.POST("/drafts", handlers.OpenDraft)
		api.GET("/drafts/:id", handlers.GetDraft)
		api.DELETE("/drafts/:id", handlers.DiscardDraft)
		api.PUT("/drafts/:id/fields/:field", handlers.SetDraftField)
		api.POST("/drafts/:id/lists/:field", handlers.AddDraftListItem)
		api.PUT("/drafts/:id/lists/:field/:index", handlers.SetDraftListItem)
		api.DELETE("/drafts/:id/lists/:field/:index", handlers.RemoveDraftListItem)
		api.POST("/drafts/:id/submit", handlers.SubmitDraft)

		// Records
		api.GET("/records/:form", handlers.ListRecords)
		api.GET("/records/:form/:id", handlers.GetRecord)
		api.GET("/records/:form/:id/export", handlers.ExportInvoice)

		// Reference data
		api.GET("/references", handlers.ListReferenceKinds)
		api.GET("/references/:kind", handlers.GetReferences)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully. A bind
// failure is returned before any request is served.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Address(), err)
	}

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info("HTTP server listening", "address", listener.Addr().String())

	served := make(chan error, 1)
	go func() { served <- s.httpServer.Serve(listener) }()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop drains in-flight requests within ShutdownTimeout.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Router exposes the gin engine to tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
