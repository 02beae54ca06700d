// Package http is the presentation adapter: it translates HTTP requests
// into engine calls and typed rejections into status codes. It holds no
// business rules of its own.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter.
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates the HTTP server and wires its routes.
func NewServer(config ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		config:   config,
		router:   router,
		handlers: handlers,
		logger:   logger,
	}

	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)

	api := s.router.Group("/api/v1")

	api.POST("/auth/login", s.handlers.Login)
	api.POST("/auth/logout", s.handlers.Logout)

	procedures := api.Group("/procedures", s.handlers.RequireSession)
	procedures.GET("/current", s.handlers.CurrentStep)
	procedures.PUT("/status", s.handlers.SetStatus)
	procedures.PUT("/amount", s.handlers.RecordAmount)
	procedures.POST("/advance", s.handlers.Advance)

	reports := api.Group("/reports", s.handlers.RequireSession)
	reports.GET("/summary", s.handlers.Summary)
	reports.GET("/summary/export", s.handlers.ExportSummary)
	reports.DELETE("/:site/:year/:month", s.handlers.DeletePeriod)
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Start begins serving. Blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server starting", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
