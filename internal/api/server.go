// Package api provides the optional read-only management HTTP surface:
// process health and resolver/host statistics. It carries no write-path
// endpoints — cluster, zone, and custom-DNS administration are out of
// this core's scope.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/donos-project/donosd/internal/api/handlers"
	"github.com/donos-project/donosd/internal/config"
)

// Server is the management HTTP server. It is started only when
// cfg.API.Enabled is true; see cmd/donosd/dns.go.
type Server struct {
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds a Server bound to cfg.API.Host:cfg.API.Port, wired to report
// cacheLen and blocklistSize through the /stats endpoint.
func New(cfg *config.APIConfig, logger *slog.Logger, cacheLen, blocklistSize func() int) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(slogRequestLogger(logger))

	h := handlers.New(cacheLen, blocklistSize)
	registerRoutes(engine, h)

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{logger: logger, engine: engine, httpServer: httpServer}
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe blocks serving HTTP until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// slogRequestLogger is a minimal gin middleware that logs each request
// through the process-wide slog logger.
func slogRequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if logger == nil {
			return
		}
		logger.Debug("api request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
