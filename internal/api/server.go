package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/trendscore/pkg/config"
	"github.com/wonny/trendscore/pkg/logger"
)

const (
	readTimeout = 15 * time.Second
	idleTimeout = 60 * time.Second
	// headroom after the run deadline so the 504 body still goes out
	writeSlack = 15 * time.Second
)

// Server represents the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	port       string
	env        string
	runTimeout time.Duration
}

// New creates a new API server. Requests outside /ws/ get the screener run timeout as deadline.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	runTimeout := cfg.Screener.RunTimeout

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      withRunDeadline(runTimeout, router),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout(runTimeout),
			IdleTimeout:  idleTimeout,
		},
		logger:     log.WithComponent("api"),
		port:       cfg.Port,
		env:        cfg.Env,
		runTimeout: runTimeout,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port":        s.port,
		"env":         s.env,
		"run_timeout": s.runTimeout.String(),
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func writeTimeout(runTimeout time.Duration) time.Duration {
	if runTimeout <= 0 {
		return 0
	}
	return runTimeout + writeSlack
}

// withRunDeadline bounds a request's context; a run that overshoots surfaces as 504.
// Websocket streams are long-lived and keep the plain request context.
func withRunDeadline(timeout time.Duration, next http.Handler) http.Handler {
	if timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/") {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
