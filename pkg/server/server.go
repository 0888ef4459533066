// Package server exposes a core.Driver over the W3C WebDriver HTTP protocol.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/devicelab-dev/microej-driver/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlatformName is reported in session capabilities.
const PlatformName = "MicroEJ"

// Server routes W3C WebDriver commands to a driver.
// Session ids are tracked only so unknown ids can be rejected; all sessions
// share the same stateless driver.
type Server struct {
	driver core.Driver
	engine *gin.Engine

	mu       sync.Mutex
	sessions map[string]time.Time
}

// New creates a server for the given driver.
func New(driver core.Driver) *Server {
	s := &Server{
		driver:   driver,
		sessions: make(map[string]time.Time),
	}

	engine := gin.New()
	engine.Use(gin.LoggerWithWriter(logger.GetWriter()), gin.Recovery())
	s.engine = engine
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler serving the protocol.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("W3C server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("W3C server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) createSession() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = time.Now()
	s.mu.Unlock()
	logger.Info("session %s created", id)
	return id
}

func (s *Server) hasSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

func (s *Server) deleteSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	logger.Info("session %s deleted", id)
}

func (s *Server) capabilities() gin.H {
	return gin.H{
		"platformName":      PlatformName,
		"automationName":    PlatformName,
		"locatorStrategies": s.driver.LocatorStrategies(),
	}
}
