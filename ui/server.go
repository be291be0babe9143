package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"journeygrid/app"
	"journeygrid/internal"

	"github.com/gin-gonic/gin"
)

// Server serves the journey grid HTTP API
type Server struct {
	router  *gin.Engine
	service *app.JourneyService
	logger  *internal.Logger
}

// NewServer creates a new web server instance. mode is a gin mode ("debug", "release", "test").
func NewServer(service *app.JourneyService, mode string, logger *internal.Logger) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	router := gin.New()
	// Stage and stakeholder names may contain "/"; match on the escaped path and
	// unescape the params afterwards so "Buy%20%2F%20Sign" stays one segment.
	router.UseRawPath = true
	router.UnescapePathValues = true

	s := &Server{
		router:  router,
		service: service,
		logger:  logger.With("API"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
