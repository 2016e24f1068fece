package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inovacc/vetlink/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Logger *slog.Logger

	// Now is the clock used for age searches and birth date validation.
	Now func() time.Time

	// AllowedOrigins lists browser origins granted CORS access. Empty
	// means localhost origins only.
	AllowedOrigins []string
}

// Server exposes a store over HTTP.
type Server struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
	engine *gin.Engine
}

// New builds the router for st.
func New(st store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:  st,
		logger: opts.Logger,
		now:    opts.Now,
		engine: gin.New(),
	}

	s.engine.Use(gin.Recovery(), requestID(), accessLog(s.logger), cors(opts.AllowedOrigins))
	s.routes()

	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	api.GET("/consult-mascotas/", s.handleListPets)
	api.POST("/create-pet/", s.handleCreatePet)
	api.GET("/consult-client/", s.handleListOwners)
	api.POST("/add-client/", s.handleAddClient)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("listening", "addr", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}
