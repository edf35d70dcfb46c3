// Package server exposes the management surface: source CRUD, ad-hoc check
// triggers, health, and a WebSocket feed of emitted alerts.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"buyorder-alerts/internal/config"
	"buyorder-alerts/internal/service"
	"buyorder-alerts/internal/store"
)

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	httpSrv *http.Server
	hub     *hub
	svc     *service.Service
	logger  zerolog.Logger

	// baseCtx outlives individual requests; ad-hoc checks run on it so a
	// client disconnect does not cancel an in-flight browser capture.
	baseCtx context.Context
}

// New constructs the server and its routes.
func New(cfg config.ServerConfig, st *store.Store, svc *service.Service, logger zerolog.Logger) *Server {
	s := &Server{
		hub:    newHub(logger),
		svc:    svc,
		logger: logger.With().Str("component", "http_server").Logger(),
	}

	h := &handler{store: st, server: s, logger: s.logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.root)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /sources", h.listSources)
	mux.HandleFunc("POST /sources", h.createSource)
	mux.HandleFunc("GET /sources/{id}", h.getSource)
	mux.HandleFunc("PATCH /sources/{id}", h.updateSource)
	mux.HandleFunc("DELETE /sources/{id}", h.deleteSource)
	mux.HandleFunc("POST /sources/{id}/check", h.triggerCheck)
	mux.HandleFunc("GET /ws", s.hub.serveWS)

	var root http.Handler = mux
	root = s.recoverMiddleware(root)
	root = s.logMiddleware(root)

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully. It also
// pumps emitted alert events into the WebSocket hub.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx

	go s.hub.run(ctx)
	if s.svc != nil {
		go s.pumpEvents(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) pumpEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.svc.Events():
			s.hub.broadcast <- marshalWS("alert", ev)
		}
	}
}

// triggerCheck runs an ad-hoc check in the background. The per-source check
// lock inside the service keeps it mutually exclusive with scheduled polls.
func (s *Server) triggerCheck(id string) {
	ctx := s.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		if err := s.svc.CheckSource(ctx, id); err != nil {
			s.logger.Error().Err(err).Str("source_id", id).Msg("ad-hoc check failed")
		}
	}()
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(started)).
			Msg("request handled")
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
