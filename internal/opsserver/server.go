// Package opsserver exposes operational HTTP endpoints for a running
// simulation: Prometheus metrics and a health probe.
package opsserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/signalsfoundry/gridwalk-simulator/internal/logging"
)

// TickCounter reports simulation progress. *timectrl.Driver implements it.
type TickCounter interface {
	Ticks() uint64
}

// NewRouter builds the ops router. A nil metrics handler leaves /metrics
// unrouted.
func NewRouter(metrics http.Handler, ticks TickCounter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		body := map[string]any{"status": "ok"}
		if ticks != nil {
			body["ticks"] = ticks.Ticks()
		}
		respondJSON(w, http.StatusOK, body)
	})
	return r
}

// Serve runs an HTTP server on lis until ctx is cancelled, then shuts it
// down with a bounded grace period.
func Serve(ctx context.Context, lis net.Listener, handler http.Handler, log logging.Logger) error {
	if log == nil {
		log = logging.Noop()
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()
	log.Info(ctx, "serving ops endpoints", logging.String("addr", lis.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "ops server shutdown failed", logging.Err(err))
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
