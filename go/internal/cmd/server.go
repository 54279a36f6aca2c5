package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/souldraw/go/internal/souldraw"
	"github.com/mcdev12/souldraw/go/internal/souldraw/gateway"
)

// drawingSource exposes drawings to the status endpoints.
type drawingSource interface {
	Active() []souldraw.Snapshot
	Status(ctx context.Context, id string) (souldraw.DisplayModel, error)
}

func setupServer(port string, drawings drawingSource, feed *gateway.ConnectionManager) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           newHandler(drawings, feed),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func newHandler(drawings drawingSource, feed *gateway.ConnectionManager) http.Handler {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	setupHealthCheck(mux)
	setupDrawings(mux, drawings)
	gateway.NewWebSocketHandler(feed).RegisterRoutes(mux)

	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

func setupHealthCheck(mux *http.ServeMux) {
	alive := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Bot is running")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	}
	mux.HandleFunc("/{$}", alive)
	mux.HandleFunc("/health", alive)
}

func setupDrawings(mux *http.ServeMux, drawings drawingSource) {
	mux.HandleFunc("GET /drawings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(drawings.Active()); err != nil {
			log.Error().Err(err).Msg("failed to write drawings response")
		}
	})

	mux.HandleFunc("GET /drawings/{id}", func(w http.ResponseWriter, r *http.Request) {
		view, err := drawings.Status(r.Context(), r.PathValue("id"))
		switch {
		case errors.Is(err, souldraw.ErrNotFound):
			http.Error(w, "souldraw not found", http.StatusNotFound)
			return
		case err != nil:
			log.Error().Err(err).Str("drawing_id", r.PathValue("id")).Msg("failed to load drawing")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(view); err != nil {
			log.Error().Err(err).Msg("failed to write drawing response")
		}
	})
}
