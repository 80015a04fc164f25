package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/cache-control/pkg/metrics"
	"github.com/Sternrassler/cache-control/pkg/options"
)

// readyFunc reports whether a dependency can serve requests.
type readyFunc func(ctx context.Context) error

func redisReady(client *redis.Client) readyFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func newAdminMux(holder *options.Holder, ready readyFunc, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(holder, ready))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /reload", reloadHandler(holder, logger))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

type readyResponse struct {
	Ready    bool      `json:"ready"`
	Origin   string    `json:"origin"`
	LoadedAt time.Time `json:"loaded_at"`
	Error    string    `json:"error,omitempty"`
}

func readyHandler(holder *options.Holder, ready readyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current := holder.Current()
		resp := readyResponse{
			Ready:    holder.Loaded(),
			Origin:   current.Origin,
			LoadedAt: current.LoadedAt,
		}
		if !resp.Ready {
			resp.Error = "options not loaded"
		}

		if resp.Ready && ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				resp.Ready = false
				resp.Error = err.Error()
			}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

type reloadResponse struct {
	Origin   string    `json:"origin"`
	LoadedAt time.Time `json:"loaded_at"`
	Error    string    `json:"error,omitempty"`
}

func reloadHandler(holder *options.Holder, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := holder.Reload(r.Context())

		current := holder.Current()
		resp := reloadResponse{Origin: current.Origin, LoadedAt: current.LoadedAt}
		status := http.StatusOK
		if err != nil {
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
			logger.Warn().Err(err).Msg("Manual options reload failed")
		} else {
			logger.Info().Str("origin", current.Origin).Msg("Options reloaded on request")
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
