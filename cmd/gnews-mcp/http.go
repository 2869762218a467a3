package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	gnewsmcp "github.com/ferro-labs/gnews-mcp"
	"github.com/ferro-labs/gnews-mcp/internal/logging"
	"github.com/ferro-labs/gnews-mcp/internal/mcpserver"
	"github.com/ferro-labs/gnews-mcp/internal/version"
)

// serveHTTP runs the streamable HTTP transport until ctx is cancelled, then
// shuts down gracefully.
func serveHTTP(ctx context.Context, server *mcp.Server, cfg gnewsmcp.Config) error {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(server, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown error", "error", err)
		}
	}()

	slog.Info("serving MCP over HTTP",
		"version", version.Short(),
		"addr", cfg.Addr(),
		"persistent_cache", cfg.PersistentTierEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// newRouter builds the HTTP router: the MCP endpoint plus health and
// metrics.
func newRouter(server *mcp.Server, cfg gnewsmcp.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(corsMiddleware(cfg.CORSOrigins...))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Handle("/mcp", mcpserver.Handler(server))

	return r
}
