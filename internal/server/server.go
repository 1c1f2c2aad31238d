package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/observer/trivia/internal/config"
	"github.com/observer/trivia/internal/httpapi"
	"github.com/observer/trivia/internal/store"
	"github.com/observer/trivia/internal/wsserver"
)

// Dependencies holds all service dependencies for the server.
type Dependencies struct {
	Store     store.Store
	RoomStats httpapi.RoomStats
	WSHandler *wsserver.Handler
	StaticDir string
	Logger    *slog.Logger
}

// New creates an HTTP server with all routes configured.
func New(cfg *config.Config, deps *Dependencies) *http.Server {
	mux := http.NewServeMux()

	// Register routes
	registerRoutes(mux, deps)

	// Wrap with middleware
	handler := chainMiddleware(mux,
		requestIDMiddleware,
		corsMiddleware(cfg),
		loggingMiddleware(deps.Logger),
		recoverMiddleware(deps.Logger),
	)

	return &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies) {
	// Health check - essential for docker, k8s, load balancers
	//
	//	@Summary		Liveness check
	//	@Description	Always reports ok once the process is serving requests
	//	@Tags			ops
	//	@Produce		json
	//	@Success		200	{object}	map[string]string
	//	@Router			/healthz [get]
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Ready check - verifies the shared store (Redis) is reachable
	//
	//	@Summary		Readiness check
	//	@Description	Verifies the shared store is reachable
	//	@Tags			ops
	//	@Produce		json
	//	@Success		200	{object}	map[string]string
	//	@Failure		503	{object}	map[string]string
	//	@Router			/readyz [get]
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.Health(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","error":"shared store unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	})

	// =========================================================================
	// Ops routes
	// =========================================================================
	mux.HandleFunc("GET /stats", httpapi.StatsHandler(deps.RoomStats))

	// =========================================================================
	// WebSocket route
	// =========================================================================
	mux.Handle("GET /ws", deps.WSHandler)

	// =========================================================================
	// Static files (web client) - serve at root
	// =========================================================================
	staticFS := http.FileServer(http.Dir(deps.StaticDir))
	mux.Handle("GET /", staticFS)
}
