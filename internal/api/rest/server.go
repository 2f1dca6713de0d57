package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/wicket/internal/livestore"
	"github.com/fortuna/wicket/internal/scheduler"
	"github.com/fortuna/wicket/internal/store"
	"github.com/fortuna/wicket/internal/store/repository"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, live *livestore.Store, completed *repository.CompletedRepository, sched *scheduler.Orchestrator) *Server {
	handler := NewHandler(db, live, completed, sched)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Matches
	api.HandleFunc("/matches/live", handler.GetLiveMatches).Methods("GET")
	api.HandleFunc("/matches/completed", handler.ListCompletedMatches).Methods("GET")
	api.HandleFunc("/matches/{matchID}", handler.GetMatch).Methods("GET")

	// Operational triggers
	api.HandleFunc("/admin/refresh", handler.TriggerLiveRefresh).Methods("POST")
	api.HandleFunc("/admin/sweep", handler.TriggerSweep).Methods("POST")
	api.HandleFunc("/admin/sync", handler.TriggerCatalogSync).Methods("POST")
	api.HandleFunc("/admin/scheduler", handler.GetSchedulerStatus).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
