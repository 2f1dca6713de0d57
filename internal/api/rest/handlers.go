package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fortuna/wicket/internal/livestore"
	"github.com/fortuna/wicket/internal/match"
	"github.com/fortuna/wicket/internal/scheduler"
	"github.com/fortuna/wicket/internal/store"
	"github.com/fortuna/wicket/internal/store/repository"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db        *store.Database
	live      *livestore.Store
	completed *repository.CompletedRepository
	sched     *scheduler.Orchestrator
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, live *livestore.Store, completed *repository.CompletedRepository, sched *scheduler.Orchestrator) *Handler {
	return &Handler{
		db:        db,
		live:      live,
		completed: completed,
		sched:     sched,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	checks := map[string]string{"database": "ok", "redis": "ok"}

	if err := h.db.HealthCheck(); err != nil {
		checks["database"] = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := h.live.HealthCheck(r.Context()); err != nil {
		checks["redis"] = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "wicket",
		"checks":  checks,
	})
}

// GetLiveMatches returns the current live set. An empty store triggers one
// lazy refresh before answering; the refresh is benign to overlap with the
// scheduled one because upserts are idempotent.
func (h *Handler) GetLiveMatches(w http.ResponseWriter, r *http.Request) {
	records, err := h.live.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch live matches", err)
		return
	}

	if len(records) == 0 && h.sched != nil {
		if err := h.sched.TriggerLiveRefresh(r.Context()); err == nil {
			records, _ = h.live.ListAll(r.Context())
		}
	}

	if records == nil {
		records = []*match.LiveMatchRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// GetMatch returns one match by id, from whichever store holds it.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	matchID := vars["matchID"]
	if !match.ValidID(matchID) {
		respondError(w, http.StatusBadRequest, "Invalid match ID", nil)
		return
	}

	live, err := h.live.Get(r.Context(), matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch match", err)
		return
	}
	if live != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"stage": match.StageLive, "match": live})
		return
	}

	completed, err := h.completed.GetByID(r.Context(), matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch match", err)
		return
	}
	if completed != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"stage": match.StageCompleted, "match": completed})
		return
	}

	respondError(w, http.StatusNotFound, "Match not found", nil)
}

// ListCompletedMatches returns a page of completed matches.
func (h *Handler) ListCompletedMatches(w http.ResponseWriter, r *http.Request) {
	filter := repository.ListFilter{
		Format: r.URL.Query().Get("format"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}

	records, total, err := h.completed.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch completed matches", err)
		return
	}
	if records == nil {
		records = []*match.CompletedMatchRecord{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": records,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// TriggerLiveRefresh manually runs one live refresh cycle.
func (h *Handler) TriggerLiveRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sched.TriggerLiveRefresh(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "Live refresh failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Live refresh complete"})
}

// TriggerSweep manually runs one transition sweep.
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	if err := h.sched.TriggerSweep(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "Transition sweep failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Transition sweep complete"})
}

// TriggerCatalogSync manually runs one completed-catalog sync.
func (h *Handler) TriggerCatalogSync(w http.ResponseWriter, r *http.Request) {
	if err := h.sched.TriggerCatalogSync(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "Catalog sync failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Catalog sync complete"})
}

// GetSchedulerStatus returns the scheduler's job configuration and last runs.
func (h *Handler) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sched.GetStatus())
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
