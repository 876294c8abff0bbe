package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kicadtime/kicadtime/internal/config"
	"github.com/kicadtime/kicadtime/internal/database"
	"github.com/kicadtime/kicadtime/internal/reporter"
)

type Handler struct {
	config    *config.Config
	repo      *database.Repository
	reporter  *reporter.Reporter
	sessionID string
	startedAt time.Time
}

func NewHandler(cfg *config.Config, repo *database.Repository, sessionID string) *Handler {
	return &Handler{
		config:    cfg,
		repo:      repo,
		reporter:  reporter.New(cfg, repo),
		sessionID: sessionID,
		startedAt: time.Now(),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/heartbeats", h.handleHeartbeats)
	mux.HandleFunc("/api/heartbeats/latest", h.handleLatestHeartbeat)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleHeartbeats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid since parameter: %v", err), http.StatusBadRequest)
			return
		}
		since = parsed
	}

	heartbeats, err := h.repo.GetHeartbeatsSince(since)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch heartbeats: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, heartbeats)
}

func (h *Handler) handleLatestHeartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hb, err := h.repo.GetLatest()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch latest heartbeat: %v", err), http.StatusInternalServerError)
		return
	}

	if hb == nil {
		http.Error(w, "No heartbeats found", http.StatusNotFound)
		return
	}

	respondJSON(w, hb)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, report)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := h.repo.CountForSession(h.sessionID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to count heartbeats: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"session_id":           h.sessionID,
		"started_at":           h.startedAt,
		"uptime_seconds":       int64(time.Since(h.startedAt).Seconds()),
		"session_heartbeats":   count,
		"poll_interval":        h.config.Tracker.PollInterval.String(),
		"heartbeat_frequency":  h.config.Tracker.HeartbeatFrequency.String(),
		"inactivity_threshold": h.config.Tracker.InactivityThreshold.String(),
		"dry_run":              h.config.Tracker.DryRun,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
