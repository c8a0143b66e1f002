package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleOracleStats(w http.ResponseWriter, r *http.Request) {
	if s.gemini == nil {
		jsonError(w, "oracle stats unavailable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"model":       s.cfg.GeminiModel,
		"configured":  s.gemini.Available(),
		"queue_depth": s.orchestrator.QueueDepth(r.Context()),
		"operations":  s.gemini.Stats().Snapshot(),
	})
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.store.ListAudit(r.Context(), limit)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
