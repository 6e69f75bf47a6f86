package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/ctidoc/internal/pipeline"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var latency pipeline.StatsSnapshot
	if stats := s.orchestrator.Stats(); stats != nil {
		latency = stats.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"latency":     latency,
		"totals":      s.orchestrator.Summary(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
