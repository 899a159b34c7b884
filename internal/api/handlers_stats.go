package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if !s.app.LLMConfigured() {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"provider": s.app.LLM.Name(),
		"model":    s.app.Config.LLMModel,
		"stats":    s.app.Stats.Snapshot(),
	})
}
