package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/clusterscope/internal/chat"
	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/vectorindex"
)

type searchRequest struct {
	Query    string `json:"query" validate:"max=4000"`
	Industry string `json:"industry"`
	Region   string `json:"region"`
	TopK     int    `json:"top_k" validate:"gte=0,lte=100"`
}

type searchResponse struct {
	Context string         `json:"context"`
	Sources []model.Source `json:"sources"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	topK := req.TopK
	if topK == 0 {
		topK = s.app.Config.SearchTopK
	}
	ctxText, sources, err := s.app.Index.Search(r.Context(), vectorindex.Query{
		Text:     req.Query,
		Industry: req.Industry,
		Region:   req.Region,
		TopK:     topK,
	})
	if err != nil {
		s.log.Error("search", "error", err)
		jsonError(w, "search failed: "+err.Error(), statusFor(err))
		return
	}
	if sources == nil {
		sources = []model.Source{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Context: ctxText, Sources: sources})
}

type chatRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
	Message   string `json:"message" validate:"required,max=8000"`
	Industry  string `json:"industry"`
	Region    string `json:"region"`
	TopK      int    `json:"top_k" validate:"gte=0,lte=100"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	topK := req.TopK
	if topK == 0 {
		topK = s.app.Config.SearchTopK
	}
	resp, err := s.app.Chat.Ask(r.Context(), chat.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
		Industry:  req.Industry,
		Region:    req.Region,
		TopK:      topK,
	})
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			s.log.Error("chat", "session_id", req.SessionID, "error", err)
		}
		jsonError(w, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sess, err := s.app.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		jsonError(w, "session not found", statusFor(err))
		return
	}
	messages := sess.Messages
	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"industry":   sess.Industry,
		"region":     sess.Region,
		"messages":   messages,
		"created_at": sess.CreatedAt,
		"updated_at": sess.UpdatedAt,
	})
}
