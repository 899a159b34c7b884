package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/clusterscope/internal/app"
)

// Server is the HTTP API server for clusterscope.
type Server struct {
	router chi.Router
	app    *app.App
	log    *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(a *app.App) *Server {
	s := &Server{
		app: a,
		log: a.Log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if key := s.app.Config.APIKey; key != "" {
			r.Use(AuthMiddleware(key, s.log))
		}

		r.Route("/api/documents", func(r chi.Router) {
			r.Post("/", s.handleUpload)
			r.Post("/batch", s.handleBatchUpload)
			r.Get("/jobs/{jobID}", s.handleJobStatus)
			r.Get("/", s.handleListDocuments)
			r.Get("/{docID}", s.handleGetDocument)
			r.Delete("/{docID}", s.handleDeleteDocument)
		})

		r.Post("/api/search", s.handleSearch)

		r.Post("/api/chat", s.handleChat)
		r.Get("/api/chat/sessions/{sessionID}", s.handleTranscript)

		r.Post("/api/reports", s.handleCreateReport)
		r.Get("/api/reports", s.handleListReports)
		r.Get("/api/reports/types", s.handleReportTypes)
		r.Get("/reports/{reportID}", s.handleGetReport)
		r.Get("/reports/{reportID}/pdf", s.handleReportPDF)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"llm":         s.app.LLM.Name(),
		"queue_depth": s.app.Orchestrator.QueueDepth(),
	})
}
