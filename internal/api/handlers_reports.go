package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/report"
)

type reportRequest struct {
	SessionID     string `json:"session_id" validate:"omitempty,uuid"`
	ReportType    string `json:"report_type" validate:"required,max=64"`
	Title         string `json:"title" validate:"omitempty,max=200"`
	Industry      string `json:"industry"`
	Region        string `json:"region"`
	IncludeCharts *bool  `json:"include_charts"`
	Language      string `json:"language" validate:"omitempty,oneof=zh en"`
}

type reportResponse struct {
	ReportID    string `json:"report_id"`
	DownloadURL string `json:"download_url"`
	PDFURL      string `json:"pdf_url"`
}

// handleCreateReport generates a report. Unknown report types produce the
// default structure. The session, when given, supplies the transcript and
// fills in missing industry and region. Title may be omitted when industry or
// region is known.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var transcript []model.Message
	industry, region := req.Industry, req.Region
	if req.SessionID != "" {
		sess, err := s.app.Sessions.Get(r.Context(), req.SessionID)
		if err != nil {
			jsonError(w, "session not found", statusFor(err))
			return
		}
		transcript = sess.Messages
		if industry == "" {
			industry = sess.Industry
		}
		if region == "" {
			region = sess.Region
		}
	}

	includeCharts := true
	if req.IncludeCharts != nil {
		includeCharts = *req.IncludeCharts
	}

	id, url, err := s.app.Assembler.Generate(r.Context(), report.Request{
		Transcript:    transcript,
		ReportType:    req.ReportType,
		Title:         req.Title,
		Industry:      industry,
		Region:        region,
		IncludeCharts: includeCharts,
		Language:      req.Language,
	})
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			s.log.Error("generate report", "type", req.ReportType, "error", err)
		}
		jsonError(w, "report generation failed: "+err.Error(), code)
		return
	}
	writeJSON(w, http.StatusCreated, reportResponse{
		ReportID:    id,
		DownloadURL: url,
		PDFURL:      url + "/pdf",
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.Reports.List()
	if err != nil {
		jsonError(w, "failed to list reports: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": list})
}

func (s *Server) handleReportTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"types": report.ReportTypes()})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.app.Reports.Get(chi.URLParam(r, "reportID"))
	if err != nil {
		jsonError(w, "report not found", statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	rep, err := s.app.Reports.Get(chi.URLParam(r, "reportID"))
	if err != nil {
		jsonError(w, "report not found", statusFor(err))
		return
	}
	data, err := s.app.PDF.Render(rep)
	if err != nil {
		s.log.Error("render report pdf", "report_id", rep.ID, "error", err)
		jsonError(w, "failed to render pdf", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, rep.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
