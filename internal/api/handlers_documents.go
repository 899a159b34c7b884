package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/clusterscope/internal/parser"
	"github.com/dgallion1/clusterscope/internal/pipeline"
)

// errTooLarge marks an upload over MaxUploadBytes.
var errTooLarge = errors.New("file exceeds max size")

type uploadResult struct {
	Filename string `json:"filename"`
	JobID    string `json:"job_id,omitempty"`
	Status   string `json:"status,omitempty"`
	PollURL  string `json:"poll_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

func pollURL(jobID string) string {
	return "/api/documents/jobs/" + jobID
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.app.Config.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	_, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, code := s.enqueueUpload(header)
	if res.Error != "" {
		jsonError(w, res.Error, code)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.app.Config.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]uploadResult, len(files))
	var g errgroup.Group
	g.SetLimit(4)
	for i, fh := range files {
		g.Go(func() error {
			results[i], _ = s.enqueueUpload(fh)
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// enqueueUpload saves one multipart file under the uploads directory and
// submits it. On failure the result carries the error and its status code.
func (s *Server) enqueueUpload(fh *multipart.FileHeader) (uploadResult, int) {
	filename := sanitizeFilename(fh.Filename)
	res := uploadResult{Filename: filename}

	if !parser.IsSupportedExtension(filename) {
		res.Error = fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))
		return res, http.StatusBadRequest
	}

	path, err := s.saveUpload(fh)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			res.Error = fmt.Sprintf("%s (%d bytes)", errTooLarge, s.app.Config.MaxUploadBytes)
			return res, http.StatusRequestEntityTooLarge
		}
		s.log.Error("save upload", "filename", filename, "error", err)
		res.Error = "failed to store upload"
		return res, http.StatusInternalServerError
	}

	job := pipeline.NewJob(path, filename, "upload", true)
	if err := s.app.Orchestrator.Submit(job); err != nil {
		_ = os.Remove(path)
		res.JobID = job.ID
		res.Error = err.Error()
		return res, statusFor(err)
	}

	res.JobID = job.ID
	res.Status = string(pipeline.StatusQueued)
	res.PollURL = pollURL(job.ID)
	return res, http.StatusAccepted
}

func (s *Server) saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	limit := s.app.Config.MaxUploadBytes
	dst, err := os.CreateTemp(s.app.Layout.UploadsDir(), "upload-*"+parser.FileType(fh.Filename))
	if err != nil {
		return "", err
	}
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = errTooLarge
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.app.Orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.app.Processor.List()})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.app.Processor.Get(chi.URLParam(r, "docID"))
	if err != nil {
		jsonError(w, "document not found", statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument removes a document and its index entries. Unknown ids
// succeed.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.app.Processor.Delete(r.Context(), docID); err != nil {
		s.log.Error("delete document", "doc_id", docID, "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}
