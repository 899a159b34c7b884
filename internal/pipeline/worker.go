package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dgallion1/clusterscope/internal/docproc"
	"github.com/dgallion1/clusterscope/internal/model"
)

// Ingester is the document processor as seen by the pipeline.
type Ingester interface {
	Ingest(ctx context.Context, path string, opts ...docproc.IngestOption) (string, error)
	Get(docID string) (model.Document, error)
	FindByHash(hash string) (model.Document, bool)
}

var phaseStatus = map[string]JobStatus{
	docproc.PhaseExtracting: StatusExtracting,
	docproc.PhaseChunking:   StatusChunking,
	docproc.PhaseEmbedding:  StatusEmbedding,
	docproc.PhaseIndexing:   StatusIndexing,
}

// Worker processes a single document job.
type Worker struct {
	ingester Ingester
	log      *slog.Logger
}

func NewWorker(ingester Ingester, log *slog.Logger) *Worker {
	return &Worker{ingester: ingester, log: log}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "source", job.Source)
	if job.removeSource {
		defer func() {
			if err := os.Remove(job.path); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Warn("remove upload", "error", err)
			}
		}()
	}

	// Phase 1: Dedup check
	hash, err := FileHashHex(job.path)
	if err != nil {
		log.Error("read source failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "hashing")
		return
	}
	job.setContentHash(hash)
	if existing, ok := w.ingester.FindByHash(hash); ok {
		log.Info("duplicate document, skipping", "existing_doc_id", existing.ID)
		job.Complete(StatusDupSkipped, existing.ID, existing.ChunkCount)
		return
	}

	// Phase 2: extract, chunk, embed and index.
	docID, err := w.ingester.Ingest(ctx, job.path,
		docproc.WithFilename(job.Filename),
		docproc.WithContentHash(hash),
		docproc.WithProgress(func(phase string) {
			job.SetStatus(phaseStatus[phase], phase)
		}),
	)
	if err != nil {
		log.Error("ingest failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, job.Snapshot().Phase)
		return
	}

	chunks := 0
	if doc, err := w.ingester.Get(docID); err == nil {
		chunks = doc.ChunkCount
	}
	job.Complete(StatusCompleted, docID, chunks)
	log.Info("job completed", "doc_id", docID, "chunks", chunks)
}
