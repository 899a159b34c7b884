// Package docproc ingests files into the document store and vector index.
package docproc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/clusterscope/internal/chunker"
	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/parser"
	"github.com/dgallion1/clusterscope/internal/store"
	"github.com/google/uuid"
)

// ErrIO marks failures reading the source file or writing the managed copy.
var ErrIO = errors.New("document io")

// Phases reported through WithProgress.
const (
	PhaseExtracting = "extracting"
	PhaseChunking   = "chunking"
	PhaseEmbedding  = "embedding"
	PhaseIndexing   = "indexing"
)

// Embedder produces one vector per text or fails as a whole.
type Embedder interface {
	Generate(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer persists and removes per-document chunk vectors.
type Indexer interface {
	Add(ctx context.Context, docID string, chunks []string, vectors [][]float32) error
	Delete(ctx context.Context, docID string) error
}

// Processor runs extract -> chunk -> embed -> index -> metadata for each file.
type Processor struct {
	layout    store.Layout
	meta      *store.MetadataStore
	extractor parser.TextExtractor
	chunkCfg  chunker.Config
	embedder  Embedder
	index     Indexer
	log       *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewProcessor(layout store.Layout, meta *store.MetadataStore, extractor parser.TextExtractor, chunkCfg chunker.Config, embedder Embedder, index Indexer, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		layout:    layout,
		meta:      meta,
		extractor: extractor,
		chunkCfg:  chunkCfg,
		embedder:  embedder,
		index:     index,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

type ingestOptions struct {
	filename    string
	contentHash string
	progress    func(phase string)
}

// IngestOption customizes a single Ingest call.
type IngestOption func(*ingestOptions)

// WithFilename records name as the document's original filename. It also
// decides the file type. Defaults to the base name of the source path.
func WithFilename(name string) IngestOption {
	return func(o *ingestOptions) { o.filename = name }
}

// WithContentHash records the hash of the source bytes for duplicate
// detection.
func WithContentHash(hash string) IngestOption {
	return func(o *ingestOptions) { o.contentHash = hash }
}

// WithProgress reports each pipeline phase as it starts.
func WithProgress(fn func(phase string)) IngestOption {
	return func(o *ingestOptions) { o.progress = fn }
}

// Ingest copies the file at path into the document store and indexes it,
// returning the new document id. On failure nothing of the document is left
// behind.
func (p *Processor) Ingest(ctx context.Context, path string, opts ...IngestOption) (string, error) {
	o := ingestOptions{filename: filepath.Base(path), progress: func(string) {}}
	for _, opt := range opts {
		opt(&o)
	}

	docID := p.newID()
	fileType := parser.FileType(o.filename)
	dest := p.layout.DocumentPath(docID, fileType)
	log := p.log.With("doc_id", docID, "filename", o.filename)

	if err := copyFile(path, dest); err != nil {
		return "", fmt.Errorf("ingest %s: %w", o.filename, err)
	}

	doc, err := p.process(ctx, docID, dest, fileType, o)
	if err != nil {
		log.Error("ingest failed", "error", err)
		p.discard(docID, dest)
		return "", fmt.Errorf("ingest %s (document %s): %w", o.filename, docID, err)
	}

	log.Info("document ingested", "chunks", doc.ChunkCount, "title", doc.Title, "industry", doc.Industry, "region", doc.Region)
	return docID, nil
}

func (p *Processor) process(ctx context.Context, docID, dest, fileType string, o ingestOptions) (model.Document, error) {
	o.progress(PhaseExtracting)
	text, err := p.ExtractText(ctx, dest, fileType)
	if err != nil {
		return model.Document{}, err
	}

	o.progress(PhaseChunking)
	chunks, err := p.Chunk(text)
	if err != nil {
		return model.Document{}, err
	}

	o.progress(PhaseEmbedding)
	vectors, err := p.embedder.Generate(ctx, chunks)
	if err != nil {
		return model.Document{}, fmt.Errorf("embed: %w", err)
	}

	o.progress(PhaseIndexing)
	if err := p.index.Add(ctx, docID, chunks, vectors); err != nil {
		return model.Document{}, fmt.Errorf("index: %w", err)
	}

	md := ExtractMetadata(text, o.filename)
	doc := model.Document{
		ID:             docID,
		Filename:       o.filename,
		FileType:       fileType,
		Path:           dest,
		ProcessedDate:  p.now().UTC(),
		ChunkCount:     len(chunks),
		WordCount:      md.WordCount,
		CharacterCount: md.CharacterCount,
		Title:          md.Title,
		Industry:       md.Industry,
		Region:         md.Region,
		ContentHash:    o.contentHash,
	}
	if err := p.meta.Put(doc); err != nil {
		return model.Document{}, fmt.Errorf("save metadata: %w", err)
	}
	return doc, nil
}

// ExtractText returns the text of a stored document.
func (p *Processor) ExtractText(ctx context.Context, path, fileType string) (string, error) {
	text, err := p.extractor.Extract(ctx, path, fileType)
	if err != nil {
		return "", fmt.Errorf("%w: extract: %w", ErrIO, err)
	}
	return text, nil
}

// Chunk splits text with the processor's window settings.
func (p *Processor) Chunk(text string) ([]string, error) {
	return chunker.Split(text, p.chunkCfg)
}

// Get returns a document's metadata.
func (p *Processor) Get(docID string) (model.Document, error) {
	return p.meta.Get(docID)
}

// List returns all documents in processing order.
func (p *Processor) List() []model.Document {
	return p.meta.List()
}

// FindByHash returns the document ingested from content with the given hash.
func (p *Processor) FindByHash(hash string) (model.Document, bool) {
	if hash == "" {
		return model.Document{}, false
	}
	for _, doc := range p.meta.List() {
		if doc.ContentHash == hash {
			return doc, true
		}
	}
	return model.Document{}, false
}

// Delete removes the managed file, index files and metadata of a document.
// Unknown ids succeed.
func (p *Processor) Delete(ctx context.Context, docID string) error {
	if err := store.ValidateID(docID); err != nil {
		return err
	}
	var matches []string
	if doc, err := p.meta.Get(docID); err == nil && doc.Path != "" {
		matches = []string{doc.Path}
	} else {
		// Records written before the path was stored.
		matches, err = filepath.Glob(filepath.Join(p.layout.DocumentsDir(), docID+".*"))
		if err != nil {
			return err
		}
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %w", ErrIO, filepath.Base(m), err)
		}
	}
	if err := p.index.Delete(ctx, docID); err != nil {
		return err
	}
	p.log.Info("document deleted", "doc_id", docID)
	return nil
}

func (p *Processor) discard(docID, dest string) {
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.log.Warn("remove managed copy", "doc_id", docID, "error", err)
	}
	if err := p.index.Delete(context.Background(), docID); err != nil {
		p.log.Warn("remove index files", "doc_id", docID, "error", err)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open source: %w", ErrIO, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: create copy: %w", ErrIO, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("%w: copy: %w", ErrIO, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: close copy: %w", ErrIO, err)
	}
	return nil
}
