// Package vectorindex stores chunk vectors per document and answers filtered
// ranked searches over them.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultTopK is used when a query does not set TopK.
const DefaultTopK = 5

// previewRunes is the length of the text preview kept with each vector.
const previewRunes = 100

// Query is a search request.
type Query struct {
	Text     string
	Industry string
	Region   string
	TopK     int
}

// Index persists chunks and vectors and searches them.
type Index struct {
	files  store.IndexFiles
	meta   *store.MetadataStore
	scorer Scorer
	log    *slog.Logger

	// LoadConcurrency bounds parallel file loads during a search.
	LoadConcurrency int
}

func New(layout store.Layout, meta *store.MetadataStore, scorer Scorer, log *slog.Logger) *Index {
	if scorer == nil {
		scorer = KeywordScorer{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Index{
		files:           store.IndexFiles{Layout: layout},
		meta:            meta,
		scorer:          scorer,
		log:             log,
		LoadConcurrency: 8,
	}
}

// Add writes the chunk and embedding files of a document. chunks and
// vectors must be the same length.
func (x *Index) Add(ctx context.Context, docID string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("document %s: %d chunks but %d vectors", docID, len(chunks), len(vectors))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chunkRecs := make([]model.Chunk, len(chunks))
	embRecs := make([]model.EmbeddingRecord, len(chunks))
	for i, text := range chunks {
		chunkRecs[i] = model.Chunk{DocID: docID, ChunkID: i, Text: text}
		embRecs[i] = model.EmbeddingRecord{DocID: docID, ChunkID: i, TextPreview: preview(text), Vector: vectors[i]}
	}

	if err := x.files.SaveChunks(docID, chunkRecs); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	if err := x.files.SaveEmbeddings(docID, embRecs); err != nil {
		_ = x.files.Remove(docID)
		return fmt.Errorf("save embeddings: %w", err)
	}
	return nil
}

// Delete removes a document's chunk file, embedding file and metadata entry.
// Deleting an unknown document succeeds.
func (x *Index) Delete(ctx context.Context, docID string) error {
	if err := x.files.Remove(docID); err != nil {
		return fmt.Errorf("delete %s: %w", docID, err)
	}
	if err := x.meta.Delete(docID); err != nil {
		return fmt.Errorf("delete %s: %w", docID, err)
	}
	return nil
}

// SearchResults returns the top-ranked chunks for q. Ties keep scan order:
// documents by processed date then id, chunks by chunk id.
func (x *Index) SearchResults(ctx context.Context, q Query) ([]model.SearchResult, error) {
	topK := q.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	score, err := x.scorer.Prepare(ctx, q.Text)
	if err != nil {
		return nil, err
	}

	candidates, err := x.load(ctx, x.candidates(q))
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0)
	for _, c := range candidates {
		s := score(c)
		if s <= 0 {
			continue
		}
		results = append(results, model.SearchResult{
			Text:     c.Chunk.Text,
			Score:    s,
			DocID:    c.Chunk.DocID,
			ChunkID:  c.Chunk.ChunkID,
			Title:    c.Doc.Title,
			Industry: c.Doc.Industry,
			Region:   c.Doc.Region,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Search returns the concatenated context text and the citation list for q.
func (x *Index) Search(ctx context.Context, q Query) (string, []model.Source, error) {
	results, err := x.SearchResults(ctx, q)
	if err != nil {
		return "", nil, err
	}
	return Context(results), Sources(results), nil
}

// Context joins result texts with blank lines.
func Context(results []model.SearchResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return strings.Join(texts, "\n\n")
}

// Sources converts results to citations, filling absent fields with "Unknown".
func Sources(results []model.SearchResult) []model.Source {
	out := make([]model.Source, len(results))
	for i, r := range results {
		out[i] = model.Source{
			Title:    orUnknown(r.Title),
			Score:    r.Score,
			Industry: orUnknown(r.Industry),
			Region:   orUnknown(r.Region),
		}
	}
	return out
}

// candidates returns the documents matching the query filters, in scan order.
func (x *Index) candidates(q Query) []model.Document {
	docs := x.meta.List()
	if q.Industry == "" && q.Region == "" {
		return docs
	}
	out := docs[:0]
	for _, d := range docs {
		if q.Industry != "" && d.Industry != q.Industry {
			continue
		}
		if q.Region != "" && d.Region != q.Region {
			continue
		}
		out = append(out, d)
	}
	return out
}

// load reads chunk and embedding files for docs concurrently and returns the
// candidates in document order. Unreadable documents are skipped.
func (x *Index) load(ctx context.Context, docs []model.Document) ([]Candidate, error) {
	perDoc := make([][]Candidate, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(x.LoadConcurrency, 1))
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cands, err := x.loadDoc(doc)
			if err != nil {
				if x.log != nil && !errors.Is(err, store.ErrNotFound) {
					x.log.Warn("skipping unreadable document", "doc_id", doc.ID, "error", err)
				}
				return nil
			}
			perDoc[i] = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Candidate
	for _, c := range perDoc {
		out = append(out, c...)
	}
	return out, nil
}

func (x *Index) loadDoc(doc model.Document) ([]Candidate, error) {
	chunks, err := x.files.LoadChunks(doc.ID)
	if err != nil {
		return nil, err
	}
	records, err := x.files.LoadEmbeddings(doc.ID)
	if err != nil {
		return nil, err
	}
	if len(chunks) != len(records) && x.log != nil {
		x.log.Warn("chunk and embedding counts differ", "doc_id", doc.ID, "chunks", len(chunks), "embeddings", len(records))
	}

	n := min(len(chunks), len(records))
	out := make([]Candidate, n)
	for i := range n {
		out[i] = Candidate{Chunk: chunks[i], Vector: records[i].Vector, Doc: doc}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Chunk.ChunkID < out[j].Chunk.ChunkID })
	return out, nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes])
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
