package vectorindex

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dgallion1/clusterscope/internal/embedding"
	"github.com/dgallion1/clusterscope/internal/model"
)

// Candidate is a chunk considered by a search.
type Candidate struct {
	Chunk  model.Chunk
	Vector []float32
	Doc    model.Document
}

// ScoreFunc scores one candidate. Only scores > 0 are eligible results.
type ScoreFunc func(c Candidate) float64

// Scorer prepares a scoring function for a query.
type Scorer interface {
	Prepare(ctx context.Context, query string) (ScoreFunc, error)
}

// KeywordScorer scores a chunk by the fraction of distinct lowercase query
// keywords that occur as substrings of the lowercased chunk text.
type KeywordScorer struct{}

func (KeywordScorer) Prepare(_ context.Context, query string) (ScoreFunc, error) {
	keywords := Keywords(query)
	return func(c Candidate) float64 {
		if len(keywords) == 0 {
			return 0
		}
		text := strings.ToLower(c.Chunk.Text)
		matches := 0
		for _, k := range keywords {
			if strings.Contains(text, k) {
				matches++
			}
		}
		return float64(matches) / float64(len(keywords))
	}, nil
}

// Keywords returns the distinct lowercase whitespace-separated tokens of query.
func Keywords(query string) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// CosineScorer embeds the query and scores stored vectors by cosine
// similarity.
type CosineScorer struct {
	Model embedding.Model
}

func (s CosineScorer) Prepare(ctx context.Context, query string) (ScoreFunc, error) {
	if strings.TrimSpace(query) == "" {
		return func(Candidate) float64 { return 0 }, nil
	}
	vecs, err := s.Model.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	q := vecs[0]
	return func(c Candidate) float64 {
		return Cosine(q, c.Vector)
	}, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when they differ in
// length or either is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
