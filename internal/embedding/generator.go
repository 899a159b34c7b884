package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/clusterscope/internal/retry"
	"golang.org/x/time/rate"
)

// ErrDimensionMismatch is returned when a provider answers with vectors of
// the wrong count or length.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// BatchError reports which batch failed. No vectors are returned with it.
type BatchError struct {
	Batch int
	Start int
	End   int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("embedding batch %d (texts %d-%d): %v", e.Batch, e.Start, e.End-1, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// GeneratorConfig controls batching and provider retries.
type GeneratorConfig struct {
	BatchSize  int
	BatchPause time.Duration
	Retry      retry.Policy
}

// DefaultGeneratorConfig sends 20 texts per call with half a second between calls.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		BatchSize:  20,
		BatchPause: 500 * time.Millisecond,
		Retry:      retry.DefaultPolicy(),
	}
}

// Generator embeds texts in fixed-size batches. The pause between batches is
// enforced by a limiter shared by all callers of the same Generator.
type Generator struct {
	model     Model
	batchSize int
	limiter   *rate.Limiter
	policy    retry.Policy
	log       *slog.Logger
}

func NewGenerator(m Model, cfg GeneratorConfig, log *slog.Logger) *Generator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	limit := rate.Inf
	if cfg.BatchPause > 0 {
		limit = rate.Every(cfg.BatchPause)
	}
	g := &Generator{
		model:     m,
		batchSize: cfg.BatchSize,
		limiter:   rate.NewLimiter(limit, 1),
		policy:    cfg.Retry,
		log:       log,
	}
	if g.policy.OnRetry == nil && log != nil {
		g.policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn("embedding provider busy, retrying", "model", m.Name(), "attempt", attempt+1, "delay", delay, "error", err)
		}
	}
	return g
}

// Model returns the underlying embedding model.
func (g *Generator) Model() Model { return g.model }

// Generate returns one vector per text, in order. Any batch failure aborts
// the whole call.
func (g *Generator) Generate(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	dim := g.model.Dimension()

	for batch, start := 0, 0; start < len(texts); batch, start = batch+1, start+g.batchSize {
		end := min(start+g.batchSize, len(texts))
		fail := func(err error) ([][]float32, error) {
			return nil, &BatchError{Batch: batch, Start: start, End: end, Err: err}
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return fail(err)
		}

		var vecs [][]float32
		err := retry.Do(ctx, g.policy, func(ctx context.Context) error {
			v, err := g.model.Embed(ctx, texts[start:end])
			if err != nil {
				return err
			}
			vecs = v
			return nil
		})
		if err != nil {
			return fail(err)
		}

		if len(vecs) != end-start {
			return fail(fmt.Errorf("%w: got %d vectors for %d texts", ErrDimensionMismatch, len(vecs), end-start))
		}
		for i, v := range vecs {
			if len(v) != dim {
				return fail(fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, start+i, len(v), dim))
			}
		}
		out = append(out, vecs...)
	}
	return out, nil
}
