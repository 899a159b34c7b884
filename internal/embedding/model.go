// Package embedding turns chunk text into fixed-dimension vectors.
package embedding

import "context"

// Model is an embedding provider. Embed returns one vector per input text,
// in input order.
type Model interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// StubModel returns the same constant vector for every input.
type StubModel struct {
	Dim   int
	Value float32
}

// NewStubModel returns a stub producing 384-dimensional vectors of 0.1.
func NewStubModel() *StubModel {
	return &StubModel{Dim: 384, Value: 0.1}
}

func (m *StubModel) Name() string   { return "stub" }
func (m *StubModel) Dimension() int { return m.Dim }

func (m *StubModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, m.Dim)
		for j := range v {
			v[j] = m.Value
		}
		out[i] = v
	}
	return out, nil
}
