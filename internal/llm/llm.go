// Package llm wraps the chat-completion providers used for answers and
// report content.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/retry"
)

// ErrNotConfigured is returned when no provider credentials are set.
var ErrNotConfigured = errors.New("llm not configured")

// Options tunes a single completion. Zero values use the client defaults.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client completes a conversation and returns the assistant text.
type Client interface {
	Name() string
	Complete(ctx context.Context, messages []model.Message, opts Options) (string, error)
}

// Defaults fills zero fields of opts from d.
func (d Options) Defaults(opts Options) Options {
	if opts.Model == "" {
		opts.Model = d.Model
	}
	if opts.Temperature == 0 {
		opts.Temperature = d.Temperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = d.MaxTokens
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	return opts
}

// Unconfigured is a Client that always fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "none" }

func (Unconfigured) Complete(context.Context, []model.Message, Options) (string, error) {
	return "", ErrNotConfigured
}

// Retrying retries rate-limited and server errors of the wrapped client.
type Retrying struct {
	Client
	Policy retry.Policy
}

func WithRetry(c Client, p retry.Policy, log *slog.Logger) *Retrying {
	if p.OnRetry == nil && log != nil {
		p.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn("llm provider busy, retrying", "provider", c.Name(), "attempt", attempt+1, "delay", delay, "error", err)
		}
	}
	return &Retrying{Client: c, Policy: p}
}

func (r *Retrying) Complete(ctx context.Context, messages []model.Message, opts Options) (string, error) {
	var out string
	err := retry.Do(ctx, r.Policy, func(ctx context.Context) error {
		text, err := r.Client.Complete(ctx, messages, opts)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

// Instrumented records the latency of successful completions and counts
// failures. Cancelled calls are not counted.
type Instrumented struct {
	Client
	Stats *LLMStats
}

func (c *Instrumented) Complete(ctx context.Context, messages []model.Message, opts Options) (string, error) {
	start := time.Now()
	text, err := c.Client.Complete(ctx, messages, opts)
	switch {
	case err == nil:
		c.Stats.Record(time.Since(start).Milliseconds())
	case ctx.Err() == nil:
		c.Stats.RecordFailure()
	}
	return text, err
}
