// Package app builds the clusterscope components from a Config. The HTTP
// server and the admin CLI share it so both see the same data directory the
// same way.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/clusterscope/internal/chat"
	"github.com/dgallion1/clusterscope/internal/chunker"
	"github.com/dgallion1/clusterscope/internal/config"
	"github.com/dgallion1/clusterscope/internal/docproc"
	"github.com/dgallion1/clusterscope/internal/embedding"
	"github.com/dgallion1/clusterscope/internal/llm"
	"github.com/dgallion1/clusterscope/internal/parser"
	"github.com/dgallion1/clusterscope/internal/pipeline"
	"github.com/dgallion1/clusterscope/internal/report"
	"github.com/dgallion1/clusterscope/internal/retry"
	"github.com/dgallion1/clusterscope/internal/session"
	"github.com/dgallion1/clusterscope/internal/store"
	"github.com/dgallion1/clusterscope/internal/vectorindex"
	"github.com/dgallion1/clusterscope/internal/watch"
)

// App holds every long-lived component.
type App struct {
	Config config.Config
	Log    *slog.Logger

	Layout       store.Layout
	Meta         *store.MetadataStore
	Reports      store.ReportStore
	Index        *vectorindex.Index
	Processor    *docproc.Processor
	Orchestrator *pipeline.Orchestrator
	Sessions     *session.Store
	Chat         *chat.Service
	LLM          llm.Client
	Stats        *llm.LLMStats
	Assembler    *report.Assembler
	PDF          report.PDFRenderer

	// Watcher is nil unless INBOX_DIR is set.
	Watcher *watch.Watcher

	closers []func()
}

type options struct {
	skipSessions bool
}

// Option adjusts what New opens.
type Option func(*options)

// WithoutSessions leaves Sessions and Chat nil. Badger holds a directory
// lock, so only one process at a time can open the session database.
func WithoutSessions() Option {
	return func(o *options) { o.skipSessions = true }
}

// New wires the components. The orchestrator is built but not started.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{
		Config: cfg,
		Log:    log,
		Layout: store.Layout{Root: cfg.DataDir},
	}
	if err := a.Layout.Init(); err != nil {
		return nil, fmt.Errorf("init data dir: %w", err)
	}
	a.Meta = store.NewMetadataStore(a.Layout.MetadataFile(), log)
	a.Reports = store.ReportStore{Layout: a.Layout}

	model, err := a.embeddingModel(ctx)
	if err != nil {
		return nil, err
	}
	genCfg := embedding.GeneratorConfig{
		BatchSize:  cfg.EmbeddingBatchSize,
		BatchPause: cfg.EmbeddingBatchPause,
		Retry:      a.retryPolicy(),
	}
	generator := embedding.NewGenerator(model, genCfg, log)

	var scorer vectorindex.Scorer = vectorindex.KeywordScorer{}
	if cfg.SearchScorer == "cosine" {
		scorer = vectorindex.CosineScorer{Model: model}
	}
	a.Index = vectorindex.New(a.Layout, a.Meta, scorer, log)

	var extractor parser.TextExtractor = parser.PlaceholderExtractor{}
	if cfg.ExtractorMode == "native" {
		extractor = parser.NewNativeExtractor(cfg.PDFFallbackPdftotext, log)
	}
	chunkCfg := chunker.Config{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap}
	a.Processor = docproc.NewProcessor(a.Layout, a.Meta, extractor, chunkCfg, generator, a.Index, log)

	a.Orchestrator = pipeline.NewOrchestrator(pipeline.Options{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, a.Processor, log)

	a.Stats = llm.NewLLMStats(time.Hour)
	a.LLM, err = a.llmClient(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if !o.skipSessions {
		a.Sessions, err = session.Open(cfg.SessionDir, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open sessions: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := a.Sessions.Close(); err != nil {
				log.Warn("close sessions", "error", err)
			}
		})
		a.Chat = chat.NewService(a.Index, a.LLM, a.Sessions, cfg.HistoryTokenBudget, log)
	}

	a.Assembler = report.NewAssembler(a.Reports, log)
	if cfg.ReportSectionContent && a.LLMConfigured() {
		a.Assembler.Writer = a.LLM
	}
	a.PDF = report.PDFRenderer{FontPath: cfg.ReportFontPath}

	if cfg.InboxDir != "" {
		a.Watcher = watch.New(cfg.InboxDir, 0, a.SubmitInboxFile, log.With("component", "inbox"))
	}
	return a, nil
}

// LLMConfigured reports whether a chat provider with credentials is wired.
func (a *App) LLMConfigured() bool {
	_, none := a.LLM.(llm.Unconfigured)
	return !none
}

// SubmitInboxFile queues a settled inbox file. The file stays in the inbox;
// re-submissions are caught by the content hash check.
func (a *App) SubmitInboxFile(path string) error {
	job := pipeline.NewJob(path, filepath.Base(path), "inbox", false)
	return a.Orchestrator.Submit(job)
}

// Close releases provider clients and the session database.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: a.Config.RetryMaxAttempts,
		BaseDelay:   a.Config.RetryBaseDelay,
		MaxDelay:    a.Config.RetryMaxDelay,
	}
}

func (a *App) embeddingModel(ctx context.Context) (embedding.Model, error) {
	cfg := a.Config
	switch cfg.EmbeddingProvider {
	case "openai":
		m := embedding.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimension)
		a.closers = append(a.closers, m.Close)
		return m, nil
	case "gemini":
		m, err := embedding.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return &embedding.StubModel{Dim: cfg.EmbeddingDimension, Value: 0.1}, nil
}

// llmClient returns the configured provider wrapped with retries and latency
// stats, or Unconfigured when no credentials are set.
func (a *App) llmClient(ctx context.Context) (llm.Client, error) {
	cfg := a.Config
	if cfg.LLMProvider == "none" || cfg.LLMKey() == "" {
		a.Log.Warn("no llm provider configured; chat and section content are disabled", "provider", cfg.LLMProvider)
		return llm.Unconfigured{}, nil
	}
	defaults := llm.Options{
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	}
	var client llm.Client
	switch cfg.LLMProvider {
	case "openai":
		c := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, defaults)
		a.closers = append(a.closers, c.Close)
		client = c
	case "claude":
		client = llm.NewClaudeClient(cfg.AnthropicAPIKey, defaults)
	case "gemini":
		c, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, defaults)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
	a.Log.Info("llm provider configured", "provider", client.Name(), "model", cfg.LLMModel)
	return &llm.Instrumented{
		Client: llm.WithRetry(client, a.retryPolicy(), a.Log),
		Stats:  a.Stats,
	}, nil
}
