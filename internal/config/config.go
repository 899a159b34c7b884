package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage
	DataDir string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Job state
	JobTTL time.Duration

	// Text extraction: "placeholder" or "native".
	ExtractorMode        string
	PDFFallbackPdftotext bool

	// Embeddings
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingDimension  int
	EmbeddingBatchSize  int
	EmbeddingBatchPause time.Duration

	// Retrieval
	SearchScorer string
	SearchTopK   int

	// LLM
	LLMProvider     string
	LLMModel        string
	LLMTemperature  float64
	LLMMaxTokens    int
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	GeminiAPIKey    string

	// Provider retry policy
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	HistoryTokenBudget int

	// Reports
	ReportFontPath       string
	ReportSectionContent bool

	// Sessions
	SessionDir string

	// Inbox watcher; empty disables it.
	InboxDir string
}

// Load builds a Config from defaults, the optional config file and the
// environment, in increasing order of precedence.
func Load() (Config, error) {
	path := os.Getenv("CLUSTERSCOPE_CONFIG")
	explicit := path != ""
	if !explicit {
		path = "clusterscope.toml"
	}
	file, err := readFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		file = nil
	}
	return load(file), nil
}

func load(file map[string]any) Config {
	src := source{file: file}

	cfg := Config{
		Port: src.envOr("PORT", "8090"),

		APIKey: src.envOr("CLUSTERSCOPE_API_KEY", ""),

		DataDir: src.envOr("DATA_DIR", "./data"),

		WorkerCount:  src.envInt("WORKER_COUNT", 2),
		MaxQueueSize: src.envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: src.envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ChunkSize:    src.envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: src.envInt("CHUNK_OVERLAP", 200),

		JobTTL: src.envDuration("JOB_TTL", 1*time.Hour),

		ExtractorMode:        src.envOr("EXTRACTOR_MODE", "placeholder"),
		PDFFallbackPdftotext: src.envBool("PDF_FALLBACK_PDFTOTEXT", true),

		EmbeddingProvider:   src.envOr("EMBEDDING_PROVIDER", "stub"),
		EmbeddingModel:      src.envOr("EMBEDDING_MODEL", ""),
		EmbeddingDimension:  src.envInt("EMBEDDING_DIMENSION", 384),
		EmbeddingBatchSize:  src.envInt("EMBEDDING_BATCH_SIZE", 20),
		EmbeddingBatchPause: src.envDuration("EMBEDDING_BATCH_PAUSE", 500*time.Millisecond),

		SearchScorer: src.envOr("SEARCH_SCORER", "keyword"),
		SearchTopK:   src.envInt("SEARCH_TOP_K", 5),

		LLMProvider:     src.envOr("LLM_PROVIDER", "openai"),
		LLMModel:        src.envOr("LLM_MODEL", ""),
		LLMTemperature:  src.envFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:    src.envInt("LLM_MAX_TOKENS", 2000),
		OpenAIAPIKey:    src.envOr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   src.envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey: src.envOr("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:    src.envOr("GEMINI_API_KEY", ""),

		RetryMaxAttempts: src.envInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:   src.envDuration("RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:    src.envDuration("RETRY_MAX_DELAY", 60*time.Second),

		HistoryTokenBudget: src.envInt("HISTORY_TOKEN_BUDGET", 6000),

		ReportFontPath:       src.envOr("REPORT_FONT_PATH", ""),
		ReportSectionContent: src.envBool("REPORT_SECTION_CONTENT", false),

		SessionDir: src.envOr("SESSION_DIR", ""),
		InboxDir:   src.envOr("INBOX_DIR", ""),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.EmbeddingDimension <= 0 {
		cfg.EmbeddingDimension = 384
	}
	if cfg.EmbeddingBatchSize <= 0 {
		cfg.EmbeddingBatchSize = 20
	}
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = 5
	}
	if cfg.LLMMaxTokens <= 0 {
		cfg.LLMMaxTokens = 2000
	}
	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = 3
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = filepath.Join(cfg.DataDir, "sessions")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel(cfg.LLMProvider)
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = defaultEmbeddingModel(cfg.EmbeddingProvider)
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	switch c.ExtractorMode {
	case "placeholder", "native":
	default:
		return fmt.Errorf("unknown EXTRACTOR_MODE %q", c.ExtractorMode)
	}
	switch c.SearchScorer {
	case "keyword", "cosine":
	default:
		return fmt.Errorf("unknown SEARCH_SCORER %q", c.SearchScorer)
	}
	switch c.EmbeddingProvider {
	case "stub":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai embeddings")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for gemini embeddings")
		}
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	switch c.LLMProvider {
	case "openai", "claude", "gemini", "none":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	return nil
}

// LLMKey returns the credential for the configured chat provider, empty when
// the provider has none.
func (c Config) LLMKey() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIAPIKey
	case "claude":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

func defaultLLMModel(provider string) string {
	switch provider {
	case "claude":
		return "claude-sonnet-4-5-20250929"
	case "gemini":
		return "gemini-2.5-flash"
	}
	return "gpt-4o"
}

func defaultEmbeddingModel(provider string) string {
	switch provider {
	case "openai":
		return "text-embedding-3-small"
	case "gemini":
		return "gemini-embedding-001"
	}
	return "stub"
}

// readFile decodes a TOML or YAML file into a flat key map. Keys are the
// lowercase forms of the environment variable names.
func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	default:
		err = toml.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]any
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := s.file[strings.ToLower(key)]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func (s source) envOr(key, fallback string) string {
	if v := s.lookup(key); v != "" {
		return v
	}
	return fallback
}

func (s source) envInt(key string, fallback int) int {
	if v := s.lookup(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) envInt64(key string, fallback int64) int64 {
	if v := s.lookup(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func (s source) envFloat(key string, fallback float64) float64 {
	if v := s.lookup(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func (s source) envBool(key string, fallback bool) bool {
	if v := s.lookup(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func (s source) envDuration(key string, fallback time.Duration) time.Duration {
	if v := s.lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
