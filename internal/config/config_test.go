package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CLUSTERSCOPE_CONFIG", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 384, cfg.EmbeddingDimension)
	assert.Equal(t, 20, cfg.EmbeddingBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.EmbeddingBatchPause)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.RetryMaxDelay)
	assert.Equal(t, filepath.Join("./data", "sessions"), cfg.SessionDir)
	assert.Equal(t, "gpt-4o", cfg.LLMModel)
	require.NoError(t, cfg.Validate())
}

func TestLoadTOMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clusterscope.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9000"
chunk_size = 800
chunk_overlap = 100
embedding_batch_pause = "1s"
llm_provider = "claude"
`), 0o644))

	t.Setenv("CLUSTERSCOPE_CONFIG", path)
	t.Setenv("CHUNK_OVERLAP", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, time.Second, cfg.EmbeddingBatchPause)
	assert.Equal(t, "claude", cfg.LLMProvider)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.LLMModel)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_scorer: cosine\nsearch_top_k: 8\n"), 0o644))
	t.Setenv("CLUSTERSCOPE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cosine", cfg.SearchScorer)
	assert.Equal(t, 8, cfg.SearchTopK)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("CLUSTERSCOPE_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := load(nil)

	cfg := base
	cfg.ChunkOverlap = cfg.ChunkSize
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.EmbeddingProvider = "openai"
	cfg.OpenAIAPIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.ExtractorMode = "ocr"
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.LLMProvider = "none"
	assert.NoError(t, cfg.Validate())
}
