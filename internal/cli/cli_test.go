package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/report"
)

// setupEnv points the CLI at an empty data directory with stub providers.
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CLUSTERSCOPE_CONFIG", "")
	t.Setenv("SESSION_DIR", "")
	t.Setenv("EMBEDDING_PROVIDER", "stub")
	t.Setenv("EMBEDDING_BATCH_PAUSE", "0s")
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("EXTRACTOR_MODE", "placeholder")
	t.Setenv("SEARCH_SCORER", "keyword")
	return t.TempDir()
}

// resetFlags restores flag values and Changed markers left by an earlier
// Execute; required-flag checks read Changed.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append([]string{"--data-dir", dir}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	dir := setupEnv(t)
	_, err := run(t, dir, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasTopKFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestIngestSearchDelete(t *testing.T) {
	dir := setupEnv(t)
	hz := writeFile(t, "hz.md", "# 杭州集成电路\n\n杭州 电子信息 集成电路 设计 企业 集聚")
	sh := writeFile(t, "sh.txt", "上海 生物医药 创新药 研发")

	out, err := run(t, dir, "ingest", hz, sh)
	require.NoError(t, err, out)
	assert.Contains(t, out, "hz.md: completed")
	assert.Contains(t, out, "sh.txt: completed")

	out, err = run(t, dir, "docs", "--json")
	require.NoError(t, err)
	var docs []model.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs), out)
	require.Len(t, docs, 2)

	out, err = run(t, dir, "search", "集成电路", "--region", "杭州", "--json")
	require.NoError(t, err)
	var results []model.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	require.Len(t, results, 1)
	assert.Equal(t, "杭州集成电路", results[0].Title)

	out, err = run(t, dir, "search", "集成电路", "--region", "上海")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")

	out, err = run(t, dir, "delete", results[0].DocID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+results[0].DocID)

	out, err = run(t, dir, "docs")
	require.NoError(t, err)
	assert.NotContains(t, out, results[0].DocID)
	assert.Contains(t, out, "生物医药")
}

func TestIngestDuplicateAndMissingFile(t *testing.T) {
	dir := setupEnv(t)
	path := writeFile(t, "a.txt", "南京 新能源")

	_, err := run(t, dir, "ingest", path)
	require.NoError(t, err)

	out, err := run(t, dir, "ingest", path)
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt: duplicate_skipped")

	out, err = run(t, dir, "ingest", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, out, "missing.txt: failed")
}

func TestReportAndShowReport(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, dir, "report", "--title", "raw", "--industry", "电子信息", "--region", "杭州")
	require.NoError(t, err, out)
	m := regexp.MustCompile(`Report (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	id := m[1]
	assert.Contains(t, out, "/reports/"+id)

	out, err = run(t, dir, "show-report", id)
	require.NoError(t, err)
	var r model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r), out)
	assert.Equal(t, "杭州电子信息综合评估报告", r.Title)
	assert.Len(t, r.Charts, 3)

	pdfPath := filepath.Join(t.TempDir(), "r.pdf")
	_, err = run(t, dir, "report", "--title", "Plain", "--type", "policy", "--lang", "en", "--no-charts")
	require.NoError(t, err)
	out, err = run(t, dir, "show-report", id, "--pdf", pdfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestReportValidation(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, dir, "report")
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrNoTitle)

	out, err := run(t, dir, "report", "--industry", "新能源")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Report ")

	_, err = run(t, dir, "report", "--title", "T", "--lang", "fr")
	assert.Error(t, err)

	_, err = run(t, dir, "show-report", "missing")
	assert.Error(t, err)
}
