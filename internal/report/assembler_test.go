package report

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/clusterscope/internal/llm"
	"github.com/dgallion1/clusterscope/internal/model"
	"github.com/dgallion1/clusterscope/internal/store"
)

type memStore struct {
	mu      sync.Mutex
	reports map[string]model.Report
}

func (m *memStore) Save(r model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reports == nil {
		m.reports = map[string]model.Report{}
	}
	m.reports[r.ID] = r
	return nil
}

type sectionWriter struct {
	fail string
}

func (sectionWriter) Name() string { return "writer" }

func (w sectionWriter) Complete(_ context.Context, msgs []model.Message, _ llm.Options) (string, error) {
	prompt := msgs[len(msgs)-1].Content
	if w.fail != "" && strings.Contains(prompt, w.fail) {
		return "", errors.New("model refused")
	}
	return "  content for prompt  ", nil
}

func TestGenerateReport(t *testing.T) {
	layout := store.Layout{Root: t.TempDir()}
	reports := store.ReportStore{Layout: layout}
	a := NewAssembler(reports, nil)
	a.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }

	transcript := []model.Message{{Role: model.RoleUser, Content: "杭州电子信息产业如何？"}}
	req := Request{
		Transcript:    transcript,
		ReportType:    TypeComprehensive,
		Title:         "ignored",
		Industry:      "电子信息",
		Region:        "杭州",
		IncludeCharts: true,
	}
	id, url, err := a.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "/reports/"+id, url)

	r, err := reports.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "杭州电子信息综合评估报告", r.Title)
	assert.Equal(t, r.Title, r.Structure.Title)
	assert.Equal(t, "zh", r.Language)
	assert.Equal(t, "2025-06-01T09:30:00Z", r.Date)
	assert.Len(t, r.Structure.Sections, 10)
	assert.Len(t, r.Charts, 3)
	assert.Len(t, transcript, 1)

	id2, _, err := a.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestGenerateWithoutCharts(t *testing.T) {
	m := &memStore{}
	a := NewAssembler(m, nil)
	id, _, err := a.Generate(context.Background(), Request{ReportType: TypeExecutive, Title: "Board pack", Language: "en"})
	require.NoError(t, err)

	r := m.reports[id]
	assert.Equal(t, "Board pack", r.Title)
	assert.Equal(t, "Board pack", r.Structure.Title)
	assert.NotNil(t, r.Charts)
	assert.Empty(t, r.Charts)
	assert.Equal(t, "Executive Summary", r.Structure.Sections[0].Title)
}

func TestSectionContent(t *testing.T) {
	m := &memStore{}
	a := NewAssembler(m, nil)
	a.Writer = sectionWriter{fail: "关键发现"}

	id, _, err := a.Generate(context.Background(), Request{ReportType: TypeExecutive, Title: "T"})
	require.NoError(t, err)

	for _, sec := range m.reports[id].Structure.Sections {
		if sec.Title == "关键发现" {
			assert.Empty(t, sec.Content)
			continue
		}
		assert.Equal(t, "content for prompt", sec.Content, sec.Title)
	}
}

func TestGenerateNeedsTitleSource(t *testing.T) {
	m := &memStore{}
	a := NewAssembler(m, nil)

	_, _, err := a.Generate(context.Background(), Request{ReportType: TypePolicy})
	assert.ErrorIs(t, err, ErrNoTitle)
	assert.Empty(t, m.reports)

	id, _, err := a.Generate(context.Background(), Request{ReportType: TypePolicy, Industry: "汽车"})
	require.NoError(t, err)
	assert.Equal(t, "汽车"+DisplayName(TypePolicy), m.reports[id].Title)

	data, err := json.Marshal(m.reports[id])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"policy"`)
	assert.NotContains(t, string(data), `"report_type"`)
}

func TestSectionContentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAssembler(&memStore{}, nil)
	a.Writer = cancelAware{}
	_, _, err := a.Generate(ctx, Request{ReportType: TypeExecutive, Title: "T"})
	assert.ErrorIs(t, err, context.Canceled)
}

type cancelAware struct{}

func (cancelAware) Name() string { return "cancel" }

func (cancelAware) Complete(ctx context.Context, _ []model.Message, _ llm.Options) (string, error) {
	return "", ctx.Err()
}

func TestRenderPDF(t *testing.T) {
	a := NewAssembler(&memStore{}, nil)
	r, err := a.Build(context.Background(), Request{
		ReportType: TypeComprehensive, Title: "Cluster review", Region: "Hangzhou", IncludeCharts: true, Language: "en",
	})
	require.NoError(t, err)

	out, err := PDFRenderer{}.Render(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))

	_, err = PDFRenderer{FontPath: "/nonexistent/font.ttf"}.Render(r)
	assert.Error(t, err)
}
