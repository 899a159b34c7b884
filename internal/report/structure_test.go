package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/clusterscope/internal/model"
)

func sectionTitles(s model.ReportStructure) []string {
	out := make([]string, len(s.Sections))
	for i, sec := range s.Sections {
		out[i] = sec.Title
	}
	return out
}

func TestBuildStructureIsDeterministic(t *testing.T) {
	in := StructureInput{ReportType: TypeExecutive, Title: "T", Language: "zh"}
	first := BuildStructure(in)
	second := BuildStructure(in)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"决策摘要", "关键发现", "潜力评分", "主要优势", "主要挑战", "建议行动方案"}, sectionTitles(first))
	assert.Equal(t, "T", first.Title)

	// Mutating a result must not leak into the template.
	first.Sections[0].Title = "changed"
	assert.Equal(t, "决策摘要", BuildStructure(in).Sections[0].Title)
}

func TestBuildStructureEnglish(t *testing.T) {
	s := BuildStructure(StructureInput{ReportType: TypeExecutive, Title: "T", Language: "en"})
	assert.Equal(t, []string{
		"Executive Summary", "Key Findings", "Potential Score",
		"Main Strengths", "Main Challenges", "Recommended Action Plan",
	}, sectionTitles(s))

	s = BuildStructure(StructureInput{ReportType: TypeComprehensive, Title: "杭州电子信息综合评估报告", Language: "en"})
	titles := sectionTitles(s)
	assert.Equal(t, "Executive Summary", titles[0])
	assert.Equal(t, "1. Introduction", titles[1])
	assert.Equal(t, "2. Current Industry Status", titles[2])
	assert.Equal(t, "Appendix: Assessment Methodology", titles[9])
	assert.Equal(t, "杭州电子信息Comprehensive Assessment Report", s.Title)
}

func TestTranslateSectionTitlePassThrough(t *testing.T) {
	assert.Equal(t, "9. 未知章节", TranslateSectionTitle("9. 未知章节"))
	assert.Equal(t, "未知章节", TranslateSectionTitle("未知章节"))
	assert.Equal(t, "3. Potential Assessment", TranslateSectionTitle("3. 潜力评估"))
}

func TestTranslateTitle(t *testing.T) {
	assert.Equal(t, "杭州 Industry Trend Forecast Report", TranslateTitle("杭州产业趋势预测报告"))
	assert.Equal(t, "Custom", TranslateTitle("Custom"))
}

func TestBuildStructureUnknownType(t *testing.T) {
	s := BuildStructure(StructureInput{ReportType: "quarterly", Title: "Q"})
	assert.Equal(t, []string{"概述", "分析", "结论"}, sectionTitles(s))

	s = BuildStructure(StructureInput{ReportType: "quarterly", Title: "Q", Language: "en"})
	assert.Equal(t, []string{"Overview", "Analysis", "Conclusion"}, sectionTitles(s))
}

func TestTemplatesFlagChartSections(t *testing.T) {
	for _, typ := range Types {
		s := BuildStructure(StructureInput{ReportType: typ})
		require.NotEmpty(t, s.Sections, typ)
		charted := 0
		for _, sec := range s.Sections {
			if sec.IncludesChart {
				charted++
			}
		}
		assert.Positive(t, charted, typ)
	}
}

func TestComposeTitle(t *testing.T) {
	tests := []struct {
		name               string
		typ, title, ind, r string
		want               string
	}{
		{"region and industry", TypeComprehensive, "raw", "电子信息", "杭州", "杭州电子信息综合评估报告"},
		{"industry only", TypeTrend, "raw", "生物医药", "", "生物医药趋势预测报告"},
		{"region only", TypePolicy, "raw", "", "成都", "成都产业政策建议报告"},
		{"neither", TypeExecutive, "我的报告 v2", "", "", "我的报告 v2"},
		{"unknown type", "other", "raw", "汽车", "", "汽车评估报告"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeTitle(tt.typ, tt.title, tt.ind, tt.r))
		})
	}
	assert.True(t, strings.HasPrefix(ComposeTitle(TypeComprehensive, "", "电子信息", "杭州"), "杭州电子信息"))
}

func TestReportTypes(t *testing.T) {
	types := ReportTypes()
	require.Len(t, types, 5)
	assert.Equal(t, TypeComprehensive, types[0].Type)
	assert.Equal(t, "综合评估报告", types[0].DisplayName)
	assert.Equal(t, 10, types[0].SectionCount)
	assert.Equal(t, []string{model.ChartRadar, model.ChartTrend, model.ChartHeatmap}, types[0].Charts)
	assert.Empty(t, types[3].Charts)
}
