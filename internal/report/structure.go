// Package report turns a conversation into a titled, sectioned report with
// charts, persists it and renders it as PDF.
package report

import (
	"slices"
	"strings"

	"github.com/dgallion1/clusterscope/internal/model"
)

// Report types.
const (
	TypeComprehensive = "comprehensive"
	TypeExecutive     = "executive"
	TypeTrend         = "trend"
	TypePolicy        = "policy"
	TypeComparison    = "comparison"
)

// Types lists the known report types in catalogue order.
var Types = []string{TypeComprehensive, TypeExecutive, TypeTrend, TypePolicy, TypeComparison}

const fallbackDisplayName = "评估报告"

var displayNames = map[string]string{
	TypeComprehensive: "综合评估报告",
	TypeExecutive:     "决策者摘要",
	TypeTrend:         "趋势预测报告",
	TypePolicy:        "政策建议报告",
	TypeComparison:    "对标分析报告",
}

func text(title string) model.Section {
	return model.Section{Title: title, Type: model.SectionText}
}

func bullets(title string) model.Section {
	return model.Section{Title: title, Type: model.SectionBulletPoints}
}

func charted(title, kind string) model.Section {
	return model.Section{Title: title, Type: kind, IncludesChart: true}
}

var templates = map[string][]model.Section{
	TypeComprehensive: {
		text("摘要"),
		text("1. 引言"),
		text("2. 产业发展现状"),
		charted("3. 潜力评估", model.SectionAssessment),
		text("4. 优势分析"),
		text("5. 挑战与不足"),
		charted("6. 发展趋势预测", model.SectionForecast),
		text("7. 政策建议"),
		text("8. 结论"),
		text("附录：评估方法"),
	},
	TypeExecutive: {
		text("决策摘要"),
		bullets("关键发现"),
		charted("潜力评分", model.SectionAssessment),
		bullets("主要优势"),
		bullets("主要挑战"),
		bullets("建议行动方案"),
	},
	TypeTrend: {
		text("趋势概述"),
		charted("历史发展轨迹", model.SectionText),
		charted("未来3年预测", model.SectionForecast),
		charted("未来5年预测", model.SectionForecast),
		text("影响因素分析"),
		bullets("风险因素"),
		bullets("机遇分析"),
	},
	TypePolicy: {
		text("政策背景"),
		text("现有政策评估"),
		charted("政策效果分析", model.SectionAssessment),
		text("政策建议"),
		bullets("短期行动方案"),
		bullets("中长期规划建议"),
		text("预期效果评估"),
	},
	TypeComparison: {
		text("对标概述"),
		text("标杆产业集群介绍"),
		charted("对比分析", model.SectionComparison),
		text("差距分析"),
		bullets("借鉴经验"),
		text("改进方案"),
	},
}

var defaultTemplate = []model.Section{text("概述"), text("分析"), text("结论")}

// sectionTranslations maps section titles to English. Titles without an
// entry stay as they are.
var sectionTranslations = map[string]string{
	"摘要":       "Executive Summary",
	"引言":       "Introduction",
	"产业发展现状":   "Current Industry Status",
	"潜力评估":     "Potential Assessment",
	"优势分析":     "Strengths Analysis",
	"挑战与不足":    "Challenges and Weaknesses",
	"发展趋势预测":   "Development Trend Forecast",
	"政策建议":     "Policy Recommendations",
	"结论":       "Conclusion",
	"附录：评估方法":  "Appendix: Assessment Methodology",
	"决策摘要":     "Executive Summary",
	"关键发现":     "Key Findings",
	"潜力评分":     "Potential Score",
	"主要优势":     "Main Strengths",
	"主要挑战":     "Main Challenges",
	"建议行动方案":   "Recommended Action Plan",
	"趋势概述":     "Trend Overview",
	"历史发展轨迹":   "Historical Development",
	"未来3年预测":   "3-Year Forecast",
	"未来5年预测":   "5-Year Forecast",
	"影响因素分析":   "Factor Analysis",
	"风险因素":     "Risk Factors",
	"机遇分析":     "Opportunity Analysis",
	"政策背景":     "Policy Background",
	"现有政策评估":   "Existing Policy Assessment",
	"政策效果分析":   "Policy Impact Analysis",
	"短期行动方案":   "Short-term Action Plan",
	"中长期规划建议":  "Medium-Long Term Planning",
	"预期效果评估":   "Expected Impact Assessment",
	"对标概述":     "Benchmarking Overview",
	"标杆产业集群介绍": "Benchmark Cluster Introduction",
	"对比分析":     "Comparative Analysis",
	"差距分析":     "Gap Analysis",
	"借鉴经验":     "Lessons Learned",
	"改进方案":     "Improvement Plan",
	"概述":       "Overview",
	"分析":       "Analysis",
}

// titlePhrases are tried in order; only the first present phrase is
// replaced.
var titlePhrases = []struct{ zh, en string }{
	{"综合评估报告", "Comprehensive Assessment Report"},
	{"决策者摘要", "Executive Summary"},
	{"趋势预测报告", "Trend Forecast Report"},
	{"政策建议报告", "Policy Recommendation Report"},
	{"对标分析报告", "Benchmarking Analysis Report"},
}

// DisplayName returns the Chinese name of a report type. Unknown types get
// a generic name.
func DisplayName(reportType string) string {
	if name, ok := displayNames[reportType]; ok {
		return name
	}
	return fallbackDisplayName
}

// ComposeTitle builds the report title from region and industry. With
// neither set, title is returned verbatim.
func ComposeTitle(reportType, title, industry, region string) string {
	name := DisplayName(reportType)
	switch {
	case industry != "" && region != "":
		return region + industry + name
	case industry != "":
		return industry + name
	case region != "":
		return region + "产业" + name
	default:
		return title
	}
}

// StructureInput carries everything BuildStructure depends on.
type StructureInput struct {
	ReportType string
	// Title is the already composed title.
	Title    string
	Industry string
	Region   string
	Messages []model.Message
	Language string
}

// BuildStructure selects the section template for the report type and
// translates titles when the language is "en". Unknown types use a
// three-section default. The result depends only on its input.
func BuildStructure(in StructureInput) model.ReportStructure {
	sections, ok := templates[in.ReportType]
	if !ok {
		sections = defaultTemplate
	}
	out := model.ReportStructure{
		Title:    in.Title,
		Sections: slices.Clone(sections),
	}
	if in.Language == "en" {
		out.Title = TranslateTitle(out.Title)
		for i := range out.Sections {
			out.Sections[i].Title = TranslateSectionTitle(out.Sections[i].Title)
		}
	}
	return out
}

// TranslateTitle renders a composed report title in English.
func TranslateTitle(title string) string {
	title = strings.ReplaceAll(title, "产业", " Industry ")
	for _, p := range titlePhrases {
		if strings.Contains(title, p.zh) {
			return strings.ReplaceAll(title, p.zh, p.en)
		}
	}
	return title
}

// TranslateSectionTitle translates a section title, keeping a "N. " prefix.
// Unknown titles are returned unchanged.
func TranslateSectionTitle(title string) string {
	if prefix, rest, ok := strings.Cut(title, ". "); ok {
		if en, ok := sectionTranslations[rest]; ok {
			return prefix + ". " + en
		}
		return title
	}
	if en, ok := sectionTranslations[title]; ok {
		return en
	}
	return title
}

// TypeInfo describes one report type of the catalogue.
type TypeInfo struct {
	Type         string   `json:"type"`
	DisplayName  string   `json:"display_name"`
	SectionCount int      `json:"section_count"`
	Charts       []string `json:"charts"`
}

// ReportTypes lists the report type catalogue.
func ReportTypes() []TypeInfo {
	out := make([]TypeInfo, 0, len(Types))
	for _, t := range Types {
		charts := []string{}
		for _, c := range BuildCharts(t, "", "全国") {
			charts = append(charts, c.Type)
		}
		out = append(out, TypeInfo{
			Type:         t,
			DisplayName:  displayNames[t],
			SectionCount: len(templates[t]),
			Charts:       charts,
		})
	}
	return out
}
