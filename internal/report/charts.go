package report

import (
	"slices"

	"github.com/dgallion1/clusterscope/internal/model"
)

const national = "全国"

var provinces = map[string]string{
	"杭州": "浙江",
	"宁波": "浙江",
	"温州": "浙江",
	"苏州": "江苏",
	"南京": "江苏",
	"无锡": "江苏",
	"广州": "广东",
	"深圳": "广东",
	"东莞": "广东",
	"成都": "四川",
	"重庆": "重庆",
	"武汉": "湖北",
	"西安": "陕西",
}

type cityScore struct {
	name  string
	value float64
}

// peerCities holds curated city scores per province. Provinces without an
// entry use the national list.
var peerCities = map[string][]cityScore{
	"浙江": {
		{"杭州", 86}, {"宁波", 78}, {"温州", 65}, {"嘉兴", 72}, {"湖州", 58},
		{"绍兴", 69}, {"金华", 62}, {"衢州", 45}, {"舟山", 53},
	},
	"江苏": {
		{"南京", 84}, {"苏州", 88}, {"无锡", 76}, {"常州", 72}, {"南通", 65},
		{"徐州", 58}, {"盐城", 52}, {"扬州", 63}, {"镇江", 61},
	},
	national: {
		{"北京", 92}, {"上海", 90}, {"深圳", 88}, {"广州", 85}, {"杭州", 86},
		{"南京", 84}, {"成都", 80}, {"武汉", 78}, {"西安", 76}, {"重庆", 75},
		{"苏州", 88}, {"宁波", 78}, {"长沙", 74}, {"天津", 76}, {"郑州", 72},
	},
}

var radarScores = []cityScore{
	{"创新潜力", 85}, {"政策支持", 70}, {"人才资源", 65},
	{"市场前景", 90}, {"基础设施", 75}, {"资金环境", 60},
}

var trendSeries = []struct {
	year     string
	value    float64
	forecast bool
}{
	{"2023", 4000, false},
	{"2024", 4800, false},
	{"2025", 5600, false},
	{"2026", 6500, true},
	{"2027", 7400, true},
	{"2028", 8200, true},
}

// BuildCharts returns the charts for a report type: a radar chart for
// comprehensive and executive, a trend chart for comprehensive and trend,
// and a regional heatmap for comprehensive and comparison when region is
// set. The payload depends only on the arguments.
func BuildCharts(reportType, industry, region string) []model.Chart {
	charts := []model.Chart{}
	if slices.Contains([]string{TypeComprehensive, TypeExecutive}, reportType) {
		charts = append(charts, radarChart(industry, region))
	}
	if slices.Contains([]string{TypeComprehensive, TypeTrend}, reportType) {
		charts = append(charts, trendChart(industry, region))
	}
	if region != "" && slices.Contains([]string{TypeComprehensive, TypeComparison}, reportType) {
		charts = append(charts, heatmapChart(industry, region))
	}
	return charts
}

// subject is the chart title prefix; without an industry the generic
// "产业" stands in for it.
func subject(industry, region string) string {
	if industry == "" {
		return region + "产业"
	}
	return region + industry
}

func radarChart(industry, region string) model.Chart {
	data := make([]model.ChartPoint, 0, len(radarScores))
	for _, s := range radarScores {
		data = append(data, model.ChartPoint{Subject: s.name, Value: model.Num(s.value), FullMark: model.Num(100)})
	}
	return model.Chart{Type: model.ChartRadar, Title: subject(industry, region) + "发展潜力雷达图", Data: data}
}

func trendChart(industry, region string) model.Chart {
	data := make([]model.ChartPoint, 0, len(trendSeries))
	for _, p := range trendSeries {
		pt := model.ChartPoint{Name: p.year}
		if p.forecast {
			pt.Forecast = model.Num(p.value)
		} else {
			pt.Actual = model.Num(p.value)
		}
		data = append(data, pt)
	}
	return model.Chart{Type: model.ChartTrend, Title: subject(industry, region) + "规模预测 (亿元)", Data: data}
}

// Province resolves a city to its province, or 全国 when unknown.
func Province(region string) string {
	if p, ok := provinces[region]; ok {
		return p
	}
	return national
}

func heatmapChart(industry, region string) model.Chart {
	province := Province(region)
	cities, ok := peerCities[province]
	if !ok {
		cities = peerCities[national]
	}
	data := make([]model.ChartPoint, 0, len(cities))
	for _, c := range cities {
		data = append(data, model.ChartPoint{Name: c.name, Value: model.Num(c.value)})
	}

	label := industry
	if label == "" {
		label = "产业"
	}
	title := province + "省各市" + label + "潜力评分"
	if province == national {
		title = "全国主要城市" + label + "潜力评分"
	}
	return model.Chart{Type: model.ChartHeatmap, Title: title, Data: data}
}
