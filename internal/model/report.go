package model

// Section kinds used by report templates.
const (
	SectionText         = "text"
	SectionBulletPoints = "bullet_points"
	SectionAssessment   = "assessment"
	SectionForecast     = "forecast"
	SectionComparison   = "comparison"
)

// Chart kinds.
const (
	ChartRadar   = "radar"
	ChartTrend   = "trend"
	ChartHeatmap = "heatmap"
)

// Section is one entry of a report outline.
type Section struct {
	Title         string `json:"title"`
	Type          string `json:"type"`
	IncludesChart bool   `json:"includes_chart"`
	Content       string `json:"content,omitempty"`
}

// ReportStructure is the titled outline of a report.
type ReportStructure struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// ChartPoint is one datum of a chart. Which fields are set depends on the
// chart kind: radar uses Subject/Value/FullMark, trend uses Name with Actual
// or Forecast, heatmap uses Name/Value.
type ChartPoint struct {
	Subject  string   `json:"subject,omitempty"`
	Name     string   `json:"name,omitempty"`
	Value    *float64 `json:"value,omitempty"`
	FullMark *float64 `json:"fullMark,omitempty"`
	Actual   *float64 `json:"actual,omitempty"`
	Forecast *float64 `json:"forecast,omitempty"`
}

// Chart is a renderable data series.
type Chart struct {
	Type  string       `json:"type"`
	Title string       `json:"title"`
	Data  []ChartPoint `json:"data"`
}

// Report is the persisted result of report generation.
type Report struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	ReportType string          `json:"type"`
	Industry   string          `json:"industry,omitempty"`
	Region     string          `json:"region,omitempty"`
	Date       string          `json:"date"`
	Structure  ReportStructure `json:"structure"`
	Charts     []Chart         `json:"charts"`
	Language   string          `json:"language"`
}

// Num returns a pointer to v, for populating ChartPoint fields.
func Num(v float64) *float64 {
	return &v
}
