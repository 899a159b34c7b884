package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPlaceholderExtractor(t *testing.T) {
	ctx := context.Background()
	var e PlaceholderExtractor

	md := writeFile(t, "doc.md", "# 标题\n内容")
	got, err := e.Extract(ctx, md, ".md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "# 标题\n内容" {
		t.Errorf("expected file contents, got %q", got)
	}

	tests := []struct {
		fileType string
		want     string
	}{
		{".pdf", "Simulated text extraction from PDF: /x/a.pdf"},
		{".docx", "Simulated text extraction from Word document: /x/a.pdf"},
		{".doc", "Simulated text extraction from Word document: /x/a.pdf"},
		{".csv", "Simulated data extraction from tabular file: /x/a.pdf"},
		{".xlsx", "Simulated data extraction from tabular file: /x/a.pdf"},
		{".pptx", "Unsupported file format: .pptx"},
	}
	for _, tt := range tests {
		got, err := e.Extract(ctx, "/x/a.pdf", tt.fileType)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.fileType, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.fileType, tt.want, got)
		}
	}
}

func TestPlaceholderExtractor_MissingTextFile(t *testing.T) {
	_, err := PlaceholderExtractor{}.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), ".txt")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNativeExtractor_CSV(t *testing.T) {
	path := writeFile(t, "data.csv", "city,score\n杭州,86\n宁波,78\n")
	got, err := NewNativeExtractor(false, nil).Extract(context.Background(), path, ".csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Headers: city, score\n\ncity: 杭州, score: 86\ncity: 宁波, score: 78"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNativeExtractor_HTML(t *testing.T) {
	path := writeFile(t, "page.html", `<html><head><title>产业报告</title><style>p{}</style></head>
<body><h2>概述</h2><p>杭州  电子信息</p><script>var x;</script><ul><li>一</li></ul></body></html>`)
	got, err := NewNativeExtractor(false, nil).Extract(context.Background(), path, ".html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# 产业报告\n\n## 概述\n\n杭州 电子信息\n\n一"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNativeExtractor_FallsBackOnBrokenPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", "not a pdf")
	got, err := NewNativeExtractor(false, nil).Extract(context.Background(), path, ".pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "Simulated text extraction from PDF: ") {
		t.Errorf("expected placeholder fallback, got %q", got)
	}
}

func TestNativeExtractor_UnknownTypeFallsBack(t *testing.T) {
	path := writeFile(t, "sheet.xlsx", "binary")
	got, err := NewNativeExtractor(false, nil).Extract(context.Background(), path, ".xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "Simulated data extraction from tabular file: ") {
		t.Errorf("expected placeholder fallback, got %q", got)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	for _, name := range []string{"a.PDF", "b.docx", "c.md", "d.xls"} {
		if !IsSupportedExtension(name) {
			t.Errorf("expected %s to be supported", name)
		}
	}
	if IsSupportedExtension("e.exe") {
		t.Error("expected .exe to be unsupported")
	}
}
