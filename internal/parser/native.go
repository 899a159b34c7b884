package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// NativeExtractor parses document formats with format libraries. Any failure
// or unknown format degrades to the Fallback extractor.
type NativeExtractor struct {
	FallbackPdftotext bool
	Fallback          TextExtractor
	Log               *slog.Logger
}

func NewNativeExtractor(fallbackPdftotext bool, log *slog.Logger) *NativeExtractor {
	return &NativeExtractor{
		FallbackPdftotext: fallbackPdftotext,
		Fallback:          PlaceholderExtractor{},
		Log:               log,
	}
}

func (e *NativeExtractor) Extract(ctx context.Context, path, fileType string) (string, error) {
	text, err := e.extract(path, fileType)
	if err == nil {
		return text, nil
	}
	if e.Log != nil {
		e.Log.Warn("native extraction failed, using fallback", "path", path, "file_type", fileType, "error", err)
	}
	return e.Fallback.Extract(ctx, path, fileType)
}

func (e *NativeExtractor) extract(path, fileType string) (string, error) {
	switch fileType {
	case ".pdf":
		return extractPDF(path, e.FallbackPdftotext)
	case ".docx":
		return extractDOCX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	switch fileType {
	case ".txt":
		return extractPlainText(f)
	case ".md":
		return extractMarkdown(f)
	case ".html", ".htm":
		return extractHTML(f)
	case ".csv":
		return extractCSV(f)
	default:
		return "", fmt.Errorf("no native extractor for %s", fileType)
	}
}
