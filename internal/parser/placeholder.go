package parser

import (
	"context"
	"fmt"
	"os"
)

// PlaceholderExtractor reads plain-text formats and returns marked
// placeholder strings for binary formats.
type PlaceholderExtractor struct{}

func (PlaceholderExtractor) Extract(ctx context.Context, path, fileType string) (string, error) {
	switch fileType {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	case ".pdf":
		return "Simulated text extraction from PDF: " + path, nil
	case ".docx", ".doc":
		return "Simulated text extraction from Word document: " + path, nil
	case ".csv", ".xlsx", ".xls":
		return "Simulated data extraction from tabular file: " + path, nil
	default:
		return "Unsupported file format: " + fileType, nil
	}
}
