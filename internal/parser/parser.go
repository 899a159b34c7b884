// Package parser turns stored document files into plain text.
package parser

import (
	"context"
	"path/filepath"
	"strings"
)

// TextExtractor returns the text content of a stored document. fileType is
// the lowercased extension including the dot.
type TextExtractor interface {
	Extract(ctx context.Context, path, fileType string) (string, error)
}

// SupportedExtensions lists file extensions accepted for ingestion.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".html": true,
	".htm":  true,
}

// FileType returns the lowercased extension of filename.
func FileType(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[FileType(filename)]
}
