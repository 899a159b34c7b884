package parser

import (
	"strings"
	"testing"
)

func TestExtractPlainText_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	got, err := extractPlainText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestExtractPlainText_EmptyInput(t *testing.T) {
	got, err := extractPlainText(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestExtractPlainText_MultipleBlankLines(t *testing.T) {
	got, err := extractPlainText(strings.NewReader("Para one.\n\n\n\nPara two."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Para one.\n\nPara two." {
		t.Errorf("expected collapsed blank lines, got %q", got)
	}
}

func TestExtractPlainText_WhitespaceOnlyLines(t *testing.T) {
	got, err := extractPlainText(strings.NewReader("Para one.\n   \nPara two."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Para one.\n\nPara two." {
		t.Errorf("expected whitespace-only line treated as blank, got %q", got)
	}
}
