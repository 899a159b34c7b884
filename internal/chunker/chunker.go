// Package chunker splits document text into overlapping character windows.
package chunker

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for window settings that cannot make progress.
var ErrInvalidArgument = errors.New("invalid argument")

// Config controls chunking behavior. Sizes are in characters (runes).
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultConfig returns the standard window of 1000 characters with 200 of overlap.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// Validate reports whether the window advances on every step.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidArgument, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidArgument, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Split cuts text into windows of at most ChunkSize characters. Consecutive
// windows start ChunkSize-ChunkOverlap characters apart and the last window
// ends at the end of the text. Text no longer than ChunkSize yields exactly
// one chunk, even when empty.
func Split(text string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	if len(runes) <= cfg.ChunkSize {
		return []string{text}, nil
	}

	step := cfg.ChunkSize - cfg.ChunkOverlap
	chunks := make([]string, 0, Count(len(runes), cfg))
	for start := 0; ; start += step {
		end := min(start+cfg.ChunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// Count returns how many chunks Split produces for a text of n characters:
// 1 when n <= size, otherwise ceil((n-overlap)/(size-overlap)).
func Count(n int, cfg Config) int {
	if cfg.Validate() != nil {
		return 0
	}
	if n <= cfg.ChunkSize {
		return 1
	}
	step := cfg.ChunkSize - cfg.ChunkOverlap
	return (n - cfg.ChunkOverlap + step - 1) / step
}
