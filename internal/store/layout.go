// Package store persists documents, index files and reports under a data directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidID is returned for ids that cannot name a file safely.
var ErrInvalidID = errors.New("invalid id")

// Layout names the files under the data directory:
//
//	documents/{id}{ext}
//	chunks/{id}_chunks.json
//	embeddings/{id}_embeddings.json
//	reports/{id}.json
//	uploads/
//	document_metadata.json
type Layout struct {
	Root string
}

func (l Layout) DocumentsDir() string  { return filepath.Join(l.Root, "documents") }
func (l Layout) ChunksDir() string     { return filepath.Join(l.Root, "chunks") }
func (l Layout) EmbeddingsDir() string { return filepath.Join(l.Root, "embeddings") }
func (l Layout) ReportsDir() string    { return filepath.Join(l.Root, "reports") }
func (l Layout) UploadsDir() string    { return filepath.Join(l.Root, "uploads") }
func (l Layout) MetadataFile() string  { return filepath.Join(l.Root, "document_metadata.json") }

func (l Layout) DocumentPath(id, ext string) string {
	return filepath.Join(l.DocumentsDir(), id+ext)
}

func (l Layout) ChunkPath(id string) string {
	return filepath.Join(l.ChunksDir(), id+"_chunks.json")
}

func (l Layout) EmbeddingPath(id string) string {
	return filepath.Join(l.EmbeddingsDir(), id+"_embeddings.json")
}

func (l Layout) ReportPath(id string) string {
	return filepath.Join(l.ReportsDir(), id+".json")
}

// Init creates every directory of the layout.
func (l Layout) Init() error {
	for _, dir := range []string{l.DocumentsDir(), l.ChunksDir(), l.EmbeddingsDir(), l.ReportsDir(), l.UploadsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ValidateID rejects ids that are empty or would escape their directory.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// WriteJSON writes v to path through a temp file and rename, so readers
// never observe a partial file.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadJSON decodes path into v. A missing file yields ErrNotFound.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// removeIfExists deletes path, ignoring a missing file.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
