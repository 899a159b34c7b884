package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/dgallion1/clusterscope/internal/model"
)

// MetadataStore keeps the id -> Document mapping in a single JSON file. Every
// mutation reloads the file, applies the change and rewrites it atomically
// while holding both the in-process mutex and an flock on "{path}.lock", so
// writers touching different ids never drop each other's entries, even when
// the server and clusterctl share a data directory.
type MetadataStore struct {
	mu   sync.Mutex
	file *flock.Flock
	path string
	log  *slog.Logger
}

func NewMetadataStore(path string, log *slog.Logger) *MetadataStore {
	if log == nil {
		log = slog.Default()
	}
	return &MetadataStore{path: path, file: flock.New(path + ".lock"), log: log}
}

// Load returns the persisted mapping. A missing or corrupt file is treated as
// empty.
func (s *MetadataStore) Load() map[string]model.Document {
	docs := map[string]model.Document{}
	if err := ReadJSON(s.path, &docs); err != nil {
		if !errors.Is(err, ErrNotFound) && s.log != nil {
			s.log.Warn("metadata file unreadable, treating as empty", "path", s.path, "error", err)
		}
		return map[string]model.Document{}
	}
	return docs
}

// Get returns the document with the given id.
func (s *MetadataStore) Get(id string) (model.Document, error) {
	doc, ok := s.Load()[id]
	if !ok {
		return model.Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

// List returns all documents ordered by processed date, then id.
func (s *MetadataStore) List() []model.Document {
	docs := s.Load()
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	SortDocuments(out)
	return out
}

// Put inserts or replaces one entry.
func (s *MetadataStore) Put(doc model.Document) error {
	return s.Update(func(docs map[string]model.Document) (bool, error) {
		docs[doc.ID] = doc
		return true, nil
	})
}

// Delete removes one entry. Deleting an absent id is not an error.
func (s *MetadataStore) Delete(id string) error {
	return s.Update(func(docs map[string]model.Document) (bool, error) {
		if _, ok := docs[id]; !ok {
			return false, nil
		}
		delete(docs, id)
		return true, nil
	})
}

// Update runs fn against the freshly loaded mapping and persists it when fn
// reports a change.
func (s *MetadataStore) Update(fn func(docs map[string]model.Document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("lock metadata: %w", err)
	}
	if err := s.file.Lock(); err != nil {
		return fmt.Errorf("lock metadata: %w", err)
	}
	defer func() {
		if err := s.file.Unlock(); err != nil {
			s.log.Warn("unlock metadata", "path", s.path, "error", err)
		}
	}()

	docs := s.Load()
	changed, err := fn(docs)
	if err != nil || !changed {
		return err
	}
	if err := WriteJSON(s.path, docs); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// SortDocuments orders documents by processed date, then id.
func SortDocuments(docs []model.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].ProcessedDate.Equal(docs[j].ProcessedDate) {
			return docs[i].ProcessedDate.Before(docs[j].ProcessedDate)
		}
		return docs[i].ID < docs[j].ID
	})
}
