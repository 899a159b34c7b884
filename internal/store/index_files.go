package store

import (
	"fmt"

	"github.com/dgallion1/clusterscope/internal/model"
)

// IndexFiles reads and writes the per-document chunk and embedding files.
type IndexFiles struct {
	Layout Layout
}

func (f IndexFiles) SaveChunks(docID string, chunks []model.Chunk) error {
	if err := ValidateID(docID); err != nil {
		return err
	}
	return WriteJSON(f.Layout.ChunkPath(docID), chunks)
}

func (f IndexFiles) LoadChunks(docID string) ([]model.Chunk, error) {
	if err := ValidateID(docID); err != nil {
		return nil, err
	}
	var chunks []model.Chunk
	if err := ReadJSON(f.Layout.ChunkPath(docID), &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (f IndexFiles) SaveEmbeddings(docID string, records []model.EmbeddingRecord) error {
	if err := ValidateID(docID); err != nil {
		return err
	}
	return WriteJSON(f.Layout.EmbeddingPath(docID), records)
}

func (f IndexFiles) LoadEmbeddings(docID string) ([]model.EmbeddingRecord, error) {
	if err := ValidateID(docID); err != nil {
		return nil, err
	}
	var records []model.EmbeddingRecord
	if err := ReadJSON(f.Layout.EmbeddingPath(docID), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Remove deletes both files for a document. Missing files are ignored.
func (f IndexFiles) Remove(docID string) error {
	if err := ValidateID(docID); err != nil {
		return err
	}
	if err := removeIfExists(f.Layout.ChunkPath(docID)); err != nil {
		return fmt.Errorf("remove chunks: %w", err)
	}
	if err := removeIfExists(f.Layout.EmbeddingPath(docID)); err != nil {
		return fmt.Errorf("remove embeddings: %w", err)
	}
	return nil
}
