// Package model holds the records shared by ingestion, retrieval and reporting.
package model

import "time"

// Document is the metadata record kept for every ingested file.
type Document struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	FileType       string    `json:"file_type"`
	Path           string    `json:"path"`
	ProcessedDate  time.Time `json:"processed_date"`
	ChunkCount     int       `json:"chunk_count"`
	WordCount      int       `json:"word_count"`
	CharacterCount int       `json:"character_count"`
	Title          string    `json:"title"`
	Industry       string    `json:"industry,omitempty"`
	Region         string    `json:"region,omitempty"`
	ContentHash    string    `json:"content_hash,omitempty"`
}

// Metadata is the subset of Document derived from extracted text.
type Metadata struct {
	WordCount      int    `json:"word_count"`
	CharacterCount int    `json:"character_count"`
	Title          string `json:"title"`
	Industry       string `json:"industry,omitempty"`
	Region         string `json:"region,omitempty"`
}

// Chunk is one overlapping window of a document's text.
type Chunk struct {
	DocID   string `json:"doc_id"`
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// EmbeddingRecord pairs a chunk with its vector.
type EmbeddingRecord struct {
	DocID       string    `json:"doc_id"`
	ChunkID     int       `json:"chunk_id"`
	TextPreview string    `json:"text_preview"`
	Vector      []float32 `json:"vector"`
}

// SearchResult is a scored chunk returned by the index.
type SearchResult struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	DocID    string  `json:"doc_id"`
	ChunkID  int     `json:"chunk_id"`
	Title    string  `json:"title"`
	Industry string  `json:"industry,omitempty"`
	Region   string  `json:"region,omitempty"`
}

// Source is the citation form of a SearchResult.
type Source struct {
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Industry string  `json:"industry"`
	Region   string  `json:"region"`
}

// Message is one turn of a chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
