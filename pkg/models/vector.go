package models

import (
	"context"
	"time"
)

type ContentType string

const (
	ContentTypeWeb      ContentType = "web"
	ContentTypeLesson   ContentType = "lesson"
	ContentTypeExercise ContentType = "exercise"
	ContentTypeDocument ContentType = "document"
)

type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

type VectorMetadata struct {
	Title       string      `json:"title,omitempty"`
	URL         string      `json:"url,omitempty"`
	Domain      string      `json:"domain,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	ContentType ContentType `json:"content_type"`
	Quality     Quality     `json:"quality"`
	Tags        []string    `json:"tags,omitempty"`
}

// Vector is an embedded piece of content. Immutable once stored, except
// for removal.
type Vector struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  VectorMetadata `json:"metadata"`
}

// SearchOptions filter and bound a relevance-ranked store search.
type SearchOptions struct {
	Limit         int           `json:"limit,omitempty"`
	MinSimilarity float64       `json:"min_similarity,omitempty"`
	ContentTypes  []ContentType `json:"content_types,omitempty"`
	Qualities     []Quality     `json:"qualities,omitempty"`
	// Tag matches vectors whose tag list contains the given substring,
	// case-insensitively.
	Tag string `json:"tag,omitempty"`
}

// SimilarOptions bound a raw-similarity lookup.
type SimilarOptions struct {
	Limit         int     `json:"limit,omitempty"`
	MinSimilarity float64 `json:"min_similarity,omitempty"`
	ExcludeID     string  `json:"exclude_id,omitempty"`
}

type VectorSearchResult struct {
	Vector     *Vector `json:"vector"`
	Similarity float64 `json:"similarity"`
	// Relevance is the composite ranking score (similarity + recency
	// bonus + quality bonus). Populated by Search only; FindSimilar
	// ranks by raw similarity and leaves it equal to Similarity.
	Relevance float64 `json:"relevance"`
}

type VectorStoreStats struct {
	Count            int                 `json:"count"`
	ByContentType    map[ContentType]int `json:"by_content_type"`
	ByQuality        map[Quality]int     `json:"by_quality"`
	AvgContentLength float64             `json:"avg_content_length"`
	LastModified     time.Time           `json:"last_modified"`
}

// VectorStore is an in-memory, insertion-ordered embedding store with a
// capacity ceiling. Implementations are safe for concurrent use within a
// single process.
type VectorStore interface {
	// Add embeds content and stores it, returning the new vector's id.
	// Embedding failures degrade to the local fallback scheme, so Add
	// does not fail on upstream errors.
	Add(ctx context.Context, content string, metadata VectorMetadata) (string, error)
	// Search ranks stored vectors against the query by composite
	// relevance score.
	Search(ctx context.Context, query string, opts SearchOptions) ([]VectorSearchResult, error)
	// FindSimilar ranks stored vectors against the content by raw
	// cosine similarity.
	FindSimilar(ctx context.Context, content string, opts SimilarOptions) ([]VectorSearchResult, error)
	// Get returns a stored vector by id.
	Get(id string) (*Vector, error)
	Remove(id string) error
	Clear()
	Stats() VectorStoreStats
}
