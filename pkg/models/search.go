package models

import "context"

// Document is an item submitted for indexing. Quality is assessed from
// content length and tags are extracted automatically; supplied tags are
// merged with extracted ones.
type Document struct {
	Content     string      `json:"content"`
	Title       string      `json:"title,omitempty"`
	URL         string      `json:"url,omitempty"`
	Domain      string      `json:"domain,omitempty"`
	ContentType ContentType `json:"content_type,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

// BatchIndexError records a single failed item within a batch. The batch
// itself does not abort on item failures.
type BatchIndexError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BatchIndexResult struct {
	IDs     []string          `json:"ids"`
	Errors  []BatchIndexError `json:"errors,omitempty"`
	Indexed int               `json:"indexed"`
	Failed  int               `json:"failed"`
}

// HybridSearchOptions tune the blend of the two differently-tuned store
// queries merged by HybridSearch.
type HybridSearchOptions struct {
	Limit int `json:"limit,omitempty"`
	// SemanticWeight is the weight of the tight semantic query; the
	// looser keyword-like query gets 1 - SemanticWeight.
	SemanticWeight float64       `json:"semantic_weight,omitempty"`
	ContentTypes   []ContentType `json:"content_types,omitempty"`
}

type DiversityStrategy string

const (
	// DiversityJaccard drops candidates whose word overlap with an
	// already-chosen result exceeds a threshold.
	DiversityJaccard DiversityStrategy = "jaccard"
	// DiversityMMR re-ranks candidates by maximal marginal relevance
	// over their stored embeddings.
	DiversityMMR DiversityStrategy = "mmr"
)

type RecommendOptions struct {
	// Content seeds the recommendation. Alternatively DocumentID names
	// an already-indexed vector to seed from.
	Content    string `json:"content,omitempty"`
	DocumentID string `json:"document_id,omitempty"`

	Limit      int               `json:"limit,omitempty"`
	Diversity  DiversityStrategy `json:"diversity,omitempty"`
	MaxOverlap float64           `json:"max_overlap,omitempty"`
	MMRLambda  float64           `json:"mmr_lambda,omitempty"`
}

// SearchService is the higher-level indexing and retrieval API layered
// over the vector store.
type SearchService interface {
	Index(ctx context.Context, doc Document) (string, error)
	IndexBatch(ctx context.Context, docs []Document) (*BatchIndexResult, error)
	Search(ctx context.Context, query string, opts SearchOptions) ([]VectorSearchResult, error)
	HybridSearch(ctx context.Context, query string, opts HybridSearchOptions) ([]VectorSearchResult, error)
	Recommend(ctx context.Context, opts RecommendOptions) ([]VectorSearchResult, error)
}
