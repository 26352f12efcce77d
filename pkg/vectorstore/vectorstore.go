package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/internal"
	"github.com/tutorhub/tutorhub/pkg/models"
)

var log = internal.GetLogger()

const (
	DefaultMaxVectors        = 1000
	DefaultCleanupThreshold  = 1100
	DefaultMaxContentLength  = 8000
	DefaultRecencyWindowDays = 30

	DefaultSearchLimit          = 5
	DefaultSearchMinSimilarity  = 0.3
	DefaultSimilarLimit         = 3
	DefaultSimilarMinSimilarity = 0.4

	recencyWeight      = 0.1
	qualityBonusHigh   = 0.2
	qualityBonusMedium = 0.1
)

var _ models.VectorStore = &MemoryStore{}

// storedVector pairs a vector with its insertion sequence number, used to
// break creation-time ties during cleanup.
type storedVector struct {
	models.Vector
	seq uint64
}

// MemoryStore is an in-memory vector store with cosine-similarity search
// and a capacity ceiling. Once the stored count exceeds the cleanup
// threshold, only the most-recently-created vectors are retained. The
// store is safe for concurrent use within a single process.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors map[string]*storedVector

	embedder models.Embedder

	maxVectors       int
	cleanupThreshold int
	maxContentLength int
	recencyWindow    time.Duration

	// dimensions is fixed by the first insert; later inserts with a
	// different embedding width are rejected.
	dimensions   int
	seq          uint64
	lastModified time.Time
}

func NewMemoryStore(cfg *config.Config, embedder models.Embedder) *MemoryStore {
	s := &MemoryStore{
		vectors:          make(map[string]*storedVector),
		embedder:         embedder,
		maxVectors:       cfg.VectorStore.MaxVectors,
		cleanupThreshold: cfg.VectorStore.CleanupThreshold,
		maxContentLength: cfg.VectorStore.MaxContentLength,
		recencyWindow:    time.Duration(cfg.VectorStore.RecencyHalfLifeDays) * 24 * time.Hour,
	}

	if s.maxVectors <= 0 {
		s.maxVectors = DefaultMaxVectors
	}
	if s.cleanupThreshold <= s.maxVectors {
		s.cleanupThreshold = s.maxVectors + s.maxVectors/10
	}
	if s.maxContentLength <= 0 {
		s.maxContentLength = DefaultMaxContentLength
	}
	if s.recencyWindow <= 0 {
		s.recencyWindow = DefaultRecencyWindowDays * 24 * time.Hour
	}

	return s
}

// Add embeds content and stores it under a fresh id. Content is truncated
// to the configured maximum length. Metadata content type and quality
// default to "document" and "medium"; a zero creation time defaults to
// now.
func (s *MemoryStore) Add(
	ctx context.Context,
	content string,
	metadata models.VectorMetadata,
) (string, error) {
	content = internal.TruncateString(content, s.maxContentLength)

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return "", err
	}

	if metadata.ContentType == "" {
		metadata.ContentType = models.ContentTypeDocument
	}
	if metadata.Quality == "" {
		metadata.Quality = models.QualityMedium
	}
	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimensions == 0 {
		s.dimensions = len(embedding)
	} else if len(embedding) != s.dimensions {
		return "", fmt.Errorf(
			"%w: store uses %d dimensions, got %d",
			models.ErrDimensionMismatch,
			s.dimensions,
			len(embedding),
		)
	}

	id := uuid.New().String()
	s.seq++
	s.vectors[id] = &storedVector{
		Vector: models.Vector{
			ID:        id,
			Content:   content,
			Embedding: embedding,
			Metadata:  metadata,
		},
		seq: s.seq,
	}
	s.lastModified = time.Now()

	if len(s.vectors) > s.cleanupThreshold {
		s.cleanup()
	}

	return id, nil
}

// Search ranks stored vectors against the query by composite relevance:
// cosine similarity plus a recency bonus (linear decay to zero over the
// recency window, weighted at 0.1) plus a quality bonus (high 0.2,
// medium 0.1, low 0).
func (s *MemoryStore) Search(
	ctx context.Context,
	query string,
	opts models.SearchOptions,
) ([]models.VectorSearchResult, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	minSimilarity := opts.MinSimilarity
	if minSimilarity == 0 {
		minSimilarity = DefaultSearchMinSimilarity
	}

	now := time.Now()

	s.mu.RLock()
	results := make([]models.VectorSearchResult, 0, limit)
	for _, v := range s.vectors {
		if !matchesFilters(&v.Vector, opts) {
			continue
		}

		similarity := CosineSimilarity(queryEmbedding, v.Embedding)
		if similarity < minSimilarity {
			continue
		}

		vec := v.Vector
		results = append(results, models.VectorSearchResult{
			Vector:     &vec,
			Similarity: similarity,
			Relevance:  similarity + s.recencyBonus(now, vec.Metadata.CreatedAt) + qualityBonus(vec.Metadata.Quality),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// FindSimilar ranks stored vectors against the content by raw cosine
// similarity, with no recency or quality boost.
func (s *MemoryStore) FindSimilar(
	ctx context.Context,
	content string,
	opts models.SimilarOptions,
) ([]models.VectorSearchResult, error) {
	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	minSimilarity := opts.MinSimilarity
	if minSimilarity == 0 {
		minSimilarity = DefaultSimilarMinSimilarity
	}

	s.mu.RLock()
	results := make([]models.VectorSearchResult, 0, limit)
	for _, v := range s.vectors {
		if v.ID == opts.ExcludeID {
			continue
		}

		similarity := CosineSimilarity(embedding, v.Embedding)
		if similarity < minSimilarity {
			continue
		}

		vec := v.Vector
		results = append(results, models.VectorSearchResult{
			Vector:     &vec,
			Similarity: similarity,
			Relevance:  similarity,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (s *MemoryStore) Get(id string) (*models.Vector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vectors[id]
	if !ok {
		return nil, models.NewNotFoundError("vector " + id)
	}
	vec := v.Vector
	return &vec, nil
}

func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vectors[id]; !ok {
		return models.NewNotFoundError("vector " + id)
	}
	delete(s.vectors, id)
	s.lastModified = time.Now()
	return nil
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vectors = make(map[string]*storedVector)
	s.dimensions = 0
	s.lastModified = time.Now()
}

// Stats is a read-only projection over the store contents.
func (s *MemoryStore) Stats() models.VectorStoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.VectorStoreStats{
		Count:         len(s.vectors),
		ByContentType: make(map[models.ContentType]int),
		ByQuality:     make(map[models.Quality]int),
		LastModified:  s.lastModified,
	}

	var totalLength int
	for _, v := range s.vectors {
		stats.ByContentType[v.Metadata.ContentType]++
		stats.ByQuality[v.Metadata.Quality]++
		totalLength += len(v.Content)
	}
	if stats.Count > 0 {
		stats.AvgContentLength = float64(totalLength) / float64(stats.Count)
	}

	return stats
}

// cleanup retains the maxVectors most-recently-created vectors and
// discards the rest. Eviction is by recency of creation, not access.
// Callers must hold the write lock.
func (s *MemoryStore) cleanup() {
	all := make([]*storedVector, 0, len(s.vectors))
	for _, v := range s.vectors {
		all = append(all, v)
	}

	sort.Slice(all, func(i, j int) bool {
		ti, tj := all[i].Metadata.CreatedAt, all[j].Metadata.CreatedAt
		if ti.Equal(tj) {
			return all[i].seq > all[j].seq
		}
		return ti.After(tj)
	})

	evicted := len(all) - s.maxVectors
	for _, v := range all[s.maxVectors:] {
		delete(s.vectors, v.ID)
	}

	log.Debugf("vector store cleanup evicted %d vectors, %d retained", evicted, len(s.vectors))
}

func (s *MemoryStore) recencyBonus(now, createdAt time.Time) float64 {
	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}
	remaining := 1 - float64(age)/float64(s.recencyWindow)
	if remaining < 0 {
		remaining = 0
	}
	return recencyWeight * remaining
}

func qualityBonus(q models.Quality) float64 {
	switch q {
	case models.QualityHigh:
		return qualityBonusHigh
	case models.QualityMedium:
		return qualityBonusMedium
	default:
		return 0
	}
}

func matchesFilters(v *models.Vector, opts models.SearchOptions) bool {
	if len(opts.ContentTypes) > 0 && !containsContentType(opts.ContentTypes, v.Metadata.ContentType) {
		return false
	}
	if len(opts.Qualities) > 0 && !containsQuality(opts.Qualities, v.Metadata.Quality) {
		return false
	}
	if opts.Tag != "" && !hasTagSubstring(v.Metadata.Tags, opts.Tag) {
		return false
	}
	return true
}

func containsContentType(list []models.ContentType, ct models.ContentType) bool {
	for _, c := range list {
		if c == ct {
			return true
		}
	}
	return false
}

func containsQuality(list []models.Quality, q models.Quality) bool {
	for _, c := range list {
		if c == q {
			return true
		}
	}
	return false
}

func hasTagSubstring(tags []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
