package search

import (
	"context"
	"sort"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sourcegraph/conc/pool"

	"github.com/tutorhub/tutorhub/config"
	"github.com/tutorhub/tutorhub/internal"
	"github.com/tutorhub/tutorhub/pkg/models"
)

var log = internal.GetLogger()

const (
	DefaultBatchSize  = 5
	DefaultBatchDelay = 100 * time.Millisecond

	DefaultHybridLimit          = 5
	DefaultSemanticWeight       = 0.7
	hybridSemanticMinSimilarity = 0.5
	hybridKeywordMinSimilarity  = 0.2

	DefaultRecommendLimit = 3
	DefaultMaxOverlap     = 0.6
	DefaultMMRLambda      = 0.5
	recommendCandidates   = 3
)

var _ models.SearchService = &Service{}

// Service is the semantic search facade over the vector store: indexing
// with quality and tag heuristics, batch indexing with partial-failure
// tolerance, hybrid search, and diversity-filtered recommendations.
type Service struct {
	store    models.VectorStore
	embedder models.Embedder

	batchSize   int
	batchDelay  time.Duration
	retryPolicy retrypolicy.RetryPolicy[string]
}

func NewService(cfg *config.Config, store models.VectorStore, embedder models.Embedder) *Service {
	batchSize := cfg.Search.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchDelay := time.Duration(cfg.Search.BatchDelayMs) * time.Millisecond
	if batchDelay <= 0 {
		batchDelay = DefaultBatchDelay
	}

	// Transient indexing failures are retried with backoff before being
	// recorded as item errors.
	retryPolicy := retrypolicy.Builder[string]().
		WithBackoff(100*time.Millisecond, 2*time.Second).
		WithMaxRetries(2).
		Build()

	return &Service{
		store:       store,
		embedder:    embedder,
		batchSize:   batchSize,
		batchDelay:  batchDelay,
		retryPolicy: retryPolicy,
	}
}

// Index stores a single document, assessing its quality from content
// length and merging supplied tags with keyword-extracted ones.
func (s *Service) Index(ctx context.Context, doc models.Document) (string, error) {
	contentType := doc.ContentType
	if contentType == "" {
		contentType = models.ContentTypeDocument
	}

	metadata := models.VectorMetadata{
		Title:       doc.Title,
		URL:         doc.URL,
		Domain:      doc.Domain,
		ContentType: contentType,
		Quality:     AssessQuality(doc.Content),
		Tags:        mergeTags(doc.Tags, ExtractTags(doc.Content)),
	}

	return s.store.Add(ctx, doc.Content, metadata)
}

// IndexBatch indexes documents in bounded concurrent batches with a fixed
// delay between batches. Each item is indexed independently; failures are
// collected per item and never abort the batch.
func (s *Service) IndexBatch(
	ctx context.Context,
	docs []models.Document,
) (*models.BatchIndexResult, error) {
	ids := make([]string, len(docs))
	errs := make([]error, len(docs))

	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		p := pool.New().WithMaxGoroutines(end - start)
		for i := start; i < end; i++ {
			i := i
			p.Go(func() {
				ids[i], errs[i] = failsafe.Get(func() (string, error) {
					return s.Index(ctx, docs[i])
				}, s.retryPolicy)
			})
		}
		p.Wait()

		if end < len(docs) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}
	}

	result := &models.BatchIndexResult{}
	for i := range docs {
		if errs[i] != nil {
			log.Warnf("batch index item %d failed: %v", i, errs[i])
			result.Errors = append(result.Errors, models.BatchIndexError{
				Index: i,
				Error: errs[i].Error(),
			})
			result.Failed++
			continue
		}
		result.IDs = append(result.IDs, ids[i])
		result.Indexed++
	}

	return result, nil
}

// Search delegates to the vector store's relevance-ranked search.
func (s *Service) Search(
	ctx context.Context,
	query string,
	opts models.SearchOptions,
) ([]models.VectorSearchResult, error) {
	return s.store.Search(ctx, query, opts)
}

// HybridSearch blends a tight semantic query with a looser keyword-like
// query, combining scores by weight and de-duplicating by URL or id.
func (s *Service) HybridSearch(
	ctx context.Context,
	query string,
	opts models.HybridSearchOptions,
) ([]models.VectorSearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultHybridLimit
	}
	semanticWeight := opts.SemanticWeight
	if semanticWeight <= 0 || semanticWeight >= 1 {
		semanticWeight = DefaultSemanticWeight
	}

	var semantic, keyword []models.VectorSearchResult

	p := pool.New().WithErrors()
	p.Go(func() error {
		var err error
		semantic, err = s.store.Search(ctx, query, models.SearchOptions{
			Limit:         limit * 2,
			MinSimilarity: hybridSemanticMinSimilarity,
			ContentTypes:  opts.ContentTypes,
		})
		return err
	})
	p.Go(func() error {
		var err error
		keyword, err = s.store.Search(ctx, query, models.SearchOptions{
			Limit:         limit * 2,
			MinSimilarity: hybridKeywordMinSimilarity,
			ContentTypes:  opts.ContentTypes,
		})
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return mergeHybridResults(semantic, keyword, semanticWeight, limit), nil
}

// Recommend returns content similar to a seed, filtered for diversity so
// near-duplicates of already-chosen results are dropped.
func (s *Service) Recommend(
	ctx context.Context,
	opts models.RecommendOptions,
) ([]models.VectorSearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}

	seed := opts.Content
	excludeID := ""
	if opts.DocumentID != "" {
		vec, err := s.store.Get(opts.DocumentID)
		if err != nil {
			return nil, err
		}
		seed = vec.Content
		excludeID = vec.ID
	}

	candidates, err := s.store.FindSimilar(ctx, seed, models.SimilarOptions{
		Limit:     limit * recommendCandidates,
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, err
	}

	if opts.Diversity == models.DiversityMMR {
		return s.rerankMMR(ctx, seed, candidates, opts.MMRLambda, limit)
	}

	return filterJaccard(candidates, opts.MaxOverlap, limit), nil
}

// filterJaccard walks candidates in similarity order, dropping any whose
// word overlap with an already-chosen result exceeds the threshold.
func filterJaccard(
	candidates []models.VectorSearchResult,
	maxOverlap float64,
	limit int,
) []models.VectorSearchResult {
	if maxOverlap <= 0 {
		maxOverlap = DefaultMaxOverlap
	}

	chosen := make([]models.VectorSearchResult, 0, limit)
	for _, candidate := range candidates {
		if len(chosen) >= limit {
			break
		}

		duplicate := false
		for _, c := range chosen {
			if JaccardSimilarity(candidate.Vector.Content, c.Vector.Content) > maxOverlap {
				duplicate = true
				break
			}
		}
		if !duplicate {
			chosen = append(chosen, candidate)
		}
	}

	return chosen
}

func (s *Service) rerankMMR(
	ctx context.Context,
	seed string,
	candidates []models.VectorSearchResult,
	lambda float64,
	limit int,
) ([]models.VectorSearchResult, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	if lambda <= 0 || lambda >= 1 {
		lambda = DefaultMMRLambda
	}

	queryEmbedding, err := s.embedder.Embed(ctx, seed)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(candidates))
	for i, c := range candidates {
		embeddings[i] = c.Vector.Embedding
	}

	idxs, err := MaximalMarginalRelevance(queryEmbedding, embeddings, lambda, limit)
	if err != nil {
		return nil, err
	}

	reranked := make([]models.VectorSearchResult, 0, len(idxs))
	for _, i := range idxs {
		reranked = append(reranked, candidates[i])
	}
	return reranked, nil
}

// mergeHybridResults combines two result lists by weighted score. A
// vector appearing in both lists gets the sum of its weighted scores.
// De-duplication keys on URL when present, else vector id.
func mergeHybridResults(
	semantic, keyword []models.VectorSearchResult,
	semanticWeight float64,
	limit int,
) []models.VectorSearchResult {
	type scored struct {
		result models.VectorSearchResult
		score  float64
	}

	merged := make(map[string]*scored)
	var order []string

	accumulate := func(results []models.VectorSearchResult, weight float64) {
		for _, r := range results {
			key := r.Vector.Metadata.URL
			if key == "" {
				key = r.Vector.ID
			}
			if existing, ok := merged[key]; ok {
				existing.score += weight * r.Relevance
				continue
			}
			merged[key] = &scored{result: r, score: weight * r.Relevance}
			order = append(order, key)
		}
	}

	accumulate(semantic, semanticWeight)
	accumulate(keyword, 1-semanticWeight)

	results := make([]models.VectorSearchResult, 0, len(order))
	for _, key := range order {
		entry := merged[key]
		entry.result.Relevance = entry.score
		results = append(results, entry.result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
