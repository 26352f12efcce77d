package search

import (
	"fmt"
	"math"

	"github.com/tutorhub/tutorhub/pkg/vectorstore"
)

// MaximalMarginalRelevance implements the Maximal Marginal Relevance
// algorithm over a query embedding and a list of candidate embeddings.
// It returns the indices of the candidates to keep, most relevant first.
// See https://www.cs.cmu.edu/~jgc/publication/The_Use_MMR_Diversity_Based_LTMIR_1998.pdf
func MaximalMarginalRelevance(
	queryEmbedding []float32,
	embeddingList [][]float32,
	lambdaMult float64,
	k int,
) ([]int, error) {
	if k <= 0 || len(embeddingList) == 0 {
		return []int{}, nil
	}

	for i, e := range embeddingList {
		if len(e) != len(queryEmbedding) {
			return nil, fmt.Errorf(
				"embedding %d has width %d, query has width %d",
				i,
				len(e),
				len(queryEmbedding),
			)
		}
	}

	similarityToQuery := make([]float64, len(embeddingList))
	for i, e := range embeddingList {
		similarityToQuery[i] = vectorstore.CosineSimilarity(queryEmbedding, e)
	}

	mostSimilar := argMax(similarityToQuery)
	idxs := []int{mostSimilar}
	selected := map[int]bool{mostSimilar: true}

	for len(idxs) < min(k, len(embeddingList)) {
		bestScore := math.Inf(-1)
		idxToAdd := -1

		for i, queryScore := range similarityToQuery {
			if selected[i] {
				continue
			}
			redundantScore := math.Inf(-1)
			for _, j := range idxs {
				sim := vectorstore.CosineSimilarity(embeddingList[i], embeddingList[j])
				if sim > redundantScore {
					redundantScore = sim
				}
			}
			equationScore := lambdaMult*queryScore - (1-lambdaMult)*redundantScore
			if equationScore > bestScore {
				bestScore = equationScore
				idxToAdd = i
			}
		}

		idxs = append(idxs, idxToAdd)
		selected[idxToAdd] = true
	}

	return idxs, nil
}

func argMax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
