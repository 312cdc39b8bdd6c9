package rag

import (
	"math"
	"sort"

	"nutri_server/core/domain"
)

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched dimensions or a zero-magnitude operand yield 0 rather than an
// error; such pairs simply never rank.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// RankBySimilarity scores every embedded product against the query vector
// and returns the topK best matches, score descending, ties broken by
// ascending product id so rankings are reproducible. Products without a
// stored embedding are skipped.
func RankBySimilarity(query []float32, products []*domain.CandidateProduct, embeddings []*domain.ProductEmbedding, topK int) []domain.ScoredCandidate {
	byID := make(map[int64][]float32, len(embeddings))
	for _, e := range embeddings {
		byID[e.ProductID] = e.Vector
	}

	scored := make([]domain.ScoredCandidate, 0, len(products))
	for _, p := range products {
		vec, ok := byID[p.ProductID]
		if !ok {
			continue
		}
		scored = append(scored, domain.ScoredCandidate{
			Product: p,
			Score:   CosineSimilarity(query, vec),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Product.ProductID < scored[j].Product.ProductID
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
