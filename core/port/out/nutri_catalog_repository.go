// Package out defines outbound ports (driven ports) for the application.
package out

import (
	"context"

	"nutri_server/core/domain"
)

// CandidateQuery carries the hard constraints and soft priorities of a
// SQL-mode candidate fetch. Constraints become query predicates; the goal
// and activity level only shape the ordering.
type CandidateQuery struct {
	DietaryRestriction domain.DietaryRestriction
	CaffeineTolerance  domain.CaffeineTolerance
	PrimaryGoal        domain.PrimaryGoal
	ActivityLevel      domain.ActivityLevel
	ExcludeProductIDs  []int64
	Limit              int
}

// CatalogRepository is the read-only projection of the product catalog.
// Implementations return active products only.
type CatalogRepository interface {
	// QueryCandidates runs the constrained, priority-ordered candidate query.
	QueryCandidates(ctx context.Context, q *CandidateQuery) ([]*domain.CandidateProduct, error)

	// GetByIDs fetches full product projections for the given ids,
	// preserving no particular order.
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.CandidateProduct, error)

	// ListActive returns every active product (embedding generation).
	ListActive(ctx context.Context) ([]*domain.CandidateProduct, error)
}

// EmbeddingStore persists product embeddings keyed by product id.
// Upsert overwrites: at most one vector per product, last write wins.
type EmbeddingStore interface {
	Upsert(ctx context.Context, emb *domain.ProductEmbedding) error
	ListAll(ctx context.Context) ([]*domain.ProductEmbedding, error)
}
