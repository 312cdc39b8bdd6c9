package recommendation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nutri_server/core/agent/rag"
	"nutri_server/core/domain"
	"nutri_server/core/port/out"
	"nutri_server/pkg/cache"
	"nutri_server/pkg/logger"
)

// Retriever produces the filtered candidate set for one generation pass.
// negative holds product ids the user rated negatively; implementations
// must never return any of them.
type Retriever interface {
	Retrieve(ctx context.Context, profile *domain.UserProfile, tctx *domain.TrainingContext, negative map[int64]bool) ([]*domain.CandidateProduct, error)
}

// =============================================================================
// SQL retriever
// =============================================================================

// SQLRetriever delegates candidate selection to the catalog query: hard
// constraints become predicates, the goal and activity level shape the
// ordering. It needs no embedding provider and serves as the vector
// retriever's safety net.
type SQLRetriever struct {
	catalog out.CatalogRepository
	limit   int
}

func NewSQLRetriever(catalog out.CatalogRepository, limit int) *SQLRetriever {
	return &SQLRetriever{catalog: catalog, limit: limit}
}

func (r *SQLRetriever) Retrieve(ctx context.Context, profile *domain.UserProfile, _ *domain.TrainingContext, negative map[int64]bool) ([]*domain.CandidateProduct, error) {
	exclude := make([]int64, 0, len(negative))
	for id := range negative {
		exclude = append(exclude, id)
	}
	candidates, err := r.catalog.QueryCandidates(ctx, &out.CandidateQuery{
		DietaryRestriction: profile.DietaryRestriction,
		CaffeineTolerance:  profile.CaffeineTolerance,
		PrimaryGoal:        profile.PrimaryGoal,
		ActivityLevel:      profile.ActivityLevel,
		ExcludeProductIDs:  exclude,
		Limit:              r.limit,
	})
	if err != nil {
		return nil, err
	}
	// The query already enforces the constraints; the shared filter is kept
	// as a guard against catalog rows with inconsistent attributes.
	return ConstraintFilter(profile, negative, candidates), nil
}

// =============================================================================
// Vector retriever
// =============================================================================

// VectorRetriever embeds the profile plus training context, ranks the
// stored product embeddings by cosine similarity, keeps the topK best
// matches, then applies the constraint filter and caps the result.
type VectorRetriever struct {
	embedder *rag.EmbeddingGateway
	catalog  out.CatalogRepository
	store    out.EmbeddingStore
	cache    *cache.RedisCache
	cacheTTL time.Duration
	topK     int
	limit    int
	log      zerolog.Logger
}

func NewVectorRetriever(embedder *rag.EmbeddingGateway, catalog out.CatalogRepository, store out.EmbeddingStore, c *cache.RedisCache, cacheTTL time.Duration, topK, limit int) *VectorRetriever {
	return &VectorRetriever{
		embedder: embedder,
		catalog:  catalog,
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
		topK:     topK,
		limit:    limit,
		log:      logger.Component("vector_retriever"),
	}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, profile *domain.UserProfile, tctx *domain.TrainingContext, negative map[int64]bool) ([]*domain.CandidateProduct, error) {
	query, err := r.embedProfile(ctx, profile, tctx)
	if err != nil {
		return nil, err
	}

	embeddings, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	products, err := r.catalog.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	scored := rag.RankBySimilarity(query, products, embeddings, r.topK)

	topK := make([]*domain.CandidateProduct, len(scored))
	for i, s := range scored {
		topK[i] = s.Product
	}

	filtered := ConstraintFilter(profile, negative, topK)
	if len(filtered) > r.limit {
		filtered = filtered[:r.limit]
	}
	return filtered, nil
}

// embedProfile returns the query vector, read through the cache for
// profile-only passes. The key carries the profile's update timestamp so a
// saved profile never reuses a stale vector. Session-scoped passes embed
// fresh; their context changes every call.
func (r *VectorRetriever) embedProfile(ctx context.Context, profile *domain.UserProfile, tctx *domain.TrainingContext) ([]float32, error) {
	if tctx != nil || r.cache == nil {
		return r.embedder.EmbedUserProfile(ctx, profile, tctx)
	}

	key := fmt.Sprintf("profile_embedding:%d:%d", profile.UserID, profile.UpdatedAt.Unix())
	var vec []float32
	hit, err := r.cache.GetJSON(ctx, key, &vec)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("profile embedding cache read failed")
	} else if hit && len(vec) > 0 {
		return vec, nil
	}

	vec, err = r.embedder.EmbedUserProfile(ctx, profile, nil)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, key, vec, r.cacheTTL); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("profile embedding cache write failed")
	}
	return vec, nil
}

// =============================================================================
// Fallback combinator
// =============================================================================

// FallbackRetriever tries the primary strategy and falls back to the
// secondary when the primary errors or returns no candidates. Retrieval
// degradation is logged, never surfaced to the caller.
type FallbackRetriever struct {
	primary   Retriever
	secondary Retriever
	log       zerolog.Logger
}

func NewFallbackRetriever(primary, secondary Retriever, log zerolog.Logger) *FallbackRetriever {
	return &FallbackRetriever{primary: primary, secondary: secondary, log: log}
}

func (r *FallbackRetriever) Retrieve(ctx context.Context, profile *domain.UserProfile, tctx *domain.TrainingContext, negative map[int64]bool) ([]*domain.CandidateProduct, error) {
	candidates, err := r.primary.Retrieve(ctx, profile, tctx, negative)
	if err == nil && len(candidates) > 0 {
		return candidates, nil
	}
	if err != nil {
		r.log.Warn().Err(err).Int64("user_id", profile.UserID).
			Msg("primary retrieval failed, falling back to sql retrieval")
	} else {
		r.log.Info().Int64("user_id", profile.UserID).
			Msg("primary retrieval returned no candidates, falling back to sql retrieval")
	}
	return r.secondary.Retrieve(ctx, profile, tctx, negative)
}
