package recommendation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nutri_server/config"
	"nutri_server/core/agent/llm"
	"nutri_server/core/agent/rag"
	"nutri_server/core/domain"
	"nutri_server/core/port/out"
	"nutri_server/pkg/apperr"
	"nutri_server/pkg/cache"
	"nutri_server/pkg/logger"
)

const (
	maxItemReasoningRunes    = 250
	maxOverallReasoningRunes = 255
)

// SourceLLM and SourceFallback identify which ranking path produced a
// generation result.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// GenerationResult is one completed generation pass, assembled with the
// joined product details the API returns.
type GenerationResult struct {
	Recommendations  []*domain.Recommendation `json:"recommendations"`
	OverallReasoning string                   `json:"overall_reasoning"`
	Source           string                   `json:"source"`
}

// Service orchestrates the recommendation pipeline: profile lookup,
// feedback sets, candidate retrieval, ranking with deterministic fallback,
// and best-effort persistence.
type Service struct {
	cfg         *config.Config
	log         zerolog.Logger
	retriever   Retriever
	recommender *llm.Recommender
	fallback    *FallbackScorer
	embedder    *rag.EmbeddingGateway

	catalog  out.CatalogRepository
	store    out.EmbeddingStore
	profiles out.ProfileRepository
	recs     out.RecommendationRepository
	feedback out.FeedbackRepository
	sessions out.TrainingRepository

	cache *cache.RedisCache
}

type ServiceDeps struct {
	Config      *config.Config
	Retriever   Retriever
	Recommender *llm.Recommender
	Embedder    *rag.EmbeddingGateway
	Catalog     out.CatalogRepository
	Embeddings  out.EmbeddingStore
	Profiles    out.ProfileRepository
	Recs        out.RecommendationRepository
	Feedback    out.FeedbackRepository
	Sessions    out.TrainingRepository
	Cache       *cache.RedisCache
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		cfg:         deps.Config,
		log:         logger.Component("recommendation_service"),
		retriever:   deps.Retriever,
		recommender: deps.Recommender,
		fallback:    NewFallbackScorer(),
		embedder:    deps.Embedder,
		catalog:     deps.Catalog,
		store:       deps.Embeddings,
		profiles:    deps.Profiles,
		recs:        deps.Recs,
		feedback:    deps.Feedback,
		sessions:    deps.Sessions,
		cache:       deps.Cache,
	}
}

// Generate runs one full generation pass for the user. sessionID scopes
// the pass to a stored training session; nil means profile-only. The LLM
// path degrades to the deterministic scorer on any provider or contract
// failure; the request fails only when the profile is missing, the user's
// session reference is invalid, or persistence reads fail.
func (s *Service) Generate(ctx context.Context, userID int64, sessionID *int64) (*GenerationResult, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("user profile")
	}

	var tctx *domain.TrainingContext
	if sessionID != nil {
		session, err := s.sessions.GetByID(ctx, *sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil || session.UserID != userID {
			return nil, apperr.NotFound("training session")
		}
		tctx = session.Context()
	}

	negative, positive, err := s.feedbackSets(ctx, userID)
	if err != nil {
		// Feedback is advisory; a failed read degrades to empty sets.
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("feedback lookup failed, proceeding without feedback")
		negative, positive = map[int64]bool{}, nil
	}

	candidates, err := s.retriever.Retrieve(ctx, profile, tctx, negative)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &GenerationResult{
			OverallReasoning: "No se encontraron productos candidatos para el perfil actual.",
			Source:           SourceFallback,
		}, nil
	}

	ranking, source := s.rank(ctx, profile, tctx, candidates, positive)

	result := s.assemble(userID, sessionID, candidates, ranking, source)
	s.persist(result)
	return result, nil
}

// rank tries the language model within its timeout and falls back to the
// deterministic scorer on any failure. Ranking never fails the request.
func (s *Service) rank(ctx context.Context, profile *domain.UserProfile, tctx *domain.TrainingContext, candidates []*domain.CandidateProduct, positive []int64) (*domain.RankingResult, string) {
	if s.recommender.Available() {
		llmCtx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
		defer cancel()

		ranking, err := s.recommender.Generate(llmCtx, profile, tctx, candidates, positive)
		if err == nil && len(ranking.Recommendations) > 0 {
			if dropped := s.pruneUnknownIDs(ranking, candidates); dropped > 0 {
				s.log.Warn().Int("dropped", dropped).Int64("user_id", profile.UserID).
					Msg("model recommended products outside the candidate set")
			}
			if len(ranking.Recommendations) > 0 {
				return ranking, SourceLLM
			}
		}
		if err != nil {
			s.log.Warn().Err(err).Int64("user_id", profile.UserID).
				Msg("llm ranking failed, using deterministic fallback")
		} else {
			s.log.Warn().Int64("user_id", profile.UserID).
				Msg("llm returned no usable recommendations, using deterministic fallback")
		}
	}
	return s.fallback.Rank(profile, candidates), SourceFallback
}

// pruneUnknownIDs drops ranked entries whose product id is not in the
// candidate set. Returns the number dropped.
func (s *Service) pruneUnknownIDs(ranking *domain.RankingResult, candidates []*domain.CandidateProduct) int {
	known := make(map[int64]bool, len(candidates))
	for _, p := range candidates {
		known[p.ProductID] = true
	}
	kept := ranking.Recommendations[:0]
	dropped := 0
	for _, rec := range ranking.Recommendations {
		if known[rec.ProductID] {
			kept = append(kept, rec)
		} else {
			dropped++
		}
	}
	ranking.Recommendations = kept
	return dropped
}

// assemble joins the ranking with product details and applies the storage
// bounds on reasoning text.
func (s *Service) assemble(userID int64, sessionID *int64, candidates []*domain.CandidateProduct, ranking *domain.RankingResult, source string) *GenerationResult {
	byID := make(map[int64]*domain.CandidateProduct, len(candidates))
	for _, p := range candidates {
		byID[p.ProductID] = p
	}

	overall := truncateRunes(ranking.OverallReasoning, maxOverallReasoningRunes)
	now := time.Now().UTC()

	result := &GenerationResult{OverallReasoning: overall, Source: source}
	for _, rec := range ranking.Recommendations {
		p := byID[rec.ProductID]
		row := &domain.Recommendation{
			UserID:           userID,
			SessionID:        sessionID,
			ProductID:        rec.ProductID,
			RecommendedAt:    now,
			Timing:           rec.Timing,
			TimingMinutes:    rec.TimingMinutes,
			Quantity:         rec.Quantity,
			Instructions:     rec.Instructions,
			Reasoning:        truncateRunes(rec.Reasoning, maxItemReasoningRunes),
			OverallReasoning: overall,
		}
		if p != nil {
			row.ProductName = p.Name
			row.ProductDescription = p.Description
			row.ProductImageURL = p.ImageURL
		}
		result.Recommendations = append(result.Recommendations, row)
	}
	return result
}

// persist writes the recommendation rows concurrently. Failures are
// logged; a generation pass already delivered to the caller is never
// retroactively failed by a write error.
func (s *Service) persist(result *GenerationResult) {
	var wg sync.WaitGroup
	for _, rec := range result.Recommendations {
		wg.Add(1)
		go func(rec *domain.Recommendation) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.recs.Create(ctx, rec); err != nil {
				s.log.Error().Err(err).
					Int64("user_id", rec.UserID).
					Int64("product_id", rec.ProductID).
					Msg("failed to persist recommendation")
			}
		}(rec)
	}
	wg.Wait()
}

// =============================================================================
// Feedback sets
// =============================================================================

func feedbackCacheKey(userID int64, sentiment domain.Sentiment) string {
	return fmt.Sprintf("feedback:%s:%d", sentiment, userID)
}

// feedbackSets returns the negative id set and positive id list for the
// user, read through the cache when one is configured.
func (s *Service) feedbackSets(ctx context.Context, userID int64) (map[int64]bool, []int64, error) {
	negIDs, err := s.feedbackIDs(ctx, userID, domain.SentimentNegative)
	if err != nil {
		return nil, nil, err
	}
	posIDs, err := s.feedbackIDs(ctx, userID, domain.SentimentPositive)
	if err != nil {
		return nil, nil, err
	}

	negative := make(map[int64]bool, len(negIDs))
	for _, id := range negIDs {
		negative[id] = true
	}
	return negative, posIDs, nil
}

func (s *Service) feedbackIDs(ctx context.Context, userID int64, sentiment domain.Sentiment) ([]int64, error) {
	key := feedbackCacheKey(userID, sentiment)
	if s.cache != nil {
		var ids []int64
		hit, err := s.cache.GetJSON(ctx, key, &ids)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("feedback cache read failed")
		} else if hit {
			return ids, nil
		}
	}

	var ids []int64
	var err error
	if sentiment == domain.SentimentNegative {
		ids, err = s.feedback.NegativeProductIDs(ctx, userID)
	} else {
		ids, err = s.feedback.PositiveProductIDs(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, ids, s.cfg.FeedbackCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("feedback cache write failed")
		}
	}
	return ids, nil
}

// InvalidateFeedbackCache drops both cached feedback sets for the user.
// Called after every feedback write.
func (s *Service) InvalidateFeedbackCache(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	for _, sentiment := range []domain.Sentiment{domain.SentimentNegative, domain.SentimentPositive} {
		if err := s.cache.Delete(ctx, feedbackCacheKey(userID, sentiment)); err != nil {
			s.log.Warn().Err(err).Int64("user_id", userID).Msg("feedback cache invalidation failed")
		}
	}
}

// =============================================================================
// Listings
// =============================================================================

func (s *Service) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Recommendation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.recs.ListByUser(ctx, userID, limit)
}

func (s *Service) ListBySession(ctx context.Context, userID, sessionID int64) ([]*domain.Recommendation, error) {
	return s.recs.ListBySession(ctx, userID, sessionID)
}

// =============================================================================
// Embedding maintenance
// =============================================================================

// RegenerateEmbeddings re-embeds every active catalog product and upserts
// the vectors. Per-product failures are logged and counted, not fatal;
// the pass continues so one bad product cannot block the rest.
func (s *Service) RegenerateEmbeddings(ctx context.Context) (updated, failed int, err error) {
	if !s.embedder.Available() {
		return 0, 0, apperr.EmbeddingUnavailable("no embedding provider configured")
	}

	products, err := s.catalog.ListActive(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, p := range products {
		embCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
		vec, embErr := s.embedder.EmbedProduct(embCtx, p)
		cancel()
		if embErr != nil {
			failed++
			s.log.Error().Err(embErr).Int64("product_id", p.ProductID).Msg("product embedding failed")
			continue
		}
		if upErr := s.store.Upsert(ctx, &domain.ProductEmbedding{ProductID: p.ProductID, Vector: vec}); upErr != nil {
			failed++
			s.log.Error().Err(upErr).Int64("product_id", p.ProductID).Msg("embedding upsert failed")
			continue
		}
		updated++
	}

	s.log.Info().Int("updated", updated).Int("failed", failed).Msg("product embedding regeneration finished")
	return updated, failed, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
