package feedback

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
	"nutri_server/pkg/apperr"
	"nutri_server/pkg/logger"
)

// CacheInvalidator drops cached feedback sets after a write.
type CacheInvalidator interface {
	InvalidateFeedbackCache(ctx context.Context, userID int64)
}

// Service records product feedback. One row per (user, product); the
// latest sentiment wins and takes effect on the next generation pass.
type Service struct {
	repo        out.FeedbackRepository
	invalidator CacheInvalidator
	log         zerolog.Logger
}

func NewService(repo out.FeedbackRepository, invalidator CacheInvalidator) *Service {
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		log:         logger.Component("feedback_service"),
	}
}

// Submit validates and upserts one feedback row.
func (s *Service) Submit(ctx context.Context, userID, productID int64, sentiment string, notes string) (*domain.Feedback, error) {
	if productID <= 0 {
		return nil, apperr.InvalidInput("product_id", "must be positive")
	}
	canonical, ok := domain.NormalizeSentiment(sentiment)
	if !ok {
		return nil, apperr.InvalidInput("sentiment", "must be 'positive' or 'negative'")
	}

	fb := &domain.Feedback{
		UserID:    userID,
		ProductID: productID,
		Sentiment: canonical,
		Notes:     notes,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, fb); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateFeedbackCache(ctx, userID)
	}
	s.log.Info().Int64("user_id", userID).Int64("product_id", productID).
		Str("sentiment", string(canonical)).Msg("feedback recorded")
	return fb, nil
}
