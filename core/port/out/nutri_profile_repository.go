package out

import (
	"context"

	"nutri_server/core/domain"
)

// ProfileRepository stores canonical user profiles.
type ProfileRepository interface {
	// GetByUserID returns nil, nil when the user has no stored profile.
	GetByUserID(ctx context.Context, userID int64) (*domain.UserProfile, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) error
}

// RecommendationRepository appends and lists recommendations. Rows are
// never updated by the pipeline after creation.
type RecommendationRepository interface {
	Create(ctx context.Context, rec *domain.Recommendation) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Recommendation, error)
	ListBySession(ctx context.Context, userID, sessionID int64) ([]*domain.Recommendation, error)
}

// FeedbackRepository stores one sentiment row per (user, product) with
// upsert semantics and exposes the advisory id sets that reshape retrieval.
type FeedbackRepository interface {
	Upsert(ctx context.Context, fb *domain.Feedback) error
	NegativeProductIDs(ctx context.Context, userID int64) ([]int64, error)
	PositiveProductIDs(ctx context.Context, userID int64) ([]int64, error)
}

// TrainingRepository stores training sessions.
type TrainingRepository interface {
	Create(ctx context.Context, s *domain.TrainingSession) (*domain.TrainingSession, error)
	GetByID(ctx context.Context, sessionID int64) (*domain.TrainingSession, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.TrainingSession, error)
	Update(ctx context.Context, s *domain.TrainingSession) error
	Delete(ctx context.Context, sessionID int64) error
}
