package profile

import (
	"context"

	"github.com/rs/zerolog"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
	"nutri_server/pkg/apperr"
	"nutri_server/pkg/logger"
)

// GenerationEnqueuer schedules a detached recommendation pass.
type GenerationEnqueuer interface {
	EnqueueProfileGeneration(userID int64)
}

// Service stores user profiles and triggers background regeneration of
// recommendations on every save.
type Service struct {
	repo     out.ProfileRepository
	enqueuer GenerationEnqueuer
	log      zerolog.Logger
}

func NewService(repo out.ProfileRepository, enqueuer GenerationEnqueuer) *Service {
	return &Service{
		repo:     repo,
		enqueuer: enqueuer,
		log:      logger.Component("profile_service"),
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("user profile")
	}
	return profile, nil
}

// Save normalizes the raw attributes onto the canonical enums, upserts the
// profile, and schedules a detached generation pass. The save succeeds
// regardless of what the background pass later does.
func (s *Service) Save(ctx context.Context, userID int64, raw *domain.RawProfile) (*domain.UserProfile, error) {
	if raw.Age <= 0 || raw.Age > 120 {
		return nil, apperr.InvalidInput("age", "must be between 1 and 120")
	}
	if raw.WeightKg <= 0 {
		return nil, apperr.InvalidInput("weight", "must be positive")
	}
	if raw.HeightCm <= 0 {
		return nil, apperr.InvalidInput("height", "must be positive")
	}

	profile := domain.NormalizeProfile(userID, raw)
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	if s.enqueuer != nil {
		s.enqueuer.EnqueueProfileGeneration(userID)
	}
	s.log.Info().Int64("user_id", userID).Str("goal", string(profile.PrimaryGoal)).Msg("profile saved")
	return profile, nil
}
