package training

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
	"nutri_server/pkg/apperr"
	"nutri_server/pkg/logger"
)

// GenerationEnqueuer schedules a detached session-scoped recommendation pass.
type GenerationEnqueuer interface {
	EnqueueSessionGeneration(userID, sessionID int64)
}

// Service stores training sessions. Creating a session triggers a
// background recommendation pass scoped to it.
type Service struct {
	repo     out.TrainingRepository
	enqueuer GenerationEnqueuer
	log      zerolog.Logger
}

func NewService(repo out.TrainingRepository, enqueuer GenerationEnqueuer) *Service {
	return &Service{
		repo:     repo,
		enqueuer: enqueuer,
		log:      logger.Component("training_service"),
	}
}

func validate(s *domain.TrainingSession) error {
	if s.Type == "" {
		return apperr.MissingField("type")
	}
	if s.DurationMinutes <= 0 {
		return apperr.InvalidInput("duration_min", "must be positive")
	}
	return nil
}

// Create stores the session and schedules a detached generation pass for
// it. The create succeeds even when the pass later fails.
func (s *Service) Create(ctx context.Context, session *domain.TrainingSession) (*domain.TrainingSession, error) {
	if err := validate(session); err != nil {
		return nil, err
	}
	if session.SessionDate.IsZero() {
		session.SessionDate = time.Now().UTC()
	}

	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return nil, err
	}

	if s.enqueuer != nil {
		s.enqueuer.EnqueueSessionGeneration(created.UserID, created.SessionID)
	}
	s.log.Info().Int64("user_id", created.UserID).Int64("session_id", created.SessionID).Msg("training session created")
	return created, nil
}

func (s *Service) Get(ctx context.Context, userID, sessionID int64) (*domain.TrainingSession, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, apperr.NotFound("training session")
	}
	return session, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*domain.TrainingSession, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID int64, session *domain.TrainingSession) (*domain.TrainingSession, error) {
	if err := validate(session); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, userID, session.SessionID)
	if err != nil {
		return nil, err
	}
	session.UserID = existing.UserID
	session.CreatedAt = existing.CreatedAt
	if session.SessionDate.IsZero() {
		session.SessionDate = existing.SessionDate
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Delete(ctx context.Context, userID, sessionID int64) error {
	if _, err := s.Get(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, sessionID)
}
