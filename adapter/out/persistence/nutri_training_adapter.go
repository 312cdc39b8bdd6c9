package persistence

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
)

// TrainingRepository implements out.TrainingRepository over
// training_sessions.
type TrainingRepository struct {
	db *sqlx.DB
}

func NewTrainingRepository(db *sqlx.DB) out.TrainingRepository {
	return &TrainingRepository{db: db}
}

const sessionColumns = `
	session_id, user_id, session_date, type, intensity, duration_min,
	COALESCE(weather, '') AS weather,
	COALESCE(notes, '') AS notes,
	created_at`

func (r *TrainingRepository) Create(ctx context.Context, s *domain.TrainingSession) (*domain.TrainingSession, error) {
	query := `
		INSERT INTO training_sessions (
			user_id, session_date, type, intensity, duration_min, weather, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING session_id, created_at`

	created := *s
	if err := r.db.QueryRowxContext(ctx, query,
		s.UserID, s.SessionDate, s.Type, s.Intensity, s.DurationMinutes, s.Weather, s.Notes,
	).Scan(&created.SessionID, &created.CreatedAt); err != nil {
		return nil, dbErr("create training session", err)
	}
	return &created, nil
}

func (r *TrainingRepository) GetByID(ctx context.Context, sessionID int64) (*domain.TrainingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM training_sessions WHERE session_id = $1`

	var session domain.TrainingSession
	if err := r.db.GetContext(ctx, &session, query, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dbErr("get training session", err)
	}
	return &session, nil
}

func (r *TrainingRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.TrainingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM training_sessions
		WHERE user_id = $1
		ORDER BY session_date DESC, session_id DESC`

	var sessions []*domain.TrainingSession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, dbErr("list training sessions", err)
	}
	return sessions, nil
}

func (r *TrainingRepository) Update(ctx context.Context, s *domain.TrainingSession) error {
	query := `
		UPDATE training_sessions
		SET session_date = $1, type = $2, intensity = $3,
		    duration_min = $4, weather = $5, notes = $6
		WHERE session_id = $7`

	if _, err := r.db.ExecContext(ctx, query,
		s.SessionDate, s.Type, s.Intensity, s.DurationMinutes,
		s.Weather, s.Notes, s.SessionID,
	); err != nil {
		return dbErr("update training session", err)
	}
	return nil
}

func (r *TrainingRepository) Delete(ctx context.Context, sessionID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM training_sessions WHERE session_id = $1`, sessionID); err != nil {
		return dbErr("delete training session", err)
	}
	return nil
}
