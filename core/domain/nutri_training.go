package domain

import "time"

// TrainingContext describes one training session for session-scoped
// recommendations. A nil context means profile-only retrieval.
type TrainingContext struct {
	Type            string `json:"type"`
	Intensity       string `json:"intensity"`
	DurationMinutes int    `json:"duration_minutes"`
	Weather         string `json:"weather"`
	Notes           string `json:"notes"`
}

// TrainingSession is a stored training session.
type TrainingSession struct {
	SessionID       int64     `json:"session_id" db:"session_id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	SessionDate     time.Time `json:"session_date" db:"session_date"`
	Type            string    `json:"type" db:"type"`
	Intensity       string    `json:"intensity" db:"intensity"`
	DurationMinutes int       `json:"duration_min" db:"duration_min"`
	Weather         string    `json:"weather" db:"weather"`
	Notes           string    `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Context projects the session onto the retrieval context.
func (s *TrainingSession) Context() *TrainingContext {
	return &TrainingContext{
		Type:            s.Type,
		Intensity:       s.Intensity,
		DurationMinutes: s.DurationMinutes,
		Weather:         s.Weather,
		Notes:           s.Notes,
	}
}
