package persistence

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
)

// ProfileRepository implements out.ProfileRepository over user_profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) out.ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	query := `
		SELECT user_id, age, weight, height, gender, activity_level,
		       training_frequency, primary_goal, sweat_level,
		       caffeine_tolerance, dietary_restriction, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1`

	var profile domain.UserProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dbErr("get profile", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		INSERT INTO user_profiles (
			user_id, age, weight, height, gender, activity_level,
			training_frequency, primary_goal, sweat_level,
			caffeine_tolerance, dietary_restriction, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			weight = EXCLUDED.weight,
			height = EXCLUDED.height,
			gender = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			training_frequency = EXCLUDED.training_frequency,
			primary_goal = EXCLUDED.primary_goal,
			sweat_level = EXCLUDED.sweat_level,
			caffeine_tolerance = EXCLUDED.caffeine_tolerance,
			dietary_restriction = EXCLUDED.dietary_restriction,
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		profile.UserID, profile.Age, profile.WeightKg, profile.HeightCm,
		profile.Gender, profile.ActivityLevel, profile.TrainingFrequency,
		profile.PrimaryGoal, profile.SweatLevel, profile.CaffeineTolerance,
		profile.DietaryRestriction,
	); err != nil {
		return dbErr("upsert profile", err)
	}
	return nil
}
