package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
)

// RecommendationRepository implements out.RecommendationRepository over
// the recommendations table. Rows are append-only.
type RecommendationRepository struct {
	db *sqlx.DB
}

func NewRecommendationRepository(db *sqlx.DB) out.RecommendationRepository {
	return &RecommendationRepository{db: db}
}

func (r *RecommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	query := `
		INSERT INTO recommendations (
			user_id, session_id, product_id, recommended_at,
			consumption_timing, timing_minutes, recommended_quantity,
			consumption_instructions, reasoning, overall_reasoning
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING recommendation_id`

	if err := r.db.QueryRowxContext(ctx, query,
		rec.UserID, rec.SessionID, rec.ProductID, rec.RecommendedAt,
		rec.Timing, rec.TimingMinutes, rec.Quantity,
		rec.Instructions, rec.Reasoning, rec.OverallReasoning,
	).Scan(&rec.RecommendationID); err != nil {
		return dbErr("create recommendation", err)
	}
	return nil
}

const recommendationColumns = `
	r.recommendation_id, r.user_id, r.session_id, r.product_id,
	r.recommended_at, r.consumption_timing, r.timing_minutes,
	r.recommended_quantity, r.consumption_instructions,
	r.reasoning, r.overall_reasoning,
	p.name AS product_name,
	COALESCE(p.description, '') AS product_description,
	COALESCE(p.image_url, '') AS product_image_url`

func (r *RecommendationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Recommendation, error) {
	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations r
		JOIN products p ON p.product_id = r.product_id
		WHERE r.user_id = $1
		ORDER BY r.recommended_at DESC, r.recommendation_id DESC
		LIMIT $2`

	var recs []*domain.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, userID, limit); err != nil {
		return nil, dbErr("list recommendations", err)
	}
	return recs, nil
}

func (r *RecommendationRepository) ListBySession(ctx context.Context, userID, sessionID int64) ([]*domain.Recommendation, error) {
	query := `
		SELECT ` + recommendationColumns + `
		FROM recommendations r
		JOIN products p ON p.product_id = r.product_id
		WHERE r.user_id = $1 AND r.session_id = $2
		ORDER BY r.recommended_at DESC, r.recommendation_id DESC`

	var recs []*domain.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, userID, sessionID); err != nil {
		return nil, dbErr("list session recommendations", err)
	}
	return recs, nil
}
