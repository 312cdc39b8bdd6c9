package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
)

// FeedbackRepository implements out.FeedbackRepository over
// product_feedback. One row per (user, product); upsert overwrites.
type FeedbackRepository struct {
	db *sqlx.DB
}

func NewFeedbackRepository(db *sqlx.DB) out.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Upsert(ctx context.Context, fb *domain.Feedback) error {
	query := `
		INSERT INTO product_feedback (user_id, product_id, sentiment, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET sentiment = EXCLUDED.sentiment,
		              notes = EXCLUDED.notes,
		              updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query,
		fb.UserID, fb.ProductID, fb.Sentiment, fb.Notes, fb.UpdatedAt,
	); err != nil {
		return dbErr("upsert feedback", err)
	}
	return nil
}

func (r *FeedbackRepository) NegativeProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.productIDs(ctx, userID, domain.SentimentNegative)
}

func (r *FeedbackRepository) PositiveProductIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.productIDs(ctx, userID, domain.SentimentPositive)
}

func (r *FeedbackRepository) productIDs(ctx context.Context, userID int64, sentiment domain.Sentiment) ([]int64, error) {
	query := `
		SELECT product_id
		FROM product_feedback
		WHERE user_id = $1 AND sentiment = $2
		ORDER BY product_id ASC`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID, sentiment); err != nil {
		return nil, dbErr("list feedback product ids", err)
	}
	return ids, nil
}
