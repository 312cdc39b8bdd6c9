package persistence

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
)

// EmbeddingStore implements out.EmbeddingStore. Vectors are stored as a
// JSON array in a jsonb column; at most one row per product, upsert
// overwrites.
type EmbeddingStore struct {
	db *sqlx.DB
}

func NewEmbeddingStore(db *sqlx.DB) out.EmbeddingStore {
	return &EmbeddingStore{db: db}
}

type embeddingRow struct {
	ProductID int64  `db:"product_id"`
	Vector    []byte `db:"embedding"`
}

func (r *EmbeddingStore) Upsert(ctx context.Context, emb *domain.ProductEmbedding) error {
	encoded, err := json.Marshal(emb.Vector)
	if err != nil {
		return dbErr("encode embedding", err)
	}

	query := `
		INSERT INTO product_embeddings (product_id, embedding, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, emb.ProductID, encoded); err != nil {
		return dbErr("upsert embedding", err)
	}
	return nil
}

func (r *EmbeddingStore) ListAll(ctx context.Context) ([]*domain.ProductEmbedding, error) {
	query := `SELECT product_id, embedding FROM product_embeddings`

	var rows []embeddingRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, dbErr("list embeddings", err)
	}

	embeddings := make([]*domain.ProductEmbedding, 0, len(rows))
	for _, row := range rows {
		var vec []float32
		if err := json.Unmarshal(row.Vector, &vec); err != nil {
			// A corrupt vector only removes one product from ranking.
			continue
		}
		embeddings = append(embeddings, &domain.ProductEmbedding{
			ProductID: row.ProductID,
			Vector:    vec,
		})
	}
	return embeddings, nil
}
