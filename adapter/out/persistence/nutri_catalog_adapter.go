package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"nutri_server/core/domain"
	"nutri_server/core/port/out"
)

// CatalogRepository implements out.CatalogRepository over the products and
// nutrition_facts tables. Only active products are ever returned.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) out.CatalogRepository {
	return &CatalogRepository{db: db}
}

const productColumns = `
	p.product_id, p.name, p.category, p.type,
	COALESCE(p.description, '') AS description,
	COALESCE(p.usage_recommendation, '') AS usage_recommendation,
	COALESCE(p.attributes, '{}') AS attributes,
	COALESCE(p.image_url, '') AS image_url,
	COALESCE(nf.serving_size, '') AS serving_size,
	COALESCE(nf.energy_kcal, 0) AS energy_kcal,
	COALESCE(nf.protein_g, 0) AS protein_g,
	COALESCE(nf.carbs_g, 0) AS carbs_g,
	COALESCE(nf.sugars_g, 0) AS sugars_g,
	COALESCE(nf.sodium_mg, 0) AS sodium_mg,
	COALESCE(nf.caffeine_mg, 0) AS caffeine_mg`

type productRow struct {
	ProductID           int64          `db:"product_id"`
	Name                string         `db:"name"`
	Category            string         `db:"category"`
	Type                string         `db:"type"`
	Description         string         `db:"description"`
	UsageRecommendation string         `db:"usage_recommendation"`
	Attributes          pq.StringArray `db:"attributes"`
	ImageURL            string         `db:"image_url"`
	ServingSize         string         `db:"serving_size"`
	EnergyKcal          float64        `db:"energy_kcal"`
	ProteinG            float64        `db:"protein_g"`
	CarbsG              float64        `db:"carbs_g"`
	SugarsG             float64        `db:"sugars_g"`
	SodiumMg            float64        `db:"sodium_mg"`
	CaffeineMg          float64        `db:"caffeine_mg"`
}

func (r productRow) toDomain() *domain.CandidateProduct {
	return &domain.CandidateProduct{
		ProductID:           r.ProductID,
		Name:                r.Name,
		Category:            r.Category,
		Type:                r.Type,
		Description:         r.Description,
		UsageRecommendation: r.UsageRecommendation,
		Attributes:          []string(r.Attributes),
		ImageURL:            r.ImageURL,
		Nutrition: domain.NutritionFacts{
			ServingSize: r.ServingSize,
			EnergyKcal:  r.EnergyKcal,
			ProteinG:    r.ProteinG,
			CarbsG:      r.CarbsG,
			SugarsG:     r.SugarsG,
			SodiumMg:    r.SodiumMg,
			CaffeineMg:  r.CaffeineMg,
		},
	}
}

// Attribute vocabularies accepted in candidate predicates. The catalog
// historically stores Spanish attribute names; both spellings match.
var (
	veganAttrs      = pq.StringArray{"vegan", "vegano"}
	vegetarianAttrs = pq.StringArray{"vegan", "vegano", "vegetarian", "vegetariano"}
	glutenFreeAttrs = pq.StringArray{"gluten_free", "gluten-free", "libre de gluten"}
)

// QueryCandidates runs the constrained candidate query: hard constraints
// become predicates, the primary goal keys the ordering, and the limit
// caps the set.
func (r *CatalogRepository) QueryCandidates(ctx context.Context, q *out.CandidateQuery) ([]*domain.CandidateProduct, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	conditions = append(conditions, "p.is_active = TRUE")

	switch q.DietaryRestriction {
	case domain.DietVegan:
		conditions = append(conditions, fmt.Sprintf("p.attributes && $%d", argIdx))
		args = append(args, veganAttrs)
		argIdx++
	case domain.DietVegetarian:
		conditions = append(conditions, fmt.Sprintf("p.attributes && $%d", argIdx))
		args = append(args, vegetarianAttrs)
		argIdx++
	case domain.DietGlutenFree:
		conditions = append(conditions, fmt.Sprintf("p.attributes && $%d", argIdx))
		args = append(args, glutenFreeAttrs)
		argIdx++
	}

	switch q.CaffeineTolerance {
	case domain.CaffeineNone:
		conditions = append(conditions, "COALESCE(nf.caffeine_mg, 0) <= 0")
	case domain.CaffeineLow:
		conditions = append(conditions, "COALESCE(nf.caffeine_mg, 0) <= 50")
	}

	if len(q.ExcludeProductIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.product_id <> ALL($%d)", argIdx))
		args = append(args, pq.Array(q.ExcludeProductIDs))
		argIdx++
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN nutrition_facts nf ON nf.product_id = p.product_id
		WHERE %s
		ORDER BY %s, p.product_id ASC
		LIMIT $%d`,
		productColumns,
		strings.Join(conditions, " AND "),
		goalOrdering(q.PrimaryGoal, q.ActivityLevel),
		argIdx)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbErr("query candidates", err)
	}

	products := make([]*domain.CandidateProduct, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
	}
	return products, nil
}

// goalOrdering returns the ORDER BY expression for the soft priorities:
// goal-relevant categories and the goal's key nutrient lead, and an
// active or very active lifestyle pulls energy and recovery categories
// forward as a trailing term.
func goalOrdering(goal domain.PrimaryGoal, activity domain.ActivityLevel) string {
	var terms []string

	switch goal {
	case domain.GoalMuscleGain:
		terms = append(terms,
			`CASE WHEN p.category ILIKE '%protein%' OR p.category ILIKE '%prote%' THEN 0 ELSE 1 END`,
			`COALESCE(nf.protein_g, 0) DESC`)
	case domain.GoalPerformance, domain.GoalEndurance:
		terms = append(terms,
			`CASE WHEN p.category ILIKE '%energ%' OR p.category ILIKE '%gel%' THEN 0 ELSE 1 END`,
			`COALESCE(nf.carbs_g, 0) DESC`)
	case domain.GoalWeightLoss:
		terms = append(terms,
			`COALESCE(nf.energy_kcal, 0) ASC`,
			`COALESCE(nf.sugars_g, 0) ASC`)
	case domain.GoalRecovery:
		terms = append(terms,
			`CASE WHEN p.category ILIKE '%recup%' OR p.category ILIKE '%recover%' THEN 0 ELSE 1 END`,
			`COALESCE(nf.protein_g, 0) DESC`)
	default:
		terms = append(terms, `p.name ASC`)
	}

	if activity == domain.ActivityActive || activity == domain.ActivityVeryActive {
		terms = append(terms,
			`CASE WHEN p.category ILIKE '%energ%' OR p.category ILIKE '%recup%' THEN 0 ELSE 1 END`)
	}

	return strings.Join(terms, ", ")
}

func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.CandidateProduct, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN nutrition_facts nf ON nf.product_id = p.product_id
		WHERE p.is_active = TRUE AND p.product_id = ANY($1)`, productColumns)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, dbErr("get products by ids", err)
	}

	products := make([]*domain.CandidateProduct, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
	}
	return products, nil
}

func (r *CatalogRepository) ListActive(ctx context.Context) ([]*domain.CandidateProduct, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN nutrition_facts nf ON nf.product_id = p.product_id
		WHERE p.is_active = TRUE
		ORDER BY p.product_id ASC`, productColumns)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, dbErr("list active products", err)
	}

	products := make([]*domain.CandidateProduct, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
	}
	return products, nil
}
