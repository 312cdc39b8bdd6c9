package domain

import "strings"

// =============================================================================
// Catalog products
// =============================================================================

// Canonical attribute tags. The catalog stores the Spanish attribute names;
// tag lookups accept both vocabularies.
const (
	TagVegan      = "vegan"
	TagVegetarian = "vegetarian"
	TagGlutenFree = "gluten_free"
	TagHighProtein = "high_protein"
	TagHighCarb    = "high_carb"
)

var tagSynonyms = map[string]string{
	"vegan": TagVegan, "vegano": TagVegan,
	"vegetarian": TagVegetarian, "vegetariano": TagVegetarian,
	"gluten_free": TagGlutenFree, "gluten-free": TagGlutenFree,
	"libre de gluten": TagGlutenFree,
	"high_protein":    TagHighProtein, "high-protein": TagHighProtein,
	"alto en proteina": TagHighProtein,
	"high_carb":        TagHighCarb, "high-carb": TagHighCarb,
	"alto en carbohidrato": TagHighCarb,
}

// NormalizeTag maps a catalog attribute name to its canonical tag.
// Unknown attributes pass through lowercased so they remain comparable.
func NormalizeTag(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if v, ok := tagSynonyms[key]; ok {
		return v
	}
	return key
}

// NutritionFacts is the per-serving nutrition projection of a product.
// Values are zero when the catalog has no row for the product.
type NutritionFacts struct {
	ServingSize string  `json:"serving_size" db:"serving_size"`
	EnergyKcal  float64 `json:"energy_kcal" db:"energy_kcal"`
	ProteinG    float64 `json:"protein_g" db:"protein_g"`
	CarbsG      float64 `json:"carbs_g" db:"carbs_g"`
	SugarsG     float64 `json:"sugars_g" db:"sugars_g"`
	SodiumMg    float64 `json:"sodium_mg" db:"sodium_mg"`
	CaffeineMg  float64 `json:"caffeine_mg" db:"caffeine_mg"`
}

// CandidateProduct is a read-only projection of an active catalog product.
// The pipeline never mutates it.
type CandidateProduct struct {
	ProductID           int64    `json:"product_id"`
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Type                string   `json:"type"`
	Description         string   `json:"description"`
	UsageRecommendation string   `json:"usage_recommendation"`
	Attributes          []string `json:"attributes"`
	ImageURL            string   `json:"image_url,omitempty"`
	Nutrition           NutritionFacts `json:"nutrition"`
}

// HasTag reports whether the product carries the given canonical tag,
// accepting either vocabulary in the stored attribute list.
func (p *CandidateProduct) HasTag(tag string) bool {
	want := NormalizeTag(tag)
	for _, attr := range p.Attributes {
		if NormalizeTag(attr) == want {
			return true
		}
	}
	return false
}

// CategoryContains reports a case-insensitive substring match on the
// product category, in either vocabulary.
func (p *CandidateProduct) CategoryContains(words ...string) bool {
	cat := strings.ToLower(p.Category)
	for _, w := range words {
		if strings.Contains(cat, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// ProductEmbedding is a stored embedding vector keyed by product id.
// At most one row per product; regeneration overwrites (last write wins).
type ProductEmbedding struct {
	ProductID int64     `json:"product_id"`
	Vector    []float32 `json:"vector"`
}

// ScoredCandidate pairs a candidate with its ranking score. Similarity
// scores lie in [-1,1]; heuristic scores are unbounded. Never persisted.
type ScoredCandidate struct {
	Product *CandidateProduct
	Score   float64
}
