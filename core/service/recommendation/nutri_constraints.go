package recommendation

import (
	"nutri_server/core/domain"
)

// highCaffeineMg is the per-serving threshold above which a product is
// unsuitable for users with low caffeine tolerance.
const highCaffeineMg = 50

// ConstraintFilter drops candidates that violate the user's hard
// constraints. Filtering happens after retrieval so both retrieval modes
// share one implementation; the SQL retriever also pushes the same
// predicates into its query, which makes this pass a no-op there.
func ConstraintFilter(profile *domain.UserProfile, negative map[int64]bool, candidates []*domain.CandidateProduct) []*domain.CandidateProduct {
	out := make([]*domain.CandidateProduct, 0, len(candidates))
	for _, p := range candidates {
		if negative[p.ProductID] {
			continue
		}
		if !dietCompatible(profile.DietaryRestriction, p) {
			continue
		}
		if !caffeineCompatible(profile.CaffeineTolerance, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func dietCompatible(diet domain.DietaryRestriction, p *domain.CandidateProduct) bool {
	switch diet {
	case domain.DietVegan:
		return p.HasTag(domain.TagVegan)
	case domain.DietVegetarian:
		// Vegan products are vegetarian by definition.
		return p.HasTag(domain.TagVegetarian) || p.HasTag(domain.TagVegan)
	case domain.DietGlutenFree:
		return p.HasTag(domain.TagGlutenFree)
	default:
		// lactose_free and nut_free are not modeled in catalog attributes;
		// the model sees them in the profile summary instead.
		return true
	}
}

func caffeineCompatible(tol domain.CaffeineTolerance, p *domain.CandidateProduct) bool {
	switch tol {
	case domain.CaffeineNone:
		return p.Nutrition.CaffeineMg <= 0
	case domain.CaffeineLow:
		return p.Nutrition.CaffeineMg <= highCaffeineMg
	default:
		return true
	}
}
