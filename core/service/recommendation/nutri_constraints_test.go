package recommendation

import (
	"testing"

	"nutri_server/core/domain"
)

func product(id int64, name string, attrs []string, caffeineMg float64) *domain.CandidateProduct {
	return &domain.CandidateProduct{
		ProductID:  id,
		Name:       name,
		Attributes: attrs,
		Nutrition:  domain.NutritionFacts{CaffeineMg: caffeineMg},
	}
}

func idsOf(products []*domain.CandidateProduct) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ProductID
	}
	return ids
}

func TestConstraintFilterVegan(t *testing.T) {
	profile := &domain.UserProfile{DietaryRestriction: domain.DietVegan, CaffeineTolerance: domain.CaffeineHigh}
	candidates := []*domain.CandidateProduct{
		product(1, "Whey Protein", nil, 0),
		product(2, "Vegan Protein", []string{"vegano"}, 0),
		product(3, "Energy Gel", []string{"vegan", "gluten_free"}, 0),
	}

	out := ConstraintFilter(profile, nil, candidates)
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %v", idsOf(out))
	}
	if out[0].ProductID != 2 || out[1].ProductID != 3 {
		t.Errorf("unexpected survivors: %v", idsOf(out))
	}
}

func TestConstraintFilterVegetarianAcceptsVegan(t *testing.T) {
	profile := &domain.UserProfile{DietaryRestriction: domain.DietVegetarian, CaffeineTolerance: domain.CaffeineHigh}
	candidates := []*domain.CandidateProduct{
		product(1, "Vegan Bar", []string{"vegano"}, 0),
		product(2, "Veggie Shake", []string{"vegetariano"}, 0),
		product(3, "Beef Protein", nil, 0),
	}

	out := ConstraintFilter(profile, nil, candidates)
	if len(out) != 2 {
		t.Fatalf("expected vegan and vegetarian products to pass, got %v", idsOf(out))
	}
}

func TestConstraintFilterGlutenFree(t *testing.T) {
	profile := &domain.UserProfile{DietaryRestriction: domain.DietGlutenFree, CaffeineTolerance: domain.CaffeineHigh}
	candidates := []*domain.CandidateProduct{
		product(1, "Oat Bar", nil, 0),
		product(2, "Rice Gel", []string{"libre de gluten"}, 0),
	}

	out := ConstraintFilter(profile, nil, candidates)
	if len(out) != 1 || out[0].ProductID != 2 {
		t.Errorf("expected only the gluten free product, got %v", idsOf(out))
	}
}

func TestConstraintFilterUnmodeledDietPassesAll(t *testing.T) {
	// lactose_free is not expressed in catalog attributes, so the filter
	// must not drop anything on its account.
	profile := &domain.UserProfile{DietaryRestriction: domain.DietLactoseFree, CaffeineTolerance: domain.CaffeineHigh}
	candidates := []*domain.CandidateProduct{
		product(1, "Whey Protein", nil, 0),
		product(2, "Casein", nil, 0),
	}

	out := ConstraintFilter(profile, nil, candidates)
	if len(out) != 2 {
		t.Errorf("expected all candidates to pass, got %v", idsOf(out))
	}
}

func TestConstraintFilterCaffeine(t *testing.T) {
	candidates := []*domain.CandidateProduct{
		product(1, "Decaf Gel", nil, 0),
		product(2, "Mild Gel", nil, 40),
		product(3, "Double Espresso Gel", nil, 150),
	}

	tests := []struct {
		tolerance domain.CaffeineTolerance
		want      []int64
	}{
		{domain.CaffeineNone, []int64{1}},
		{domain.CaffeineLow, []int64{1, 2}},
		{domain.CaffeineMedium, []int64{1, 2, 3}},
		{domain.CaffeineHigh, []int64{1, 2, 3}},
	}
	for _, tt := range tests {
		profile := &domain.UserProfile{DietaryRestriction: domain.DietNone, CaffeineTolerance: tt.tolerance}
		out := ConstraintFilter(profile, nil, candidates)
		got := idsOf(out)
		if len(got) != len(tt.want) {
			t.Errorf("tolerance %s: expected %v, got %v", tt.tolerance, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("tolerance %s: expected %v, got %v", tt.tolerance, tt.want, got)
				break
			}
		}
	}
}

func TestConstraintFilterNegativeFeedback(t *testing.T) {
	profile := &domain.UserProfile{DietaryRestriction: domain.DietNone, CaffeineTolerance: domain.CaffeineHigh}
	candidates := []*domain.CandidateProduct{
		product(1, "Gel A", nil, 0),
		product(2, "Gel B", nil, 0),
		product(3, "Gel C", nil, 0),
	}

	out := ConstraintFilter(profile, map[int64]bool{2: true}, candidates)
	if len(out) != 2 {
		t.Fatalf("expected negatively rated product dropped, got %v", idsOf(out))
	}
	for _, p := range out {
		if p.ProductID == 2 {
			t.Error("product 2 should have been excluded by negative feedback")
		}
	}
}

func TestConstraintFilterEmptyInput(t *testing.T) {
	profile := &domain.UserProfile{DietaryRestriction: domain.DietVegan, CaffeineTolerance: domain.CaffeineNone}
	out := ConstraintFilter(profile, nil, nil)
	if len(out) != 0 {
		t.Errorf("expected empty result, got %v", idsOf(out))
	}
}
