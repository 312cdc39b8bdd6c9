package recommendation

import (
	"strings"
	"testing"

	"nutri_server/core/domain"
)

func nutritionProduct(id int64, name, category string, protein, carbs, kcal float64) *domain.CandidateProduct {
	return &domain.CandidateProduct{
		ProductID: id,
		Name:      name,
		Category:  category,
		Nutrition: domain.NutritionFacts{ProteinG: protein, CarbsG: carbs, EnergyKcal: kcal},
	}
}

func TestFallbackRankEmptyCandidates(t *testing.T) {
	scorer := NewFallbackScorer()
	result := scorer.Rank(&domain.UserProfile{PrimaryGoal: domain.GoalMuscleGain}, nil)
	if len(result.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(result.Recommendations))
	}
	if result.OverallReasoning == "" {
		t.Error("expected an explanatory overall reasoning")
	}
}

func TestFallbackRankAssignsNaturalTimings(t *testing.T) {
	scorer := NewFallbackScorer()
	candidates := []*domain.CandidateProduct{
		nutritionProduct(1, "REGO Rapid Recovery", "Recuperación", 20, 23, 170),
		nutritionProduct(2, "GO Isotonic Energy Gel", "Geles", 0, 22, 87),
		nutritionProduct(3, "Beta Fuel 80", "Energía", 0, 80, 320),
	}

	result := scorer.Rank(&domain.UserProfile{PrimaryGoal: domain.GoalEndurance}, candidates)
	if len(result.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(result.Recommendations))
	}

	byTiming := make(map[domain.ConsumptionTiming]int64)
	for _, rec := range result.Recommendations {
		byTiming[rec.Timing] = rec.ProductID
	}
	if byTiming[domain.TimingBefore] != 3 {
		t.Errorf("expected Beta Fuel before training, got product %d", byTiming[domain.TimingBefore])
	}
	if byTiming[domain.TimingDuring] != 2 {
		t.Errorf("expected the gel during training, got product %d", byTiming[domain.TimingDuring])
	}
	if byTiming[domain.TimingAfter] != 1 {
		t.Errorf("expected REGO after training, got product %d", byTiming[domain.TimingAfter])
	}
}

func TestFallbackRankDistinctProductsAndTimings(t *testing.T) {
	scorer := NewFallbackScorer()
	candidates := []*domain.CandidateProduct{
		nutritionProduct(1, "Whey Protein Isolate", "Proteínas", 22, 1, 93),
		nutritionProduct(2, "Casein Protein", "Proteínas", 24, 2, 110),
		nutritionProduct(3, "Plant Protein", "Proteínas", 20, 3, 105),
		nutritionProduct(4, "Bar", "Snacks", 10, 20, 200),
	}

	result := scorer.Rank(&domain.UserProfile{PrimaryGoal: domain.GoalMuscleGain}, candidates)
	if len(result.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(result.Recommendations))
	}

	seenProducts := make(map[int64]bool)
	seenTimings := make(map[domain.ConsumptionTiming]bool)
	for _, rec := range result.Recommendations {
		if seenProducts[rec.ProductID] {
			t.Errorf("product %d recommended twice", rec.ProductID)
		}
		if seenTimings[rec.Timing] {
			t.Errorf("timing %s assigned twice", rec.Timing)
		}
		seenProducts[rec.ProductID] = true
		seenTimings[rec.Timing] = true
	}
}

func TestFallbackRankDailyProductFillsAnySlot(t *testing.T) {
	scorer := NewFallbackScorer()
	candidates := []*domain.CandidateProduct{
		nutritionProduct(1, "BCAA Perform", "Proteínas", 25, 0, 110),
		nutritionProduct(2, "GO Energy Bar", "Barras", 1, 26, 130),
	}

	result := scorer.Rank(&domain.UserProfile{PrimaryGoal: domain.GoalMuscleGain}, candidates)
	if len(result.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(result.Recommendations))
	}

	byTiming := make(map[domain.ConsumptionTiming]int64)
	for _, rec := range result.Recommendations {
		byTiming[rec.Timing] = rec.ProductID
	}
	// The BCAA scores far higher for muscle gain and its daily phase
	// satisfies any slot, so it must take the before slot ahead of the
	// lower scoring bar with the matching keyword.
	if byTiming[domain.TimingBefore] != 1 {
		t.Errorf("expected the top scoring daily product before training, got product %d",
			byTiming[domain.TimingBefore])
	}
	if byTiming[domain.TimingDuring] != 2 {
		t.Errorf("expected the bar to pad the during slot, got product %d", byTiming[domain.TimingDuring])
	}
}

func TestFallbackRankPadsSlotsWhenNoNaturalMatch(t *testing.T) {
	scorer := NewFallbackScorer()
	// Neither name matches a timing keyword: both default to during, so
	// one fills the during slot naturally and the other lands via padding.
	candidates := []*domain.CandidateProduct{
		nutritionProduct(1, "Mystery Shake", "Otros", 5, 5, 100),
		nutritionProduct(2, "Plain Bar", "Otros", 5, 5, 100),
	}

	result := scorer.Rank(&domain.UserProfile{PrimaryGoal: domain.GoalGeneralHealth}, candidates)
	if len(result.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations from 2 candidates, got %d", len(result.Recommendations))
	}

	byTiming := make(map[domain.ConsumptionTiming]int64)
	for _, rec := range result.Recommendations {
		byTiming[rec.Timing] = rec.ProductID
	}
	if byTiming[domain.TimingDuring] != 1 {
		t.Errorf("expected product 1 to take the during slot on the id tie break, got product %d",
			byTiming[domain.TimingDuring])
	}
	if byTiming[domain.TimingBefore] != 2 {
		t.Errorf("expected product 2 to pad the before slot, got product %d", byTiming[domain.TimingBefore])
	}
}

func TestFallbackScorePrefersProteinForMuscleGain(t *testing.T) {
	scorer := NewFallbackScorer()
	profile := &domain.UserProfile{PrimaryGoal: domain.GoalMuscleGain}

	protein := nutritionProduct(1, "Shake", "Proteínas en polvo", 25, 2, 120)
	gel := nutritionProduct(2, "Shot", "Geles energéticos", 0, 22, 90)

	if scorer.score(profile, protein) <= scorer.score(profile, gel) {
		t.Error("expected the protein product to outscore the gel for muscle gain")
	}
}

func TestFallbackScorePrefersLowCalorieForWeightLoss(t *testing.T) {
	scorer := NewFallbackScorer()
	profile := &domain.UserProfile{PrimaryGoal: domain.GoalWeightLoss}

	light := nutritionProduct(1, "Light Drink", "Hidratación", 0, 5, 20)
	dense := nutritionProduct(2, "Mass Gainer", "Proteínas", 30, 60, 500)

	if scorer.score(profile, light) <= scorer.score(profile, dense) {
		t.Error("expected the low calorie product to outscore the dense one for weight loss")
	}
}

func TestFallbackScorePenalizesViolations(t *testing.T) {
	scorer := NewFallbackScorer()
	profile := &domain.UserProfile{
		PrimaryGoal:        domain.GoalMuscleGain,
		DietaryRestriction: domain.DietVegan,
		CaffeineTolerance:  domain.CaffeineNone,
	}

	compliant := &domain.CandidateProduct{
		ProductID: 1, Name: "Plant Protein", Attributes: []string{"vegano"},
		Nutrition: domain.NutritionFacts{ProteinG: 5},
	}
	violating := &domain.CandidateProduct{
		ProductID: 2, Name: "Caffeinated Whey",
		Nutrition: domain.NutritionFacts{ProteinG: 30, CaffeineMg: 200},
	}

	if scorer.score(profile, violating) >= scorer.score(profile, compliant) {
		t.Error("expected constraint violations to sink the candidate")
	}
}

func TestFallbackReasoningMentionsGoal(t *testing.T) {
	scorer := NewFallbackScorer()
	profile := &domain.UserProfile{PrimaryGoal: domain.GoalRecovery}
	candidates := []*domain.CandidateProduct{
		nutritionProduct(1, "REGO Rapid Recovery", "Recuperación", 20, 23, 170),
	}

	result := scorer.Rank(profile, candidates)
	if len(result.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(result.Recommendations))
	}
	rec := result.Recommendations[0]
	if !strings.Contains(rec.Reasoning, "recuperación") {
		t.Errorf("expected reasoning to mention the goal, got %q", rec.Reasoning)
	}
	if rec.Quantity == "" || rec.Instructions == "" || rec.TimingMinutes == nil {
		t.Errorf("expected complete consumption details, got %+v", rec)
	}
}

func TestNaturalTiming(t *testing.T) {
	tests := []struct {
		name string
		want domain.ConsumptionTiming
	}{
		{"REGO Rapid Recovery", domain.TimingAfter},
		{"Whey Protein Isolate", domain.TimingAfter},
		{"GO Hydro Tablets", domain.TimingDuring},
		{"Electrolyte Powder", domain.TimingDuring},
		{"GO Energy Bar", domain.TimingBefore},
		{"Beta Fuel 80", domain.TimingBefore},
		{"Multivitamina Diaria", domain.TimingDaily},
		{"BCAA Perform", domain.TimingDaily},
		{"Plain Snack", domain.TimingDuring},
	}
	for _, tt := range tests {
		p := &domain.CandidateProduct{Name: tt.name}
		if got := naturalTiming(p); got != tt.want {
			t.Errorf("naturalTiming(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
