package recommendation

import (
	"fmt"
	"sort"
	"strings"

	"nutri_server/core/domain"
)

// FallbackScorer is the deterministic stand-in for the language model:
// goal-keyed nutrient scoring plus a keyword table that assigns each
// product its natural consumption phase. Same inputs, same output.
type FallbackScorer struct{}

func NewFallbackScorer() *FallbackScorer {
	return &FallbackScorer{}
}

// timingKeywords maps product-name fragments to the phase the product is
// naturally consumed in. First match wins, top to bottom.
var timingKeywords = []struct {
	fragments []string
	timing    domain.ConsumptionTiming
}{
	{[]string{"rego", "recovery", "recuper", "protein", "proteina", "proteína"}, domain.TimingAfter},
	{[]string{"gel", "hydro", "hidra", "electrolyte", "electrolito"}, domain.TimingDuring},
	{[]string{"energy", "energia", "energía", "beta fuel", "pre-workout", "pre workout"}, domain.TimingBefore},
	{[]string{"vitamin", "vitamina", "bcaa", "immune", "inmune", "omega"}, domain.TimingDaily},
}

// naturalTiming infers the phase from the product name. Products without
// a recognized keyword default to during, the least committal phase.
func naturalTiming(p *domain.CandidateProduct) domain.ConsumptionTiming {
	name := strings.ToLower(p.Name)
	for _, entry := range timingKeywords {
		for _, frag := range entry.fragments {
			if strings.Contains(name, frag) {
				return entry.timing
			}
		}
	}
	return domain.TimingDuring
}

// score rates one product for one profile. Higher is better. Constraint
// violations carry a penalty large enough to sink a candidate below any
// compliant one, in case an unfiltered set reaches the scorer.
func (s *FallbackScorer) score(profile *domain.UserProfile, p *domain.CandidateProduct) float64 {
	var score float64

	switch profile.PrimaryGoal {
	case domain.GoalMuscleGain:
		score += 2 * p.Nutrition.ProteinG
		if p.CategoryContains("protein", "proteina", "proteína") {
			score += 10
		}
	case domain.GoalPerformance, domain.GoalEndurance:
		score += 1.5 * p.Nutrition.CarbsG
		if p.CategoryContains("energy", "energia", "energía") {
			score += 10
		}
	case domain.GoalWeightLoss:
		score += 500 - p.Nutrition.EnergyKcal
	case domain.GoalRecovery:
		score += p.Nutrition.ProteinG + 0.5*p.Nutrition.CarbsG
		if p.CategoryContains("recovery", "recuper") {
			score += 10
		}
	default:
		score += 0.5*p.Nutrition.ProteinG + 0.25*p.Nutrition.CarbsG
	}

	if !dietCompatible(profile.DietaryRestriction, p) {
		score -= 1000
	}
	if !caffeineCompatible(profile.CaffeineTolerance, p) {
		score -= 1000
	}

	return score
}

// slotDetails holds the fixed consumption template per phase.
var slotDetails = map[domain.ConsumptionTiming]struct {
	minutes      int
	quantity     string
	instructions string
}{
	domain.TimingBefore: {30, "1 porción", "Consumir 15-30 minutos antes de comenzar el entrenamiento."},
	domain.TimingDuring: {0, "1 porción", "Consumir gradualmente durante el entrenamiento."},
	domain.TimingAfter:  {30, "1 porción", "Consumir dentro de los 30 minutos posteriores al entrenamiento."},
}

// slots is the fixed fill order of one fallback pass.
var slots = []domain.ConsumptionTiming{domain.TimingBefore, domain.TimingDuring, domain.TimingAfter}

// Rank scores the candidates and fills the before/during/after slots
// greedily: each slot first takes the best unused product whose natural
// phase matches or is daily, then any remaining slot takes the best unused product
// regardless of phase. At most three recommendations, distinct timings.
func (s *FallbackScorer) Rank(profile *domain.UserProfile, candidates []*domain.CandidateProduct) *domain.RankingResult {
	if len(candidates) == 0 {
		return &domain.RankingResult{
			OverallReasoning: "No se encontraron productos compatibles con el perfil del usuario.",
		}
	}

	scored := make([]domain.ScoredCandidate, len(candidates))
	for i, p := range candidates {
		scored[i] = domain.ScoredCandidate{Product: p, Score: s.score(profile, p)}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Product.ProductID < scored[j].Product.ProductID
	})

	used := make(map[int64]bool)
	assigned := make(map[domain.ConsumptionTiming]*domain.CandidateProduct)

	// First pass: natural phase matches, best score first. Daily products
	// act as wildcards and may fill any slot.
	for _, slot := range slots {
		for _, sc := range scored {
			if used[sc.Product.ProductID] {
				continue
			}
			if t := naturalTiming(sc.Product); t == slot || t == domain.TimingDaily {
				assigned[slot] = sc.Product
				used[sc.Product.ProductID] = true
				break
			}
		}
	}

	// Second pass: pad empty slots with the best remaining products.
	for _, slot := range slots {
		if assigned[slot] != nil {
			continue
		}
		for _, sc := range scored {
			if used[sc.Product.ProductID] {
				continue
			}
			assigned[slot] = sc.Product
			used[sc.Product.ProductID] = true
			break
		}
	}

	result := &domain.RankingResult{
		OverallReasoning: fmt.Sprintf(
			"Recomendaciones generadas automáticamente según tu objetivo de %s y tu perfil nutricional.",
			goalLabel(profile.PrimaryGoal)),
	}
	for _, slot := range slots {
		p := assigned[slot]
		if p == nil {
			continue
		}
		details := slotDetails[slot]
		minutes := details.minutes
		result.Recommendations = append(result.Recommendations, domain.RankedProduct{
			ProductID:     p.ProductID,
			Reasoning:     s.reasoning(profile, p, slot),
			Timing:        slot,
			TimingMinutes: &minutes,
			Quantity:      details.quantity,
			Instructions:  details.instructions,
		})
	}
	return result
}

func (s *FallbackScorer) reasoning(profile *domain.UserProfile, p *domain.CandidateProduct, slot domain.ConsumptionTiming) string {
	var phase string
	switch slot {
	case domain.TimingBefore:
		phase = "antes del entrenamiento"
	case domain.TimingDuring:
		phase = "durante el entrenamiento"
	default:
		phase = "después del entrenamiento"
	}
	return fmt.Sprintf("%s aporta %.0f g de proteína y %.0f g de carbohidratos por porción, adecuado %s para tu objetivo de %s.",
		p.Name, p.Nutrition.ProteinG, p.Nutrition.CarbsG, phase, goalLabel(profile.PrimaryGoal))
}

func goalLabel(goal domain.PrimaryGoal) string {
	switch goal {
	case domain.GoalMuscleGain:
		return "ganar músculo"
	case domain.GoalWeightLoss:
		return "perder peso"
	case domain.GoalPerformance:
		return "mejorar rendimiento"
	case domain.GoalEndurance:
		return "resistencia"
	case domain.GoalRecovery:
		return "recuperación"
	default:
		return "salud general"
	}
}
