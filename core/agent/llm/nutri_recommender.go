package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"nutri_server/core/domain"
	"nutri_server/pkg/apperr"
)

// NumRecommendations is the fixed size of one ranking pass.
const NumRecommendations = 3

// Recommender turns a profile and a bounded candidate set into exactly
// three timed recommendations via the configured chat model. It owns the
// prompt/response contract; any response outside the contract surfaces as
// an LLM_CONTRACT_VIOLATION for the orchestrator to compensate.
type Recommender struct {
	model ChatModel
}

func NewRecommender(model ChatModel) *Recommender {
	return &Recommender{model: model}
}

// Available reports whether a chat provider is configured. When false the
// caller must go straight to the deterministic fallback without calling.
func (r *Recommender) Available() bool {
	return r != nil && r.model != nil
}

// Generate requests recommendations for the candidate set. positiveIDs are
// products the user has rated positively; the prompt asks the model to
// prefer them. Returns a contract violation or provider error for the
// orchestrator to compensate; never silently returns an empty success.
func (r *Recommender) Generate(
	ctx context.Context,
	profile *domain.UserProfile,
	tctx *domain.TrainingContext,
	candidates []*domain.CandidateProduct,
	positiveIDs []int64,
) (*domain.RankingResult, error) {
	if !r.Available() {
		return nil, apperr.LLMProviderError("none", nil)
	}
	if len(candidates) == 0 {
		return &domain.RankingResult{
			OverallReasoning: "No se encontraron productos candidatos iniciales para evaluar.",
		}, nil
	}

	userPrompt, err := buildUserPrompt(profile, tctx, candidates, positiveIDs)
	if err != nil {
		return nil, apperr.InternalWithError(err)
	}

	raw, err := r.model.CompleteJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	return parseModelResponse(raw)
}

// =============================================================================
// Prompt construction
//
// The prompt keeps the product's Spanish contract: the wire timing tokens
// are 'antes', 'durante', 'despues' and reasoning text is written for the
// Spanish-speaking end user.
// =============================================================================

const systemPrompt = `Eres SportNutriBot, un asistente experto en nutrición deportiva. Tu tarea es analizar el perfil de un usuario y una lista de productos de suplementación deportiva disponibles para recomendar los más idóneos.

Instrucciones importantes:
1. Siempre recomienda al menos un producto, incluso si no es una coincidencia perfecta.
2. Si no hay productos que coincidan exactamente con el objetivo principal del usuario, recomienda los que más se acerquen a sus necesidades generales.
3. Considera el tipo de entrenamiento, duración e intensidad para ajustar las recomendaciones.
4. Si hay restricciones dietéticas, asegúrate de que los productos recomendados sean compatibles.
5. La tolerancia a la cafeína debe ser considerada para productos que la contengan.
6. Si el usuario está en un entrenamiento de larga duración (>60 min), prioriza productos energéticos.
7. Para entrenamientos de fuerza o hipertrofia, prioriza productos con proteína.
8. IMPORTANTE: Los productos de la lista NO incluyen aquellos que el usuario marcó como negativos; ya fueron filtrados. Prioriza los productos que el usuario haya evaluado positivamente si están disponibles.`

// promptProduct is the trimmed candidate projection sent to the model.
type promptProduct struct {
	ProductID           int64    `json:"product_id"`
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Type                string   `json:"type"`
	Description         string   `json:"description"`
	UsageRecommendation string   `json:"usage_recommendation"`
	Attributes          []string `json:"attributes"`
	ProteinG            float64  `json:"protein_g"`
	CarbsG              float64  `json:"carbs_g"`
	EnergyKcal          float64  `json:"energy_kcal"`
	CaffeineMg          float64  `json:"caffeine_mg"`
}

func buildUserPrompt(profile *domain.UserProfile, tctx *domain.TrainingContext, candidates []*domain.CandidateProduct, positiveIDs []int64) (string, error) {
	products := make([]promptProduct, len(candidates))
	for i, p := range candidates {
		products[i] = promptProduct{
			ProductID:           p.ProductID,
			Name:                p.Name,
			Category:            p.Category,
			Type:                p.Type,
			Description:         clipText(p.Description, 150),
			UsageRecommendation: clipText(p.UsageRecommendation, 100),
			Attributes:          p.Attributes,
			ProteinG:            p.Nutrition.ProteinG,
			CarbsG:              p.Nutrition.CarbsG,
			EnergyKcal:          p.Nutrition.EnergyKcal,
			CaffeineMg:          p.Nutrition.CaffeineMg,
		}
	}
	productsJSON, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Analiza el siguiente perfil de usuario:\n--- PERFIL DEL USUARIO ---\n")
	fmt.Fprintf(&b, "- Edad: %d\n- Peso: %.1f kg\n- Altura: %.1f cm\n- Género: %s\n",
		profile.Age, profile.WeightKg, profile.HeightCm, profile.Gender)
	fmt.Fprintf(&b, "- Nivel de Actividad: %s\n- Frecuencia de Entrenamiento: %s veces/semana\n",
		profile.ActivityLevel, profile.TrainingFrequency)
	fmt.Fprintf(&b, "- Objetivo Principal: %s\n- Nivel de Sudoración: %s\n- Tolerancia a la Cafeína: %s\n- Restricciones Dietéticas: %s\n",
		profile.PrimaryGoal, profile.SweatLevel, profile.CaffeineTolerance, profile.DietaryRestriction)
	b.WriteString("--- FIN PERFIL DEL USUARIO ---\n\n")

	b.WriteString("Detalles del entrenamiento actual:\n")
	if tctx != nil {
		fmt.Fprintf(&b, "- Tipo: %s\n- Intensidad: %s\n- Duración: %d minutos\n- Clima: %s\n- Notas: %s\n",
			orUnspecified(tctx.Type), orUnspecified(tctx.Intensity), tctx.DurationMinutes,
			orUnspecified(tctx.Weather), orUnspecified(tctx.Notes))
	} else {
		b.WriteString("- Sin sesión de entrenamiento específica; recomendación general según el perfil.\n")
	}

	if len(positiveIDs) > 0 {
		fmt.Fprintf(&b, "\nProductos valorados positivamente por el usuario (priorízalos): %v\n", positiveIDs)
	}

	b.WriteString("\nY la siguiente lista de productos disponibles:\n--- PRODUCTOS DISPONIBLES ---\n")
	b.Write(productsJSON)
	b.WriteString("\n--- FIN PRODUCTOS DISPONIBLES ---\n\n")

	b.WriteString(`IMPORTANTE: Recomienda EXACTAMENTE 3 productos siguiendo esta distribución de timing:
1. UN producto para consumir ANTES del entrenamiento (15-30 minutos antes)
2. UN producto para consumir DURANTE el entrenamiento
3. UN producto para consumir DESPUÉS del entrenamiento (dentro de 30 minutos)

REGLAS DE DISTRIBUCIÓN:
- Cada producto debe tener un consumption_timing diferente ('antes', 'durante', 'despues')
- Si para alguna fase NO existe un producto ideal, selecciona el más cercano o útil
- Si definitivamente no hay un producto adecuado para una fase específica, omite esa recomendación
- Prioriza productos que naturalmente correspondan a cada fase según su categoría:
  * ANTES: Productos de energía, pre-workout
  * DURANTE: Geles, hidratación, electrolitos
  * DESPUÉS: Recuperación, proteína

Devuelve tu respuesta ÚNICAMENTE en formato JSON:
{
  "recommendations": [
    {
      "product_id": <ID_ENTERO>,
      "reasoning": "Justificación...",
      "consumption_timing": "antes|durante|despues",
      "timing_minutes": 30,
      "quantity": "1 porción",
      "instructions": "Instrucciones específicas"
    }
  ],
  "llm_overall_reasoning": "Resumen de la estrategia de suplementación para este entrenamiento."
}

RECUERDA: Cada producto debe tener un consumption_timing DIFERENTE.
No incluyas texto fuera del JSON. Solo el JSON.`)

	return b.String(), nil
}

func clipText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func orUnspecified(s string) string {
	if s == "" {
		return "No especificado"
	}
	return s
}

// =============================================================================
// Response parsing and repair
// =============================================================================

type wireRecommendation struct {
	ProductID     any    `json:"product_id"`
	Reasoning     string `json:"reasoning"`
	Timing        string `json:"consumption_timing"`
	TimingMinutes *int   `json:"timing_minutes"`
	Quantity      string `json:"quantity"`
	Instructions  string `json:"instructions"`
}

type wireResponse struct {
	Recommendations  []wireRecommendation `json:"recommendations"`
	OverallReasoning string               `json:"llm_overall_reasoning"`
}

// parseModelResponse validates the raw provider response against the
// contract. Fenced responses are unwrapped first. A response that is not a
// JSON object, lacks the recommendations array, or whose product ids all
// fail integer coercion is a contract violation.
func parseModelResponse(raw string) (*domain.RankingResult, error) {
	cleaned := stripCodeFence(raw)

	var resp wireResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, apperr.LLMContractViolation("response is not valid JSON", err)
	}
	if resp.Recommendations == nil {
		return nil, apperr.LLMContractViolation("'recommendations' array is missing", nil)
	}

	result := &domain.RankingResult{
		OverallReasoning: resp.OverallReasoning,
	}
	if result.OverallReasoning == "" {
		result.OverallReasoning = "Recomendaciones generadas."
	}

	for _, rec := range resp.Recommendations {
		id, err := coerceProductID(rec.ProductID)
		if err != nil {
			return nil, apperr.LLMContractViolation(
				fmt.Sprintf("product_id %v is not an integer", rec.ProductID), err)
		}
		result.Recommendations = append(result.Recommendations, domain.RankedProduct{
			ProductID:     id,
			Reasoning:     rec.Reasoning,
			Timing:        domain.NormalizeTiming(rec.Timing),
			TimingMinutes: rec.TimingMinutes,
			Quantity:      rec.Quantity,
			Instructions:  rec.Instructions,
		})
	}

	return result, nil
}

// stripCodeFence removes markdown code-fence wrapping (```json ... ```)
// around the payload, which Gemini produces without JSON mode.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func coerceProductID(v any) (int64, error) {
	switch id := v.(type) {
	case float64:
		return int64(id), nil
	case json.Number:
		return id.Int64()
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unsupported product_id type %T", v)
	}
}
