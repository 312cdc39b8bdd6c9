package rag

import (
	"context"
	"fmt"
	"strings"

	"nutri_server/core/agent/llm"
	"nutri_server/core/domain"
	"nutri_server/pkg/apperr"
)

// maxEmbedInputChars bounds the text sent to the embedding provider.
const maxEmbedInputChars = 10000

// EmbeddingGateway renders domain objects into deterministic text and
// embeds it through the configured provider. The same template is used at
// index time and query time so the vectors live in one space.
type EmbeddingGateway struct {
	model llm.EmbeddingModel
}

func NewEmbeddingGateway(model llm.EmbeddingModel) *EmbeddingGateway {
	return &EmbeddingGateway{model: model}
}

// Available reports whether an embedding provider is configured.
func (g *EmbeddingGateway) Available() bool {
	return g != nil && g.model != nil
}

// EmbedUserProfile embeds the profile plus optional training context.
func (g *EmbeddingGateway) EmbedUserProfile(ctx context.Context, profile *domain.UserProfile, tctx *domain.TrainingContext) ([]float32, error) {
	if !g.Available() {
		return nil, apperr.EmbeddingUnavailable("no embedding provider configured")
	}
	return g.embed(ctx, renderProfileText(profile, tctx))
}

// EmbedProduct embeds one catalog product for indexing.
func (g *EmbeddingGateway) EmbedProduct(ctx context.Context, p *domain.CandidateProduct) ([]float32, error) {
	if !g.Available() {
		return nil, apperr.EmbeddingUnavailable("no embedding provider configured")
	}
	return g.embed(ctx, renderProductText(p))
}

func (g *EmbeddingGateway) embed(ctx context.Context, text string) ([]float32, error) {
	// Truncate on runes so accented text is never cut mid sequence.
	if len(text) > maxEmbedInputChars {
		if runes := []rune(text); len(runes) > maxEmbedInputChars {
			text = string(runes[:maxEmbedInputChars])
		}
	}
	vec, err := g.model.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, apperr.EmbeddingProviderError(g.model.Name(), fmt.Errorf("empty vector"))
	}
	return vec, nil
}

// renderProfileText flattens a profile into the fixed field order shared
// with product texts. Field order is part of the vector contract; changing
// it invalidates every stored embedding.
func renderProfileText(profile *domain.UserProfile, tctx *domain.TrainingContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perfil de usuario deportivo.\n")
	fmt.Fprintf(&b, "Edad: %d\n", profile.Age)
	fmt.Fprintf(&b, "Peso: %.1f kg\n", profile.WeightKg)
	fmt.Fprintf(&b, "Altura: %.1f cm\n", profile.HeightCm)
	fmt.Fprintf(&b, "Genero: %s\n", profile.Gender)
	fmt.Fprintf(&b, "Nivel de actividad: %s\n", profile.ActivityLevel)
	fmt.Fprintf(&b, "Frecuencia de entrenamiento: %s\n", profile.TrainingFrequency)
	fmt.Fprintf(&b, "Objetivo principal: %s\n", profile.PrimaryGoal)
	fmt.Fprintf(&b, "Nivel de sudoracion: %s\n", profile.SweatLevel)
	fmt.Fprintf(&b, "Tolerancia a la cafeina: %s\n", profile.CaffeineTolerance)
	fmt.Fprintf(&b, "Restriccion dietetica: %s\n", profile.DietaryRestriction)
	if tctx != nil {
		fmt.Fprintf(&b, "Entrenamiento: tipo %s, intensidad %s, duracion %d minutos.\n",
			tctx.Type, tctx.Intensity, tctx.DurationMinutes)
		if tctx.Weather != "" {
			fmt.Fprintf(&b, "Clima: %s\n", tctx.Weather)
		}
		if tctx.Notes != "" {
			fmt.Fprintf(&b, "Notas: %s\n", tctx.Notes)
		}
	}
	return b.String()
}

// renderProductText flattens a catalog product for indexing.
func renderProductText(p *domain.CandidateProduct) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Producto de nutricion deportiva.\n")
	fmt.Fprintf(&b, "Nombre: %s\n", p.Name)
	fmt.Fprintf(&b, "Categoria: %s\n", p.Category)
	fmt.Fprintf(&b, "Tipo: %s\n", p.Type)
	fmt.Fprintf(&b, "Descripcion: %s\n", p.Description)
	fmt.Fprintf(&b, "Uso recomendado: %s\n", p.UsageRecommendation)
	if len(p.Attributes) > 0 {
		fmt.Fprintf(&b, "Atributos: %s\n", strings.Join(p.Attributes, ", "))
	}
	fmt.Fprintf(&b, "Proteina: %.1f g. Carbohidratos: %.1f g. Calorias: %.0f kcal. Cafeina: %.0f mg.\n",
		p.Nutrition.ProteinG, p.Nutrition.CarbsG, p.Nutrition.EnergyKcal, p.Nutrition.CaffeineMg)
	return b.String()
}
