package rag

import (
	"math"
	"testing"

	"nutri_server/core/domain"
)

func TestCosineSimilaritySelf(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8}
	got := CosineSimilarity(v, v)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected self similarity 1.0, got %f", got)
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 4}
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("expected cosine similarity to be symmetric")
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	got := CosineSimilarity(a, b)
	if math.Abs(got) > 1e-9 {
		t.Errorf("expected 0 for orthogonal vectors, got %f", got)
	}
}

func TestCosineSimilarityDegenerate(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"zero magnitude", []float32{0, 0, 0}, []float32{1, 2, 3}},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		if got := CosineSimilarity(tt.a, tt.b); got != 0 {
			t.Errorf("%s: expected 0, got %f", tt.name, got)
		}
	}
}

func TestRankBySimilarityOrdering(t *testing.T) {
	products := []*domain.CandidateProduct{
		{ProductID: 1, Name: "A"},
		{ProductID: 2, Name: "B"},
		{ProductID: 3, Name: "C"},
	}
	embeddings := []*domain.ProductEmbedding{
		{ProductID: 1, Vector: []float32{1, 0}},
		{ProductID: 2, Vector: []float32{0, 1}},
		{ProductID: 3, Vector: []float32{0.7, 0.7}},
	}
	query := []float32{1, 0}

	scored := RankBySimilarity(query, products, embeddings, 0)
	if len(scored) != 3 {
		t.Fatalf("expected 3 scored candidates, got %d", len(scored))
	}
	if scored[0].Product.ProductID != 1 {
		t.Errorf("expected product 1 first, got %d", scored[0].Product.ProductID)
	}
	if scored[1].Product.ProductID != 3 {
		t.Errorf("expected product 3 second, got %d", scored[1].Product.ProductID)
	}
	if scored[2].Product.ProductID != 2 {
		t.Errorf("expected product 2 last, got %d", scored[2].Product.ProductID)
	}
}

func TestRankBySimilarityTopK(t *testing.T) {
	products := []*domain.CandidateProduct{
		{ProductID: 1}, {ProductID: 2}, {ProductID: 3},
	}
	embeddings := []*domain.ProductEmbedding{
		{ProductID: 1, Vector: []float32{1, 0}},
		{ProductID: 2, Vector: []float32{0.9, 0.1}},
		{ProductID: 3, Vector: []float32{0, 1}},
	}

	scored := RankBySimilarity([]float32{1, 0}, products, embeddings, 2)
	if len(scored) != 2 {
		t.Fatalf("expected topK=2 to cap result, got %d", len(scored))
	}
}

func TestRankBySimilaritySkipsMissingEmbeddings(t *testing.T) {
	products := []*domain.CandidateProduct{
		{ProductID: 1}, {ProductID: 2},
	}
	embeddings := []*domain.ProductEmbedding{
		{ProductID: 2, Vector: []float32{1, 0}},
	}

	scored := RankBySimilarity([]float32{1, 0}, products, embeddings, 0)
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored candidate, got %d", len(scored))
	}
	if scored[0].Product.ProductID != 2 {
		t.Errorf("expected product 2, got %d", scored[0].Product.ProductID)
	}
}

func TestRankBySimilarityTieBreakByProductID(t *testing.T) {
	products := []*domain.CandidateProduct{
		{ProductID: 9}, {ProductID: 4},
	}
	embeddings := []*domain.ProductEmbedding{
		{ProductID: 9, Vector: []float32{1, 0}},
		{ProductID: 4, Vector: []float32{1, 0}},
	}

	scored := RankBySimilarity([]float32{1, 0}, products, embeddings, 0)
	if scored[0].Product.ProductID != 4 {
		t.Errorf("expected equal scores to order by ascending product id, got %d first", scored[0].Product.ProductID)
	}
}

func TestRenderProfileTextIncludesTrainingContext(t *testing.T) {
	profile := &domain.UserProfile{
		UserID: 1, Age: 30, WeightKg: 70, HeightCm: 175,
		Gender: domain.GenderMale, ActivityLevel: domain.ActivityActive,
		TrainingFrequency: domain.FrequencyMedium, PrimaryGoal: domain.GoalEndurance,
		SweatLevel: domain.SweatHigh, CaffeineTolerance: domain.CaffeineMedium,
		DietaryRestriction: domain.DietNone,
	}
	tctx := &domain.TrainingContext{Type: "ciclismo", Intensity: "alta", DurationMinutes: 90}

	withCtx := renderProfileText(profile, tctx)
	withoutCtx := renderProfileText(profile, nil)
	if withCtx == withoutCtx {
		t.Error("expected training context to change the rendered text")
	}
}
