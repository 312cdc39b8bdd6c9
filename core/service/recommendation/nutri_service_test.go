package recommendation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nutri_server/config"
	"nutri_server/core/agent/llm"
	"nutri_server/core/domain"
	"nutri_server/pkg/apperr"
)

// =============================================================================
// Port mocks
// =============================================================================

type mockProfileRepo struct {
	profile *domain.UserProfile
	err     error
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, _ int64) (*domain.UserProfile, error) {
	return m.profile, m.err
}

func (m *mockProfileRepo) Upsert(_ context.Context, _ *domain.UserProfile) error { return nil }

type mockRecRepo struct {
	mu      sync.Mutex
	created []*domain.Recommendation
	err     error
}

func (m *mockRecRepo) Create(_ context.Context, rec *domain.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, rec)
	return m.err
}

func (m *mockRecRepo) ListByUser(_ context.Context, _ int64, _ int) ([]*domain.Recommendation, error) {
	return nil, nil
}

func (m *mockRecRepo) ListBySession(_ context.Context, _, _ int64) ([]*domain.Recommendation, error) {
	return nil, nil
}

type mockFeedbackRepo struct {
	negative []int64
	positive []int64
	err      error
}

func (m *mockFeedbackRepo) Upsert(_ context.Context, _ *domain.Feedback) error { return nil }

func (m *mockFeedbackRepo) NegativeProductIDs(_ context.Context, _ int64) ([]int64, error) {
	return m.negative, m.err
}

func (m *mockFeedbackRepo) PositiveProductIDs(_ context.Context, _ int64) ([]int64, error) {
	return m.positive, m.err
}

type mockTrainingRepo struct {
	session *domain.TrainingSession
	err     error
}

func (m *mockTrainingRepo) Create(_ context.Context, s *domain.TrainingSession) (*domain.TrainingSession, error) {
	return s, m.err
}

func (m *mockTrainingRepo) GetByID(_ context.Context, _ int64) (*domain.TrainingSession, error) {
	return m.session, m.err
}

func (m *mockTrainingRepo) ListByUser(_ context.Context, _ int64) ([]*domain.TrainingSession, error) {
	return nil, nil
}

func (m *mockTrainingRepo) Update(_ context.Context, _ *domain.TrainingSession) error { return m.err }

func (m *mockTrainingRepo) Delete(_ context.Context, _ int64) error { return m.err }

type serviceChatStub struct {
	response string
	err      error
}

func (s *serviceChatStub) CompleteJSON(_ context.Context, _, _ string) (string, error) {
	return s.response, s.err
}

func (s *serviceChatStub) Name() string { return "stub" }

// =============================================================================
// Fixtures
// =============================================================================

func testConfig() *config.Config {
	return &config.Config{
		LLMTimeout:       5 * time.Second,
		EmbedTimeout:     time.Second,
		FeedbackCacheTTL: time.Minute,
	}
}

func serviceProfile() *domain.UserProfile {
	return &domain.UserProfile{
		UserID:             7,
		Age:                30,
		PrimaryGoal:        domain.GoalEndurance,
		ActivityLevel:      domain.ActivityActive,
		DietaryRestriction: domain.DietNone,
		CaffeineTolerance:  domain.CaffeineHigh,
		SweatLevel:         domain.SweatMedium,
	}
}

func serviceCandidates() []*domain.CandidateProduct {
	return []*domain.CandidateProduct{
		nutritionProduct(1, "Beta Fuel 80", "Energía", 0, 80, 320),
		nutritionProduct(2, "GO Isotonic Energy Gel", "Geles", 0, 22, 87),
		nutritionProduct(3, "REGO Rapid Recovery", "Recuperación", 20, 23, 170),
	}
}

func newTestService(chat *serviceChatStub, retriever Retriever, profiles *mockProfileRepo, recs *mockRecRepo, feedback *mockFeedbackRepo, sessions *mockTrainingRepo) *Service {
	var recommender *llm.Recommender
	if chat != nil {
		recommender = llm.NewRecommender(chat)
	}
	return NewService(ServiceDeps{
		Config:      testConfig(),
		Retriever:   retriever,
		Recommender: recommender,
		Profiles:    profiles,
		Recs:        recs,
		Feedback:    feedback,
		Sessions:    sessions,
	})
}

const validModelResponse = `{
  "recommendations": [
    {"product_id": 1, "reasoning": "Carga de carbohidratos previa.", "consumption_timing": "antes", "timing_minutes": 30, "quantity": "1 porción", "instructions": "Mezclar con agua."},
    {"product_id": 2, "reasoning": "Energía sostenida.", "consumption_timing": "durante", "timing_minutes": 0, "quantity": "1 gel", "instructions": "Tomar cada 45 minutos."},
    {"product_id": 3, "reasoning": "Recuperación muscular.", "consumption_timing": "despues", "timing_minutes": 30, "quantity": "1 porción", "instructions": "Tomar tras finalizar."}
  ],
  "llm_overall_reasoning": "Estrategia de resistencia completa."
}`

// =============================================================================
// Generate
// =============================================================================

func TestGenerateMissingProfile(t *testing.T) {
	svc := newTestService(nil, &stubRetriever{}, &mockProfileRepo{}, &mockRecRepo{}, &mockFeedbackRepo{}, &mockTrainingRepo{})

	_, err := svc.Generate(context.Background(), 7, nil)
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateForeignSessionRejected(t *testing.T) {
	sessions := &mockTrainingRepo{session: &domain.TrainingSession{SessionID: 11, UserID: 99}}
	svc := newTestService(nil, &stubRetriever{}, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, &mockFeedbackRepo{}, sessions)

	sessionID := int64(11)
	_, err := svc.Generate(context.Background(), 7, &sessionID)
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found for foreign session, got %v", err)
	}
}

func TestGenerateLLMPath(t *testing.T) {
	chat := &serviceChatStub{response: validModelResponse}
	recs := &mockRecRepo{}
	retriever := &stubRetriever{candidates: serviceCandidates()}
	svc := newTestService(chat, retriever, &mockProfileRepo{profile: serviceProfile()}, recs, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceLLM {
		t.Errorf("expected llm source, got %s", result.Source)
	}
	if len(result.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(result.Recommendations))
	}
	if result.Recommendations[0].ProductName != "Beta Fuel 80" {
		t.Errorf("expected joined product name, got %q", result.Recommendations[0].ProductName)
	}
	if result.Recommendations[0].Timing != domain.TimingBefore {
		t.Errorf("expected canonical timing, got %s", result.Recommendations[0].Timing)
	}
	if len(recs.created) != 3 {
		t.Errorf("expected 3 persisted rows, got %d", len(recs.created))
	}
}

func TestGenerateFallbackOnModelError(t *testing.T) {
	chat := &serviceChatStub{err: errors.New("provider timeout")}
	retriever := &stubRetriever{candidates: serviceCandidates()}
	svc := newTestService(chat, retriever, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("ranking failures must not fail the request: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("expected fallback source, got %s", result.Source)
	}
	if len(result.Recommendations) != 3 {
		t.Errorf("expected 3 fallback recommendations, got %d", len(result.Recommendations))
	}
}

func TestGenerateFallbackOnContractViolation(t *testing.T) {
	chat := &serviceChatStub{response: "I cannot produce JSON today."}
	retriever := &stubRetriever{candidates: serviceCandidates()}
	svc := newTestService(chat, retriever, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("expected fallback on contract violation, got %s", result.Source)
	}
}

func TestGenerateFallbackWhenAllIDsUnknown(t *testing.T) {
	// Every recommended id is outside the candidate set; after pruning the
	// ranking is empty and the deterministic path takes over.
	chat := &serviceChatStub{response: `{
		"recommendations": [{"product_id": 999, "reasoning": "x", "consumption_timing": "antes"}],
		"llm_overall_reasoning": "y"
	}`}
	retriever := &stubRetriever{candidates: serviceCandidates()}
	svc := newTestService(chat, retriever, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("expected fallback when all ids were hallucinated, got %s", result.Source)
	}
	for _, rec := range result.Recommendations {
		if rec.ProductID == 999 {
			t.Error("hallucinated product id survived pruning")
		}
	}
}

func TestGenerateWithoutRecommenderUsesFallback(t *testing.T) {
	retriever := &stubRetriever{candidates: serviceCandidates()}
	svc := newTestService(nil, retriever, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Source != SourceFallback {
		t.Errorf("expected fallback source without a model, got %s", result.Source)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	svc := newTestService(nil, &stubRetriever{}, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("an empty candidate set is not an error: %v", err)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %d", len(result.Recommendations))
	}
	if result.OverallReasoning == "" {
		t.Error("expected an explanatory overall reasoning")
	}
}

func TestGenerateFeedbackFailureDegrades(t *testing.T) {
	feedback := &mockFeedbackRepo{err: errors.New("redis down")}
	retriever := &stubRetriever{candidates: serviceCandidates()}
	svc := newTestService(nil, retriever, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, feedback, &mockTrainingRepo{})

	if _, err := svc.Generate(context.Background(), 7, nil); err != nil {
		t.Fatalf("feedback is advisory, a failed read must not fail the pass: %v", err)
	}
}

func TestGenerateRetrieverErrorSurfaces(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("database down")}
	svc := newTestService(nil, retriever, &mockProfileRepo{profile: serviceProfile()}, &mockRecRepo{}, &mockFeedbackRepo{}, &mockTrainingRepo{})

	if _, err := svc.Generate(context.Background(), 7, nil); err == nil {
		t.Error("expected the retrieval error to surface")
	}
}

func TestGenerateTruncatesReasoning(t *testing.T) {
	longText := strings.Repeat("a", 600)
	chat := &serviceChatStub{response: `{
		"recommendations": [{"product_id": 1, "reasoning": "` + longText + `", "consumption_timing": "antes", "quantity": "1", "instructions": "x"}],
		"llm_overall_reasoning": "` + longText + `"
	}`}
	retriever := &stubRetriever{candidates: serviceCandidates()}
	recs := &mockRecRepo{}
	svc := newTestService(chat, retriever, &mockProfileRepo{profile: serviceProfile()}, recs, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := result.Recommendations[0]
	if n := len([]rune(rec.Reasoning)); n != maxItemReasoningRunes {
		t.Errorf("expected item reasoning truncated to %d runes, got %d", maxItemReasoningRunes, n)
	}
	if !strings.HasSuffix(rec.Reasoning, "...") {
		t.Error("expected truncated reasoning to end with an ellipsis")
	}
	if n := len([]rune(result.OverallReasoning)); n != maxOverallReasoningRunes {
		t.Errorf("expected overall reasoning truncated to %d runes, got %d", maxOverallReasoningRunes, n)
	}
}

func TestGeneratePersistFailureDoesNotFail(t *testing.T) {
	recs := &mockRecRepo{err: errors.New("disk full")}
	chat := &serviceChatStub{response: validModelResponse}
	retriever := &stubRetriever{candidates: serviceCandidates()}
	svc := newTestService(chat, retriever, &mockProfileRepo{profile: serviceProfile()}, recs, &mockFeedbackRepo{}, &mockTrainingRepo{})

	result, err := svc.Generate(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("persistence is best effort, got %v", err)
	}
	if len(result.Recommendations) != 3 {
		t.Errorf("expected the result delivered despite write failures, got %d rows", len(result.Recommendations))
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("corto", 250); got != "corto" {
		t.Errorf("short strings must pass through, got %q", got)
	}
	long := strings.Repeat("ñ", 300)
	got := truncateRunes(long, 250)
	if n := len([]rune(got)); n != 250 {
		t.Errorf("expected 250 runes, got %d", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis suffix")
	}
}
