package feedback

import (
	"context"
	"errors"
	"testing"

	"nutri_server/core/domain"
	"nutri_server/pkg/apperr"
)

type mockRepo struct {
	upserted *domain.Feedback
	err      error
}

func (m *mockRepo) Upsert(_ context.Context, fb *domain.Feedback) error {
	m.upserted = fb
	return m.err
}

func (m *mockRepo) NegativeProductIDs(_ context.Context, _ int64) ([]int64, error) { return nil, nil }

func (m *mockRepo) PositiveProductIDs(_ context.Context, _ int64) ([]int64, error) { return nil, nil }

type mockInvalidator struct {
	userIDs []int64
}

func (m *mockInvalidator) InvalidateFeedbackCache(_ context.Context, userID int64) {
	m.userIDs = append(m.userIDs, userID)
}

func TestSubmitNormalizesSentiment(t *testing.T) {
	repo := &mockRepo{}
	inv := &mockInvalidator{}
	svc := NewService(repo, inv)

	fb, err := svc.Submit(context.Background(), 7, 42, "negativo", "demasiado dulce")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Sentiment != domain.SentimentNegative {
		t.Errorf("expected canonical negative sentiment, got %s", fb.Sentiment)
	}
	if repo.upserted == nil || repo.upserted.ProductID != 42 {
		t.Error("expected the feedback row upserted")
	}
	if len(inv.userIDs) != 1 || inv.userIDs[0] != 7 {
		t.Errorf("expected the cached sets invalidated for user 7, got %v", inv.userIDs)
	}
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)

	if _, err := svc.Submit(context.Background(), 7, 0, "positive", ""); !apperr.IsCode(err, apperr.CodeInvalidInput) {
		t.Errorf("expected invalid input for product id 0, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), 7, 42, "meh", ""); !apperr.IsCode(err, apperr.CodeInvalidInput) {
		t.Errorf("expected invalid input for unknown sentiment, got %v", err)
	}
}

func TestSubmitRepositoryError(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	inv := &mockInvalidator{}
	svc := NewService(repo, inv)

	if _, err := svc.Submit(context.Background(), 7, 42, "positive", ""); err == nil {
		t.Error("expected the repository error to surface")
	}
	if len(inv.userIDs) != 0 {
		t.Error("no invalidation should happen after a failed write")
	}
}
