package profile

import (
	"context"
	"errors"
	"testing"

	"nutri_server/core/domain"
	"nutri_server/pkg/apperr"
)

type mockRepo struct {
	profile  *domain.UserProfile
	err      error
	upserted *domain.UserProfile
}

func (m *mockRepo) GetByUserID(_ context.Context, _ int64) (*domain.UserProfile, error) {
	return m.profile, m.err
}

func (m *mockRepo) Upsert(_ context.Context, p *domain.UserProfile) error {
	m.upserted = p
	return m.err
}

type mockEnqueuer struct {
	userIDs []int64
}

func (m *mockEnqueuer) EnqueueProfileGeneration(userID int64) {
	m.userIDs = append(m.userIDs, userID)
}

func validRaw() *domain.RawProfile {
	return &domain.RawProfile{
		Age: 30, WeightKg: 72, HeightCm: 178,
		Gender: "male", ActivityLevel: "active",
		TrainingFrequency: "3-4", PrimaryGoal: "resistencia",
	}
}

func TestGetMissingProfile(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)
	_, err := svc.Get(context.Background(), 7)
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveNormalizesAndEnqueues(t *testing.T) {
	repo := &mockRepo{}
	enq := &mockEnqueuer{}
	svc := NewService(repo, enq)

	saved, err := svc.Save(context.Background(), 7, validRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.PrimaryGoal != domain.GoalEndurance {
		t.Errorf("expected spanish goal normalized, got %s", saved.PrimaryGoal)
	}
	if repo.upserted == nil || repo.upserted.UserID != 7 {
		t.Error("expected the normalized profile upserted")
	}
	if len(enq.userIDs) != 1 || enq.userIDs[0] != 7 {
		t.Errorf("expected one generation pass scheduled for user 7, got %v", enq.userIDs)
	}
}

func TestSaveValidation(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)
	tests := []struct {
		name   string
		mutate func(*domain.RawProfile)
	}{
		{"zero age", func(r *domain.RawProfile) { r.Age = 0 }},
		{"age too high", func(r *domain.RawProfile) { r.Age = 150 }},
		{"zero weight", func(r *domain.RawProfile) { r.WeightKg = 0 }},
		{"negative height", func(r *domain.RawProfile) { r.HeightCm = -1 }},
	}
	for _, tt := range tests {
		raw := validRaw()
		tt.mutate(raw)
		if _, err := svc.Save(context.Background(), 7, raw); !apperr.IsCode(err, apperr.CodeInvalidInput) {
			t.Errorf("%s: expected invalid input, got %v", tt.name, err)
		}
	}
}

func TestSaveRepositoryError(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	enq := &mockEnqueuer{}
	svc := NewService(repo, enq)

	if _, err := svc.Save(context.Background(), 7, validRaw()); err == nil {
		t.Error("expected the repository error to surface")
	}
	if len(enq.userIDs) != 0 {
		t.Error("no generation pass should be scheduled after a failed save")
	}
}
