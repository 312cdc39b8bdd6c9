// Package llm wraps the generative-model and embedding providers behind
// small interfaces so pipelines can be tested without live credentials.
package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"nutri_server/config"
	"nutri_server/pkg/apperr"
)

// ChatModel produces a JSON completion for a system/user prompt pair.
type ChatModel interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// EmbeddingModel converts text into a fixed-length vector. The dimension
// is provider-defined and consistent within one provider.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// NewChatModel builds the configured chat provider, or nil when no
// provider is configured. A nil model means the caller must use the
// deterministic fallback without attempting a call.
func NewChatModel(cfg *config.Config) ChatModel {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil
		}
		return withChatBreaker(NewOpenAIClient(cfg))
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil
		}
		return withChatBreaker(NewGeminiClient(cfg))
	}
	return nil
}

// NewEmbeddingModel builds the configured embedding provider, or nil when
// no credential is configured (vector retrieval then degrades to SQL mode).
func NewEmbeddingModel(cfg *config.Config) EmbeddingModel {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil
		}
		return withEmbedBreaker(NewOpenAIClient(cfg))
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil
		}
		return withEmbedBreaker(NewGeminiClient(cfg))
	}
	return nil
}

// =============================================================================
// Circuit breakers
//
// Repeated provider faults open the breaker so pipelines fail fast into
// their documented fallbacks instead of stacking timed-out calls.
// =============================================================================

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

type breakerChatModel struct {
	inner ChatModel
	cb    *gobreaker.CircuitBreaker
}

func withChatBreaker(inner ChatModel) ChatModel {
	return &breakerChatModel{inner: inner, cb: newBreaker(inner.Name() + "-chat")}
}

func (b *breakerChatModel) Name() string { return b.inner.Name() }

func (b *breakerChatModel) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.CompleteJSON(ctx, systemPrompt, userPrompt)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return "", apperr.LLMProviderError(b.inner.Name(), err)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

type breakerEmbeddingModel struct {
	inner EmbeddingModel
	cb    *gobreaker.CircuitBreaker
}

func withEmbedBreaker(inner EmbeddingModel) EmbeddingModel {
	return &breakerEmbeddingModel{inner: inner, cb: newBreaker(inner.Name() + "-embed")}
}

func (b *breakerEmbeddingModel) Name() string { return b.inner.Name() }

func (b *breakerEmbeddingModel) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Embed(ctx, text)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, apperr.EmbeddingProviderError(b.inner.Name(), err)
	}
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}
