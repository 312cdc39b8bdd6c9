package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Consumption timing
// =============================================================================

// ConsumptionTiming is the recommended phase relative to a training session.
type ConsumptionTiming string

const (
	TimingBefore      ConsumptionTiming = "before"
	TimingDuring      ConsumptionTiming = "during"
	TimingAfter       ConsumptionTiming = "after"
	TimingDaily       ConsumptionTiming = "daily"
	TimingUnspecified ConsumptionTiming = "unspecified"
)

// timingSynonyms covers the Spanish wire tokens of the model contract
// alongside the canonical English values.
var timingSynonyms = map[string]ConsumptionTiming{
	"before": TimingBefore, "antes": TimingBefore,
	"during": TimingDuring, "durante": TimingDuring,
	"after": TimingAfter, "despues": TimingAfter, "después": TimingAfter,
	"daily": TimingDaily, "diario": TimingDaily,
}

// NormalizeTiming maps a wire timing token to its canonical value.
// Unknown tokens resolve to unspecified.
func NormalizeTiming(s string) ConsumptionTiming {
	if v, ok := timingSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return TimingUnspecified
}

// =============================================================================
// Recommendations
// =============================================================================

// Recommendation is one persisted product recommendation. Rows are
// append-only; only explicit user feedback updates them afterwards.
type Recommendation struct {
	RecommendationID int64             `json:"recommendation_id" db:"recommendation_id"`
	UserID           int64             `json:"user_id" db:"user_id"`
	SessionID        *int64            `json:"session_id,omitempty" db:"session_id"`
	ProductID        int64             `json:"product_id" db:"product_id"`
	RecommendedAt    time.Time         `json:"recommended_at" db:"recommended_at"`
	Timing           ConsumptionTiming `json:"consumption_timing" db:"consumption_timing"`
	TimingMinutes    *int              `json:"timing_minutes,omitempty" db:"timing_minutes"`
	Quantity         string            `json:"quantity" db:"recommended_quantity"`
	Instructions     string            `json:"instructions" db:"consumption_instructions"`
	Reasoning        string            `json:"reasoning" db:"reasoning"`
	OverallReasoning string            `json:"overall_reasoning" db:"overall_reasoning"`

	// Joined product fields for listings.
	ProductName        string `json:"product_name,omitempty" db:"product_name"`
	ProductDescription string `json:"product_description,omitempty" db:"product_description"`
	ProductImageURL    string `json:"product_image_url,omitempty" db:"product_image_url"`
}

// RankedProduct is one entry of a ranking pass (LLM or fallback) before
// persistence: a candidate plus its assigned consumption details.
type RankedProduct struct {
	ProductID     int64             `json:"product_id"`
	Reasoning     string            `json:"reasoning"`
	Timing        ConsumptionTiming `json:"consumption_timing"`
	TimingMinutes *int              `json:"timing_minutes,omitempty"`
	Quantity      string            `json:"quantity"`
	Instructions  string            `json:"instructions"`
}

// RankingResult is the outcome of one ranking pass over a candidate set.
type RankingResult struct {
	Recommendations  []RankedProduct `json:"recommendations"`
	OverallReasoning string          `json:"overall_reasoning"`
}

// =============================================================================
// Feedback
// =============================================================================

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

var sentimentSynonyms = map[string]Sentiment{
	"positive": SentimentPositive, "positivo": SentimentPositive,
	"negative": SentimentNegative, "negativo": SentimentNegative,
}

// NormalizeSentiment maps a wire sentiment token to its canonical value.
// The bool result is false for unrecognized tokens.
func NormalizeSentiment(s string) (Sentiment, bool) {
	v, ok := sentimentSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// Feedback is one user verdict on a product. One row per (user, product);
// the latest write overwrites. Negative sentiment excludes the product from
// future candidate sets; positive sentiment raises its priority.
type Feedback struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Sentiment Sentiment `json:"sentiment" db:"sentiment"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
