package rag

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

type captureEmbeddingModel struct {
	input string
}

func (m *captureEmbeddingModel) Embed(_ context.Context, text string) ([]float32, error) {
	m.input = text
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *captureEmbeddingModel) Name() string { return "capture" }

func TestEmbedTruncatesOnRunes(t *testing.T) {
	model := &captureEmbeddingModel{}
	gateway := NewEmbeddingGateway(model)

	long := strings.Repeat("í", maxEmbedInputChars+500)
	if _, err := gateway.embed(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !utf8.ValidString(model.input) {
		t.Error("expected valid UTF-8 after truncation")
	}
	if got := utf8.RuneCountInString(model.input); got != maxEmbedInputChars {
		t.Errorf("expected %d runes, got %d", maxEmbedInputChars, got)
	}
}

func TestEmbedKeepsShortMultibyteTextWhole(t *testing.T) {
	model := &captureEmbeddingModel{}
	gateway := NewEmbeddingGateway(model)

	// Byte length exceeds the bound but rune length does not.
	text := strings.Repeat("í", maxEmbedInputChars-100)
	if _, err := gateway.embed(context.Background(), text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.input != text {
		t.Errorf("expected the text untouched, got %d runes", utf8.RuneCountInString(model.input))
	}
}
