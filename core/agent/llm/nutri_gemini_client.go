package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"nutri_server/config"
	"nutri_server/pkg/apperr"
	"nutri_server/pkg/httputil"
)

const (
	geminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	geminiEmbeddingModel = "text-embedding-004" // 768 dimensions
)

// GeminiClient implements ChatModel and EmbeddingModel over the Gemini
// REST API. Gemini has no system role or enforced JSON mode here; the
// system prompt is prepended and the response may arrive fenced in a
// markdown code block, which the recommender strips before parsing.
type GeminiClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

func NewGeminiClient(cfg *config.Config) *GeminiClient {
	model := cfg.GeminiModel
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	maxTokens := cfg.LLMMaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}
	return &GeminiClient{
		httpClient:  httputil.NewClient(nil),
		apiKey:      cfg.GeminiAPIKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.LLMTemperature,
	}
}

func (c *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: systemPrompt + "\n\n" + userPrompt}}},
		},
	}
	reqBody.GenerationConfig.Temperature = c.temperature
	reqBody.GenerationConfig.MaxOutputTokens = c.maxTokens

	var resp geminiGenerateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiBaseURL, c.model, c.apiKey)
	if err := c.post(ctx, url, reqBody, &resp); err != nil {
		return "", apperr.LLMProviderError(c.Name(), err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apperr.LLMContractViolation("empty completion", nil)
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := geminiEmbedRequest{
		Model:   "models/" + geminiEmbeddingModel,
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	var resp geminiEmbedResponse
	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", geminiBaseURL, geminiEmbeddingModel, c.apiKey)
	if err := c.post(ctx, url, reqBody, &resp); err != nil {
		return nil, apperr.EmbeddingProviderError(c.Name(), err)
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, apperr.EmbeddingProviderError(c.Name(), nil)
	}

	return resp.Embedding.Values, nil
}

func (c *GeminiClient) post(ctx context.Context, url string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini api status %d: %s", resp.StatusCode, truncateBody(data))
	}

	return json.Unmarshal(data, dest)
}

func truncateBody(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max])
	}
	return string(data)
}
