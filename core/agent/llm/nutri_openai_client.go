package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"nutri_server/config"
	"nutri_server/pkg/apperr"
)

// OpenAIClient implements ChatModel and EmbeddingModel on the OpenAI API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

const DefaultOpenAIModel = "gpt-4o-mini"

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	model := cfg.LLMModel
	if model == "" {
		model = DefaultOpenAIModel
	}
	maxTokens := cfg.LLMMaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}
	return &OpenAIClient{
		client:      openai.NewClient(cfg.OpenAIAPIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(cfg.LLMTemperature),
	}
}

func (c *OpenAIClient) Name() string { return "openai" }

// CompleteJSON requests a completion constrained to a JSON object.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", apperr.LLMProviderError(c.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.LLMContractViolation("empty completion", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.AdaEmbeddingV2,
		Input: []string{text},
	})
	if err != nil {
		return nil, apperr.EmbeddingProviderError(c.Name(), err)
	}

	if len(resp.Data) == 0 {
		return nil, apperr.EmbeddingProviderError(c.Name(), nil)
	}

	return resp.Data[0].Embedding, nil
}
