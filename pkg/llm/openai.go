package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAI implements Client for OpenAI chat models.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
	retry     RetryConfig
}

// OpenAIOption configures an OpenAI client.
type OpenAIOption func(*OpenAI)

// WithModel sets the chat model identifier.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// WithMaxTokens caps the completion token count.
func WithMaxTokens(n int64) OpenAIOption {
	return func(o *OpenAI) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithRetry sets the retry policy for provider calls.
func WithRetry(cfg RetryConfig) OpenAIOption {
	return func(o *OpenAI) {
		o.retry = cfg
	}
}

// NewOpenAI creates an OpenAI-backed client.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	o := &OpenAI{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:     DefaultModel,
		maxTokens: 1000,
		retry:     DefaultRetry,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Complete sends the prompts to the configured chat model and returns the
// response text. Transient provider failures are retried per the configured
// retry policy before the error is surfaced.
func (o *OpenAI) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return withRetry(ctx, o.retry, func(ctx context.Context) (string, error) {
		resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(o.model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(userPrompt),
			},
			MaxCompletionTokens: openai.Int(o.maxTokens),
		})
		if err != nil {
			return "", fmt.Errorf("openai API error: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}

		return resp.Choices[0].Message.Content, nil
	})
}
