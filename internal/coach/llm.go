// Package coach provides the optional AI trading coach.
package coach

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// LLMClient is the completion surface the coach needs.
type LLMClient interface {
	// CompleteWithSystem sends a prompt with a system message.
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}

// OpenAIClient implements LLMClient against any OpenAI-compatible chat
// completion endpoint.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	retry       RetryConfig
}

// ClientOption configures an OpenAIClient.
type ClientOption func(*OpenAIClient)

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) ClientOption {
	return func(c *OpenAIClient) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) ClientOption {
	return func(c *OpenAIClient) { c.temperature = t }
}

// WithRetry replaces the retry policy for transient API failures.
func WithRetry(cfg RetryConfig) ClientOption {
	return func(c *OpenAIClient) { c.retry = cfg }
}

// NewOpenAIClient creates a new client. An empty baseURL targets OpenAI.
func NewOpenAIClient(apiKey, baseURL, model string, opts ...ClientOption) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	c := &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		retry:  DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompleteWithSystem sends a prompt with system message to the LLM.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	resp, err := retry(ctx, c.retry, func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model %s", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}
