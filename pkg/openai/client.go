package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dskvich/trip-planner/pkg/prompt"
)

const DefaultModel = "gpt-4o-mini"

type client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

type Option func(*openai.ClientConfig)

func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig) { c.BaseURL = url }
}

func NewClient(token, model string, maxTokens int, opts ...Option) (*client, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	cfg := openai.DefaultConfig(token)
	for _, opt := range opts {
		opt(&cfg)
	}

	if model == "" {
		model = DefaultModel
	}

	return &client{
		api:       openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (c *client) Name() string { return "openai" }

func (c *client) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: userContent(p)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func userContent(p prompt.Prompt) string {
	if p.Context == "" {
		return p.Request
	}
	return fmt.Sprintf("Context: %s\n\nUser request: %s", p.Context, p.Request)
}
