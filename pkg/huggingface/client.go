package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dskvich/trip-planner/pkg/prompt"
)

const (
	DefaultURL          = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.1"
	DefaultMaxNewTokens = 500
)

type client struct {
	url          string
	token        string
	maxNewTokens int
	hc           *http.Client
}

type Option func(*client)

func WithURL(url string) Option {
	return func(c *client) { c.url = url }
}

func WithMaxNewTokens(n int) Option {
	return func(c *client) { c.maxNewTokens = n }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.hc = hc }
}

// NewClient does not validate the token: a missing one shows up as an
// authorization failure on the first call.
func NewClient(token string, opts ...Option) *client {
	c := &client{
		url:          DefaultURL,
		token:        token,
		maxNewTokens: DefaultMaxNewTokens,
		hc:           &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Name() string { return "huggingface" }

// Complete sends a single inference request and returns the generated text
// that follows the instruction block.
func (c *client) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	resp, err := c.sendInferenceRequest(ctx, &inferenceRequest{
		Inputs:     prompt.Instruct(p),
		Parameters: parameters{MaxNewTokens: c.maxNewTokens},
	})
	if err != nil {
		return "", err
	}

	if len(resp) == 0 {
		return "", fmt.Errorf("no generations in response")
	}

	return prompt.Answer(resp[0].GeneratedText), nil
}

func (c *client) sendInferenceRequest(ctx context.Context, request *inferenceRequest) (inferenceResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	var inference inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&inference); err != nil {
		return nil, fmt.Errorf("decoding response data: %w", err)
	}

	return inference, nil
}
