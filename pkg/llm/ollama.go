// Package llm wraps the Ollama chat API behind the two call shapes the
// engine needs: free-text generation and schema-constrained structured
// generation. Requests share a process-wide token-bucket rate limit.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"golang.org/x/time/rate"
)

// Client is an Ollama-backed language model client.
type Client struct {
	api          *api.Client
	chatModel    string
	extractModel string
	limiter      *rate.Limiter
}

// Params configures a Client.
type Params struct {
	BaseURL      string
	ChatModel    string
	ExtractModel string
	// RequestsPerSecond bounds outgoing generation requests. Zero disables
	// the limiter.
	RequestsPerSecond float64
	Burst             int
}

// New creates a Client. BaseURL must be a valid URL, e.g. http://localhost:11434.
func New(p Params) (*Client, error) {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("llm: parse base url: %w", err)
	}

	var limiter *rate.Limiter
	if p.RequestsPerSecond > 0 {
		burst := p.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(p.RequestsPerSecond), burst)
	}

	return &Client{
		api:          api.NewClient(u, http.DefaultClient),
		chatModel:    p.ChatModel,
		extractModel: p.ExtractModel,
		limiter:      limiter,
	}, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) chat(ctx context.Context, req *api.ChatRequest) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	var content string
	err := c.api.Chat(ctx, req, func(cr api.ChatResponse) error {
		content += cr.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("llm: chat: %w", err)
	}
	return content, nil
}

// Generate sends a single-turn prompt and returns the assistant text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	return c.chat(ctx, &api.ChatRequest{
		Model: c.chatModel,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.3},
	})
}

// GenerateStructured sends a prompt constrained to the JSON schema of out
// and unmarshals the response into out. The schema is derived from out's
// type via reflection.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, out any) error {
	schema, err := json.Marshal(GenerateSchema(out))
	if err != nil {
		return fmt.Errorf("llm: marshal schema: %w", err)
	}

	stream := false
	content, err := c.chat(ctx, &api.ChatRequest{
		Model: c.extractModel,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Format:  json.RawMessage(schema),
		Options: map[string]any{"temperature": 0.0},
	})
	if err != nil {
		return err
	}
	return UnmarshalFlexible(content, out)
}
