// Package llm provides a unified interface for the LLM providers used by
// the text analyzer's AI-likelihood probe, with middleware support for
// rate limiting and retries.
//
// Providers (Anthropic, OpenAI, Google Gemini) are abstracted behind the
// CoreLLM interface so cross-cutting concerns compose without touching
// provider code:
//
//	client, err := llm.NewClient("anthropic", llm.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:  "claude-3-5-sonnet-20241022",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(2, 4),
//	        llm.RetryMiddleware(3, 500*time.Millisecond, 10*time.Second),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/arbiterhq/arbiter/internal/ports"
)

// CoreLLM defines the minimal interface that LLM providers implement.
// Middleware wraps any conforming implementation.
type CoreLLM interface {
	// DoRequest sends a prompt to the provider and returns the response
	// text plus input and output token counts. The opts map carries
	// provider-specific settings such as temperature or max_tokens.
	DoRequest(ctx context.Context, prompt string, opts map[string]any) (response string, tokensIn, tokensOut int, err error)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel updates the model for subsequent requests.
	SetModel(model string)
}

// Middleware wraps a CoreLLM implementation to add cross-cutting
// functionality such as rate limiting or retries.
type Middleware func(CoreLLM) CoreLLM

// ClientConfig holds all configuration options for creating an LLM client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model specifies which model to use; empty selects the provider
	// default.
	Model string

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string

	// Timeout sets the maximum duration for individual requests.
	// Zero means no timeout.
	Timeout time.Duration

	// Middleware is applied in order, the first entry outermost.
	Middleware []Middleware
}

// providerFactory creates a provider-specific CoreLLM from configuration.
type providerFactory func(ClientConfig) (CoreLLM, error)

var providerFactories = map[string]providerFactory{}

// RegisterProviderFactory registers a provider under a name usable with
// NewClient. Called from provider init functions.
func RegisterProviderFactory(name string, factory providerFactory) {
	providerFactories[name] = factory
}

// Client implements ports.LLMClient by wrapping a provider CoreLLM with
// the configured middleware chain.
type Client struct {
	core CoreLLM
}

var _ ports.LLMClient = (*Client)(nil)

// NewClient assembles a provider and its middleware chain into a
// ready-to-use client.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", providerType, err)
	}

	// Apply middleware in reverse order so the first middleware is the
	// outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// Complete sends a prompt to the LLM and returns the response text.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	response, _, _, err := c.core.DoRequest(ctx, prompt, options)
	return response, err
}

// EstimateTokens returns an approximate token count for the given text
// using a character-based heuristic of roughly four characters per token.
func (c *Client) EstimateTokens(text string) (int, error) {
	return estimateTokens(text), nil
}

// GetModel returns the model name from the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }

func estimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// optionInt reads an int option with a default.
func optionInt(opts map[string]any, key string, fallback int) int {
	if v, ok := opts[key].(int); ok && v > 0 {
		return v
	}
	return fallback
}

// optionString reads a string option with a default.
func optionString(opts map[string]any, key, fallback string) string {
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// optionFloat reads a float64 option, reporting whether it was present.
func optionFloat(opts map[string]any, key string) (float64, bool) {
	v, ok := opts[key].(float64)
	return v, ok
}

// DefaultMaxTokens bounds response length when the caller does not set
// max_tokens explicitly.
const DefaultMaxTokens = 1000
