package llm

import (
	"context"
	"errors"

	"github.com/arbiterhq/arbiter/internal/ports"
)

// Common errors returned by the LLM client and providers.
var (
	// ErrEmptyAPIKey indicates that an API key was required but not provided.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")

	// ErrEmptyResponse indicates that the provider returned an empty
	// response body.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrNoResponseChoice indicates that the provider's response
	// contained no valid choices.
	ErrNoResponseChoice = errors.New("no response choices returned")
)

// classifyStatus maps an HTTP status code from a provider onto the shared
// infrastructure sentinels so retry logic can treat all providers
// uniformly.
func classifyStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ports.ErrAuthenticationFailed
	case status == 429:
		return ports.ErrRateLimited
	case status >= 500:
		return ports.ErrServiceUnavailable
	default:
		return nil
	}
}

// wrapProviderError normalizes a provider failure into a ports.LLMError,
// folding in context cancellation and the status classification.
func wrapProviderError(model, operation string, status int, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ports.NewLLMError(model, operation, ports.ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return ports.NewLLMError(model, operation, err)
	}
	if sentinel := classifyStatus(status); sentinel != nil {
		return ports.NewLLMError(model, operation, sentinel)
	}
	return ports.NewLLMError(model, operation, err)
}

// isRetryable reports whether an error is a transient provider failure.
func isRetryable(err error) bool {
	var llmErr *ports.LLMError
	if errors.As(err, &llmErr) {
		return llmErr.IsRetryable()
	}
	return false
}
