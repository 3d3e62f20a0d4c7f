package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	t.Run("empty API key", func(t *testing.T) {
		_, err := NewClient("anthropic", ClientConfig{})
		assert.ErrorIs(t, err, ErrEmptyAPIKey)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewClient("mystery", ClientConfig{APIKey: "key"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("registered providers resolve", func(t *testing.T) {
		for _, provider := range []string{"anthropic", "openai", "google"} {
			_, ok := providerFactories[provider]
			assert.True(t, ok, provider)
		}
	})
}

func TestClientMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CoreLLM) CoreLLM {
			return taggedLLM{name: name, next: next, order: &order}
		}
	}

	RegisterProviderFactory("test-ordered", func(ClientConfig) (CoreLLM, error) {
		return &scriptedLLM{model: "test-model"}, nil
	})

	client, err := NewClient("test-ordered", ClientConfig{
		APIKey:     "key",
		Middleware: []Middleware{tag("outer"), tag("inner")},
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order, "first middleware wraps outermost")
	assert.Equal(t, "test-model", client.GetModel())
}

type taggedLLM struct {
	name  string
	next  CoreLLM
	order *[]string
}

func (m taggedLLM) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	*m.order = append(*m.order, m.name)
	return m.next.DoRequest(ctx, prompt, opts)
}

func (m taggedLLM) GetModel() string  { return m.next.GetModel() }
func (m taggedLLM) SetModel(s string) { m.next.SetModel(s) }

func TestClientEstimateTokens(t *testing.T) {
	client := &Client{core: &scriptedLLM{}}

	n, err := client.EstimateTokens("a prompt of some length")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}
