package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicDefaultModel is the default Anthropic model.
const AnthropicDefaultModel = "claude-3-5-sonnet-20241022"

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider implements the CoreLLM interface for Anthropic's
// Claude API.
type anthropicProvider struct {
	client anthropic.Client
	model  string
}

func newAnthropicProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &anthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// DoRequest sends a message request to the Claude API and returns the
// concatenated text blocks of the response.
func (p *anthropicProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(optionString(opts, "model", p.model)),
		MaxTokens: int64(optionInt(opts, "max_tokens", DefaultMaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if temp, ok := optionFloat(opts, "temperature"); ok {
		params.Temperature = anthropic.Float(temp)
	}
	if system := optionString(opts, "system", ""); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", 0, 0, wrapProviderError(p.model, "messages.new", status, err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(content.Text)
		}
	}
	response := text.String()
	if response == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	tokensIn := int(message.Usage.InputTokens)
	if tokensIn == 0 {
		tokensIn = estimateTokens(prompt)
	}
	tokensOut := int(message.Usage.OutputTokens)
	if tokensOut == 0 {
		tokensOut = estimateTokens(response)
	}

	return response, tokensIn, tokensOut, nil
}

// GetModel returns the currently configured Anthropic model name.
func (p *anthropicProvider) GetModel() string { return p.model }

// SetModel updates the Anthropic model for subsequent requests.
func (p *anthropicProvider) SetModel(m string) { p.model = m }
