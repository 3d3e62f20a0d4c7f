package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIDefaultModel is the default OpenAI model.
const OpenAIDefaultModel = "gpt-4o-mini"

func init() {
	RegisterProviderFactory("openai", newOpenAIProvider)
}

// openAIProvider implements the CoreLLM interface for OpenAI's chat
// completion API.
type openAIProvider struct {
	client *openai.Client
	model  string
}

func newOpenAIProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = OpenAIDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &openAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// DoRequest sends a chat completion request to the OpenAI API and
// returns the first choice's content.
func (p *openAIProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	req := openai.ChatCompletionRequest{
		Model:     optionString(opts, "model", p.model),
		MaxTokens: optionInt(opts, "max_tokens", DefaultMaxTokens),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if system := optionString(opts, "system", ""); system != "" {
		req.Messages = append([]openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
		}, req.Messages...)
	}
	if temp, ok := optionFloat(opts, "temperature"); ok {
		req.Temperature = float32(temp)
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		status := 0
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.HTTPStatusCode
		}
		return "", 0, 0, wrapProviderError(p.model, "chat.completion", status, err)
	}

	if len(resp.Choices) == 0 {
		return "", 0, 0, ErrNoResponseChoice
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	tokensIn := resp.Usage.PromptTokens
	if tokensIn == 0 {
		tokensIn = estimateTokens(prompt)
	}
	tokensOut := resp.Usage.CompletionTokens
	if tokensOut == 0 {
		tokensOut = estimateTokens(content)
	}

	return content, tokensIn, tokensOut, nil
}

// GetModel returns the currently configured OpenAI model name.
func (p *openAIProvider) GetModel() string { return p.model }

// SetModel updates the OpenAI model for subsequent requests.
func (p *openAIProvider) SetModel(m string) { p.model = m }
