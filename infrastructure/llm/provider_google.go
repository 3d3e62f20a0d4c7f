package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GoogleDefaultModel is the default model for the Google provider.
const GoogleDefaultModel = "gemini-2.0-flash"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements the CoreLLM interface for Google's Gemini
// API. Gemini has no separate system role, so a system option is
// prepended to the user prompt.
type googleProvider struct {
	client *genai.Client
	model  string
}

func newGoogleProvider(config ClientConfig) (CoreLLM, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Google client: %w", err)
	}

	return &googleProvider{client: client, model: model}, nil
}

// DoRequest sends a generate-content request to the Gemini API and
// returns the response text.
func (p *googleProvider) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	model := optionString(opts, "model", p.model)

	finalPrompt := prompt
	if system := optionString(opts, "system", ""); system != "" {
		finalPrompt = fmt.Sprintf("System: %s\n\nUser: %s", system, prompt)
	}
	contents := []*genai.Content{genai.NewContentFromText(finalPrompt, genai.RoleUser)}

	genConfig := &genai.GenerateContentConfig{}
	if maxTokens := optionInt(opts, "max_tokens", DefaultMaxTokens); maxTokens > 0 {
		genConfig.MaxOutputTokens = int32(maxTokens)
	}
	if temp, ok := optionFloat(opts, "temperature"); ok {
		genConfig.Temperature = genai.Ptr(float32(temp))
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return "", 0, 0, wrapProviderError(p.model, "generate_content", 0, err)
	}

	content := resp.Text()
	if content == "" {
		return "", 0, 0, ErrEmptyResponse
	}

	tokensIn := estimateTokens(finalPrompt)
	tokensOut := estimateTokens(content)
	if resp.UsageMetadata != nil {
		if resp.UsageMetadata.PromptTokenCount > 0 {
			tokensIn = int(resp.UsageMetadata.PromptTokenCount)
		}
		if resp.UsageMetadata.CandidatesTokenCount > 0 {
			tokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
		}
	}

	return content, tokensIn, tokensOut, nil
}

// GetModel returns the currently configured Gemini model name.
func (p *googleProvider) GetModel() string { return p.model }

// SetModel updates the Gemini model for subsequent requests.
func (p *googleProvider) SetModel(m string) { p.model = m }
