package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymandir/mandir-api/config"
)

// AIText is the normalized AI-generation response every provider maps into.
type AIText struct {
	Text     string `json:"text"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider"`
}

const guidanceSystemPrompt = "You are a wise Hindu spiritual guide. Answer with warmth, " +
	"reference scriptures where natural, and keep responses under 200 words."

// AIChain resolves text generation across LLM providers, free tiers first,
// paid OpenAI last.
type AIChain struct {
	providers []Descriptor
}

// NewAIChain builds the default provider order from configuration.
func NewAIChain(cfg config.AppConfig) *AIChain {
	return &AIChain{providers: []Descriptor{
		{Name: "groq", BaseURL: "https://api.groq.com/openai/v1", APIKey: cfg.GroqAPIKey, NeedsKey: true, FreeTier: true, MonthlyQuota: 14400},
		{Name: "gemini", BaseURL: "https://generativelanguage.googleapis.com", APIKey: cfg.GeminiAPIKey, NeedsKey: true, FreeTier: true, MonthlyQuota: 45000},
		{Name: "openrouter", BaseURL: "https://openrouter.ai/api/v1", APIKey: cfg.OpenRouterAPIKey, NeedsKey: true, FreeTier: true, MonthlyQuota: 6000},
		{Name: "huggingface", BaseURL: "https://api-inference.huggingface.co", APIKey: cfg.HuggingFaceAPIKey, NeedsKey: true, FreeTier: true, MonthlyQuota: 9000},
		{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKey: cfg.OpenAIAPIKey, NeedsKey: true, FreeTier: false, CostPerRequest: 0.002},
	}}
}

// NewAIChainWith builds a chain over an explicit provider list.
func NewAIChainWith(list []Descriptor) *AIChain {
	return &AIChain{providers: list}
}

// Providers exposes the descriptors for the inventory endpoint.
func (c *AIChain) Providers() []Descriptor {
	return c.providers
}

// Select validates a pin request against this chain's providers.
func (c *AIChain) Select(name string) (Selection, bool) {
	return Select(c.providers, name)
}

// Generate resolves a prompt through the chain. Callers returning the text
// verbatim to clients sanitize it with utils.StripMarkup; structured
// consumers (shloka JSON) parse the raw text first.
func (c *AIChain) Generate(ctx context.Context, sel Selection, prompt string) AIText {
	attempts := make([]Attempt[AIText], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		attempts = append(attempts, Attempt[AIText]{
			Provider: p,
			Fetch: func(ctx context.Context) (AIText, error) {
				return fetchAIText(ctx, p, prompt)
			},
		})
	}
	out, name := Resolve(ctx, "ai-text", attempts, sel, func() AIText {
		return mockGuidance(prompt)
	})
	out.Provider = name
	return out
}

func fetchAIText(ctx context.Context, p Descriptor, prompt string) (AIText, error) {
	switch p.Name {
	case "groq":
		return fetchChatCompletion(ctx, p, "llama-3.1-8b-instant", prompt)
	case "openrouter":
		return fetchChatCompletion(ctx, p, "meta-llama/llama-3.1-8b-instruct:free", prompt)
	case "openai":
		return fetchChatCompletion(ctx, p, "gpt-4o-mini", prompt)
	case "gemini":
		return fetchGemini(ctx, p, prompt)
	case "huggingface":
		return fetchHuggingFace(ctx, p, prompt)
	default:
		return AIText{}, fmt.Errorf("%w: unknown provider %s", ErrUnsupported, p.Name)
	}
}

// chatCompletionResponse covers the OpenAI-compatible shape Groq, OpenRouter
// and OpenAI all return.
type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func fetchChatCompletion(ctx context.Context, p Descriptor, model, prompt string) (AIText, error) {
	body := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": guidanceSystemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens": 512,
	}
	var resp chatCompletionResponse
	err := postJSON(ctx, p.BaseURL+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + p.APIKey,
	}, body, &resp)
	if err != nil {
		return AIText{}, err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return AIText{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return AIText{Text: resp.Choices[0].Message.Content, Model: resp.Model}, nil
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func fetchGemini(ctx context.Context, p Descriptor, prompt string) (AIText, error) {
	url := fmt.Sprintf("%s/v1beta/models/gemini-1.5-flash:generateContent?key=%s", p.BaseURL, p.APIKey)
	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": guidanceSystemPrompt + "\n\n" + prompt}}},
		},
	}
	var resp geminiResponse
	if err := postJSON(ctx, url, nil, body, &resp); err != nil {
		return AIText{}, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return AIText{}, fmt.Errorf("%w: empty candidates", ErrUnavailable)
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return AIText{}, fmt.Errorf("%w: empty candidate text", ErrUnavailable)
	}
	return AIText{Text: text, Model: "gemini-1.5-flash"}, nil
}

func fetchHuggingFace(ctx context.Context, p Descriptor, prompt string) (AIText, error) {
	const model = "mistralai/Mistral-7B-Instruct-v0.2"
	var resp []struct {
		GeneratedText string `json:"generated_text"`
	}
	err := postJSON(ctx, p.BaseURL+"/models/"+model, map[string]string{
		"Authorization": "Bearer " + p.APIKey,
	}, map[string]string{"inputs": guidanceSystemPrompt + "\n\n" + prompt}, &resp)
	if err != nil {
		return AIText{}, err
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].GeneratedText) == "" {
		return AIText{}, fmt.Errorf("%w: empty generation", ErrUnavailable)
	}
	return AIText{Text: resp[0].GeneratedText, Model: model}, nil
}
