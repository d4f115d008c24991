package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Shloka is a Sanskrit verse matched to an emotion, with transliteration and
// plain-language meaning.
type Shloka struct {
	Emotion         string `json:"emotion"`
	Sanskrit        string `json:"sanskrit"`
	Transliteration string `json:"transliteration"`
	Meaning         string `json:"meaning"`
	Reference       string `json:"reference,omitempty"`
	Provider        string `json:"provider"`
}

// ShlokaService generates an emotion-matched shloka through the AI chain.
// The Sanskrit text is load-bearing: a generation that omits it falls back
// wholly to the curated table for that emotion.
type ShlokaService struct {
	ai *AIChain
}

// NewShlokaService wraps an AI chain.
func NewShlokaService(ai *AIChain) *ShlokaService {
	return &ShlokaService{ai: ai}
}

const shlokaPromptFmt = `Select one authentic Sanskrit shloka for someone feeling "%s".
Respond with JSON only, no prose, using exactly these keys:
{"sanskrit": "...", "transliteration": "...", "meaning": "...", "reference": "..."}`

// Generate returns a shloka for the emotion.
func (s *ShlokaService) Generate(ctx context.Context, sel Selection, emotion string) Shloka {
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	out := s.ai.Generate(ctx, sel, fmt.Sprintf(shlokaPromptFmt, emotion))
	if out.Provider == MockProvider {
		return mockShloka(emotion)
	}

	parsed, err := parseShlokaJSON(out.Text)
	if err != nil || strings.TrimSpace(parsed.Sanskrit) == "" {
		logWarnf("shloka generation from %s unusable (%v), using curated fallback", out.Provider, err)
		return mockShloka(emotion)
	}
	parsed.Emotion = emotion
	parsed.Provider = out.Provider
	return parsed
}

// parseShlokaJSON tolerates models wrapping the JSON object in prose or
// markdown fences.
func parseShlokaJSON(text string) (Shloka, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Shloka{}, fmt.Errorf("no JSON object in response")
	}
	var out Shloka
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return Shloka{}, err
	}
	return out, nil
}
