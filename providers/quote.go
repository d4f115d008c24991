package providers

import (
	"context"
	"strings"
	"time"

	"github.com/mymandir/mandir-api/utils"
)

// Quote is the daily spiritual quote shown on the home screen.
type Quote struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Provider string `json:"provider"`
}

// QuoteService produces one quote per day through the AI chain, falling back
// to the curated pool keyed by day of year.
type QuoteService struct {
	ai *AIChain
}

// NewQuoteService wraps an AI chain.
func NewQuoteService(ai *AIChain) *QuoteService {
	return &QuoteService{ai: ai}
}

const quotePrompt = `Give one short spiritual quote from Hindu scripture or a revered Indian saint.
Format exactly as: <quote text> -- <author>. Nothing else.`

// Daily returns the quote for the given day.
func (s *QuoteService) Daily(ctx context.Context, sel Selection, day time.Time) Quote {
	out := s.ai.Generate(ctx, sel, quotePrompt)
	if out.Provider == MockProvider {
		return mockQuote(day)
	}

	text, author := splitQuote(utils.StripMarkup(out.Text))
	if text == "" {
		return mockQuote(day)
	}
	return Quote{Text: text, Author: author, Provider: out.Provider}
}

func splitQuote(raw string) (text, author string) {
	raw = strings.TrimSpace(raw)
	if idx := strings.LastIndex(raw, "--"); idx > 0 {
		text = strings.TrimSpace(raw[:idx])
		author = strings.TrimSpace(raw[idx+2:])
	} else {
		text = raw
		author = "Unknown"
	}
	text = strings.Trim(text, `"“”`)
	return text, author
}
