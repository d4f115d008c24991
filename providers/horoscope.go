package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/mymandir/mandir-api/config"
	"github.com/mymandir/mandir-api/utils"
)

// Horoscope is the normalized prediction every horoscope provider maps into.
// Fields a provider omits are filled with fixed defaults so clients always
// see the full shape.
type Horoscope struct {
	Sign          string `json:"sign"`
	Period        string `json:"period"`
	Date          string `json:"date"`
	Prediction    string `json:"prediction"`
	LuckyNumber   string `json:"lucky_number"`
	LuckyColor    string `json:"lucky_color"`
	Mood          string `json:"mood"`
	Compatibility string `json:"compatibility"`
	Provider      string `json:"provider"`
}

const (
	defaultMood          = "Positive"
	defaultCompatibility = "Good"
)

// Horoscope periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

var zodiacSigns = map[string]bool{
	"aries": true, "taurus": true, "gemini": true, "cancer": true,
	"leo": true, "virgo": true, "libra": true, "scorpio": true,
	"sagittarius": true, "capricorn": true, "aquarius": true, "pisces": true,
}

// ValidSign reports whether sign is one of the twelve zodiac signs.
func ValidSign(sign string) bool {
	return zodiacSigns[strings.ToLower(strings.TrimSpace(sign))]
}

// HoroscopeChain resolves daily/weekly/monthly predictions. Prokerala
// authenticates with an OAuth2 client-credentials token, the same way the
// Panchang chain does.
type HoroscopeChain struct {
	providers []Descriptor
	oauth     *clientcredentials.Config
	now       func() time.Time
}

// NewHoroscopeChain builds the default order: the two keyless free APIs
// first, paid Prokerala last.
func NewHoroscopeChain(cfg config.AppConfig) *HoroscopeChain {
	c := &HoroscopeChain{
		providers: []Descriptor{
			{Name: "horoscope-app", BaseURL: "https://horoscope-app-api.vercel.app", FreeTier: true},
			{Name: "aztro", BaseURL: "https://aztro.sameerkumar.website", FreeTier: true},
			{Name: "prokerala", BaseURL: "https://api.prokerala.com", APIKey: cfg.ProkeralaClientSecret, NeedsKey: true, CostPerRequest: 0.01},
		},
		now: time.Now,
	}
	if cfg.ProkeralaClientID != "" && cfg.ProkeralaClientSecret != "" {
		c.oauth = &clientcredentials.Config{
			ClientID:     cfg.ProkeralaClientID,
			ClientSecret: cfg.ProkeralaClientSecret,
			TokenURL:     "https://api.prokerala.com/token",
		}
	}
	return c
}

// NewHoroscopeChainWith builds a chain over an explicit provider list.
func NewHoroscopeChainWith(list []Descriptor, now func() time.Time) *HoroscopeChain {
	return &HoroscopeChain{providers: list, now: now}
}

// Providers exposes the descriptors for the inventory endpoint.
func (c *HoroscopeChain) Providers() []Descriptor {
	return c.providers
}

// Select validates a pin request against this chain's providers.
func (c *HoroscopeChain) Select(name string) (Selection, bool) {
	return Select(c.providers, name)
}

// Fetch resolves the prediction for a sign and period through the chain.
func (c *HoroscopeChain) Fetch(ctx context.Context, sel Selection, sign, period string) Horoscope {
	sign = strings.ToLower(strings.TrimSpace(sign))
	attempts := make([]Attempt[Horoscope], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		attempts = append(attempts, Attempt[Horoscope]{
			Provider: p,
			Fetch: func(ctx context.Context) (Horoscope, error) {
				return c.fetchHoroscope(ctx, p, sign, period)
			},
		})
	}
	out, name := Resolve(ctx, "horoscope-"+period, attempts, sel, func() Horoscope {
		return mockHoroscope(sign, period, c.now())
	})
	out.Provider = name
	return normalizeHoroscope(out, sign, period)
}

// normalizeHoroscope fills defaults for any field the provider omitted.
func normalizeHoroscope(h Horoscope, sign, period string) Horoscope {
	h.Sign = sign
	h.Period = period
	h.Prediction = utils.StripMarkup(h.Prediction)
	if h.Mood == "" {
		h.Mood = defaultMood
	}
	if h.Compatibility == "" {
		h.Compatibility = defaultCompatibility
	}
	if h.LuckyColor == "" {
		h.LuckyColor = "Saffron"
	}
	if h.LuckyNumber == "" {
		h.LuckyNumber = "7"
	}
	return h
}

func (c *HoroscopeChain) fetchHoroscope(ctx context.Context, p Descriptor, sign, period string) (Horoscope, error) {
	switch p.Name {
	case "horoscope-app":
		return fetchHoroscopeApp(ctx, p, sign, period)
	case "aztro":
		return fetchAztro(ctx, p, sign, period)
	case "prokerala":
		return c.fetchProkeralaHoroscope(ctx, p, sign, period)
	default:
		return Horoscope{}, fmt.Errorf("%w: unknown provider %s", ErrUnsupported, p.Name)
	}
}

type horoscopeAppResponse struct {
	Data struct {
		Date          string `json:"date"`
		HoroscopeData string `json:"horoscope_data"`
	} `json:"data"`
	Success bool `json:"success"`
}

func fetchHoroscopeApp(ctx context.Context, p Descriptor, sign, period string) (Horoscope, error) {
	var path string
	switch period {
	case PeriodDaily:
		path = "/api/v1/get-horoscope/daily?day=TODAY&sign=" + url.QueryEscape(sign)
	case PeriodWeekly:
		path = "/api/v1/get-horoscope/weekly?sign=" + url.QueryEscape(sign)
	case PeriodMonthly:
		path = "/api/v1/get-horoscope/monthly?sign=" + url.QueryEscape(sign)
	default:
		return Horoscope{}, fmt.Errorf("%w: period %s", ErrUnsupported, period)
	}

	var resp horoscopeAppResponse
	if err := getJSON(ctx, p.BaseURL+path, nil, &resp); err != nil {
		return Horoscope{}, err
	}
	if strings.TrimSpace(resp.Data.HoroscopeData) == "" {
		return Horoscope{}, fmt.Errorf("%w: empty horoscope_data", ErrUnavailable)
	}
	return Horoscope{
		Date:       resp.Data.Date,
		Prediction: resp.Data.HoroscopeData,
	}, nil
}

type aztroResponse struct {
	CurrentDate   string `json:"current_date"`
	Description   string `json:"description"`
	LuckyNumber   string `json:"lucky_number"`
	Color         string `json:"color"`
	Mood          string `json:"mood"`
	Compatibility string `json:"compatibility"`
}

// fetchAztro serves daily predictions only; weekly/monthly requests skip to
// the next provider.
func fetchAztro(ctx context.Context, p Descriptor, sign, period string) (Horoscope, error) {
	if period != PeriodDaily {
		return Horoscope{}, fmt.Errorf("%w: aztro is daily-only", ErrUnsupported)
	}
	var resp aztroResponse
	u := fmt.Sprintf("%s/?sign=%s&day=today", p.BaseURL, url.QueryEscape(sign))
	if err := postJSON(ctx, u, nil, nil, &resp); err != nil {
		return Horoscope{}, err
	}
	if strings.TrimSpace(resp.Description) == "" {
		return Horoscope{}, fmt.Errorf("%w: empty description", ErrUnavailable)
	}
	return Horoscope{
		Date:          resp.CurrentDate,
		Prediction:    resp.Description,
		LuckyNumber:   resp.LuckyNumber,
		LuckyColor:    resp.Color,
		Mood:          resp.Mood,
		Compatibility: resp.Compatibility,
	}, nil
}

type prokeralaHoroscopeResponse struct {
	Data struct {
		DailyPrediction struct {
			Prediction string `json:"prediction"`
		} `json:"daily_prediction"`
	} `json:"data"`
}

func (c *HoroscopeChain) fetchProkeralaHoroscope(ctx context.Context, p Descriptor, sign, period string) (Horoscope, error) {
	if period != PeriodDaily {
		return Horoscope{}, fmt.Errorf("%w: prokerala horoscope is daily-only here", ErrUnsupported)
	}
	if c.oauth == nil {
		return Horoscope{}, ErrUnconfigured
	}
	tok, err := c.oauth.Token(ctx)
	if err != nil {
		return Horoscope{}, fmt.Errorf("%w: token: %v", ErrUnavailable, err)
	}
	u := fmt.Sprintf("%s/v2/horoscope/daily?sign=%s", p.BaseURL, url.QueryEscape(sign))
	var resp prokeralaHoroscopeResponse
	err = getJSON(ctx, u, map[string]string{"Authorization": "Bearer " + tok.AccessToken}, &resp)
	if err != nil {
		return Horoscope{}, err
	}
	if strings.TrimSpace(resp.Data.DailyPrediction.Prediction) == "" {
		return Horoscope{}, fmt.Errorf("%w: empty prediction", ErrUnavailable)
	}
	return Horoscope{Prediction: resp.Data.DailyPrediction.Prediction}, nil
}
