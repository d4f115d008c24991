package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/mymandir/mandir-api/config"
)

// Panchang is the normalized Vedic calendar response for one date.
type Panchang struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Tithi     string `json:"tithi"`
	Nakshatra string `json:"nakshatra"`
	Yoga      string `json:"yoga"`
	Karana    string `json:"karana"`
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
	Provider  string `json:"provider"`
}

// Default coordinates when the client sends none: Ujjain, the traditional
// reference meridian for Hindu timekeeping.
const (
	DefaultLatitude  = 23.1765
	DefaultLongitude = 75.7885
)

// PanchangChain resolves the day's Panchang. Prokerala is the only live
// source; the astronomical-table mock is the terminal fallback.
type PanchangChain struct {
	providers []Descriptor
	oauth     *clientcredentials.Config
}

// NewPanchangChain builds the chain from configuration. Prokerala uses an
// OAuth2 client-credentials token, refreshed automatically by the token
// source.
func NewPanchangChain(cfg config.AppConfig) *PanchangChain {
	c := &PanchangChain{
		providers: []Descriptor{
			{Name: "prokerala", BaseURL: "https://api.prokerala.com", APIKey: cfg.ProkeralaClientSecret, NeedsKey: true, CostPerRequest: 0.01},
		},
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

// Providers exposes the descriptors for the inventory endpoint.
func (c *PanchangChain) Providers() []Descriptor {
	return c.providers
}

// Select validates a pin request against this chain's providers.
func (c *PanchangChain) Select(name string) (Selection, bool) {
	return Select(c.providers, name)
}

// Fetch resolves the Panchang for a date and coordinates.
func (c *PanchangChain) Fetch(ctx context.Context, sel Selection, date time.Time, lat, lon float64) Panchang {
	attempts := make([]Attempt[Panchang], 0, len(c.providers))
	for _, p := range c.providers {
		p := p
		attempts = append(attempts, Attempt[Panchang]{
			Provider: p,
			Fetch: func(ctx context.Context) (Panchang, error) {
				return c.fetchProkerala(ctx, p, date, lat, lon)
			},
		})
	}
	out, name := Resolve(ctx, "panchang", attempts, sel, func() Panchang {
		return mockPanchang(date)
	})
	out.Provider = name
	if out.Date == "" {
		out.Date = date.Format("2006-01-02")
	}
	if out.Weekday == "" {
		out.Weekday = date.Weekday().String()
	}
	return out
}

type prokeralaPanchangResponse struct {
	Data struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
		Tithi   []struct {
			Name string `json:"name"`
		} `json:"tithi"`
		Nakshatra []struct {
			Name string `json:"name"`
		} `json:"nakshatra"`
		Yoga []struct {
			Name string `json:"name"`
		} `json:"yoga"`
		Karana []struct {
			Name string `json:"name"`
		} `json:"karana"`
	} `json:"data"`
}

func (c *PanchangChain) fetchProkerala(ctx context.Context, p Descriptor, date time.Time, lat, lon float64) (Panchang, error) {
	if c.oauth == nil {
		return Panchang{}, ErrUnconfigured
	}

	tok, err := c.oauth.Token(ctx)
	if err != nil {
		return Panchang{}, fmt.Errorf("%w: token: %v", ErrUnavailable, err)
	}

	u := fmt.Sprintf("%s/v2/astrology/panchang?ayanamsa=1&coordinates=%s&datetime=%s",
		p.BaseURL,
		url.QueryEscape(fmt.Sprintf("%.4f,%.4f", lat, lon)),
		url.QueryEscape(date.Format(time.RFC3339)),
	)

	var resp prokeralaPanchangResponse
	err = getJSON(ctx, u, map[string]string{"Authorization": "Bearer " + tok.AccessToken}, &resp)
	if err != nil {
		return Panchang{}, err
	}

	out := Panchang{
		Date:    date.Format("2006-01-02"),
		Weekday: date.Weekday().String(),
		Sunrise: resp.Data.Sunrise,
		Sunset:  resp.Data.Sunset,
	}
	if len(resp.Data.Tithi) > 0 {
		out.Tithi = resp.Data.Tithi[0].Name
	}
	if len(resp.Data.Nakshatra) > 0 {
		out.Nakshatra = resp.Data.Nakshatra[0].Name
	}
	if len(resp.Data.Yoga) > 0 {
		out.Yoga = resp.Data.Yoga[0].Name
	}
	if len(resp.Data.Karana) > 0 {
		out.Karana = resp.Data.Karana[0].Name
	}
	// Tithi is load-bearing; a response without it is useless to the client.
	if out.Tithi == "" {
		return Panchang{}, fmt.Errorf("%w: missing tithi", ErrUnavailable)
	}
	return out, nil
}
