// Package providers implements the fallback chains behind every external
// content source (AI text, shloka, horoscope, Panchang, quote). Each family
// walks an ordered provider list, free tiers first, normalizes the first
// success and otherwise terminates in a deterministic mock response.
package providers

import (
	"context"
	"errors"

	"github.com/mymandir/mandir-api/utils"
)

// MockProvider tags responses produced by the offline fallback path.
const MockProvider = "mock"

var (
	// ErrUnconfigured marks a provider skipped for a missing credential.
	ErrUnconfigured = errors.New("provider not configured")
	// ErrUnavailable marks a transport failure or non-2xx response.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrUnsupported marks a request shape the provider cannot serve
	// (e.g. a weekly horoscope from a daily-only API).
	ErrUnsupported = errors.New("request not supported by provider")
)

// Descriptor is the static configuration of one external provider. No
// runtime health state is tracked; ordering and credential presence are the
// only inputs to the chain.
type Descriptor struct {
	Name           string  `json:"name"`
	BaseURL        string  `json:"base_url"`
	APIKey         string  `json:"-"`
	NeedsKey       bool    `json:"needs_key"`
	FreeTier       bool    `json:"free_tier"`
	MonthlyQuota   int     `json:"monthly_quota"`
	CostPerRequest float64 `json:"cost_per_request"`
}

// Configured reports whether the provider can be attempted at all.
func (d Descriptor) Configured() bool {
	return !d.NeedsKey || d.APIKey != ""
}

// Selection optionally pins resolution to one named provider. The zero value
// means "walk the whole chain". Selections are plain values threaded through
// each call; nothing process-global remembers them.
type Selection struct {
	name string
}

// Pinned returns the pinned provider name, if any.
func (s Selection) Pinned() (string, bool) {
	return s.name, s.name != ""
}

// Select resolves a provider name against the list. Unknown names return
// false and the zero Selection, leaving resolution order unchanged.
func Select(list []Descriptor, name string) (Selection, bool) {
	if name == "" {
		return Selection{}, true
	}
	for _, d := range list {
		if d.Name == name {
			return Selection{name: name}, true
		}
	}
	return Selection{}, false
}

// Attempt is one provider's fetch-and-normalize step for a single request.
type Attempt[T any] struct {
	Provider Descriptor
	Fetch    func(ctx context.Context) (T, error)
}

// Resolve walks attempts in order and returns the first success together
// with the serving provider's name. Unconfigured providers are skipped,
// failures are logged and treated as "try next", and an exhausted list
// falls back to mock(). The mock path is unconditional, so Resolve never
// fails.
func Resolve[T any](ctx context.Context, family string, attempts []Attempt[T], sel Selection, mock func() T) (T, string) {
	pinned, hasPin := sel.Pinned()
	for _, a := range attempts {
		if hasPin && a.Provider.Name != pinned {
			continue
		}
		if !a.Provider.Configured() {
			logDebugf("provider %s skipped for %s: not configured", a.Provider.Name, family)
			continue
		}
		out, err := a.Fetch(ctx)
		if err != nil {
			logWarnf("provider %s failed for %s: %v", a.Provider.Name, family, err)
			continue
		}
		return out, a.Provider.Name
	}
	return mock(), MockProvider
}

func logDebugf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Debugf(format, args...)
	}
}

func logWarnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}
