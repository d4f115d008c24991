package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/mymandir/mandir-api/providers"
	"github.com/mymandir/mandir-api/utils"
)

// ProviderController exposes the provider inventory so the client can grey
// out sources that are not configured on this deployment.
type ProviderController struct {
	ai        *providers.AIChain
	horoscope *providers.HoroscopeChain
	panchang  *providers.PanchangChain
}

// NewProviderController creates a new controller instance.
func NewProviderController(ai *providers.AIChain, horoscope *providers.HoroscopeChain, panchang *providers.PanchangChain) *ProviderController {
	return &ProviderController{ai: ai, horoscope: horoscope, panchang: panchang}
}

type providerView struct {
	Name           string  `json:"name"`
	FreeTier       bool    `json:"free_tier"`
	Configured     bool    `json:"configured"`
	MonthlyQuota   int     `json:"monthly_quota,omitempty"`
	CostPerRequest float64 `json:"cost_per_request,omitempty"`
}

// List handles GET /providers.
func (p *ProviderController) List(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"ai":        views(p.ai.Providers()),
		"horoscope": views(p.horoscope.Providers()),
		"panchang":  views(p.panchang.Providers()),
	})
}

func views(list []providers.Descriptor) []providerView {
	out := make([]providerView, 0, len(list))
	for _, d := range list {
		out = append(out, providerView{
			Name:           d.Name,
			FreeTier:       d.FreeTier,
			Configured:     d.Configured(),
			MonthlyQuota:   d.MonthlyQuota,
			CostPerRequest: d.CostPerRequest,
		})
	}
	return out
}
