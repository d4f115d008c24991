package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mymandir/mandir-api/providers"
	"github.com/mymandir/mandir-api/utils"
)

// HoroscopeController serves daily/weekly/monthly predictions through the
// provider chain, cached per (period, sign) until local midnight.
type HoroscopeController struct {
	chain *providers.HoroscopeChain
	loc   *time.Location
}

// NewHoroscopeController creates a new controller instance.
func NewHoroscopeController(chain *providers.HoroscopeChain, loc *time.Location) *HoroscopeController {
	return &HoroscopeController{chain: chain, loc: loc}
}

// Daily handles GET /horoscope/daily.
func (h *HoroscopeController) Daily(ctx *gin.Context) {
	h.serve(ctx, providers.PeriodDaily)
}

// Weekly handles GET /horoscope/weekly.
func (h *HoroscopeController) Weekly(ctx *gin.Context) {
	h.serve(ctx, providers.PeriodWeekly)
}

// Monthly handles GET /horoscope/monthly.
func (h *HoroscopeController) Monthly(ctx *gin.Context) {
	h.serve(ctx, providers.PeriodMonthly)
}

func (h *HoroscopeController) serve(ctx *gin.Context, period string) {
	sign := strings.ToLower(strings.TrimSpace(ctx.Query("sign")))
	if !providers.ValidSign(sign) {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid or missing zodiac sign")
		return
	}

	sel, ok := h.chain.Select(ctx.Query("provider"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40041, "unknown provider")
		return
	}

	now := time.Now().In(h.loc)
	cacheKey := fmt.Sprintf("horoscope:%s:%s:%s", period, sign, now.Format("2006-01-02"))
	if _, pinned := sel.Pinned(); !pinned {
		var cached providers.Horoscope
		if utils.CacheGetJSON(cacheKey, &cached) {
			utils.Success(ctx, cached)
			return
		}
	}

	out := h.chain.Fetch(ctx.Request.Context(), sel, sign, period)
	if _, pinned := sel.Pinned(); !pinned && out.Provider != providers.MockProvider {
		utils.CacheSetJSON(cacheKey, out, utils.UntilMidnight(now, h.loc))
	}
	utils.Success(ctx, out)
}
