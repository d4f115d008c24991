package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mymandir/mandir-api/providers"
	"github.com/mymandir/mandir-api/utils"
)

// PanchangController serves the Vedic calendar for a date, cached per
// (date, coordinates) until local midnight.
type PanchangController struct {
	chain *providers.PanchangChain
	loc   *time.Location
}

// NewPanchangController creates a new controller instance.
func NewPanchangController(chain *providers.PanchangChain, loc *time.Location) *PanchangController {
	return &PanchangController{chain: chain, loc: loc}
}

// Get handles GET /panchang?date=YYYY-MM-DD&lat=..&lon=..
func (p *PanchangController) Get(ctx *gin.Context) {
	now := time.Now().In(p.loc)

	date := now
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, p.loc)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40050, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	lat, lon := providers.DefaultLatitude, providers.DefaultLongitude
	if raw := ctx.Query("lat"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < -90 || v > 90 {
			utils.Error(ctx, http.StatusBadRequest, 40051, "invalid latitude")
			return
		}
		lat = v
	}
	if raw := ctx.Query("lon"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < -180 || v > 180 {
			utils.Error(ctx, http.StatusBadRequest, 40052, "invalid longitude")
			return
		}
		lon = v
	}

	sel, ok := p.chain.Select(ctx.Query("provider"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40053, "unknown provider")
		return
	}

	cacheKey := fmt.Sprintf("panchang:%s:%.2f:%.2f", date.Format("2006-01-02"), lat, lon)
	if _, pinned := sel.Pinned(); !pinned {
		var cached providers.Panchang
		if utils.CacheGetJSON(cacheKey, &cached) {
			utils.Success(ctx, cached)
			return
		}
	}

	out := p.chain.Fetch(ctx.Request.Context(), sel, date, lat, lon)
	if _, pinned := sel.Pinned(); !pinned && out.Provider != providers.MockProvider {
		utils.CacheSetJSON(cacheKey, out, utils.UntilMidnight(now, p.loc))
	}
	utils.Success(ctx, out)
}
