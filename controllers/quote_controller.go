package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mymandir/mandir-api/providers"
	"github.com/mymandir/mandir-api/utils"
)

// QuoteController serves the daily spiritual quote, generated once per day
// and cached until local midnight.
type QuoteController struct {
	quotes *providers.QuoteService
	ai     *providers.AIChain
	loc    *time.Location
}

// NewQuoteController creates a new controller instance.
func NewQuoteController(quotes *providers.QuoteService, ai *providers.AIChain, loc *time.Location) *QuoteController {
	return &QuoteController{quotes: quotes, ai: ai, loc: loc}
}

// Daily handles GET /quote/daily.
func (q *QuoteController) Daily(ctx *gin.Context) {
	sel, ok := q.ai.Select(ctx.Query("provider"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40070, "unknown provider")
		return
	}

	now := time.Now().In(q.loc)
	cacheKey := "quote:daily:" + now.Format("2006-01-02")
	if _, pinned := sel.Pinned(); !pinned {
		var cached providers.Quote
		if utils.CacheGetJSON(cacheKey, &cached) {
			utils.Success(ctx, cached)
			return
		}
	}

	out := q.quotes.Daily(ctx.Request.Context(), sel, now)
	if _, pinned := sel.Pinned(); !pinned && out.Provider != providers.MockProvider {
		utils.CacheSetJSON(cacheKey, out, utils.UntilMidnight(now, q.loc))
	}
	utils.Success(ctx, out)
}
