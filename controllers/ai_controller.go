package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mymandir/mandir-api/providers"
	"github.com/mymandir/mandir-api/utils"
)

const maxPromptLength = 2000

// AIController serves AI text generation and shloka endpoints.
type AIController struct {
	ai      *providers.AIChain
	shlokas *providers.ShlokaService
}

// NewAIController creates a new controller instance.
func NewAIController(ai *providers.AIChain, shlokas *providers.ShlokaService) *AIController {
	return &AIController{ai: ai, shlokas: shlokas}
}

type generateRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Provider string `json:"provider"`
}

// Generate handles POST /ai/generate.
func (a *AIController) Generate(ctx *gin.Context) {
	var req generateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "prompt is required")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" || len(prompt) > maxPromptLength {
		utils.Error(ctx, http.StatusBadRequest, 40061, "prompt is empty or too long")
		return
	}

	sel, ok := a.ai.Select(req.Provider)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40062, "unknown provider")
		return
	}

	out := a.ai.Generate(ctx.Request.Context(), sel, prompt)
	out.Text = utils.StripMarkup(out.Text)
	utils.Success(ctx, out)
}

type shlokaRequest struct {
	Emotion  string `json:"emotion" binding:"required"`
	Provider string `json:"provider"`
}

// Shloka handles POST /ai/shloka.
func (a *AIController) Shloka(ctx *gin.Context) {
	var req shlokaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "emotion is required")
		return
	}

	sel, ok := a.ai.Select(req.Provider)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40062, "unknown provider")
		return
	}

	utils.Success(ctx, a.shlokas.Generate(ctx.Request.Context(), sel, req.Emotion))
}
