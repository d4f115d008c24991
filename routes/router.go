package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mymandir/mandir-api/config"
	"github.com/mymandir/mandir-api/controllers"
	"github.com/mymandir/mandir-api/middleware"
	"github.com/mymandir/mandir-api/providers"
	"github.com/mymandir/mandir-api/services"
	"github.com/mymandir/mandir-api/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, loc *time.Location) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())

	// Access log goes to its own rolling file so request noise stays out of
	// the application log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	aiChain := providers.NewAIChain(cfg)
	horoscopeChain := providers.NewHoroscopeChain(cfg)
	panchangChain := providers.NewPanchangChain(cfg)
	shlokaService := providers.NewShlokaService(aiChain)
	quoteService := providers.NewQuoteService(aiChain)
	streakService := services.NewStreakService(db, loc)

	authController := controllers.NewAuthController(db)
	streakController := controllers.NewStreakController(streakService)
	horoscopeController := controllers.NewHoroscopeController(horoscopeChain, loc)
	panchangController := controllers.NewPanchangController(panchangChain, loc)
	aiController := controllers.NewAIController(aiChain, shlokaService)
	quoteController := controllers.NewQuoteController(quoteService, aiChain, loc)
	providerController := controllers.NewProviderController(aiChain, horoscopeChain, panchangChain)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/google", authController.GoogleLogin)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Content endpoints are public; the chains always answer, mock included.
	api.GET("/horoscope/daily", horoscopeController.Daily)
	api.GET("/horoscope/weekly", horoscopeController.Weekly)
	api.GET("/horoscope/monthly", horoscopeController.Monthly)
	api.GET("/panchang", panchangController.Get)
	api.GET("/quote/daily", quoteController.Daily)
	api.GET("/providers", providerController.List)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/streak/checkin", streakController.CheckIn)
	protected.GET("/streak/status", streakController.Status)
	protected.GET("/streak/achievements", streakController.Achievements)
	protected.POST("/ai/generate", aiController.Generate)
	protected.POST("/ai/shloka", aiController.Shloka)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
