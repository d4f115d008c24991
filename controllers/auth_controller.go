package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/mymandir/mandir-api/config"
	"github.com/mymandir/mandir-api/middleware"
	"github.com/mymandir/mandir-api/models"
	"github.com/mymandir/mandir-api/utils"
)

const tokenLifetime = 30 * 24 * time.Hour

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

type registerRequest struct {
	Username   string `json:"username" binding:"required,min=2,max=64"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
	ZodiacSign string `json:"zodiac_sign"`
}

// Register creates a local account and returns a session token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid registration payload")
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check existing account")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to process password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Provider:     "local",
		ZodiacSign:   strings.ToLower(req.ZodiacSign),
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create account")
		return
	}

	a.respondWithToken(ctx, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a local account.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid login payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	a.respondWithToken(ctx, user)
}

type googleLoginRequest struct {
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirect_uri"`
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleLogin exchanges the authorization code the mobile app obtained and
// signs the user in, creating the account on first use. The browser leg of
// the flow happens entirely on the device.
func (a *AuthController) GoogleLogin(ctx *gin.Context) {
	cfg := config.Get()
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "google sign-in not configured")
		return
	}

	var req googleLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid google login payload")
		return
	}

	oc := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  req.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}

	tok, err := oc.Exchange(ctx.Request.Context(), req.Code)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "google code exchange failed")
		return
	}

	httpReq, _ := http.NewRequestWithContext(ctx.Request.Context(), http.MethodGet,
		"https://www.googleapis.com/oauth2/v2/userinfo", nil)
	httpReq.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50201, "failed to fetch google profile")
		return
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" {
		utils.Error(ctx, http.StatusBadGateway, 50202, "invalid google profile response")
		return
	}

	var user models.User
	err = a.db.Where("provider = ? AND provider_id = ?", "google", info.ID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Username:   info.Name,
			Email:      strings.ToLower(info.Email),
			Provider:   "google",
			ProviderID: info.ID,
			AvatarURL:  info.Picture,
		}
		if err := a.db.Create(&user).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to create account")
			return
		}
	} else if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to load account")
		return
	}

	a.respondWithToken(ctx, user)
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40004, "missing bearer token")
		return
	}
	token := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(token)
	if err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(token, claims.ExpiresAt.Time)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to load user")
		return
	}

	utils.Success(ctx, user)
}

func (a *AuthController) respondWithToken(ctx *gin.Context, user models.User) {
	token, err := utils.GenerateToken(user.ID, user.Username, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to issue token")
		return
	}
	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}
