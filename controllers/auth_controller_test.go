package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mymandir/mandir-api/middleware"
	"github.com/mymandir/mandir-api/models"
	"github.com/mymandir/mandir-api/utils"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	utils.SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { utils.SetRedisClient(nil) })

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	ctrl := NewAuthController(db)
	r := gin.New()
	auth := r.Group("/api/v1/auth")
	auth.POST("/register", ctrl.Register)
	auth.POST("/login", ctrl.Login)
	auth.POST("/logout", ctrl.Logout)
	auth.GET("/me", middleware.AuthRequired(), ctrl.Me)
	return r
}

func postJSONBody(t *testing.T, r *gin.Engine, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

type sessionData struct {
	Token string `json:"token"`
	User  struct {
		ID         uint   `json:"id"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		ZodiacSign string `json:"zodiac_sign"`
	} `json:"user"`
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newAuthRouter(t)

	w, env := postJSONBody(t, r, "/api/v1/auth/register", gin.H{
		"username":    "devotee",
		"email":       "Devotee@Example.com",
		"password":    "om-namah-shivaya",
		"zodiac_sign": "Leo",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var session sessionData
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "devotee@example.com", session.User.Email, "email is stored lowercased")
	assert.Equal(t, "leo", session.User.ZodiacSign)

	// Duplicate email is a conflict.
	w, env = postJSONBody(t, r, "/api/v1/auth/register", gin.H{
		"username": "copycat",
		"email":    "devotee@example.com",
		"password": "another-password",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40901, env.Code)

	// Login with the right password succeeds, wrong one does not.
	w, env = postJSONBody(t, r, "/api/v1/auth/login", gin.H{
		"email":    "devotee@example.com",
		"password": "om-namah-shivaya",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.NotEmpty(t, session.Token)

	w, env = postJSONBody(t, r, "/api/v1/auth/login", gin.H{
		"email":    "devotee@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40106, env.Code)
}

func TestRegisterValidation(t *testing.T) {
	r := newAuthRouter(t)

	cases := []gin.H{
		{"username": "x", "email": "a@b.com", "password": "long-enough-pass"}, // username too short
		{"username": "valid", "email": "not-an-email", "password": "long-enough-pass"},
		{"username": "valid", "email": "a@b.com", "password": "short"},
		{"username": "valid", "email": "a@b.com"}, // password missing
	}
	for _, body := range cases {
		w, env := postJSONBody(t, r, "/api/v1/auth/register", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %v", body)
		assert.Equal(t, 40001, env.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newAuthRouter(t)

	_, env := postJSONBody(t, r, "/api/v1/auth/register", gin.H{
		"username": "devotee",
		"email":    "devotee@example.com",
		"password": "om-namah-shivaya",
	}, "")
	var session sessionData
	require.NoError(t, json.Unmarshal(env.Data, &session))

	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", session.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = postJSONBody(t, r, "/api/v1/auth/logout", gin.H{}, session.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doRequest(t, r, http.MethodGet, "/api/v1/auth/me", session.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40104, env.Code)
}

func TestMeReturnsProfile(t *testing.T) {
	r := newAuthRouter(t)

	_, env := postJSONBody(t, r, "/api/v1/auth/register", gin.H{
		"username": "devotee",
		"email":    "devotee@example.com",
		"password": "om-namah-shivaya",
	}, "")
	var session sessionData
	require.NoError(t, json.Unmarshal(env.Data, &session))

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", session.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "devotee", user.Username)
	assert.Empty(t, user.PasswordHash, "password hash must not leak through the API")
}
