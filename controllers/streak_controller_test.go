package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mymandir/mandir-api/middleware"
	"github.com/mymandir/mandir-api/models"
	"github.com/mymandir/mandir-api/services"
	"github.com/mymandir/mandir-api/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "controller-test-secret")
	gin.SetMode(gin.TestMode)
	l := zap.NewNop()
	utils.Logger = l
	utils.Sugar = l.Sugar()
	os.Exit(m.Run())
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newStreakRouter(t *testing.T, now time.Time) (*gin.Engine, *gorm.DB) {
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
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Streak{}, &models.CheckIn{}))

	loc := time.FixedZone("IST", 5*3600+1800)
	svc := services.NewStreakServiceAt(db, loc, func() time.Time { return now })
	ctrl := NewStreakController(svc)

	r := gin.New()
	r.Use(middleware.RequestID())
	protected := r.Group("/api/v1", middleware.AuthRequired())
	protected.POST("/streak/checkin", ctrl.CheckIn)
	protected.GET("/streak/status", ctrl.Status)
	protected.GET("/streak/achievements", ctrl.Achievements)
	return r, db
}

func authToken(t *testing.T, db *gorm.DB) (string, uint) {
	t.Helper()
	user := models.User{Username: "devotee", Email: "devotee@example.com"}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return token, user.ID
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func TestCheckInEndpoint(t *testing.T) {
	r, db := newStreakRouter(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))
	token, _ := authToken(t, db)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/streak/checkin", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)

	var result services.CheckInResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.TotalDays)
	assert.Equal(t, 10, result.KarmaAwarded)
	require.Len(t, result.Achievements, 1)
	assert.Equal(t, "Pratham Kadam", result.Achievements[0].Label)
}

func TestCheckInEndpointSameDayRejected(t *testing.T) {
	r, db := newStreakRouter(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))
	token, _ := authToken(t, db)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/streak/checkin", token)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/streak/checkin", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40030, env.Code)
	assert.Equal(t, "already checked in today", env.Message)
}

func TestCheckInEndpointRequiresAuth(t *testing.T) {
	r, _ := newStreakRouter(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/streak/checkin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40101, env.Code)

	w, env = doRequest(t, r, http.MethodPost, "/api/v1/streak/checkin", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40105, env.Code)
}

func TestCheckInEndpointRejectsRevokedToken(t *testing.T) {
	r, db := newStreakRouter(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))
	token, _ := authToken(t, db)
	utils.BlacklistToken(token, time.Now().Add(time.Hour))

	w, env := doRequest(t, r, http.MethodPost, "/api/v1/streak/checkin", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40104, env.Code)
}

func TestStreakStatusEndpoint(t *testing.T) {
	r, db := newStreakRouter(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))
	token, _ := authToken(t, db)

	// Before any check-in the shape is zeroed, not an error.
	w, env := doRequest(t, r, http.MethodGet, "/api/v1/streak/status", token)
	require.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.EqualValues(t, 0, status["current_streak"])
	assert.EqualValues(t, 0, status["karma_points"])

	doRequest(t, r, http.MethodPost, "/api/v1/streak/checkin", token)

	_, env = doRequest(t, r, http.MethodGet, "/api/v1/streak/status", token)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.EqualValues(t, 1, status["current_streak"])
	assert.EqualValues(t, 10, status["karma_points"])
	assert.NotNil(t, status["last_activity"])
}

func TestAchievementsEndpointPreview(t *testing.T) {
	r, db := newStreakRouter(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))
	token, _ := authToken(t, db)

	_, env := doRequest(t, r, http.MethodGet, "/api/v1/streak/achievements?streak=30", token)
	var body struct {
		Streak       int              `json:"streak"`
		Achievements []services.Badge `json:"achievements"`
		KarmaPoints  int              `json:"karma_points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 30, body.Streak)
	assert.Len(t, body.Achievements, 5)
	assert.Equal(t, 550, body.KarmaPoints)

	w, env := doRequest(t, r, http.MethodGet, "/api/v1/streak/achievements?streak=-1", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40031, env.Code)
}
