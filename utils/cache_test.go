package utils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetRedisClient(nil) })
	return mr
}

func TestCacheBytesRoundTrip(t *testing.T) {
	mr := setupMiniredis(t)

	_, ok := CacheGetBytes("missing")
	assert.False(t, ok)

	CacheSetBytes("greeting", []byte("namaste"), time.Minute)
	b, ok := CacheGetBytes("greeting")
	require.True(t, ok)
	assert.Equal(t, "namaste", string(b))

	ttl := mr.TTL("greeting")
	assert.Equal(t, time.Minute, ttl)
}

func TestCacheSetBytesDefaultTTL(t *testing.T) {
	mr := setupMiniredis(t)

	CacheSetBytes("k", []byte("v"), 0)
	assert.Equal(t, time.Hour, mr.TTL("k"))
}

func TestCacheJSONRoundTrip(t *testing.T) {
	setupMiniredis(t)

	type payload struct {
		Sign       string `json:"sign"`
		Prediction string `json:"prediction"`
	}
	in := payload{Sign: "leo", Prediction: "A calm day."}
	CacheSetJSON("horoscope:daily:leo:2026-03-10", in, time.Minute)

	var out payload
	require.True(t, CacheGetJSON("horoscope:daily:leo:2026-03-10", &out))
	assert.Equal(t, in, out)

	assert.False(t, CacheGetJSON("nope", &out))
}

func TestCacheExpiry(t *testing.T) {
	mr := setupMiniredis(t)

	CacheSetBytes("day-keyed", []byte("x"), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := CacheGetBytes("day-keyed")
	assert.False(t, ok)
}

func TestUntilMidnight(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	now := time.Date(2026, time.March, 10, 23, 0, 0, 0, ist)
	assert.Equal(t, time.Hour, UntilMidnight(now, ist))

	// A UTC instant is still measured against midnight in the target zone.
	utcNow := time.Date(2026, time.March, 10, 17, 30, 0, 0, time.UTC) // 23:00 IST
	assert.Equal(t, time.Hour, UntilMidnight(utcNow, ist))

	startOfDay := time.Date(2026, time.March, 10, 0, 0, 0, 0, ist)
	assert.Equal(t, 24*time.Hour, UntilMidnight(startOfDay, ist))
}
