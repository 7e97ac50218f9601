package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-router/internal/redis"
)

func setupLimiter(t *testing.T, cfg *Config) *Limiter {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewLimiter(client, cfg)
}

func TestNewLimiter_NilRedisDisables(t *testing.T) {
	limiter := NewLimiter(nil, &Config{DefaultLimit: 5, DefaultWindow: time.Minute, Enabled: true})

	rl, err := limiter.CheckDefaultLimit(context.Background(), "anyone")
	require.NoError(t, err)
	assert.Equal(t, 5, rl.Remaining)
}

func TestLimiter_CheckLimit(t *testing.T) {
	limiter := setupLimiter(t, &Config{DefaultLimit: 2, DefaultWindow: time.Minute, Enabled: true})
	ctx := context.Background()

	rl, err := limiter.CheckDefaultLimit(ctx, "sender-1")
	require.NoError(t, err)
	assert.Equal(t, 2, rl.Limit)
	assert.Equal(t, 2, rl.Remaining)

	_, err = limiter.CheckDefaultLimit(ctx, "sender-1")
	require.NoError(t, err)

	rl, err = limiter.CheckDefaultLimit(ctx, "sender-1")
	require.NoError(t, err)
	assert.Equal(t, 0, rl.Remaining)
}

func TestLimiter_HTTPMiddleware(t *testing.T) {
	limiter := setupLimiter(t, &Config{DefaultLimit: 2, DefaultWindow: time.Minute, Enabled: true})

	handler := limiter.HTTPMiddleware(func(r *http.Request) string {
		return r.Header.Get("X-Sender")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(sender string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bot-handler", nil)
		if sender != "" {
			req.Header.Set("X-Sender", sender)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("s1").Code)
	assert.Equal(t, http.StatusOK, do("s1").Code)

	rec := do("s1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Missing key falls through
	assert.Equal(t, http.StatusOK, do("").Code)
	// Different sender has its own budget
	assert.Equal(t, http.StatusOK, do("s2").Code)
}

func TestIPBasedKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip:10.0.0.1:1234", IPBasedKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "ip:203.0.113.7", IPBasedKey(req))
}
