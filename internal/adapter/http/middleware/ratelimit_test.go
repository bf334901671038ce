package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"receipt-generator/internal/adapter/http/middleware"
	redisStore "receipt-generator/internal/adapter/storage/redis"
	"receipt-generator/internal/core/ports"
	"receipt-generator/internal/core/ports/mocks"
	"receipt-generator/internal/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupRateLimitRouter(store ports.RateLimitStore, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}
	log := zerolog.Nop()

	r.POST("/generate", middleware.RateLimiter(store, "generate", rule, m, log), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func doPost(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/generate", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := setupRateLimitRouter(redisStore.NewRateLimitStore(client), nil)

	for i := 0; i < 3; i++ {
		w := doPost(router, "10.0.0.1:5555")
		assert.Equal(t, 200, w.Code, "request %d should succeed", i+1)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	m := metrics.New(prometheus.NewRegistry())
	router := setupRateLimitRouter(redisStore.NewRateLimitStore(client), m)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doPost(router, "10.0.0.1:5555").Code)
	}

	w := doPost(router, "10.0.0.1:5555")
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_001")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))
}

func TestRateLimiter_KeyedByClientIP(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := setupRateLimitRouter(redisStore.NewRateLimitStore(client), nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, 200, doPost(router, "10.0.0.1:5555").Code)
	}
	assert.Equal(t, 429, doPost(router, "10.0.0.1:5555").Code)

	// A different client still has its own budget.
	assert.Equal(t, 200, doPost(router, "10.0.0.2:5555").Code)
}

func TestRateLimiter_DegradesOpenOnStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRateLimitStore(ctrl)
	store.EXPECT().
		Allow(gomock.Any(), "10.0.0.1:generate", int64(3), time.Minute).
		Return(nil, errors.New("redis: connection refused"))

	router := setupRateLimitRouter(store, nil)

	w := doPost(router, "10.0.0.1:5555")
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
