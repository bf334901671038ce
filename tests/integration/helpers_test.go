package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"receipt-generator/config"
	httpHandler "receipt-generator/internal/adapter/http/handler"
	"receipt-generator/internal/adapter/http/middleware"
	"receipt-generator/internal/app"
	"receipt-generator/internal/metrics"
	"receipt-generator/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// testApp is a full stack behind httptest: real router, middleware,
// service, synthetic renderer and counter. Redis is miniredis.
type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	cfg    *config.Config
}

type appOption func(cfg *config.Config)

func withCounter(backend string) appOption {
	return func(cfg *config.Config) { cfg.Counter.Backend = backend }
}

func withRateLimit(limit int64) appOption {
	return func(cfg *config.Config) { cfg.RateLimit.Limit = limit }
}

func withRemote(baseURL string) appOption {
	return func(cfg *config.Config) {
		cfg.Renderer.Mode = config.RendererRemote
		cfg.Remote.BaseURL = baseURL
	}
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		Renderer: config.RendererConfig{Mode: config.RendererSynthetic},
		Counter: config.CounterConfig{
			Backend: config.CounterFile,
			Path:    filepath.Join(t.TempDir(), "receipt_counter.json"),
			Key:     "receipt_counter",
			Width:   4,
		},
		Remote:    config.RemoteConfig{Timeout: 5 * time.Second},
		Redis:     config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port},
		RateLimit: config.RateLimitConfig{Limit: 1000, Window: time.Minute},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log := logger.NewWithWriter("error", &bytes.Buffer{})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	components, err := app.Build(t.Context(), cfg, m, log)
	require.NoError(t, err)
	t.Cleanup(components.Close)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ReceiptSvc:     components.Service,
		RateLimitStore: components.RateLimitStore,
		RateLimit:      middleware.RateLimitRule{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window},
		HealthCheckers: components.HealthCheckers,
		Metrics:        m,
		Gatherer:       reg,
		Version:        "integration",
		RendererName:   components.RendererName,
		MaxBodyBytes:   64 << 10,
		Logger:         log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{server: server, redis: mr, cfg: cfg}
}

func receiptBody(overrides map[string]interface{}) map[string]interface{} {
	body := map[string]interface{}{
		"date":                  "2024-01-15",
		"received_from":         "John Smith",
		"for_field":             "Web Development Services",
		"cheque_no":             "CHQ123456",
		"amount":                "5000.00",
		"payment_method_cash":   true,
		"payment_method_cheque": false,
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func jsonReader(body interface{}) io.Reader {
	raw, _ := json.Marshal(body)
	return bytes.NewReader(raw)
}

func (a *testApp) post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	resp, err := http.Post(a.server.URL+path, "application/json", jsonReader(body))
	require.NoError(t, err)
	return resp
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp
}
