package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dashboard"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

func newRouter(t *testing.T) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core).Sugar()

	content, err := dashboard.LoadContent("")
	require.NoError(t, err)
	snap := &entity.Snapshot{ID: "snap-1", Source: "csv:test", LoadedAt: time.Now()}
	dash, err := dashboard.NewHandler(snap, content, logger)
	require.NoError(t, err)
	return RegisterRoutes(logger, dash), logs
}

func TestRoutes(t *testing.T) {
	h, _ := newRouter(t)
	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/", http.StatusFound},
		{http.MethodGet, "/customers", http.StatusOK},
		{http.MethodGet, "/acv", http.StatusOK},
		{http.MethodGet, "/retention", http.StatusOK},
		{http.MethodGet, "/funnel", http.StatusOK},
		{http.MethodGet, "/charts/retention.png", http.StatusOK},
		{http.MethodGet, "/charts/missing.png", http.StatusNotFound},
		{http.MethodGet, "/static/dashboard.css", http.StatusOK},
		{http.MethodGet, "/settings", http.StatusNotFound},
		{http.MethodPost, "/customers", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	h, _ := newRouter(t)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/customers", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestRequestID(t *testing.T) {
	h, logs := newRouter(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	generated := rr.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 27)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, generated, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "abc", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusOK), entries[1].ContextMap()["status"])
}

func TestRequestIDOnContext(t *testing.T) {
	var seen string
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "xyz")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "xyz", seen)
}

func TestLoggingMiddlewareReadsContextID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	noop := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// without RequestIDMiddleware in front there is no id to log
	LoggingMiddleware(zap.New(core).Sugar())(noop).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "", logs.All()[0].ContextMap()["request_id"])
}
