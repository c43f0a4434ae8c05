package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"webhook-proxy/internal/common/logging"
	"webhook-proxy/internal/metrics"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.NewZapLogger(logging.LogConfig{
		Level:  logging.DebugLevel,
		Output: &buf,
		JSON:   true,
	})
	require.NoError(t, err)

	previous := logging.GetGlobalLogger()
	logging.SetGlobalLogger(logger)
	t.Cleanup(func() { logging.SetGlobalLogger(previous) })
	return &buf
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{name: "generates when absent", incoming: "", reuse: false},
		{name: "reuses well formed id", incoming: "abc-123.XYZ_9", reuse: true},
		{name: "replaces id with spaces", incoming: "bad id", reuse: false},
		{name: "replaces oversized id", incoming: strings.Repeat("a", 129), reuse: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := logging.RequestIDFromContext(r.Context())
				require.True(t, ok)
				seen = id
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
			if tt.reuse {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

func TestLoggingMiddleware_StatusLevels(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{status: http.StatusOK, wantLevel: `"level":"INFO"`},
		{status: http.StatusBadRequest, wantLevel: `"level":"WARN"`},
		{status: http.StatusInternalServerError, wantLevel: `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			buf := captureLogs(t)
			handler := RequestIDMiddleware(LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})))

			req := httptest.NewRequest(http.MethodPost, "/generic-webhook-endpoint?debug=1", nil)
			req.Header.Set(RequestIDHeader, "req-42")
			req.Header.Set("User-Agent", "test-agent")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			out := buf.String()
			assert.Contains(t, out, "HTTP request completed")
			assert.Contains(t, out, tt.wantLevel)
			assert.Contains(t, out, `"request_id":"req-42"`)
			assert.Contains(t, out, `"path":"/generic-webhook-endpoint"`)
			assert.Contains(t, out, `"query":"debug=1"`)
			assert.Contains(t, out, `"user_agent":"test-agent"`)
		})
	}
}

func TestResponseWriter_DefaultsTo200(t *testing.T) {
	rr := httptest.NewRecorder()
	wrapped := wrapResponseWriter(rr)

	_, err := wrapped.Write([]byte("ok"))
	require.NoError(t, err)
	wrapped.WriteHeader(http.StatusTeapot) // ignored after body is written

	assert.Equal(t, http.StatusOK, wrapped.statusCode)
	assert.Same(t, wrapped, wrapResponseWriter(wrapped))
	assert.Equal(t, rr, wrapped.Unwrap())
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(MetricsMiddleware)
	router.HandleFunc("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPost)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/sessions/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/sessions/def", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rr.Body.String()
	assert.Contains(t, body, `webhook_proxy_http_requests_total{method="POST",path="/sessions/{id}",status="202"} 2`)
	assert.NotContains(t, body, `path="/sessions/abc"`)
	assert.NotContains(t, body, `path="/metrics"`)
}
