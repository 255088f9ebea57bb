package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ldessureault/chainstore-be/internal/handlers/middleware"
	"github.com/ldessureault/chainstore-be/internal/pkg/logger"
	"github.com/ldessureault/chainstore-be/test/helpers"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(logger.ContextKeyRequestID).(string)
		w.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.RequestID(inner)

	t.Run("generates_new_request_id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		id := w.Result().Header.Get("X-Request-ID")
		assert.Len(t, id, 36)
		assert.Equal(t, id, seenID, "context and response header should carry the same ID")
	})

	t.Run("keeps_id_from_upstream_proxy", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "proxy-assigned-77")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		assert.Equal(t, "proxy-assigned-77", w.Result().Header.Get("X-Request-ID"))
		assert.Equal(t, "proxy-assigned-77", seenID)
	})
}

func TestLogger(t *testing.T) {
	appLogger := helpers.TestAppLogger()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test response"))
	})
	wrapped := middleware.Logger(appLogger)(inner)

	req := httptest.NewRequest("GET", "/test?limit=5", nil)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	// The middleware must pass the response through untouched and tag it.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test response", w.Body.String())
	assert.NotEmpty(t, w.Result().Header.Get("X-Request-ID"))
	assert.NotEmpty(t, w.Result().Header.Get("X-Trace-ID"))
}

func TestRecovery(t *testing.T) {
	slogger := helpers.TestLogger()

	t.Run("recovers_from_panic", func(t *testing.T) {
		panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})
		wrapped := middleware.Recovery(slogger)(panicking)

		req := httptest.NewRequest("GET", "/test", nil)
		req = req.WithContext(context.WithValue(req.Context(), logger.ContextKeyRequestID, "req-9"))
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Internal Server Error")
		assert.Contains(t, w.Body.String(), "req-9")
	})

	t.Run("passes_through_normal_response", func(t *testing.T) {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte("created"))
		})
		wrapped := middleware.Recovery(slogger)(inner)

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest("POST", "/test", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "created", w.Body.String())
	})
}

func TestRateLimit(t *testing.T) {
	wrapped := middleware.RateLimit(2, time.Second)(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
		return w.Code
	}

	// The burst allows two requests, then the same IP is throttled.
	assert.Equal(t, http.StatusOK, send("127.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, send("127.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("127.0.0.1:1234"))

	// Other IPs carry their own budget.
	assert.Equal(t, http.StatusOK, send("192.168.1.1:5678"))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		origin         string
		method         string
		wantStatus     int
		wantAllowed    string
	}{
		{
			name:           "wildcard_allows_any_origin",
			allowedOrigins: []string{"*"},
			origin:         "https://example.com",
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantAllowed:    "https://example.com",
		},
		{
			name:           "listed_origin_allowed",
			allowedOrigins: []string{"https://app.example.com", "https://admin.example.com"},
			origin:         "https://app.example.com",
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantAllowed:    "https://app.example.com",
		},
		{
			name:           "preflight_short_circuits",
			allowedOrigins: []string{"*"},
			origin:         "https://example.com",
			method:         "OPTIONS",
			wantStatus:     http.StatusNoContent,
			wantAllowed:    "https://example.com",
		},
		{
			name:           "unlisted_origin_gets_no_headers",
			allowedOrigins: []string{"https://allowed.com"},
			origin:         "https://notallowed.com",
			method:         "GET",
			wantStatus:     http.StatusOK,
			wantAllowed:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := middleware.CORS(tt.allowedOrigins)(okHandler())

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowed, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllowed != "" {
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	wrapped := middleware.SecureHeaders(okHandler())

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	headers := w.Header()
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.NotEmpty(t, headers.Get("Content-Security-Policy"))
	// HSTS only applies to TLS connections.
	assert.Empty(t, headers.Get("Strict-Transport-Security"))
}

func TestTimeout(t *testing.T) {
	slowHandler := func(delay time.Duration) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(delay):
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success"))
			case <-r.Context().Done():
			}
		})
	}

	t.Run("completes_within_timeout", func(t *testing.T) {
		wrapped := middleware.Timeout(100 * time.Millisecond)(slowHandler(10 * time.Millisecond))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "success")
	})

	t.Run("times_out", func(t *testing.T) {
		wrapped := middleware.Timeout(50 * time.Millisecond)(slowHandler(200 * time.Millisecond))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Contains(t, w.Body.String(), "Request timeout")
	})
}
