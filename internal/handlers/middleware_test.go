package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "nodeacademy/internal/errors"
	"nodeacademy/internal/logger"
	"nodeacademy/internal/security"
	"nodeacademy/internal/service"
	"nodeacademy/internal/testutil/mocks"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, bearerToken(req), tt.header)
	}
}

func TestRequireAuth_SetsClaims(t *testing.T) {
	tokens := security.NewTokenManager("mw-secret", time.Hour)
	m := NewMiddleware(service.NewAuthService(new(mocks.MockUsers), tokens, nil), nil, nil)
	token, err := tokens.Issue(7, "ada@example.com")
	require.NoError(t, err)

	var got *security.Claims
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
}

func TestRateLimit(t *testing.T) {
	m := NewMiddleware(nil, security.NewRateLimiter(2, time.Minute), nil)
	handler := m.RateLimit(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimit_ForwardedHeadersDoNotResetLimit(t *testing.T) {
	m := NewMiddleware(nil, security.NewRateLimiter(2, time.Minute), nil)
	handler := m.RateLimit(okHandler)

	blocked := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.4:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.1.0.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Equal(t, 18, blocked)
}

func TestRateLimit_TrustedProxyUsesClientHop(t *testing.T) {
	proxies, err := security.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	m := NewMiddleware(nil, security.NewRateLimiter(1, time.Minute), proxies)
	handler := m.RateLimit(okHandler)

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.2:40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7"))
	// a spoofed left-most entry still resolves to the same client
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1, 203.0.113.7"))
	assert.Equal(t, http.StatusOK, send("203.0.113.8"))
}

func TestLogging_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var scoped *zap.Logger
	handler := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lessons", nil))

	requestID := rec.Header().Get("X-Request-ID")
	assert.NotEmpty(t, requestID)
	require.NotNil(t, scoped)

	entries := logs.FilterMessage("request completed with client error").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, requestID, fields["request_id"])
	assert.Equal(t, "/api/lessons", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}

func TestLogging_KeepsIncomingRequestID(t *testing.T) {
	handler := Logging(zap.NewNop())(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, decodeError(t, rec).Code)
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://academy.example"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/user/progress", nil)
	req.Header.Set("Origin", "https://academy.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://academy.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
