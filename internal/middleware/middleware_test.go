package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wotmaps-api/internal/auth"
	"wotmaps-api/internal/middleware"
	"wotmaps-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	// Create a buffer to capture logs
	var buf bytes.Buffer
	encoderConfig := zap.NewProductionEncoderConfig()
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.InfoLevel)
	logger := zap.New(core)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := middleware.RequestID(middleware.LoggingMiddleware(logger)(testHandler))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	logOutput := buf.String()
	for _, field := range []string{
		`"msg":"HTTP request"`,
		`"method":"GET"`,
		`"path":"/test"`,
		`"status":200`,
		`"request_id":"req-42"`,
	} {
		assert.Contains(t, logOutput, field)
	}
}

func TestLoggingMiddlewareServerError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handler := middleware.LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/authenticate", nil))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, int64(500), entries[0].ContextMap()["status"])
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, rr.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rr.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("oversized replaced", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 500))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("wildcard", func(t *testing.T) {
		rr := httptest.NewRecorder()
		middleware.CORS([]string{"*"})(next).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("listed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "https://maps.example.com")
		rr := httptest.NewRecorder()
		middleware.CORS([]string{"https://maps.example.com"})(next).ServeHTTP(rr, req)

		assert.Equal(t, "https://maps.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rr.Header().Get("Vary"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr := httptest.NewRecorder()
		middleware.CORS([]string{"https://maps.example.com"})(next).ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rr := httptest.NewRecorder()
		middleware.CORS([]string{"*"})(next).ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/api/played-map", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}

func TestAuthenticate(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tokens, err := auth.NewTokenService("secret", time.Hour, auth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	valid, err := tokens.Issue(0x1234)
	require.NoError(t, err)

	var (
		reached bool
		claims  auth.TokenClaims
		hasID   bool
	)
	handler := middleware.Authenticate(tokens, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		claims, hasID = auth.ClaimsFromContext(r.Context())
	}))

	tests := []struct {
		name      string
		header    string
		wantCode  string
		wantClaim string
	}{
		{name: "no header", header: ""},
		{name: "valid token", header: "Bearer " + valid, wantClaim: "1234"},
		{name: "lowercase scheme", header: "bearer " + valid, wantClaim: "1234"},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", wantCode: "EXPECTED_BEARER_TOKEN"},
		{name: "scheme only", header: "Bearer", wantCode: "EXPECTED_BEARER_TOKEN"},
		{name: "empty token", header: "Bearer   ", wantCode: "EXPECTED_BEARER_TOKEN"},
		{name: "raw token", header: valid, wantCode: "EXPECTED_BEARER_TOKEN"},
		{name: "tampered token", header: "Bearer " + valid + "x", wantCode: "INVALID_TOKEN"},
		{name: "garbage token", header: "Bearer not-a-token", wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached, hasID, claims = false, false, auth.TokenClaims{}

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if tt.wantCode != "" {
				assert.False(t, reached)
				assert.Equal(t, http.StatusUnauthorized, rr.Code)
				var body models.ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body.Error)
				return
			}

			assert.True(t, reached)
			if tt.wantClaim == "" {
				assert.False(t, hasID)
				return
			}
			require.True(t, hasID)
			assert.Equal(t, tt.wantClaim, claims.Subject)
		})
	}
}
