package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSOrigins(t *testing.T) {
	h := CORS([]string{"https://app.squads.dev", "*.preview.squads.dev"})(okHandler)

	cases := map[string]bool{
		"https://app.squads.dev":           true,
		"https://pr-12.preview.squads.dev": true,
		"https://preview.squads.dev":       false,
		"https://evil.dev":                 false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if want {
			require.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		} else {
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://app.squads.dev"})(okHandler)
	req := httptest.NewRequest(http.MethodOptions, "/workspaces", nil)
	req.Header.Set("Origin", "https://app.squads.dev")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestIPRateLimit(t *testing.T) {
	h := IPRateLimit(NewRateLimiter(0.001, 2))(okHandler)
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	require.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	require.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	require.Equal(t, http.StatusOK, call("10.0.0.2:1000"))
}

func TestWriteAppErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperr.Validation("nome obrigatório"), http.StatusBadRequest},
		{apperr.ErrUnauthorized, http.StatusUnauthorized},
		{apperr.ErrForbidden, http.StatusForbidden},
		{repo.ErrNotFound, http.StatusNotFound},
		{repo.ErrDuplicate, http.StatusConflict},
		{apperr.ErrAlreadyResolved, http.StatusConflict},
		{apperr.ErrProposalGenerationFailed.Wrap(errors.New("timeout")), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		WriteAppError(rec, req, tc.err)
		require.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	h := IPRateLimit(NewRateLimiter(0.5, 1))(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "203.0.113.9:4000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "2", rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), "RATE_LIMIT")
}

func TestIPRateLimitIgnoresForwardedHeaders(t *testing.T) {
	h := IPRateLimit(NewRateLimiter(0.001, 1))(okHandler)
	call := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "198.51.100.7:5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("203.0.113.1"))
	require.Equal(t, http.StatusTooManyRequests, call("203.0.113.2"))
	require.Equal(t, http.StatusTooManyRequests, call("203.0.113.3"))
}
