package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DB_DSN":               "postgres://localhost/squads",
		"REDIS_URL":            "redis://localhost:6379/0",
		"SESSION_SECRET":       "0123456789abcdef0123456789abcdef",
		"FRONTEND_URL":         "http://localhost:5173/",
		"GOOGLE_CLIENT_ID":     "google-client",
		"GITHUB_CLIENT_ID":     "gh-client",
		"GITHUB_CLIENT_SECRET": "gh-secret",
		"GITHUB_REDIRECT_URL":  "http://localhost:8080/auth/github/callback",
		"LLM_API_KEY":          "sk-test",
	}
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(baseEnv()))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	require.Empty(t, cfg.AllowOrigins)
	require.False(t, cfg.TrustProxy)
}

func TestFromEnvFailsFastOnMissingValues(t *testing.T) {
	for _, key := range []string{"DB_DSN", "REDIS_URL", "SESSION_SECRET", "GOOGLE_CLIENT_ID", "GITHUB_CLIENT_SECRET", "LLM_API_KEY", "FRONTEND_URL"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)
			_, err := FromEnv(lookupFrom(env))
			require.Error(t, err)
			require.Contains(t, err.Error(), key)
		})
	}
}

func TestFromEnvRejectsShortSecret(t *testing.T) {
	env := baseEnv()
	env["SESSION_SECRET"] = "curto"
	_, err := FromEnv(lookupFrom(env))
	require.Error(t, err)
}

func TestFromEnvParsesOrigins(t *testing.T) {
	env := baseEnv()
	env["ALLOW_ORIGINS"] = "https://app.squads.dev, *.squads.dev ,"
	env["SESSION_TTL"] = "2h"
	cfg, err := FromEnv(lookupFrom(env))
	require.NoError(t, err)
	require.Equal(t, []string{"https://app.squads.dev", "*.squads.dev"}, cfg.AllowOrigins)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestFromEnvTrustProxy(t *testing.T) {
	env := baseEnv()
	env["TRUST_PROXY"] = "true"
	cfg, err := FromEnv(lookupFrom(env))
	require.NoError(t, err)
	require.True(t, cfg.TrustProxy)

	env["TRUST_PROXY"] = "talvez"
	_, err = FromEnv(lookupFrom(env))
	require.ErrorContains(t, err, "TRUST_PROXY")
}
