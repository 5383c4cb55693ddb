package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	SessionSecret   string
	SessionTTL      time.Duration
	FrontendURL     string
	AllowOrigins    []string
	TrustProxy      bool
	LogLevel        string
	Google          GoogleConfig
	GitHub          GitHubConfig
	LLM             LLMConfig
	SlackWebhookURL string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
}

// GoogleConfig guarda o client id usado como audience do ID token.
type GoogleConfig struct {
	ClientID string
}

// GitHubConfig guarda credenciais do app OAuth do GitHub.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// LLMConfig descreve o provedor de IA usado nas propostas de estrutura.
type LLMConfig struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e falha quando algo obrigatório está ausente.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv monta a configuração a partir de uma função de lookup, facilitando testes.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}
	cfg := &Config{}

	port, err := strconv.Atoi(env.get("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	if cfg.DBDSN, err = env.required("DB_DSN"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = env.required("REDIS_URL"); err != nil {
		return nil, err
	}

	if cfg.SessionSecret, err = env.required("SESSION_SECRET"); err != nil {
		return nil, err
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, errors.New("SESSION_SECRET deve ter pelo menos 32 caracteres")
	}
	if cfg.SessionTTL, err = env.duration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.FrontendURL, err = env.required("FRONTEND_URL"); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(cfg.FrontendURL); err != nil {
		return nil, errors.New("FRONTEND_URL inválida")
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")

	if cfg.Google.ClientID, err = env.required("GOOGLE_CLIENT_ID"); err != nil {
		return nil, err
	}
	if cfg.GitHub.ClientID, err = env.required("GITHUB_CLIENT_ID"); err != nil {
		return nil, err
	}
	if cfg.GitHub.ClientSecret, err = env.required("GITHUB_CLIENT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.GitHub.RedirectURL, err = env.required("GITHUB_REDIRECT_URL"); err != nil {
		return nil, err
	}

	if cfg.LLM.APIKey, err = env.required("LLM_API_KEY"); err != nil {
		return nil, err
	}
	cfg.LLM.APIURL = env.get("LLM_API_URL", "https://api.openai.com/v1/chat/completions")
	cfg.LLM.Model = env.get("LLM_MODEL", "gpt-4o-mini")
	if cfg.LLM.Timeout, err = env.duration("LLM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(env.get("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	// só atrás de um proxy que reescreve X-Forwarded-For; senão o IP do cliente é forjável
	if cfg.TrustProxy, err = strconv.ParseBool(env.get("TRUST_PROXY", "false")); err != nil {
		return nil, errors.New("TRUST_PROXY inválido")
	}

	cfg.SlackWebhookURL = env.get("SLACK_WEBHOOK_URL", "")
	cfg.LogLevel = strings.ToLower(env.get("LOG_LEVEL", "info"))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 5, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 20, Burst: 60}

	return cfg, nil
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) get(key, def string) string {
	if val, ok := e.lookup(key); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return def
}

func (e envReader) required(key string) (string, error) {
	val := e.get(key, "")
	if val == "" {
		return "", fmt.Errorf("%s obrigatório", key)
	}
	return val, nil
}

func (e envReader) duration(key string, def time.Duration) (time.Duration, error) {
	val := e.get(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
