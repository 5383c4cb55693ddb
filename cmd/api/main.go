package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/auth"
	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/config"
	"github.com/squadsvirtuais/api/internal/db"
	"github.com/squadsvirtuais/api/internal/decision"
	internalhttp "github.com/squadsvirtuais/api/internal/http"
	"github.com/squadsvirtuais/api/internal/llm"
	"github.com/squadsvirtuais/api/internal/matrix"
	"github.com/squadsvirtuais/api/internal/notify"
	"github.com/squadsvirtuais/api/internal/problem"
	"github.com/squadsvirtuais/api/internal/proposal"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/service"
	"github.com/squadsvirtuais/api/internal/squad"
	"github.com/squadsvirtuais/api/internal/suggestion"
	"github.com/squadsvirtuais/api/internal/workspace"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	llmClient, err := llm.New(cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	store := repo.NewStore(pool)
	notifier := notify.NewSlack(cfg.SlackWebhookURL)

	authService := service.NewAuthService(service.AuthDeps{
		Store:       store,
		Sessions:    auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL),
		Google:      auth.NewGoogleVerifier(ctx, cfg.Google.ClientID),
		GitHub:      auth.NewGitHubClient(cfg.GitHub),
		States:      auth.NewStateStore(redisClient),
		Revocations: auth.NewRevocationStore(redisClient),
	})

	handler := internalhttp.NewRouter(internalhttp.Deps{
		Config:      cfg,
		Auth:        authService,
		Access:      service.NewAccessService(store),
		Workspaces:  workspace.NewService(store, workspace.NewListCache(redisClient)),
		Catalog:     catalog.NewService(store),
		Squads:      squad.NewService(store),
		Problems:    problem.NewService(store),
		Matrix:      matrix.NewService(store),
		Decisions:   decision.NewService(store),
		Proposals:   proposal.NewService(store, llmClient, notifier),
		Suggestions: suggestion.NewService(store, notifier),
		Checks: map[string]func(context.Context) error{
			"db":    pool.Ping,
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// a geração de proposta pode levar até LLM_TIMEOUT
		WriteTimeout: cfg.LLM.Timeout + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
