package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/db"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/workspace"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("squadsctl falhou")
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "squadsctl",
		Short:         "Administração da API de squads virtuais",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(), seedCmd(), workspaceCmd())
	return root
}

// connect abre o pool a partir de DB_DSN (ou DATABASE_URL).
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		return nil, errors.New("defina DB_DSN ou DATABASE_URL")
	}
	return db.NewPool(ctx, dsn)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Migrações do banco"}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica as migrações pendentes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				log.Info().Msg("nenhuma migração pendente")
			}
			for _, v := range applied {
				log.Info().Str("version", v).Msg("migração aplicada")
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Lista as migrações e se já foram aplicadas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			states, err := db.MigrationStatus(cmd.Context(), pool)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSÃO\tAPLICADA")
			for _, st := range states {
				fmt.Fprintf(tw, "%s\t%t\n", st.Version, st.Applied)
			}
			return tw.Flush()
		},
	})
	return cmd
}

func seedCmd() *cobra.Command {
	var file string
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Carrega papéis e personas globais (YAML)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var data []byte
			if file != "" {
				var err error
				if data, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("ler %s: %w", file, err)
				}
			}
			seed, err := catalog.ParseSeed(data)
			if err != nil {
				return err
			}

			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			var res catalog.SeedResult
			store := repo.NewStore(pool)
			err = store.InTx(cmd.Context(), func(q repo.Querier) error {
				res, err = catalog.ApplySeed(cmd.Context(), q, seed)
				return err
			})
			if err != nil {
				return err
			}
			log.Info().Int("roles", res.Roles).Int("personas", res.Personas).Msg("catálogo global atualizado")
			return nil
		},
	}
	catalogCmd.Flags().StringVar(&file, "file", "", "arquivo YAML (padrão: catálogo embutido)")

	cmd := &cobra.Command{Use: "seed", Short: "Carga de dados iniciais"}
	cmd.AddCommand(catalogCmd)
	return cmd
}

func workspaceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "workspace", Short: "Gestão de workspaces"}

	var name, ownerEmail, kind string
	create := &cobra.Command{
		Use:   "create",
		Short: "Cria workspace tendo um usuário existente como owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			store := repo.NewStore(pool)
			owner, err := store.FindUserByEmail(cmd.Context(), ownerEmail)
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("usuário %s não encontrado; ele precisa entrar uma vez pela API", ownerEmail)
			}
			if err != nil {
				return err
			}

			rdb := optionalRedis()
			if rdb != nil {
				defer rdb.Close()
			}
			svc := workspace.NewService(store, workspace.NewListCache(rdb))
			ws, err := svc.Create(cmd.Context(), owner.ID, workspace.CreateInput{Name: name, Type: kind})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ws.ID)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "nome do workspace")
	create.Flags().StringVar(&ownerEmail, "owner-email", "", "e-mail do owner")
	create.Flags().StringVar(&kind, "type", "time", "tipo do workspace")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("owner-email")

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista todos os workspaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			items, err := workspace.NewService(repo.NewStore(pool), nil).ListAll(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOME\tTIPO\tCRIADO EM")
			for _, ws := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ws.ID, ws.Name, ws.Type, ws.CreatedAt.Format(time.DateOnly))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

// optionalRedis conecta ao cache de listagem quando REDIS_URL está definida.
func optionalRedis() *redis.Client {
	raw := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if raw == "" {
		return nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		log.Warn().Err(err).Msg("REDIS_URL inválida; cache de workspaces não será invalidado")
		return nil
	}
	return redis.NewClient(opts)
}
