package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// MigrationState indica se uma migração já foi aplicada.
type MigrationState struct {
	Version string
	Applied bool
}

// Migrate aplica, em ordem, as migrações embutidas ainda não registradas.
// Cada arquivo roda na sua própria transação junto com o registro em schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	if err := ensureMigrationsTable(ctx, pool); err != nil {
		return nil, err
	}

	states, err := MigrationStatus(ctx, pool)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, st := range states {
		if st.Applied {
			continue
		}
		contents, err := migrationFiles.ReadFile("migrations/" + st.Version)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", st.Version, err)
		}

		err = WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(contents)); err != nil {
				return fmt.Errorf("execute migration %s: %w", st.Version, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, st.Version); err != nil {
				return fmt.Errorf("record migration %s: %w", st.Version, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, st.Version)
	}
	return applied, nil
}

// MigrationStatus lista as migrações embutidas e se cada uma já foi aplicada.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) ([]MigrationState, error) {
	if err := ensureMigrationsTable(ctx, pool); err != nil {
		return nil, err
	}

	versions, err := embeddedVersions()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list schema_migrations: %w", err)
	}
	defer rows.Close()

	done := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	states := make([]MigrationState, 0, len(versions))
	for _, v := range versions {
		states = append(states, MigrationState{Version: v, Applied: done[v]})
	}
	return states, nil
}

func embeddedVersions() ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func ensureMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}
