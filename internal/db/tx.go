package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Beginner é satisfeito por *pgxpool.Pool e permite abrir transações.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// WithTx executa uma função dentro de uma transação explícita.
// Qualquer erro (ou panic) desfaz a transação; a conexão volta ao pool em todos os caminhos.
func WithTx(ctx context.Context, pool Beginner, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
