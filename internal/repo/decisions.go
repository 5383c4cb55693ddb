package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const decisionColumns = `id, squad_id, title, decision, created_by, created_by_role, created_at`

func scanDecision(row pgx.Row) (Decision, error) {
	var d Decision
	err := row.Scan(&d.ID, &d.SquadID, &d.Title, &d.Decision, &d.CreatedBy, &d.CreatedByRole, &d.CreatedAt)
	return d, mapErr(err)
}

type InsertDecisionParams struct {
	SquadID       uuid.UUID
	Title         string
	Decision      json.RawMessage
	CreatedBy     *uuid.UUID
	CreatedByRole string
}

// InsertDecision acrescenta um registro ao histórico; não existe update nem delete.
func (q *Queries) InsertDecision(ctx context.Context, arg InsertDecisionParams) (Decision, error) {
	return scanDecision(q.db.QueryRow(ctx, `
		INSERT INTO decisions (squad_id, title, decision, created_by, created_by_role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+decisionColumns,
		arg.SquadID, arg.Title, jsonOrEmpty(arg.Decision), arg.CreatedBy, arg.CreatedByRole))
}

// ListDecisions devolve o histórico da squad, mais recentes primeiro.
func (q *Queries) ListDecisions(ctx context.Context, squadID uuid.UUID) ([]Decision, error) {
	rows, err := q.db.Query(ctx, `SELECT `+decisionColumns+` FROM decisions WHERE squad_id = $1 ORDER BY created_at DESC, id`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDecision)
}
