package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const suggestionColumns = `id, proposal_id, squad_id, type, payload, position, status, rejection_reason,
	resolved_by, resolved_at, created_at`

func scanSuggestion(row pgx.Row) (Suggestion, error) {
	var s Suggestion
	err := row.Scan(&s.ID, &s.ProposalID, &s.SquadID, &s.Type, &s.Payload, &s.Position, &s.Status, &s.RejectionReason,
		&s.ResolvedBy, &s.ResolvedAt, &s.CreatedAt)
	return s, mapErr(err)
}

type InsertSuggestionParams struct {
	ProposalID uuid.UUID
	SquadID    uuid.UUID
	Type       string
	Payload    json.RawMessage
	Position   int
}

func (q *Queries) InsertSuggestion(ctx context.Context, arg InsertSuggestionParams) (Suggestion, error) {
	return scanSuggestion(q.db.QueryRow(ctx, `
		INSERT INTO suggestions (proposal_id, squad_id, type, payload, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+suggestionColumns,
		arg.ProposalID, arg.SquadID, arg.Type, jsonOrEmpty(arg.Payload), arg.Position))
}

// ListSuggestions devolve as sugestões da squad na ordem da fila. Status vazio não filtra.
func (q *Queries) ListSuggestions(ctx context.Context, squadID uuid.UUID, status string) ([]Suggestion, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+suggestionColumns+`
		FROM suggestions
		WHERE squad_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at, position`, squadID, status)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSuggestion)
}

func (q *Queries) ListSuggestionsByProposal(ctx context.Context, proposalID uuid.UUID) ([]Suggestion, error) {
	rows, err := q.db.Query(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE proposal_id = $1 ORDER BY position`, proposalID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSuggestion)
}

func (q *Queries) GetSuggestion(ctx context.Context, squadID, id uuid.UUID) (Suggestion, error) {
	return scanSuggestion(q.db.QueryRow(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE squad_id = $1 AND id = $2`, squadID, id))
}

// GetSuggestionForUpdate bloqueia a sugestão; uma segunda resolução concorrente espera e enxerga o status final.
func (q *Queries) GetSuggestionForUpdate(ctx context.Context, squadID, id uuid.UUID) (Suggestion, error) {
	return scanSuggestion(q.db.QueryRow(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE squad_id = $1 AND id = $2 FOR UPDATE`, squadID, id))
}

type ResolveSuggestionParams struct {
	ID              uuid.UUID
	Status          string
	Payload         json.RawMessage
	RejectionReason *string
	ResolvedBy      *uuid.UUID
}

// ResolveSuggestion muda o status apenas se ainda estiver pending; caso contrário devolve ErrNotFound.
func (q *Queries) ResolveSuggestion(ctx context.Context, arg ResolveSuggestionParams) (Suggestion, error) {
	var payload []byte
	if len(arg.Payload) > 0 {
		payload = arg.Payload
	}
	return scanSuggestion(q.db.QueryRow(ctx, `
		UPDATE suggestions
		SET status = $2,
		    payload = COALESCE($3, payload),
		    rejection_reason = $4,
		    resolved_by = $5,
		    resolved_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+suggestionColumns,
		arg.ID, arg.Status, payload, arg.RejectionReason, arg.ResolvedBy))
}
