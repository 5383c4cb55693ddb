package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const proposalColumns = `id, squad_id, problem_statement_id, proposal_payload, uncertainties, status, model,
	created_by, created_at, updated_at, resolved_at, broken_down_at`

func scanProposal(row pgx.Row) (Proposal, error) {
	var p Proposal
	err := row.Scan(&p.ID, &p.SquadID, &p.ProblemStatementID, &p.Payload, &p.Uncertainties, &p.Status, &p.Model,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, &p.ResolvedAt, &p.BrokenDownAt)
	return p, mapErr(err)
}

type InsertProposalParams struct {
	SquadID            uuid.UUID
	ProblemStatementID *uuid.UUID
	Payload            json.RawMessage
	Uncertainties      []string
	Model              string
	CreatedBy          *uuid.UUID
}

// InsertProposal grava a proposta com status pending.
func (q *Queries) InsertProposal(ctx context.Context, arg InsertProposalParams) (Proposal, error) {
	return scanProposal(q.db.QueryRow(ctx, `
		INSERT INTO ai_structure_proposals (squad_id, problem_statement_id, proposal_payload, uncertainties, model, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+proposalColumns,
		arg.SquadID, arg.ProblemStatementID, jsonOrEmpty(arg.Payload), nonNil(arg.Uncertainties), arg.Model, arg.CreatedBy))
}

func (q *Queries) GetProposal(ctx context.Context, squadID, id uuid.UUID) (Proposal, error) {
	return scanProposal(q.db.QueryRow(ctx, `SELECT `+proposalColumns+` FROM ai_structure_proposals WHERE squad_id = $1 AND id = $2`, squadID, id))
}

// GetProposalForUpdate bloqueia a proposta até o fim da transação.
func (q *Queries) GetProposalForUpdate(ctx context.Context, squadID, id uuid.UUID) (Proposal, error) {
	return scanProposal(q.db.QueryRow(ctx, `SELECT `+proposalColumns+` FROM ai_structure_proposals WHERE squad_id = $1 AND id = $2 FOR UPDATE`, squadID, id))
}

func (q *Queries) ListProposals(ctx context.Context, squadID uuid.UUID) ([]Proposal, error) {
	rows, err := q.db.Query(ctx, `SELECT `+proposalColumns+` FROM ai_structure_proposals WHERE squad_id = $1 ORDER BY created_at DESC`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProposal)
}

type ResolveProposalParams struct {
	ID      uuid.UUID
	Status  string
	Payload json.RawMessage
}

// ResolveProposal move a proposta de pending para o status final. Payload nulo mantém o original.
// Devolve ErrNotFound quando a proposta não está mais pendente.
func (q *Queries) ResolveProposal(ctx context.Context, arg ResolveProposalParams) (Proposal, error) {
	var payload []byte
	if len(arg.Payload) > 0 {
		payload = arg.Payload
	}
	return scanProposal(q.db.QueryRow(ctx, `
		UPDATE ai_structure_proposals
		SET status = $2,
		    proposal_payload = COALESCE($3, proposal_payload),
		    resolved_at = now(),
		    updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+proposalColumns,
		arg.ID, arg.Status, payload))
}

// MarkProposalBrokenDown registra o desmembramento uma única vez; false indica que já havia ocorrido.
func (q *Queries) MarkProposalBrokenDown(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE ai_structure_proposals
		SET broken_down_at = now(), updated_at = now()
		WHERE id = $1 AND broken_down_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
