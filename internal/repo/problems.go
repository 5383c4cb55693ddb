package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const problemColumns = `id, workspace_id, squad_id, title, narrative, success_metrics, constraints,
	assumptions, open_questions, created_by, created_at, updated_at`

func scanProblem(row pgx.Row) (ProblemStatement, error) {
	var p ProblemStatement
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.SquadID, &p.Title, &p.Narrative, &p.SuccessMetrics, &p.Constraints,
		&p.Assumptions, &p.OpenQuestions, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (q *Queries) ListProblemStatements(ctx context.Context, workspaceID uuid.UUID) ([]ProblemStatement, error) {
	rows, err := q.db.Query(ctx, `SELECT `+problemColumns+` FROM problem_statements WHERE workspace_id = $1 ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProblem)
}

func (q *Queries) GetProblemStatement(ctx context.Context, id uuid.UUID) (ProblemStatement, error) {
	return scanProblem(q.db.QueryRow(ctx, `SELECT `+problemColumns+` FROM problem_statements WHERE id = $1`, id))
}

// GetLatestProblemStatementBySquad devolve o problema mais recente vinculado à squad.
func (q *Queries) GetLatestProblemStatementBySquad(ctx context.Context, squadID uuid.UUID) (ProblemStatement, error) {
	return scanProblem(q.db.QueryRow(ctx, `
		SELECT `+problemColumns+`
		FROM problem_statements
		WHERE squad_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, squadID))
}

type CreateProblemStatementParams struct {
	WorkspaceID    uuid.UUID
	SquadID        *uuid.UUID
	Title          string
	Narrative      string
	SuccessMetrics []string
	Constraints    []string
	Assumptions    []string
	OpenQuestions  []string
	CreatedBy      *uuid.UUID
}

func (q *Queries) CreateProblemStatement(ctx context.Context, arg CreateProblemStatementParams) (ProblemStatement, error) {
	return scanProblem(q.db.QueryRow(ctx, `
		INSERT INTO problem_statements (workspace_id, squad_id, title, narrative, success_metrics, constraints,
		                                assumptions, open_questions, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+problemColumns,
		arg.WorkspaceID, arg.SquadID, arg.Title, arg.Narrative, nonNil(arg.SuccessMetrics), nonNil(arg.Constraints),
		nonNil(arg.Assumptions), nonNil(arg.OpenQuestions), arg.CreatedBy))
}

// UpdateProblemStatementParams aplica alteração parcial. SetSquad indica que SquadID
// deve ser gravado mesmo quando nulo (desvincular).
type UpdateProblemStatementParams struct {
	ID             uuid.UUID
	SetSquad       bool
	SquadID        *uuid.UUID
	Title          *string
	Narrative      *string
	SuccessMetrics []string
	Constraints    []string
	Assumptions    []string
	OpenQuestions  []string
}

func (q *Queries) UpdateProblemStatement(ctx context.Context, arg UpdateProblemStatementParams) (ProblemStatement, error) {
	return scanProblem(q.db.QueryRow(ctx, `
		UPDATE problem_statements
		SET squad_id = CASE WHEN $2 THEN $3 ELSE squad_id END,
		    title = COALESCE($4, title),
		    narrative = COALESCE($5, narrative),
		    success_metrics = COALESCE($6, success_metrics),
		    constraints = COALESCE($7, constraints),
		    assumptions = COALESCE($8, assumptions),
		    open_questions = COALESCE($9, open_questions),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+problemColumns,
		arg.ID, arg.SetSquad, arg.SquadID, arg.Title, arg.Narrative, arg.SuccessMetrics, arg.Constraints,
		arg.Assumptions, arg.OpenQuestions))
}

func (q *Queries) DeleteProblemStatement(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM problem_statements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendOpenQuestion acrescenta uma pergunta em aberto ao problema.
func (q *Queries) AppendOpenQuestion(ctx context.Context, id uuid.UUID, question string) (ProblemStatement, error) {
	return scanProblem(q.db.QueryRow(ctx, `
		UPDATE problem_statements
		SET open_questions = array_append(open_questions, $2), updated_at = now()
		WHERE id = $1
		RETURNING `+problemColumns, id, question))
}
