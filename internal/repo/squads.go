package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const squadColumns = `id, workspace_id, name, description, status, created_by, created_at, updated_at`

func scanSquad(row pgx.Row) (Squad, error) {
	var s Squad
	err := row.Scan(&s.ID, &s.WorkspaceID, &s.Name, &s.Description, &s.Status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	return s, mapErr(err)
}

// ListSquads lista as squads do workspace.
func (q *Queries) ListSquads(ctx context.Context, workspaceID uuid.UUID) ([]Squad, error) {
	rows, err := q.db.Query(ctx, `SELECT `+squadColumns+` FROM squads WHERE workspace_id = $1 ORDER BY created_at`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSquad)
}

// GetSquad busca squad pelo identificador.
func (q *Queries) GetSquad(ctx context.Context, id uuid.UUID) (Squad, error) {
	return scanSquad(q.db.QueryRow(ctx, `SELECT `+squadColumns+` FROM squads WHERE id = $1`, id))
}

// LockSquad bloqueia a linha da squad até o fim da transação corrente.
func (q *Queries) LockSquad(ctx context.Context, id uuid.UUID) (Squad, error) {
	return scanSquad(q.db.QueryRow(ctx, `SELECT `+squadColumns+` FROM squads WHERE id = $1 FOR UPDATE`, id))
}

type CreateSquadParams struct {
	WorkspaceID uuid.UUID
	Name        string
	Description *string
	Status      string
	CreatedBy   *uuid.UUID
}

// CreateSquad insere squad; status vazio assume rascunho.
func (q *Queries) CreateSquad(ctx context.Context, arg CreateSquadParams) (Squad, error) {
	return scanSquad(q.db.QueryRow(ctx, `
		INSERT INTO squads (workspace_id, name, description, status, created_by)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'rascunho'), $5)
		RETURNING `+squadColumns,
		arg.WorkspaceID, arg.Name, arg.Description, arg.Status, arg.CreatedBy))
}

type UpdateSquadParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Status      *string
}

// UpdateSquad altera apenas os campos informados.
func (q *Queries) UpdateSquad(ctx context.Context, arg UpdateSquadParams) (Squad, error) {
	return scanSquad(q.db.QueryRow(ctx, `
		UPDATE squads
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    status = COALESCE($4, status),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+squadColumns,
		arg.ID, arg.Name, arg.Description, arg.Status))
}

// DeleteSquad remove a squad; decisões permanecem no histórico.
func (q *Queries) DeleteSquad(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM squads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const squadMemberColumns = `id, squad_id, user_id, name, email, created_at`

func scanSquadMember(row pgx.Row) (SquadMember, error) {
	var m SquadMember
	err := row.Scan(&m.ID, &m.SquadID, &m.UserID, &m.Name, &m.Email, &m.CreatedAt)
	return m, mapErr(err)
}

// ListSquadMembers lista os participantes da squad.
func (q *Queries) ListSquadMembers(ctx context.Context, squadID uuid.UUID) ([]SquadMember, error) {
	rows, err := q.db.Query(ctx, `SELECT `+squadMemberColumns+` FROM squad_members WHERE squad_id = $1 ORDER BY created_at`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSquadMember)
}

// GetSquadMember busca o membro dentro da squad.
func (q *Queries) GetSquadMember(ctx context.Context, squadID, id uuid.UUID) (SquadMember, error) {
	return scanSquadMember(q.db.QueryRow(ctx, `SELECT `+squadMemberColumns+` FROM squad_members WHERE squad_id = $1 AND id = $2`, squadID, id))
}

type CreateSquadMemberParams struct {
	SquadID uuid.UUID
	UserID  *uuid.UUID
	Name    string
	Email   *string
}

func (q *Queries) CreateSquadMember(ctx context.Context, arg CreateSquadMemberParams) (SquadMember, error) {
	return scanSquadMember(q.db.QueryRow(ctx, `
		INSERT INTO squad_members (squad_id, user_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING `+squadMemberColumns,
		arg.SquadID, arg.UserID, arg.Name, arg.Email))
}

func (q *Queries) DeleteSquadMember(ctx context.Context, squadID, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM squad_members WHERE squad_id = $1 AND id = $2`, squadID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
