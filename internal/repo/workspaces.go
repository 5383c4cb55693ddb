package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const workspaceColumns = `w.id, w.name, w.description, w.type, w.created_by, w.created_at, w.updated_at`

func scanWorkspace(row pgx.Row) (Workspace, error) {
	var w Workspace
	err := row.Scan(&w.ID, &w.Name, &w.Description, &w.Type, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt)
	return w, mapErr(err)
}

// ListWorkspacesByUser devolve os workspaces dos quais o usuário é membro.
func (q *Queries) ListWorkspacesByUser(ctx context.Context, userID uuid.UUID) ([]Workspace, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+workspaceColumns+`
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.name
	`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWorkspace)
}

// ListWorkspaces devolve todos os workspaces; uso administrativo.
func (q *Queries) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	rows, err := q.db.Query(ctx, `SELECT `+workspaceColumns+` FROM workspaces w ORDER BY w.created_at`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanWorkspace)
}

// GetWorkspace busca workspace pelo identificador.
func (q *Queries) GetWorkspace(ctx context.Context, id uuid.UUID) (Workspace, error) {
	return scanWorkspace(q.db.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id))
}

// CreateWorkspaceParams traz os dados de criação.
type CreateWorkspaceParams struct {
	Name        string
	Description *string
	Type        string
	CreatedBy   *uuid.UUID
}

// CreateWorkspace insere um workspace.
func (q *Queries) CreateWorkspace(ctx context.Context, arg CreateWorkspaceParams) (Workspace, error) {
	return scanWorkspace(q.db.QueryRow(ctx, `
		INSERT INTO workspaces AS w (name, description, type, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+workspaceColumns,
		arg.Name, arg.Description, arg.Type, arg.CreatedBy))
}

// UpdateWorkspaceParams aplica alteração parcial; campos nulos permanecem.
type UpdateWorkspaceParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Type        *string
}

// UpdateWorkspace altera apenas os campos informados.
func (q *Queries) UpdateWorkspace(ctx context.Context, arg UpdateWorkspaceParams) (Workspace, error) {
	return scanWorkspace(q.db.QueryRow(ctx, `
		UPDATE workspaces AS w
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    type = COALESCE($4, type),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+workspaceColumns,
		arg.ID, arg.Name, arg.Description, arg.Type))
}

// DeleteWorkspace remove o workspace e, em cascata, suas squads.
func (q *Queries) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddWorkspaceMember vincula usuário ao workspace; se já existir, atualiza o papel.
func (q *Queries) AddWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID, role string) (WorkspaceMember, error) {
	var m WorkspaceMember
	err := q.db.QueryRow(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING workspace_id, user_id, role, created_at
	`, workspaceID, userID, role).Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, mapErr(err)
}

// ListWorkspaceMembers lista membros com nome e e-mail.
func (q *Queries) ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]WorkspaceMember, error) {
	rows, err := q.db.Query(ctx, `
		SELECT m.workspace_id, m.user_id, m.role, u.name, u.email, m.created_at
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row pgx.Row) (WorkspaceMember, error) {
		var m WorkspaceMember
		err := row.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.UserName, &m.UserEmail, &m.CreatedAt)
		return m, err
	})
}

// GetWorkspaceMembership devolve o vínculo do usuário com o workspace.
func (q *Queries) GetWorkspaceMembership(ctx context.Context, workspaceID, userID uuid.UUID) (WorkspaceMember, error) {
	var m WorkspaceMember
	err := q.db.QueryRow(ctx, `
		SELECT workspace_id, user_id, role, created_at
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID).Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, mapErr(err)
}
