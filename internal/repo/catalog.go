package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Personas e papéis vivem em duas tabelas (global e do workspace) e são lidos juntos;
// workspace_id nulo identifica o registro global.
const (
	globalPersonaSelect = `
		SELECT id, NULL::uuid AS workspace_id, NULL::uuid AS source_persona_id, name, type, focus,
		       goals, pain_points, behaviors, created_at, updated_at
		FROM personas`
	workspacePersonaSelect = `
		SELECT id, workspace_id, source_persona_id, name, type, focus,
		       goals, pain_points, behaviors, created_at, updated_at
		FROM workspace_personas`
	globalRoleSelect = `
		SELECT id, NULL::uuid AS workspace_id, NULL::uuid AS source_role_id, code, label, description,
		       responsibilities, created_at, updated_at
		FROM roles`
	workspaceRoleSelect = `
		SELECT id, workspace_id, source_role_id, code, label, description,
		       responsibilities, created_at, updated_at
		FROM workspace_roles`
)

func scanPersona(row pgx.Row) (Persona, error) {
	var p Persona
	err := row.Scan(&p.ID, &p.WorkspaceID, &p.SourcePersonaID, &p.Name, &p.Type, &p.Focus,
		&p.Goals, &p.PainPoints, &p.Behaviors, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func scanRole(row pgx.Row) (Role, error) {
	var r Role
	err := row.Scan(&r.ID, &r.WorkspaceID, &r.SourceRoleID, &r.Code, &r.Label, &r.Description,
		&r.Responsibilities, &r.CreatedAt, &r.UpdatedAt)
	return r, mapErr(err)
}

// ListPersonas devolve as personas globais seguidas das do workspace.
func (q *Queries) ListPersonas(ctx context.Context, workspaceID uuid.UUID) ([]Persona, error) {
	rows, err := q.db.Query(ctx, `
		SELECT * FROM (`+globalPersonaSelect+`
		UNION ALL`+workspacePersonaSelect+` WHERE workspace_id = $1
		) p
		ORDER BY p.workspace_id NULLS FIRST, p.name`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPersona)
}

// GetPersona procura o identificador nas duas tabelas.
func (q *Queries) GetPersona(ctx context.Context, id uuid.UUID) (Persona, error) {
	return scanPersona(q.db.QueryRow(ctx, globalPersonaSelect+` WHERE id = $1
		UNION ALL`+workspacePersonaSelect+` WHERE id = $1`, id))
}

type CreatePersonaParams struct {
	WorkspaceID     *uuid.UUID
	SourcePersonaID *uuid.UUID
	Name            string
	Type            string
	Focus           string
	Goals           []string
	PainPoints      []string
	Behaviors       []string
	CreatedBy       *uuid.UUID
}

// CreatePersona cria persona do workspace ou, sem WorkspaceID, persona global.
func (q *Queries) CreatePersona(ctx context.Context, arg CreatePersonaParams) (Persona, error) {
	if arg.WorkspaceID == nil {
		return scanPersona(q.db.QueryRow(ctx, `
			INSERT INTO personas (name, type, focus, goals, pain_points, behaviors)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, NULL::uuid, NULL::uuid, name, type, focus, goals, pain_points, behaviors, created_at, updated_at`,
			arg.Name, arg.Type, arg.Focus, nonNil(arg.Goals), nonNil(arg.PainPoints), nonNil(arg.Behaviors)))
	}
	return scanPersona(q.db.QueryRow(ctx, `
		INSERT INTO workspace_personas (workspace_id, source_persona_id, name, type, focus, goals, pain_points, behaviors, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, workspace_id, source_persona_id, name, type, focus, goals, pain_points, behaviors, created_at, updated_at`,
		arg.WorkspaceID, arg.SourcePersonaID, arg.Name, arg.Type, arg.Focus,
		nonNil(arg.Goals), nonNil(arg.PainPoints), nonNil(arg.Behaviors), arg.CreatedBy))
}

// UpsertGlobalPersona cria ou atualiza a persona global pelo nome (seed do catálogo).
func (q *Queries) UpsertGlobalPersona(ctx context.Context, arg CreatePersonaParams) (Persona, error) {
	return scanPersona(q.db.QueryRow(ctx, `
		INSERT INTO personas (name, type, focus, goals, pain_points, behaviors)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET type = EXCLUDED.type, focus = EXCLUDED.focus, goals = EXCLUDED.goals,
		    pain_points = EXCLUDED.pain_points, behaviors = EXCLUDED.behaviors, updated_at = now()
		RETURNING id, NULL::uuid, NULL::uuid, name, type, focus, goals, pain_points, behaviors, created_at, updated_at`,
		arg.Name, arg.Type, arg.Focus, nonNil(arg.Goals), nonNil(arg.PainPoints), nonNil(arg.Behaviors)))
}

// UpdatePersonaParams aplica alteração parcial; slices nulos permanecem.
type UpdatePersonaParams struct {
	ID         uuid.UUID
	Global     bool
	Name       *string
	Type       *string
	Focus      *string
	Goals      []string
	PainPoints []string
	Behaviors  []string
}

func (q *Queries) UpdatePersona(ctx context.Context, arg UpdatePersonaParams) (Persona, error) {
	table, returning := "workspace_personas", "workspace_id, source_persona_id"
	if arg.Global {
		table, returning = "personas", "NULL::uuid, NULL::uuid"
	}
	return scanPersona(q.db.QueryRow(ctx, `
		UPDATE `+table+`
		SET name = COALESCE($2, name),
		    type = COALESCE($3, type),
		    focus = COALESCE($4, focus),
		    goals = COALESCE($5, goals),
		    pain_points = COALESCE($6, pain_points),
		    behaviors = COALESCE($7, behaviors),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, `+returning+`, name, type, focus, goals, pain_points, behaviors, created_at, updated_at`,
		arg.ID, arg.Name, arg.Type, arg.Focus, arg.Goals, arg.PainPoints, arg.Behaviors))
}

func (q *Queries) DeletePersona(ctx context.Context, id uuid.UUID, global bool) error {
	table := "workspace_personas"
	if global {
		table = "personas"
	}
	tag, err := q.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRoles devolve os papéis globais seguidos dos do workspace.
func (q *Queries) ListRoles(ctx context.Context, workspaceID uuid.UUID) ([]Role, error) {
	rows, err := q.db.Query(ctx, `
		SELECT * FROM (`+globalRoleSelect+`
		UNION ALL`+workspaceRoleSelect+` WHERE workspace_id = $1
		) r
		ORDER BY r.workspace_id NULLS FIRST, r.label`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRole)
}

func (q *Queries) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	return scanRole(q.db.QueryRow(ctx, globalRoleSelect+` WHERE id = $1
		UNION ALL`+workspaceRoleSelect+` WHERE id = $1`, id))
}

// FindRoleByCode busca pelo código, preferindo o papel do workspace ao global.
func (q *Queries) FindRoleByCode(ctx context.Context, workspaceID uuid.UUID, code string) (Role, error) {
	return scanRole(q.db.QueryRow(ctx, `
		SELECT id, workspace_id, source_role_id, code, label, description, responsibilities, created_at, updated_at
		FROM (`+globalRoleSelect+` WHERE code = $2
		UNION ALL`+workspaceRoleSelect+` WHERE workspace_id = $1 AND code = $2
		) r
		ORDER BY r.workspace_id NULLS LAST
		LIMIT 1`, workspaceID, code))
}

type CreateRoleParams struct {
	WorkspaceID      *uuid.UUID
	SourceRoleID     *uuid.UUID
	Code             string
	Label            string
	Description      string
	Responsibilities []string
	CreatedBy        *uuid.UUID
}

// CreateRole cria papel do workspace ou, sem WorkspaceID, papel global.
func (q *Queries) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	if arg.WorkspaceID == nil {
		return scanRole(q.db.QueryRow(ctx, `
			INSERT INTO roles (code, label, description, responsibilities)
			VALUES ($1, $2, $3, $4)
			RETURNING id, NULL::uuid, NULL::uuid, code, label, description, responsibilities, created_at, updated_at`,
			arg.Code, arg.Label, arg.Description, nonNil(arg.Responsibilities)))
	}
	return scanRole(q.db.QueryRow(ctx, `
		INSERT INTO workspace_roles (workspace_id, source_role_id, code, label, description, responsibilities, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, workspace_id, source_role_id, code, label, description, responsibilities, created_at, updated_at`,
		arg.WorkspaceID, arg.SourceRoleID, arg.Code, arg.Label, arg.Description, nonNil(arg.Responsibilities), arg.CreatedBy))
}

// UpsertGlobalRole cria ou atualiza o papel global pelo código (seed do catálogo).
func (q *Queries) UpsertGlobalRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	return scanRole(q.db.QueryRow(ctx, `
		INSERT INTO roles (code, label, description, responsibilities)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE
		SET label = EXCLUDED.label, description = EXCLUDED.description,
		    responsibilities = EXCLUDED.responsibilities, updated_at = now()
		RETURNING id, NULL::uuid, NULL::uuid, code, label, description, responsibilities, created_at, updated_at`,
		arg.Code, arg.Label, arg.Description, nonNil(arg.Responsibilities)))
}

// UpdateRoleParams não inclui o código, que é imutável.
type UpdateRoleParams struct {
	ID               uuid.UUID
	Global           bool
	Label            *string
	Description      *string
	Responsibilities []string
}

func (q *Queries) UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error) {
	table, returning := "workspace_roles", "workspace_id, source_role_id"
	if arg.Global {
		table, returning = "roles", "NULL::uuid, NULL::uuid"
	}
	return scanRole(q.db.QueryRow(ctx, `
		UPDATE `+table+`
		SET label = COALESCE($2, label),
		    description = COALESCE($3, description),
		    responsibilities = COALESCE($4, responsibilities),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, `+returning+`, code, label, description, responsibilities, created_at, updated_at`,
		arg.ID, arg.Label, arg.Description, arg.Responsibilities))
}

func (q *Queries) DeleteRole(ctx context.Context, id uuid.UUID, global bool) error {
	table := "workspace_roles"
	if global {
		table = "roles"
	}
	tag, err := q.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
