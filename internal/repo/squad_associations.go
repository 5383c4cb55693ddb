package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const squadRoleSelect = `
	SELECT sr.id, sr.squad_id, sr.role_id, sr.workspace_role_id, sr.active, sr.custom_name, sr.custom_description,
	       COALESCE(r.code, wr.code), COALESCE(r.label, wr.label), sr.created_at
	FROM squad_roles sr
	LEFT JOIN roles r ON r.id = sr.role_id
	LEFT JOIN workspace_roles wr ON wr.id = sr.workspace_role_id`

const squadPersonaSelect = `
	SELECT sp.id, sp.squad_id, sp.persona_id, sp.workspace_persona_id, sp.active, sp.custom_name, sp.custom_description,
	       COALESCE(p.name, wp.name), sp.created_at
	FROM squad_personas sp
	LEFT JOIN personas p ON p.id = sp.persona_id
	LEFT JOIN workspace_personas wp ON wp.id = sp.workspace_persona_id`

func scanSquadRole(row pgx.Row) (SquadRole, error) {
	var sr SquadRole
	err := row.Scan(&sr.ID, &sr.SquadID, &sr.RoleID, &sr.WorkspaceRoleID, &sr.Active, &sr.CustomName,
		&sr.CustomDescription, &sr.Code, &sr.Label, &sr.CreatedAt)
	return sr, mapErr(err)
}

func scanSquadPersona(row pgx.Row) (SquadPersona, error) {
	var sp SquadPersona
	err := row.Scan(&sp.ID, &sp.SquadID, &sp.PersonaID, &sp.WorkspacePersonaID, &sp.Active, &sp.CustomName,
		&sp.CustomDescription, &sp.Name, &sp.CreatedAt)
	return sp, mapErr(err)
}

func (q *Queries) ListSquadRoles(ctx context.Context, squadID uuid.UUID) ([]SquadRole, error) {
	rows, err := q.db.Query(ctx, squadRoleSelect+` WHERE sr.squad_id = $1 ORDER BY sr.created_at`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSquadRole)
}

func (q *Queries) GetSquadRole(ctx context.Context, squadID, id uuid.UUID) (SquadRole, error) {
	return scanSquadRole(q.db.QueryRow(ctx, squadRoleSelect+` WHERE sr.squad_id = $1 AND sr.id = $2`, squadID, id))
}

// ActivateSquadRoleParams referencia exatamente um entre RoleID e WorkspaceRoleID.
type ActivateSquadRoleParams struct {
	SquadID           uuid.UUID
	RoleID            *uuid.UUID
	WorkspaceRoleID   *uuid.UUID
	CustomName        *string
	CustomDescription *string
}

// ActivateSquadRole insere a associação ativa. Se já existir uma ativa para o mesmo papel,
// devolve a existente com created=false.
func (q *Queries) ActivateSquadRole(ctx context.Context, arg ActivateSquadRoleParams) (SquadRole, bool, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, `
		INSERT INTO squad_roles (squad_id, role_id, workspace_role_id, custom_name, custom_description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
		RETURNING id`,
		arg.SquadID, arg.RoleID, arg.WorkspaceRoleID, arg.CustomName, arg.CustomDescription).Scan(&id)
	if err == nil {
		sr, err := q.GetSquadRole(ctx, arg.SquadID, id)
		return sr, true, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return SquadRole{}, false, mapErr(err)
	}
	sr, err := scanSquadRole(q.db.QueryRow(ctx, squadRoleSelect+`
		WHERE sr.squad_id = $1 AND sr.active
		  AND sr.role_id IS NOT DISTINCT FROM $2
		  AND sr.workspace_role_id IS NOT DISTINCT FROM $3`,
		arg.SquadID, arg.RoleID, arg.WorkspaceRoleID))
	return sr, false, err
}

type UpdateSquadAssociationParams struct {
	SquadID           uuid.UUID
	ID                uuid.UUID
	Active            *bool
	CustomName        *string
	CustomDescription *string
}

func (q *Queries) UpdateSquadRole(ctx context.Context, arg UpdateSquadAssociationParams) (SquadRole, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE squad_roles
		SET active = COALESCE($3, active),
		    custom_name = COALESCE($4, custom_name),
		    custom_description = COALESCE($5, custom_description),
		    updated_at = now()
		WHERE squad_id = $1 AND id = $2`,
		arg.SquadID, arg.ID, arg.Active, arg.CustomName, arg.CustomDescription)
	if err != nil {
		return SquadRole{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return SquadRole{}, ErrNotFound
	}
	return q.GetSquadRole(ctx, arg.SquadID, arg.ID)
}

// DeleteSquadRole remove só a associação; o papel continua no catálogo.
func (q *Queries) DeleteSquadRole(ctx context.Context, squadID, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM squad_roles WHERE squad_id = $1 AND id = $2`, squadID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (q *Queries) ListSquadPersonas(ctx context.Context, squadID uuid.UUID) ([]SquadPersona, error) {
	rows, err := q.db.Query(ctx, squadPersonaSelect+` WHERE sp.squad_id = $1 ORDER BY sp.created_at`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSquadPersona)
}

func (q *Queries) GetSquadPersona(ctx context.Context, squadID, id uuid.UUID) (SquadPersona, error) {
	return scanSquadPersona(q.db.QueryRow(ctx, squadPersonaSelect+` WHERE sp.squad_id = $1 AND sp.id = $2`, squadID, id))
}

// AddSquadPersonaParams referencia exatamente um entre PersonaID e WorkspacePersonaID.
type AddSquadPersonaParams struct {
	SquadID            uuid.UUID
	PersonaID          *uuid.UUID
	WorkspacePersonaID *uuid.UUID
	CustomName         *string
	CustomDescription  *string
}

// AddSquadPersona segue a mesma regra de ActivateSquadRole.
func (q *Queries) AddSquadPersona(ctx context.Context, arg AddSquadPersonaParams) (SquadPersona, bool, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, `
		INSERT INTO squad_personas (squad_id, persona_id, workspace_persona_id, custom_name, custom_description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
		RETURNING id`,
		arg.SquadID, arg.PersonaID, arg.WorkspacePersonaID, arg.CustomName, arg.CustomDescription).Scan(&id)
	if err == nil {
		sp, err := q.GetSquadPersona(ctx, arg.SquadID, id)
		return sp, true, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return SquadPersona{}, false, mapErr(err)
	}
	sp, err := scanSquadPersona(q.db.QueryRow(ctx, squadPersonaSelect+`
		WHERE sp.squad_id = $1 AND sp.active
		  AND sp.persona_id IS NOT DISTINCT FROM $2
		  AND sp.workspace_persona_id IS NOT DISTINCT FROM $3`,
		arg.SquadID, arg.PersonaID, arg.WorkspacePersonaID))
	return sp, false, err
}

func (q *Queries) UpdateSquadPersona(ctx context.Context, arg UpdateSquadAssociationParams) (SquadPersona, error) {
	tag, err := q.db.Exec(ctx, `
		UPDATE squad_personas
		SET active = COALESCE($3, active),
		    custom_name = COALESCE($4, custom_name),
		    custom_description = COALESCE($5, custom_description),
		    updated_at = now()
		WHERE squad_id = $1 AND id = $2`,
		arg.SquadID, arg.ID, arg.Active, arg.CustomName, arg.CustomDescription)
	if err != nil {
		return SquadPersona{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return SquadPersona{}, ErrNotFound
	}
	return q.GetSquadPersona(ctx, arg.SquadID, arg.ID)
}

func (q *Queries) DeleteSquadPersona(ctx context.Context, squadID, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM squad_personas WHERE squad_id = $1 AND id = $2`, squadID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const memberRoleColumns = `id, squad_id, squad_member_id, squad_role_id, assigned_by, assigned_at`

func scanMemberRole(row pgx.Row) (SquadMemberRole, error) {
	var mr SquadMemberRole
	err := row.Scan(&mr.ID, &mr.SquadID, &mr.SquadMemberID, &mr.SquadRoleID, &mr.AssignedBy, &mr.AssignedAt)
	return mr, mapErr(err)
}

func (q *Queries) ListSquadMemberRoles(ctx context.Context, squadID uuid.UUID) ([]SquadMemberRole, error) {
	rows, err := q.db.Query(ctx, `SELECT `+memberRoleColumns+` FROM squad_member_roles WHERE squad_id = $1 ORDER BY assigned_at`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMemberRole)
}

// DeleteSquadMemberRole remove a atribuição do membro e informa se havia alguma.
func (q *Queries) DeleteSquadMemberRole(ctx context.Context, squadID, memberID uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM squad_member_roles WHERE squad_id = $1 AND squad_member_id = $2`, squadID, memberID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type InsertSquadMemberRoleParams struct {
	SquadID       uuid.UUID
	SquadMemberID uuid.UUID
	SquadRoleID   uuid.UUID
	AssignedBy    *uuid.UUID
}

func (q *Queries) InsertSquadMemberRole(ctx context.Context, arg InsertSquadMemberRoleParams) (SquadMemberRole, error) {
	return scanMemberRole(q.db.QueryRow(ctx, `
		INSERT INTO squad_member_roles (squad_id, squad_member_id, squad_role_id, assigned_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+memberRoleColumns,
		arg.SquadID, arg.SquadMemberID, arg.SquadRoleID, arg.AssignedBy))
}
