package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const phaseColumns = `id, squad_id, name, description, objectives, position, created_at`

func scanPhase(row pgx.Row) (SquadPhase, error) {
	var p SquadPhase
	err := row.Scan(&p.ID, &p.SquadID, &p.Name, &p.Description, &p.Objectives, &p.Position, &p.CreatedAt)
	return p, mapErr(err)
}

func (q *Queries) ListPhases(ctx context.Context, squadID uuid.UUID) ([]SquadPhase, error) {
	rows, err := q.db.Query(ctx, `SELECT `+phaseColumns+` FROM squad_phases WHERE squad_id = $1 ORDER BY position`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPhase)
}

type AppendPhaseParams struct {
	SquadID     uuid.UUID
	Name        string
	Description string
	Objectives  []string
}

// AppendPhase adiciona a fase ao final do fluxo.
func (q *Queries) AppendPhase(ctx context.Context, arg AppendPhaseParams) (SquadPhase, error) {
	return scanPhase(q.db.QueryRow(ctx, `
		INSERT INTO squad_phases (squad_id, name, description, objectives, position)
		SELECT $1, $2, $3, $4, COALESCE(MAX(position), 0) + 1
		FROM squad_phases
		WHERE squad_id = $1
		RETURNING `+phaseColumns,
		arg.SquadID, arg.Name, arg.Description, nonNil(arg.Objectives)))
}

func (q *Queries) DeletePhase(ctx context.Context, squadID, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM squad_phases WHERE squad_id = $1 AND id = $2`, squadID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const sectionColumns = `squad_id, kind, summary, details, updated_by, updated_at`

func scanSection(row pgx.Row) (SquadSection, error) {
	var s SquadSection
	err := row.Scan(&s.SquadID, &s.Kind, &s.Summary, &s.Details, &s.UpdatedBy, &s.UpdatedAt)
	return s, mapErr(err)
}

func (q *Queries) ListSections(ctx context.Context, squadID uuid.UUID) ([]SquadSection, error) {
	rows, err := q.db.Query(ctx, `SELECT `+sectionColumns+` FROM squad_sections WHERE squad_id = $1 ORDER BY kind`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSection)
}

type UpsertSectionParams struct {
	SquadID   uuid.UUID
	Kind      string
	Summary   string
	Details   []string
	UpdatedBy *uuid.UUID
}

// UpsertSection grava o bloco (squad, kind), substituindo o conteúdo anterior.
func (q *Queries) UpsertSection(ctx context.Context, arg UpsertSectionParams) (SquadSection, error) {
	return scanSection(q.db.QueryRow(ctx, `
		INSERT INTO squad_sections (squad_id, kind, summary, details, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (squad_id, kind) DO UPDATE
		SET summary = EXCLUDED.summary, details = EXCLUDED.details,
		    updated_by = EXCLUDED.updated_by, updated_at = now()
		RETURNING `+sectionColumns,
		arg.SquadID, arg.Kind, arg.Summary, nonNil(arg.Details), arg.UpdatedBy))
}
