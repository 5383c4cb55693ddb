package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const matrixVersionColumns = `id, squad_id, version, description, created_by, created_at`

func scanMatrixVersion(row pgx.Row) (MatrixVersion, error) {
	v := MatrixVersion{Entries: []MatrixEntry{}}
	err := row.Scan(&v.ID, &v.SquadID, &v.Version, &v.Description, &v.CreatedBy, &v.CreatedAt)
	return v, mapErr(err)
}

// MaxMatrixVersion devolve a maior versão da squad ou 0 quando não há nenhuma.
func (q *Queries) MaxMatrixVersion(ctx context.Context, squadID uuid.UUID) (int, error) {
	var current int
	err := q.db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM validation_matrix_versions WHERE squad_id = $1`, squadID).Scan(&current)
	return current, err
}

type InsertMatrixVersionParams struct {
	SquadID     uuid.UUID
	Version     int
	Description string
	CreatedBy   *uuid.UUID
	Entries     []MatrixEntry
}

// InsertMatrixVersion grava a versão e suas entradas; deve rodar dentro de transação.
func (q *Queries) InsertMatrixVersion(ctx context.Context, arg InsertMatrixVersionParams) (MatrixVersion, error) {
	v, err := scanMatrixVersion(q.db.QueryRow(ctx, `
		INSERT INTO validation_matrix_versions (squad_id, version, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+matrixVersionColumns,
		arg.SquadID, arg.Version, arg.Description, arg.CreatedBy))
	if err != nil {
		return MatrixVersion{}, err
	}
	for _, e := range arg.Entries {
		err := q.db.QueryRow(ctx, `
			INSERT INTO validation_matrix_entries (version_id, squad_role_id, role_label, squad_persona_id,
			                                       persona_label, checkpoint_type, requirement_level)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			v.ID, e.SquadRoleID, e.RoleLabel, e.SquadPersonaID, e.PersonaLabel, e.CheckpointType, e.RequirementLevel).Scan(&e.ID)
		if err != nil {
			return MatrixVersion{}, mapErr(err)
		}
		v.Entries = append(v.Entries, e)
	}
	return v, nil
}

// ListMatrixVersions lista as versões sem entradas, mais recentes primeiro.
func (q *Queries) ListMatrixVersions(ctx context.Context, squadID uuid.UUID) ([]MatrixVersion, error) {
	rows, err := q.db.Query(ctx, `SELECT `+matrixVersionColumns+` FROM validation_matrix_versions WHERE squad_id = $1 ORDER BY version DESC`, squadID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMatrixVersion)
}

// GetMatrixVersion devolve a versão com entradas. version <= 0 seleciona a mais recente.
func (q *Queries) GetMatrixVersion(ctx context.Context, squadID uuid.UUID, version int) (MatrixVersion, error) {
	v, err := scanMatrixVersion(q.db.QueryRow(ctx, `
		SELECT `+matrixVersionColumns+`
		FROM validation_matrix_versions
		WHERE squad_id = $1 AND ($2 <= 0 OR version = $2)
		ORDER BY version DESC
		LIMIT 1`, squadID, version))
	if err != nil {
		return MatrixVersion{}, err
	}
	rows, err := q.db.Query(ctx, `
		SELECT id, squad_role_id, role_label, squad_persona_id, persona_label, checkpoint_type, requirement_level
		FROM validation_matrix_entries
		WHERE version_id = $1
		ORDER BY role_label, persona_label, checkpoint_type`, v.ID)
	if err != nil {
		return MatrixVersion{}, err
	}
	v.Entries, err = collect(rows, func(row pgx.Row) (MatrixEntry, error) {
		var e MatrixEntry
		err := row.Scan(&e.ID, &e.SquadRoleID, &e.RoleLabel, &e.SquadPersonaID, &e.PersonaLabel, &e.CheckpointType, &e.RequirementLevel)
		return e, err
	})
	return v, err
}
