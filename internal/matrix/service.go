// Package matrix guarda as versões da matriz de validação (papel x persona x checkpoint).
// Versões são somente acréscimo: salvar sempre cria uma nova.
package matrix

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

var RequirementLevels = []string{"obrigatorio", "recomendado", "opcional"}

type Service struct {
	store repo.Store
}

func NewService(store repo.Store) *Service {
	return &Service{store: store}
}

type EntryInput struct {
	SquadRoleID      uuid.UUID `json:"squad_role_id"`
	SquadPersonaID   uuid.UUID `json:"squad_persona_id"`
	CheckpointType   string    `json:"checkpoint_type"`
	RequirementLevel string    `json:"requirement_level"`
}

type SaveInput struct {
	Description string       `json:"description"`
	Entries     []EntryInput `json:"entries"`
}

// SaveVersion grava a próxima versão da squad. A linha da squad fica travada durante
// a transação para que duas gravações simultâneas não disputem o mesmo número.
func (s *Service) SaveVersion(ctx context.Context, userID, squadID uuid.UUID, in SaveInput) (repo.MatrixVersion, error) {
	for i := range in.Entries {
		in.Entries[i].CheckpointType = strings.TrimSpace(in.Entries[i].CheckpointType)
		if in.Entries[i].CheckpointType == "" {
			return repo.MatrixVersion{}, apperr.Validation("checkpoint_type obrigatório")
		}
		if err := util.OneOf(in.Entries[i].RequirementLevel, "requirement_level", RequirementLevels...); err != nil {
			return repo.MatrixVersion{}, err
		}
	}

	var saved repo.MatrixVersion
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		if _, err := q.LockSquad(ctx, squadID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("squad não encontrada")
			}
			return err
		}
		entries, err := resolveEntries(ctx, q, squadID, in.Entries)
		if err != nil {
			return err
		}
		current, err := q.MaxMatrixVersion(ctx, squadID)
		if err != nil {
			return err
		}
		saved, err = q.InsertMatrixVersion(ctx, repo.InsertMatrixVersionParams{
			SquadID:     squadID,
			Version:     current + 1,
			Description: strings.TrimSpace(in.Description),
			CreatedBy:   &userID,
			Entries:     entries,
		})
		return err
	})
	return saved, err
}

// resolveEntries confere que papéis e personas são da squad e copia seus rótulos.
func resolveEntries(ctx context.Context, q repo.Querier, squadID uuid.UUID, in []EntryInput) ([]repo.MatrixEntry, error) {
	roles, err := q.ListSquadRoles(ctx, squadID)
	if err != nil {
		return nil, err
	}
	personas, err := q.ListSquadPersonas(ctx, squadID)
	if err != nil {
		return nil, err
	}
	roleLabels := make(map[uuid.UUID]string, len(roles))
	for _, r := range roles {
		roleLabels[r.ID] = labelOr(r.CustomName, r.Label)
	}
	personaLabels := make(map[uuid.UUID]string, len(personas))
	for _, p := range personas {
		personaLabels[p.ID] = labelOr(p.CustomName, p.Name)
	}

	type key struct {
		role, persona uuid.UUID
		checkpoint    string
	}
	seen := map[key]bool{}
	out := make([]repo.MatrixEntry, 0, len(in))
	for _, e := range in {
		roleLabel, ok := roleLabels[e.SquadRoleID]
		if !ok {
			return nil, apperr.Validation("papel da matriz não pertence à squad")
		}
		personaLabel, ok := personaLabels[e.SquadPersonaID]
		if !ok {
			return nil, apperr.Validation("persona da matriz não pertence à squad")
		}
		k := key{e.SquadRoleID, e.SquadPersonaID, e.CheckpointType}
		if seen[k] {
			return nil, apperr.Validation("entrada repetida na matriz: " + roleLabel + " / " + personaLabel + " / " + e.CheckpointType)
		}
		seen[k] = true
		out = append(out, repo.MatrixEntry{
			SquadRoleID:      e.SquadRoleID,
			RoleLabel:        roleLabel,
			SquadPersonaID:   e.SquadPersonaID,
			PersonaLabel:     personaLabel,
			CheckpointType:   e.CheckpointType,
			RequirementLevel: e.RequirementLevel,
		})
	}
	return out, nil
}

func labelOr(custom *string, fallback string) string {
	if custom != nil && strings.TrimSpace(*custom) != "" {
		return *custom
	}
	return fallback
}

// Latest devolve a versão mais recente com entradas.
func (s *Service) Latest(ctx context.Context, squadID uuid.UUID) (repo.MatrixVersion, error) {
	return s.GetVersion(ctx, squadID, 0)
}

func (s *Service) ListVersions(ctx context.Context, squadID uuid.UUID) ([]repo.MatrixVersion, error) {
	return s.store.ListMatrixVersions(ctx, squadID)
}

func (s *Service) GetVersion(ctx context.Context, squadID uuid.UUID, version int) (repo.MatrixVersion, error) {
	v, err := s.store.GetMatrixVersion(ctx, squadID, version)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.MatrixVersion{}, apperr.NotFound("matriz de validação não encontrada")
	}
	return v, err
}
