package squad

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

// ActivateInput referencia um papel ou persona do catálogo visível ao workspace.
type ActivateInput struct {
	ID                uuid.UUID `json:"id"`
	CustomName        *string   `json:"custom_name"`
	CustomDescription *string   `json:"custom_description"`
}

// AssociationPatch altera estado e textos próprios da squad.
type AssociationPatch struct {
	Active            *bool   `json:"active"`
	CustomName        *string `json:"custom_name"`
	CustomDescription *string `json:"custom_description"`
}

// ActivateRoleTx associa o papel à squad. created=false indica que já estava ativo.
func ActivateRoleTx(ctx context.Context, q repo.Querier, squadID uuid.UUID, ref catalog.Ref, customName, customDescription *string) (repo.SquadRole, bool, error) {
	global, workspace := catalog.Split(ref)
	return q.ActivateSquadRole(ctx, repo.ActivateSquadRoleParams{
		SquadID:           squadID,
		RoleID:            global,
		WorkspaceRoleID:   workspace,
		CustomName:        util.TrimPtr(customName),
		CustomDescription: util.TrimPtr(customDescription),
	})
}

// AddPersonaTx associa a persona à squad. created=false indica que já estava ativa.
func AddPersonaTx(ctx context.Context, q repo.Querier, squadID uuid.UUID, ref catalog.Ref, customName, customDescription *string) (repo.SquadPersona, bool, error) {
	global, workspace := catalog.Split(ref)
	return q.AddSquadPersona(ctx, repo.AddSquadPersonaParams{
		SquadID:            squadID,
		PersonaID:          global,
		WorkspacePersonaID: workspace,
		CustomName:         util.TrimPtr(customName),
		CustomDescription:  util.TrimPtr(customDescription),
	})
}

func (s *Service) ListRoles(ctx context.Context, squadID uuid.UUID) ([]repo.SquadRole, error) {
	return s.store.ListSquadRoles(ctx, squadID)
}

func (s *Service) ActivateRole(ctx context.Context, sq repo.Squad, in ActivateInput) (repo.SquadRole, bool, error) {
	role, err := catalog.VisibleRole(ctx, s.store, sq.WorkspaceID, in.ID)
	if err != nil {
		return repo.SquadRole{}, false, err
	}
	return ActivateRoleTx(ctx, s.store, sq.ID, catalog.RefOf(role.ID, role.WorkspaceID), in.CustomName, in.CustomDescription)
}

// UpdateRole reativar uma associação que conflite com outra ativa resulta em Conflict.
func (s *Service) UpdateRole(ctx context.Context, squadID, id uuid.UUID, patch AssociationPatch) (repo.SquadRole, error) {
	sr, err := s.store.UpdateSquadRole(ctx, repo.UpdateSquadAssociationParams{
		SquadID:           squadID,
		ID:                id,
		Active:            patch.Active,
		CustomName:        util.TrimPtr(patch.CustomName),
		CustomDescription: util.TrimPtr(patch.CustomDescription),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return repo.SquadRole{}, apperr.Conflict("papel já está ativo na squad")
	}
	return sr, notFound(err, "papel da squad não encontrado")
}

// RemoveRole apaga só a associação; o papel continua no catálogo.
func (s *Service) RemoveRole(ctx context.Context, squadID, id uuid.UUID) error {
	return notFound(s.store.DeleteSquadRole(ctx, squadID, id), "papel da squad não encontrado")
}

// ReplaceRole duplica o papel global associado em uma cópia do workspace e troca a associação,
// preservando textos próprios e atribuições de membros.
func (s *Service) ReplaceRole(ctx context.Context, userID uuid.UUID, sq repo.Squad, squadRoleID uuid.UUID, patch catalog.RolePatch) (repo.SquadRole, error) {
	var replaced repo.SquadRole
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		current, err := q.GetSquadRole(ctx, sq.ID, squadRoleID)
		if err != nil {
			return notFound(err, "papel da squad não encontrado")
		}
		sourceID := current.RoleID
		if sourceID == nil {
			sourceID = current.WorkspaceRoleID
		}
		source, err := q.GetRole(ctx, *sourceID)
		if err != nil {
			return err
		}
		clone, err := catalog.CloneRoleTx(ctx, q, sq.WorkspaceID, source, patch, &userID)
		if err != nil {
			return err
		}

		assignments, err := q.ListSquadMemberRoles(ctx, sq.ID)
		if err != nil {
			return err
		}
		if err := q.DeleteSquadRole(ctx, sq.ID, current.ID); err != nil {
			return err
		}
		replaced, _, err = ActivateRoleTx(ctx, q, sq.ID, catalog.RefOf(clone.ID, clone.WorkspaceID), current.CustomName, current.CustomDescription)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if a.SquadRoleID != current.ID {
				continue
			}
			if _, err := q.InsertSquadMemberRole(ctx, repo.InsertSquadMemberRoleParams{
				SquadID:       sq.ID,
				SquadMemberID: a.SquadMemberID,
				SquadRoleID:   replaced.ID,
				AssignedBy:    a.AssignedBy,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return replaced, err
}

func (s *Service) ListPersonas(ctx context.Context, squadID uuid.UUID) ([]repo.SquadPersona, error) {
	return s.store.ListSquadPersonas(ctx, squadID)
}

func (s *Service) AddPersona(ctx context.Context, sq repo.Squad, in ActivateInput) (repo.SquadPersona, bool, error) {
	persona, err := catalog.VisiblePersona(ctx, s.store, sq.WorkspaceID, in.ID)
	if err != nil {
		return repo.SquadPersona{}, false, err
	}
	return AddPersonaTx(ctx, s.store, sq.ID, catalog.RefOf(persona.ID, persona.WorkspaceID), in.CustomName, in.CustomDescription)
}

func (s *Service) UpdatePersona(ctx context.Context, squadID, id uuid.UUID, patch AssociationPatch) (repo.SquadPersona, error) {
	sp, err := s.store.UpdateSquadPersona(ctx, repo.UpdateSquadAssociationParams{
		SquadID:           squadID,
		ID:                id,
		Active:            patch.Active,
		CustomName:        util.TrimPtr(patch.CustomName),
		CustomDescription: util.TrimPtr(patch.CustomDescription),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return repo.SquadPersona{}, apperr.Conflict("persona já está ativa na squad")
	}
	return sp, notFound(err, "persona da squad não encontrada")
}

func (s *Service) RemovePersona(ctx context.Context, squadID, id uuid.UUID) error {
	return notFound(s.store.DeleteSquadPersona(ctx, squadID, id), "persona da squad não encontrada")
}

// ReplacePersona troca a persona associada por uma cópia editável, sem alterar o tamanho da lista.
func (s *Service) ReplacePersona(ctx context.Context, userID uuid.UUID, sq repo.Squad, squadPersonaID uuid.UUID, patch catalog.PersonaPatch) (repo.SquadPersona, error) {
	var replaced repo.SquadPersona
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		current, err := q.GetSquadPersona(ctx, sq.ID, squadPersonaID)
		if err != nil {
			return notFound(err, "persona da squad não encontrada")
		}
		sourceID := current.PersonaID
		if sourceID == nil {
			sourceID = current.WorkspacePersonaID
		}
		source, err := q.GetPersona(ctx, *sourceID)
		if err != nil {
			return err
		}
		clone, err := catalog.ClonePersonaTx(ctx, q, sq.WorkspaceID, source, patch, &userID)
		if err != nil {
			return err
		}
		if err := q.DeleteSquadPersona(ctx, sq.ID, current.ID); err != nil {
			return err
		}
		replaced, _, err = AddPersonaTx(ctx, q, sq.ID, catalog.RefOf(clone.ID, clone.WorkspaceID), current.CustomName, current.CustomDescription)
		return err
	})
	return replaced, err
}
