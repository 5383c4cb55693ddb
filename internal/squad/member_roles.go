package squad

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
)

func (s *Service) ListMemberRoles(ctx context.Context, squadID uuid.UUID) ([]repo.SquadMemberRole, error) {
	return s.store.ListSquadMemberRoles(ctx, squadID)
}

// AssignMemberRole substitui, em uma transação, a atribuição atual do membro pela nova.
func (s *Service) AssignMemberRole(ctx context.Context, userID, squadID, memberID, squadRoleID uuid.UUID) (repo.SquadMemberRole, error) {
	var assigned repo.SquadMemberRole
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		if _, err := q.GetSquadMember(ctx, squadID, memberID); err != nil {
			return notFound(err, "membro não encontrado")
		}
		sr, err := q.GetSquadRole(ctx, squadID, squadRoleID)
		if err != nil {
			return notFound(err, "papel da squad não encontrado")
		}
		if !sr.Active {
			return apperr.Validation("papel inativo não pode ser atribuído")
		}
		if _, err := q.DeleteSquadMemberRole(ctx, squadID, memberID); err != nil {
			return err
		}
		assigned, err = q.InsertSquadMemberRole(ctx, repo.InsertSquadMemberRoleParams{
			SquadID:       squadID,
			SquadMemberID: memberID,
			SquadRoleID:   squadRoleID,
			AssignedBy:    &userID,
		})
		return err
	})
	return assigned, err
}

func (s *Service) UnassignMemberRole(ctx context.Context, squadID, memberID uuid.UUID) error {
	deleted, err := s.store.DeleteSquadMemberRole(ctx, squadID, memberID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("membro não possui papel atribuído")
	}
	return nil
}
