package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
)

// AccessService verifica vínculo do usuário com workspaces e squads.
type AccessService struct {
	repo repo.Querier
}

// NewAccessService cria nova instância.
func NewAccessService(r repo.Querier) *AccessService {
	return &AccessService{repo: r}
}

// Workspace devolve o vínculo do usuário; workspace inexistente é NotFound, sem vínculo é Forbidden.
func (s *AccessService) Workspace(ctx context.Context, userID, workspaceID uuid.UUID) (repo.WorkspaceMember, error) {
	if _, err := s.repo.GetWorkspace(ctx, workspaceID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.WorkspaceMember{}, apperr.NotFound("workspace não encontrado")
		}
		return repo.WorkspaceMember{}, err
	}
	member, err := s.repo.GetWorkspaceMembership(ctx, workspaceID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.WorkspaceMember{}, apperr.ErrForbidden
	}
	return member, err
}

// SquadAccess reúne a squad e o vínculo do usuário com o workspace dela.
type SquadAccess struct {
	Squad  repo.Squad
	Member repo.WorkspaceMember
}

// Squad resolve a squad e confere o vínculo com o workspace dono.
func (s *AccessService) Squad(ctx context.Context, userID, squadID uuid.UUID) (SquadAccess, error) {
	squad, err := s.repo.GetSquad(ctx, squadID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return SquadAccess{}, apperr.NotFound("squad não encontrada")
		}
		return SquadAccess{}, err
	}
	member, err := s.repo.GetWorkspaceMembership(ctx, squad.WorkspaceID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return SquadAccess{}, apperr.ErrForbidden
	}
	if err != nil {
		return SquadAccess{}, err
	}
	return SquadAccess{Squad: squad, Member: member}, nil
}

// IsAdmin indica se o usuário pode alterar o catálogo global.
func (s *AccessService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == "admin", nil
}
