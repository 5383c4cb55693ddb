package workspace

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Service contém as regras de workspaces e de seus membros.
type Service struct {
	store repo.Store
	cache *ListCache
}

// NewService cria uma nova instância de Service.
func NewService(store repo.Store, cache *ListCache) *Service {
	return &Service{store: store, cache: cache}
}

// CreateInput descreve um novo workspace.
type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Type        string  `json:"type"`
}

// UpdateInput aplica alteração parcial.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

// AddMemberInput vincula usuário já cadastrado pelo e-mail.
type AddMemberInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// List devolve os workspaces do usuário, servindo do cache quando possível.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]repo.Workspace, error) {
	if items, ok := s.cache.Get(ctx, userID); ok {
		return items, nil
	}
	items, err := s.store.ListWorkspacesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, userID, items)
	return items, nil
}

// ListAll devolve todos os workspaces (uso administrativo).
func (s *Service) ListAll(ctx context.Context) ([]repo.Workspace, error) {
	return s.store.ListWorkspaces(ctx)
}

// Get busca o workspace.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repo.Workspace, error) {
	ws, err := s.store.GetWorkspace(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Workspace{}, apperr.NotFound("workspace não encontrado")
	}
	return ws, err
}

// Create cria o workspace e torna o criador owner, na mesma transação.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (repo.Workspace, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return repo.Workspace{}, err
	}
	if strings.TrimSpace(input.Type) == "" {
		input.Type = "time"
	}

	var ws repo.Workspace
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		var err error
		ws, err = q.CreateWorkspace(ctx, repo.CreateWorkspaceParams{
			Name:        input.Name,
			Description: util.TrimPtr(input.Description),
			Type:        strings.TrimSpace(input.Type),
			CreatedBy:   &ownerID,
		})
		if err != nil {
			return err
		}
		_, err = q.AddWorkspaceMember(ctx, ws.ID, ownerID, RoleOwner)
		return err
	})
	if err != nil {
		return repo.Workspace{}, err
	}
	s.cache.Invalidate(ctx, ownerID)
	return ws, nil
}

// Update exige papel owner ou admin.
func (s *Service) Update(ctx context.Context, actor repo.WorkspaceMember, input UpdateInput) (repo.Workspace, error) {
	if !canManage(actor) {
		return repo.Workspace{}, apperr.ErrForbidden
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return repo.Workspace{}, apperr.Validation("nome obrigatório")
	}
	ws, err := s.store.UpdateWorkspace(ctx, repo.UpdateWorkspaceParams{
		ID:          actor.WorkspaceID,
		Name:        util.TrimPtr(input.Name),
		Description: util.TrimPtr(input.Description),
		Type:        util.TrimPtr(input.Type),
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Workspace{}, apperr.NotFound("workspace não encontrado")
		}
		return repo.Workspace{}, err
	}
	s.invalidateMembers(ctx, ws.ID)
	return ws, nil
}

// Delete exige papel owner.
func (s *Service) Delete(ctx context.Context, actor repo.WorkspaceMember) error {
	if actor.Role != RoleOwner {
		return apperr.ErrForbidden
	}
	members, err := s.store.ListWorkspaceMembers(ctx, actor.WorkspaceID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteWorkspace(ctx, actor.WorkspaceID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("workspace não encontrado")
		}
		return err
	}
	s.cache.Invalidate(ctx, memberIDs(members)...)
	return nil
}

// ListMembers lista os membros do workspace.
func (s *Service) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]repo.WorkspaceMember, error) {
	return s.store.ListWorkspaceMembers(ctx, workspaceID)
}

// AddMember vincula um usuário existente; apenas owner pode conceder owner.
func (s *Service) AddMember(ctx context.Context, actor repo.WorkspaceMember, input AddMemberInput) (repo.WorkspaceMember, error) {
	if !canManage(actor) {
		return repo.WorkspaceMember{}, apperr.ErrForbidden
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return repo.WorkspaceMember{}, err
	}
	if input.Role == "" {
		input.Role = RoleMember
	}
	if err := util.OneOf(input.Role, "papel", RoleOwner, RoleAdmin, RoleMember); err != nil {
		return repo.WorkspaceMember{}, err
	}
	if input.Role == RoleOwner && actor.Role != RoleOwner {
		return repo.WorkspaceMember{}, apperr.ErrForbidden
	}

	user, err := s.store.FindUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.WorkspaceMember{}, apperr.NotFound("usuário não encontrado; é preciso ter feito login ao menos uma vez")
		}
		return repo.WorkspaceMember{}, err
	}
	member, err := s.store.AddWorkspaceMember(ctx, actor.WorkspaceID, user.ID, input.Role)
	if err != nil {
		return repo.WorkspaceMember{}, err
	}
	member.UserName, member.UserEmail = user.Name, user.Email
	s.cache.Invalidate(ctx, user.ID)
	return member, nil
}

func (s *Service) invalidateMembers(ctx context.Context, workspaceID uuid.UUID) {
	members, err := s.store.ListWorkspaceMembers(ctx, workspaceID)
	if err != nil {
		return
	}
	s.cache.Invalidate(ctx, memberIDs(members)...)
}

func canManage(m repo.WorkspaceMember) bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

func memberIDs(members []repo.WorkspaceMember) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}
