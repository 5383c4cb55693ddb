// Package squad cuida das squads, seus membros, papéis e personas ativos e do fluxo de trabalho.
package squad

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

// Statuses é o conjunto aceito; qualquer transição entre eles é permitida.
var Statuses = []string{"rascunho", "ativa", "aguardando_execucao", "em_revisao", "concluida", "pausada"}

type Service struct {
	store repo.Store
}

func NewService(store repo.Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type MemberInput struct {
	UserID *uuid.UUID `json:"user_id"`
	Name   string     `json:"name"`
	Email  *string    `json:"email"`
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID) ([]repo.Squad, error) {
	return s.store.ListSquads(ctx, workspaceID)
}

func (s *Service) Create(ctx context.Context, userID, workspaceID uuid.UUID, in CreateInput) (repo.Squad, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := util.RequireString(in.Name, "nome"); err != nil {
		return repo.Squad{}, err
	}
	if in.Status != "" {
		if err := util.OneOf(in.Status, "status", Statuses...); err != nil {
			return repo.Squad{}, err
		}
	}
	return s.store.CreateSquad(ctx, repo.CreateSquadParams{
		WorkspaceID: workspaceID,
		Name:        in.Name,
		Description: util.TrimPtr(in.Description),
		Status:      in.Status,
		CreatedBy:   &userID,
	})
}

func (s *Service) Update(ctx context.Context, squadID uuid.UUID, in UpdateInput) (repo.Squad, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return repo.Squad{}, apperr.Validation("nome obrigatório")
	}
	if in.Status != nil {
		if err := util.OneOf(*in.Status, "status", Statuses...); err != nil {
			return repo.Squad{}, err
		}
	}
	sq, err := s.store.UpdateSquad(ctx, repo.UpdateSquadParams{
		ID:          squadID,
		Name:        util.TrimPtr(in.Name),
		Description: util.TrimPtr(in.Description),
		Status:      in.Status,
	})
	return sq, notFound(err, "squad não encontrada")
}

func (s *Service) Delete(ctx context.Context, squadID uuid.UUID) error {
	return notFound(s.store.DeleteSquad(ctx, squadID), "squad não encontrada")
}

func (s *Service) ListMembers(ctx context.Context, squadID uuid.UUID) ([]repo.SquadMember, error) {
	return s.store.ListSquadMembers(ctx, squadID)
}

// AddMember cadastra participante; com user_id, nome e e-mail vêm do usuário quando omitidos.
func (s *Service) AddMember(ctx context.Context, squadID uuid.UUID, in MemberInput) (repo.SquadMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = util.TrimPtr(in.Email)
	if in.UserID != nil {
		user, err := s.store.GetUserByID(ctx, *in.UserID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return repo.SquadMember{}, apperr.Validation("usuário informado não existe")
			}
			return repo.SquadMember{}, err
		}
		if in.Name == "" && user.Name != nil {
			in.Name = *user.Name
		}
		if in.Email == nil {
			in.Email = user.Email
		}
	}
	if err := util.RequireString(in.Name, "nome"); err != nil {
		return repo.SquadMember{}, err
	}
	if in.Email != nil && *in.Email != "" {
		if err := util.ValidateEmail(*in.Email); err != nil {
			return repo.SquadMember{}, err
		}
	}
	return s.store.CreateSquadMember(ctx, repo.CreateSquadMemberParams{
		SquadID: squadID,
		UserID:  in.UserID,
		Name:    in.Name,
		Email:   in.Email,
	})
}

func (s *Service) RemoveMember(ctx context.Context, squadID, memberID uuid.UUID) error {
	return notFound(s.store.DeleteSquadMember(ctx, squadID, memberID), "membro não encontrado")
}

func notFound(err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}
