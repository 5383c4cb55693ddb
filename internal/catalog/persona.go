package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

// PersonaInput é usado na criação; Global exige admin.
type PersonaInput struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Focus      string   `json:"focus"`
	Goals      []string `json:"goals"`
	PainPoints []string `json:"pain_points"`
	Behaviors  []string `json:"behaviors"`
	Global     bool     `json:"global"`
}

// PersonaPatch altera apenas os campos enviados.
type PersonaPatch struct {
	Name       *string  `json:"name"`
	Type       *string  `json:"type"`
	Focus      *string  `json:"focus"`
	Goals      []string `json:"goals"`
	PainPoints []string `json:"pain_points"`
	Behaviors  []string `json:"behaviors"`
}

func (in PersonaInput) validate() error {
	if err := util.RequireString(in.Name, "nome"); err != nil {
		return err
	}
	return nil
}

// CreatePersonaTx insere persona do workspace usando a transação recebida.
func CreatePersonaTx(ctx context.Context, q repo.Querier, workspaceID uuid.UUID, in PersonaInput, createdBy *uuid.UUID) (repo.Persona, error) {
	if err := in.validate(); err != nil {
		return repo.Persona{}, err
	}
	return q.CreatePersona(ctx, repo.CreatePersonaParams{
		WorkspaceID: &workspaceID,
		Name:        strings.TrimSpace(in.Name),
		Type:        strings.TrimSpace(in.Type),
		Focus:       strings.TrimSpace(in.Focus),
		Goals:       util.CleanList(in.Goals),
		PainPoints:  util.CleanList(in.PainPoints),
		Behaviors:   util.CleanList(in.Behaviors),
		CreatedBy:   createdBy,
	})
}

// ClonePersonaTx copia source para o workspace aplicando patch sobre os valores copiados.
func ClonePersonaTx(ctx context.Context, q repo.Querier, workspaceID uuid.UUID, source repo.Persona, patch PersonaPatch, createdBy *uuid.UUID) (repo.Persona, error) {
	in := PersonaInput{
		Name:       pick(patch.Name, source.Name),
		Type:       pick(patch.Type, source.Type),
		Focus:      pick(patch.Focus, source.Focus),
		Goals:      pickList(patch.Goals, source.Goals),
		PainPoints: pickList(patch.PainPoints, source.PainPoints),
		Behaviors:  pickList(patch.Behaviors, source.Behaviors),
	}
	if err := in.validate(); err != nil {
		return repo.Persona{}, err
	}
	sourceID := source.ID
	return q.CreatePersona(ctx, repo.CreatePersonaParams{
		WorkspaceID:     &workspaceID,
		SourcePersonaID: &sourceID,
		Name:            strings.TrimSpace(in.Name),
		Type:            in.Type,
		Focus:           in.Focus,
		Goals:           util.CleanList(in.Goals),
		PainPoints:      util.CleanList(in.PainPoints),
		Behaviors:       util.CleanList(in.Behaviors),
		CreatedBy:       createdBy,
	})
}

// ListPersonas devolve as globais e as do workspace.
func (s *Service) ListPersonas(ctx context.Context, workspaceID uuid.UUID) ([]repo.Persona, error) {
	return s.store.ListPersonas(ctx, workspaceID)
}

// GetPersona resolve a persona visível a partir do workspace.
func (s *Service) GetPersona(ctx context.Context, workspaceID, id uuid.UUID) (repo.Persona, error) {
	return visiblePersona(ctx, s.store, workspaceID, id)
}

func (s *Service) CreatePersona(ctx context.Context, actor Actor, in PersonaInput) (repo.Persona, error) {
	if !in.Global {
		return CreatePersonaTx(ctx, s.store, actor.WorkspaceID, in, &actor.UserID)
	}
	if !actor.Admin {
		return repo.Persona{}, apperr.ErrForbidden.WithMessage("apenas administradores alteram o catálogo global")
	}
	if err := in.validate(); err != nil {
		return repo.Persona{}, err
	}
	p, err := s.store.CreatePersona(ctx, repo.CreatePersonaParams{
		Name:       strings.TrimSpace(in.Name),
		Type:       strings.TrimSpace(in.Type),
		Focus:      strings.TrimSpace(in.Focus),
		Goals:      util.CleanList(in.Goals),
		PainPoints: util.CleanList(in.PainPoints),
		Behaviors:  util.CleanList(in.Behaviors),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return repo.Persona{}, apperr.Conflict("já existe persona global com esse nome")
	}
	return p, err
}

func (s *Service) UpdatePersona(ctx context.Context, actor Actor, id uuid.UUID, patch PersonaPatch) (repo.Persona, error) {
	current, err := visiblePersona(ctx, s.store, actor.WorkspaceID, id)
	if err != nil {
		return repo.Persona{}, err
	}
	ref := RefOf(current.ID, current.WorkspaceID)
	if !mutable(ref, actor) {
		return repo.Persona{}, readOnly()
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return repo.Persona{}, apperr.Validation("nome obrigatório")
	}
	_, global := ref.(Global)
	p, err := s.store.UpdatePersona(ctx, repo.UpdatePersonaParams{
		ID:         id,
		Global:     global,
		Name:       util.TrimPtr(patch.Name),
		Type:       util.TrimPtr(patch.Type),
		Focus:      util.TrimPtr(patch.Focus),
		Goals:      util.CleanList(patch.Goals),
		PainPoints: util.CleanList(patch.PainPoints),
		Behaviors:  util.CleanList(patch.Behaviors),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return repo.Persona{}, apperr.Conflict("já existe persona global com esse nome")
	}
	return p, err
}

// DeletePersona remove a persona e, em cascata, suas associações com squads.
func (s *Service) DeletePersona(ctx context.Context, actor Actor, id uuid.UUID) error {
	current, err := visiblePersona(ctx, s.store, actor.WorkspaceID, id)
	if err != nil {
		return err
	}
	ref := RefOf(current.ID, current.WorkspaceID)
	if !mutable(ref, actor) {
		return readOnly()
	}
	_, global := ref.(Global)
	return s.store.DeletePersona(ctx, id, global)
}

// DuplicatePersona cria cópia editável no workspace do ator.
func (s *Service) DuplicatePersona(ctx context.Context, actor Actor, id uuid.UUID, patch PersonaPatch) (repo.Persona, error) {
	source, err := visiblePersona(ctx, s.store, actor.WorkspaceID, id)
	if err != nil {
		return repo.Persona{}, err
	}
	return ClonePersonaTx(ctx, s.store, actor.WorkspaceID, source, patch, &actor.UserID)
}

func visiblePersona(ctx context.Context, q repo.Querier, workspaceID, id uuid.UUID) (repo.Persona, error) {
	p, err := q.GetPersona(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Persona{}, apperr.NotFound("persona não encontrada")
		}
		return repo.Persona{}, err
	}
	if !visible(RefOf(p.ID, p.WorkspaceID), workspaceID) {
		return repo.Persona{}, apperr.NotFound("persona não encontrada")
	}
	return p, nil
}
