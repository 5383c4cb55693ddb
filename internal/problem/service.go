// Package problem mantém os problemas de negócio que justificam cada squad.
package problem

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

type Service struct {
	store repo.Querier
}

func NewService(store repo.Querier) *Service {
	return &Service{store: store}
}

type Input struct {
	SquadID        *uuid.UUID `json:"squad_id"`
	Title          string     `json:"title"`
	Narrative      string     `json:"narrative"`
	SuccessMetrics []string   `json:"success_metrics"`
	Constraints    []string   `json:"constraints"`
	Assumptions    []string   `json:"assumptions"`
	OpenQuestions  []string   `json:"open_questions"`
}

// Patch altera só os campos enviados; squad_id null desvincula o problema.
type Patch struct {
	SquadID        OptionalID `json:"squad_id"`
	Title          *string    `json:"title"`
	Narrative      *string    `json:"narrative"`
	SuccessMetrics []string   `json:"success_metrics"`
	Constraints    []string   `json:"constraints"`
	Assumptions    []string   `json:"assumptions"`
	OpenQuestions  []string   `json:"open_questions"`
}

// OptionalID diferencia campo ausente de null explícito.
type OptionalID struct {
	Set bool
	ID  *uuid.UUID
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.ID = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return apperr.Validation("squad_id inválido")
	}
	o.ID = &id
	return nil
}

func (s *Service) List(ctx context.Context, workspaceID uuid.UUID) ([]repo.ProblemStatement, error) {
	return s.store.ListProblemStatements(ctx, workspaceID)
}

func (s *Service) Get(ctx context.Context, workspaceID, id uuid.UUID) (repo.ProblemStatement, error) {
	p, err := s.store.GetProblemStatement(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.ProblemStatement{}, apperr.NotFound("problema não encontrado")
		}
		return repo.ProblemStatement{}, err
	}
	if p.WorkspaceID != workspaceID {
		return repo.ProblemStatement{}, apperr.NotFound("problema não encontrado")
	}
	return p, nil
}

// ForSquad devolve o problema mais recente ligado à squad.
func (s *Service) ForSquad(ctx context.Context, squadID uuid.UUID) (repo.ProblemStatement, error) {
	p, err := s.store.GetLatestProblemStatementBySquad(ctx, squadID)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.ProblemStatement{}, apperr.NotFound("squad não possui problema cadastrado")
	}
	return p, err
}

func (s *Service) Create(ctx context.Context, userID, workspaceID uuid.UUID, in Input) (repo.ProblemStatement, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Narrative = strings.TrimSpace(in.Narrative)
	if err := util.RequireString(in.Title, "título"); err != nil {
		return repo.ProblemStatement{}, err
	}
	if err := util.RequireString(in.Narrative, "narrativa"); err != nil {
		return repo.ProblemStatement{}, err
	}
	if err := s.checkSquad(ctx, workspaceID, in.SquadID); err != nil {
		return repo.ProblemStatement{}, err
	}
	return s.store.CreateProblemStatement(ctx, repo.CreateProblemStatementParams{
		WorkspaceID:    workspaceID,
		SquadID:        in.SquadID,
		Title:          in.Title,
		Narrative:      in.Narrative,
		SuccessMetrics: util.CleanList(in.SuccessMetrics),
		Constraints:    util.CleanList(in.Constraints),
		Assumptions:    util.CleanList(in.Assumptions),
		OpenQuestions:  util.CleanList(in.OpenQuestions),
		CreatedBy:      &userID,
	})
}

func (s *Service) Update(ctx context.Context, workspaceID, id uuid.UUID, patch Patch) (repo.ProblemStatement, error) {
	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return repo.ProblemStatement{}, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return repo.ProblemStatement{}, apperr.Validation("título obrigatório")
	}
	if patch.Narrative != nil && strings.TrimSpace(*patch.Narrative) == "" {
		return repo.ProblemStatement{}, apperr.Validation("narrativa obrigatória")
	}
	if patch.SquadID.Set {
		if err := s.checkSquad(ctx, workspaceID, patch.SquadID.ID); err != nil {
			return repo.ProblemStatement{}, err
		}
	}
	return s.store.UpdateProblemStatement(ctx, repo.UpdateProblemStatementParams{
		ID:             id,
		SetSquad:       patch.SquadID.Set,
		SquadID:        patch.SquadID.ID,
		Title:          util.TrimPtr(patch.Title),
		Narrative:      util.TrimPtr(patch.Narrative),
		SuccessMetrics: util.CleanList(patch.SuccessMetrics),
		Constraints:    util.CleanList(patch.Constraints),
		Assumptions:    util.CleanList(patch.Assumptions),
		OpenQuestions:  util.CleanList(patch.OpenQuestions),
	})
}

func (s *Service) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	if _, err := s.Get(ctx, workspaceID, id); err != nil {
		return err
	}
	return s.store.DeleteProblemStatement(ctx, id)
}

// checkSquad garante que a squad informada pertence ao mesmo workspace.
func (s *Service) checkSquad(ctx context.Context, workspaceID uuid.UUID, squadID *uuid.UUID) error {
	if squadID == nil {
		return nil
	}
	sq, err := s.store.GetSquad(ctx, *squadID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && sq.WorkspaceID != workspaceID) {
		return apperr.Validation("squad informada não pertence ao workspace")
	}
	return err
}
