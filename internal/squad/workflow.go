package squad

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

// SectionKinds são os blocos únicos por squad gravados a partir de sugestões e propostas.
var SectionKinds = []string{
	"decision_context", "problem_maturity", "governance",
	"execution_model", "validation_strategy", "readiness_assessment",
}

type PhaseInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives"`
}

// AppendPhaseTx adiciona a fase ao final do fluxo da squad.
func AppendPhaseTx(ctx context.Context, q repo.Querier, squadID uuid.UUID, in PhaseInput) (repo.SquadPhase, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := util.RequireString(in.Name, "nome da fase"); err != nil {
		return repo.SquadPhase{}, err
	}
	// a posição é max+1; o lock da squad serializa anexos concorrentes
	if _, err := q.LockSquad(ctx, squadID); err != nil {
		return repo.SquadPhase{}, notFound(err, "squad não encontrada")
	}
	return q.AppendPhase(ctx, repo.AppendPhaseParams{
		SquadID:     squadID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Objectives:  util.CleanList(in.Objectives),
	})
}

// UpsertSectionTx grava o bloco do tipo informado.
func UpsertSectionTx(ctx context.Context, q repo.Querier, squadID uuid.UUID, kind, summary string, details []string, by *uuid.UUID) (repo.SquadSection, error) {
	if err := util.OneOf(kind, "tipo de seção", SectionKinds...); err != nil {
		return repo.SquadSection{}, err
	}
	return q.UpsertSection(ctx, repo.UpsertSectionParams{
		SquadID:   squadID,
		Kind:      kind,
		Summary:   strings.TrimSpace(summary),
		Details:   util.CleanList(details),
		UpdatedBy: by,
	})
}

func (s *Service) ListPhases(ctx context.Context, squadID uuid.UUID) ([]repo.SquadPhase, error) {
	return s.store.ListPhases(ctx, squadID)
}

func (s *Service) AppendPhase(ctx context.Context, squadID uuid.UUID, in PhaseInput) (repo.SquadPhase, error) {
	var phase repo.SquadPhase
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		var err error
		phase, err = AppendPhaseTx(ctx, q, squadID, in)
		return err
	})
	return phase, err
}

func (s *Service) DeletePhase(ctx context.Context, squadID, phaseID uuid.UUID) error {
	return notFound(s.store.DeletePhase(ctx, squadID, phaseID), "fase não encontrada")
}

func (s *Service) ListSections(ctx context.Context, squadID uuid.UUID) ([]repo.SquadSection, error) {
	return s.store.ListSections(ctx, squadID)
}
