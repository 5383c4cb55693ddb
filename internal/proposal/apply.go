package proposal

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/squad"
)

// Target é a squad que recebe o conteúdo aprovado e quem aprovou.
// As funções Apply* usam o mesmo caminho de escrita da criação manual e
// devem rodar dentro da transação do chamador.
type Target struct {
	Squad repo.Squad
	Actor uuid.UUID
}

func ApplySection(ctx context.Context, q repo.Querier, t Target, kind string, s Section) (repo.SquadSection, error) {
	return squad.UpsertSectionTx(ctx, q, t.Squad.ID, kind, s.Summary, s.Details, &t.Actor)
}

func ApplyPhase(ctx context.Context, q repo.Querier, t Target, p Phase) (repo.SquadPhase, error) {
	return squad.AppendPhaseTx(ctx, q, t.Squad.ID, squad.PhaseInput{
		Name:        p.Name,
		Description: p.Description,
		Objectives:  p.Objectives,
	})
}

// ApplyRole reaproveita papel com o mesmo código (o do workspace antes do global) ou cria um
// no workspace, e então o ativa na squad.
func ApplyRole(ctx context.Context, q repo.Querier, t Target, r Role) (repo.SquadRole, error) {
	code := r.code()
	if code == "" {
		return repo.SquadRole{}, apperr.Validation("papel sem código utilizável na proposta")
	}
	role, err := q.FindRoleByCode(ctx, t.Squad.WorkspaceID, code)
	if errors.Is(err, repo.ErrNotFound) {
		role, err = catalog.CreateRoleTx(ctx, q, t.Squad.WorkspaceID, catalog.RoleInput{
			Code:             code,
			Label:            r.Label,
			Description:      r.Description,
			Responsibilities: r.Responsibilities,
		}, &t.Actor)
	}
	if err != nil {
		return repo.SquadRole{}, err
	}
	sr, _, err := squad.ActivateRoleTx(ctx, q, t.Squad.ID, catalog.RefOf(role.ID, role.WorkspaceID), nil, nil)
	return sr, err
}

// ApplyPersona cria a persona no workspace e a associa à squad.
func ApplyPersona(ctx context.Context, q repo.Querier, t Target, p Persona) (repo.SquadPersona, error) {
	created, err := catalog.CreatePersonaTx(ctx, q, t.Squad.WorkspaceID, catalog.PersonaInput{
		Name:       p.Name,
		Type:       p.Type,
		Focus:      p.Focus,
		Goals:      p.Goals,
		PainPoints: p.PainPoints,
		Behaviors:  p.Behaviors,
	}, &t.Actor)
	if err != nil {
		return repo.SquadPersona{}, err
	}
	sp, _, err := squad.AddPersonaTx(ctx, q, t.Squad.ID, catalog.RefOf(created.ID, created.WorkspaceID), nil, nil)
	return sp, err
}

// ApplyCriticalUnknown registra a pergunta em aberto no problema atual da squad.
func ApplyCriticalUnknown(ctx context.Context, q repo.Querier, t Target, c CriticalUnknown) (repo.ProblemStatement, error) {
	ps, err := q.GetLatestProblemStatementBySquad(ctx, t.Squad.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.ProblemStatement{}, apperr.ErrNoProblemStatement
		}
		return repo.ProblemStatement{}, err
	}
	question := strings.TrimSpace(c.Question)
	if impact := strings.TrimSpace(c.Impact); impact != "" {
		question += " (impacto: " + impact + ")"
	}
	return q.AppendOpenQuestion(ctx, ps.ID, question)
}

// ApplyAll aplica a proposta inteira.
func ApplyAll(ctx context.Context, q repo.Querier, t Target, p Payload) (Summary, error) {
	var sum Summary
	for _, s := range p.Sections() {
		if _, err := ApplySection(ctx, q, t, s.Kind, *s.Section); err != nil {
			return sum, err
		}
		sum.Sections++
	}
	for _, pe := range p.Personas {
		if _, err := ApplyPersona(ctx, q, t, pe); err != nil {
			return sum, err
		}
		sum.Personas++
	}
	for _, r := range p.Roles {
		if _, err := ApplyRole(ctx, q, t, r); err != nil {
			return sum, err
		}
		sum.Roles++
	}
	for _, ph := range p.Phases {
		if _, err := ApplyPhase(ctx, q, t, ph); err != nil {
			return sum, err
		}
		sum.Phases++
	}
	for _, c := range p.CriticalUnknowns {
		if _, err := ApplyCriticalUnknown(ctx, q, t, c); err != nil {
			return sum, err
		}
		sum.CriticalUnknowns++
	}
	return sum, nil
}

// Summary conta o que foi aplicado.
type Summary struct {
	Sections         int `json:"sections"`
	Personas         int `json:"personas"`
	Roles            int `json:"roles"`
	Phases           int `json:"phases"`
	CriticalUnknowns int `json:"critical_unknowns"`
}
