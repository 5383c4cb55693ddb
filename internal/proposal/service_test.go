package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/llm"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/repo/repotest"
)

const samplePayload = `{
	"decision_context": {"summary": "Busca é o gargalo", "details": ["60% saem sem comprar"]},
	"governance": {"summary": "Comitê semanal"},
	"phases": [{"name": "Descoberta", "objectives": ["entrevistas"]}, {"name": "Experimentos"}],
	"roles": [{"code": "product_manager", "label": "PM"}, {"code": "Search Engineer", "label": "Engenharia de busca"}],
	"personas": [{"name": "Comprador apressado", "goals": ["achar rápido"]}],
	"critical_unknowns": [{"question": "Qual o catálogo real?", "impact": "alto"}],
	"justifications": {"phases": "fluxo enxuto"},
	"uncertainties": ["dados de busca incompletos"]
}`

type fakeGenerator struct {
	raw    string
	err    error
	called llm.Problem
}

func (f *fakeGenerator) GenerateStructure(_ context.Context, p llm.Problem) (json.RawMessage, error) {
	f.called = p
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

func (f *fakeGenerator) Model() string { return "fake" }

type fixture struct {
	store *repotest.Store
	gen   *fakeGenerator
	svc   *Service
	user  repo.User
	squad repo.Squad
}

func newFixture(t *testing.T, withProblem bool) fixture {
	t.Helper()
	ctx := context.Background()
	store := repotest.New()
	user := store.SeedUser("Ana", "ana@example.com")
	ws, err := store.CreateWorkspace(ctx, repo.CreateWorkspaceParams{Name: "Produto"})
	require.NoError(t, err)
	sq, err := store.CreateSquad(ctx, repo.CreateSquadParams{WorkspaceID: ws.ID, Name: "Busca"})
	require.NoError(t, err)
	if withProblem {
		_, err = store.CreateProblemStatement(ctx, repo.CreateProblemStatementParams{
			WorkspaceID: ws.ID, SquadID: &sq.ID, Title: "Busca", Narrative: "Users can't find products",
		})
		require.NoError(t, err)
	}
	_, err = store.UpsertGlobalRole(ctx, repo.CreateRoleParams{Code: "product_manager", Label: "Product Manager"})
	require.NoError(t, err)
	gen := &fakeGenerator{raw: samplePayload}
	return fixture{store: store, gen: gen, svc: NewService(store, gen, nil), user: user, squad: sq}
}

func TestGenerateRequiresProblemStatement(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Generate(context.Background(), f.user.ID, f.squad)
	require.ErrorIs(t, err, apperr.ErrNoProblemStatement)
}

func TestGenerateFailureIsUpstreamError(t *testing.T) {
	f := newFixture(t, true)
	f.gen.err = errors.New("timeout")
	_, err := f.svc.Generate(context.Background(), f.user.ID, f.squad)
	require.ErrorIs(t, err, apperr.ErrProposalGenerationFailed)
	require.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	f.gen.err = nil
	f.gen.raw = `{"phases":[{"name":""}]}`
	_, err = f.svc.Generate(context.Background(), f.user.ID, f.squad)
	require.ErrorIs(t, err, apperr.ErrProposalGenerationFailed)
}

func TestGenerateAndConfirm(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	p, err := f.svc.Generate(ctx, f.user.ID, f.squad)
	require.NoError(t, err)
	require.Equal(t, StatusPending, p.Status)
	require.Equal(t, "Users can't find products", f.gen.called.Narrative)
	require.Equal(t, []string{"dados de busca incompletos"}, p.Uncertainties)
	require.Equal(t, "fake", p.Model)

	res, err := f.svc.Confirm(ctx, Actor{UserID: f.user.ID, Role: "owner"}, f.squad, p.ID, nil)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, res.Proposal.Status)
	require.Equal(t, Summary{Sections: 2, Personas: 1, Roles: 2, Phases: 2, CriticalUnknowns: 1}, res.Applied)

	roles, err := f.store.ListSquadRoles(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	codes := map[string]bool{}
	for _, r := range roles {
		codes[r.Code] = true
		if r.Code == "product_manager" {
			require.NotNil(t, r.RoleID, "sem cópia no workspace, o papel global é reaproveitado")
		}
	}
	require.True(t, codes["search_engineer"])

	phases, err := f.store.ListPhases(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Equal(t, "Descoberta", phases[0].Name)

	ps, err := f.store.GetLatestProblemStatementBySquad(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Qual o catálogo real? (impacto: alto)"}, ps.OpenQuestions)

	decisions, err := f.store.ListDecisions(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	require.Equal(t, "owner", decisions[0].CreatedByRole)

	_, err = f.svc.Confirm(ctx, Actor{UserID: f.user.ID}, f.squad, p.ID, nil)
	require.ErrorIs(t, err, apperr.ErrConflict)
	_, err = f.svc.Discard(ctx, f.squad.ID, p.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestConfirmWithEditedPayloadRollsBackOnFailure(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p, err := f.svc.Generate(ctx, f.user.ID, f.squad)
	require.NoError(t, err)

	edited := &Payload{Phases: []Phase{{Name: "Só uma fase"}}}
	f.store.FailNext("InsertDecision", errors.New("disco cheio"))
	_, err = f.svc.Confirm(ctx, Actor{UserID: f.user.ID}, f.squad, p.ID, edited)
	require.Error(t, err)
	require.Zero(t, f.store.Counts().Phases)

	got, err := f.svc.Get(ctx, f.squad.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)

	res, err := f.svc.Confirm(ctx, Actor{UserID: f.user.ID}, f.squad, p.ID, edited)
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied.Phases)
	require.Equal(t, 1, f.store.Counts().Phases)

	var stored Payload
	require.NoError(t, json.Unmarshal(res.Proposal.Payload, &stored))
	require.Equal(t, "Só uma fase", stored.Phases[0].Name)
}

func TestDiscardHasNoSideEffects(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	p, err := f.svc.Generate(ctx, f.user.ID, f.squad)
	require.NoError(t, err)

	discarded, err := f.svc.Discard(ctx, f.squad.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDiscarded, discarded.Status)
	require.Zero(t, f.store.Counts().Phases)
	require.Zero(t, f.store.Counts().Decisions)

	_, err = f.svc.Get(ctx, uuid.New(), p.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConfirmDerivesCodeFromAccentedLabel(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.gen.raw = `{"roles":[{"label":"Líder Técnico"}]}`
	p, err := f.svc.Generate(ctx, f.user.ID, f.squad)
	require.NoError(t, err)

	res, err := f.svc.Confirm(ctx, Actor{UserID: f.user.ID}, f.squad, p.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied.Roles)

	roles, err := f.store.ListSquadRoles(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.Equal(t, "lider_tecnico", roles[0].Code)
	require.Equal(t, "Líder Técnico", roles[0].Label)
}

func TestParseRejectsRoleWithoutUsableCode(t *testing.T) {
	_, err := Parse(json.RawMessage(`{"roles":[{"label":"???"}]}`))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyRolePrefersWorkspaceCustomization(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	custom, err := f.store.CreateRole(ctx, repo.CreateRoleParams{
		WorkspaceID: &f.squad.WorkspaceID, Code: "product_manager", Label: "PM do workspace",
	})
	require.NoError(t, err)

	var sr repo.SquadRole
	err = f.store.InTx(ctx, func(q repo.Querier) error {
		sr, err = ApplyRole(ctx, q, Target{Squad: f.squad, Actor: f.user.ID}, Role{Code: "product_manager"})
		return err
	})
	require.NoError(t, err)
	require.Nil(t, sr.RoleID)
	require.Equal(t, custom.ID, *sr.WorkspaceRoleID)
}
