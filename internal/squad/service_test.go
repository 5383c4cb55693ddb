package squad

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/repo/repotest"
)

type fixture struct {
	store *repotest.Store
	svc   *Service
	user  repo.User
	squad repo.Squad
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := repotest.New()
	ctx := context.Background()
	user := store.SeedUser("Ana", "ana@example.com")
	ws, err := store.CreateWorkspace(ctx, repo.CreateWorkspaceParams{Name: "Produto", Type: "time"})
	require.NoError(t, err)
	svc := NewService(store)
	sq, err := svc.Create(ctx, user.ID, ws.ID, CreateInput{Name: "Busca"})
	require.NoError(t, err)
	return fixture{store: store, svc: svc, user: user, squad: sq}
}

func (f fixture) globalRole(t *testing.T, code string) repo.Role {
	t.Helper()
	r, err := f.store.UpsertGlobalRole(context.Background(), repo.CreateRoleParams{Code: code, Label: code})
	require.NoError(t, err)
	return r
}

func (f fixture) globalPersona(t *testing.T, name string) repo.Persona {
	t.Helper()
	p, err := f.store.UpsertGlobalPersona(context.Background(), repo.CreatePersonaParams{Name: name, Focus: "compra", Goals: []string{"economizar"}})
	require.NoError(t, err)
	return p
}

func assertSingleRef(t *testing.T, global, workspace *uuid.UUID) {
	t.Helper()
	require.True(t, (global == nil) != (workspace == nil), "exatamente uma referência deve estar preenchida")
}

func TestSquadStatusValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.Equal(t, "rascunho", f.squad.Status)

	status := "em_revisao"
	sq, err := f.svc.Update(ctx, f.squad.ID, UpdateInput{Status: &status})
	require.NoError(t, err)
	require.Equal(t, "em_revisao", sq.Status)

	status = "rascunho"
	_, err = f.svc.Update(ctx, f.squad.ID, UpdateInput{Status: &status})
	require.NoError(t, err)

	bad := "arquivada"
	_, err = f.svc.Update(ctx, f.squad.ID, UpdateInput{Status: &bad})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Update(ctx, uuid.New(), UpdateInput{})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddMemberFromUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.AddMember(ctx, f.squad.ID, MemberInput{UserID: &f.user.ID})
	require.NoError(t, err)
	require.Equal(t, "Ana", m.Name)
	require.Equal(t, "ana@example.com", *m.Email)

	_, err = f.svc.AddMember(ctx, f.squad.ID, MemberInput{Name: " "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	missing := uuid.New()
	_, err = f.svc.AddMember(ctx, f.squad.ID, MemberInput{UserID: &missing})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestActivateRoleTwiceKeepsSingleAssociation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.globalRole(t, "tech_lead")

	var wg sync.WaitGroup
	created := make([]bool, 2)
	for i := range created {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := f.svc.ActivateRole(ctx, f.squad, ActivateInput{ID: role.ID})
			if err == nil {
				created[i] = ok
			}
		}(i)
	}
	wg.Wait()

	roles, err := f.svc.ListRoles(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	require.True(t, created[0] != created[1])
	assertSingleRef(t, roles[0].RoleID, roles[0].WorkspaceRoleID)
	require.Equal(t, "tech_lead", roles[0].Code)

	active := false
	_, err = f.svc.UpdateRole(ctx, f.squad.ID, roles[0].ID, AssociationPatch{Active: &active})
	require.NoError(t, err)
	_, ok, err := f.svc.ActivateRole(ctx, f.squad, ActivateInput{ID: role.ID})
	require.NoError(t, err)
	require.True(t, ok)

	active = true
	_, err = f.svc.UpdateRole(ctx, f.squad.ID, roles[0].ID, AssociationPatch{Active: &active})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReplacePersonaKeepsListSize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.globalPersona(t, "Comprador")
	other := f.globalPersona(t, "Lojista")

	name := "Comprador da squad"
	sp, created, err := f.svc.AddPersona(ctx, f.squad, ActivateInput{ID: p.ID, CustomName: &name})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, p.ID, *sp.PersonaID)
	_, _, err = f.svc.AddPersona(ctx, f.squad, ActivateInput{ID: other.ID})
	require.NoError(t, err)

	before, err := f.svc.ListPersonas(ctx, f.squad.ID)
	require.NoError(t, err)

	focus := "recompra"
	replaced, err := f.svc.ReplacePersona(ctx, f.user.ID, f.squad, sp.ID, catalog.PersonaPatch{Focus: &focus})
	require.NoError(t, err)
	require.Nil(t, replaced.PersonaID)
	require.NotNil(t, replaced.WorkspacePersonaID)
	require.Equal(t, "Comprador da squad", *replaced.CustomName)

	after, err := f.svc.ListPersonas(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for _, item := range after {
		assertSingleRef(t, item.PersonaID, item.WorkspacePersonaID)
		if item.PersonaID != nil {
			require.NotEqual(t, p.ID, *item.PersonaID)
		}
	}

	clone, err := f.store.GetPersona(ctx, *replaced.WorkspacePersonaID)
	require.NoError(t, err)
	require.Equal(t, "Comprador", clone.Name)
	require.Equal(t, "recompra", clone.Focus)
	require.Equal(t, p.ID, *clone.SourcePersonaID)

	global, err := f.store.GetPersona(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "compra", global.Focus)
}

func TestReplaceRoleCarriesMemberAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.globalRole(t, "designer")

	sr, _, err := f.svc.ActivateRole(ctx, f.squad, ActivateInput{ID: role.ID})
	require.NoError(t, err)
	member, err := f.svc.AddMember(ctx, f.squad.ID, MemberInput{Name: "Bia"})
	require.NoError(t, err)
	_, err = f.svc.AssignMemberRole(ctx, f.user.ID, f.squad.ID, member.ID, sr.ID)
	require.NoError(t, err)

	replaced, err := f.svc.ReplaceRole(ctx, f.user.ID, f.squad, sr.ID, catalog.RolePatch{})
	require.NoError(t, err)
	require.Equal(t, "designer", replaced.Code)
	require.NotNil(t, replaced.WorkspaceRoleID)

	assignments, err := f.svc.ListMemberRoles(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, replaced.ID, assignments[0].SquadRoleID)

	label := "Designer sênior"
	again, err := f.svc.ReplaceRole(ctx, f.user.ID, f.squad, replaced.ID, catalog.RolePatch{Label: &label})
	require.NoError(t, err, "papel do workspace também pode ser substituído por uma cópia")
	require.Equal(t, "designer_2", again.Code)
	require.Equal(t, "Designer sênior", again.Label)

	assignments, err = f.svc.ListMemberRoles(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, again.ID, assignments[0].SquadRoleID)
}

func TestReplaceSameGlobalRoleInTwoSquads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	role := f.globalRole(t, "designer")
	other, err := f.svc.Create(ctx, f.user.ID, f.squad.WorkspaceID, CreateInput{Name: "Checkout"})
	require.NoError(t, err)

	srA, _, err := f.svc.ActivateRole(ctx, f.squad, ActivateInput{ID: role.ID})
	require.NoError(t, err)
	srB, _, err := f.svc.ActivateRole(ctx, other, ActivateInput{ID: role.ID})
	require.NoError(t, err)

	a, err := f.svc.ReplaceRole(ctx, f.user.ID, f.squad, srA.ID, catalog.RolePatch{})
	require.NoError(t, err)
	b, err := f.svc.ReplaceRole(ctx, f.user.ID, other, srB.ID, catalog.RolePatch{})
	require.NoError(t, err)

	require.Equal(t, "designer", a.Code)
	require.Equal(t, "designer_2", b.Code)
	require.NotEqual(t, *a.WorkspaceRoleID, *b.WorkspaceRoleID)

	global, err := f.store.FindRoleByCode(ctx, uuid.New(), "designer")
	require.NoError(t, err)
	require.Nil(t, global.WorkspaceID, "o papel global permanece intacto")
}

func TestAssignMemberRoleKeepsOneAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r1, _, err := f.svc.ActivateRole(ctx, f.squad, ActivateInput{ID: f.globalRole(t, "pm").ID})
	require.NoError(t, err)
	r2, _, err := f.svc.ActivateRole(ctx, f.squad, ActivateInput{ID: f.globalRole(t, "qa").ID})
	require.NoError(t, err)
	alice, err := f.svc.AddMember(ctx, f.squad.ID, MemberInput{Name: "Alice"})
	require.NoError(t, err)

	_, err = f.svc.AssignMemberRole(ctx, f.user.ID, f.squad.ID, alice.ID, r1.ID)
	require.NoError(t, err)
	_, err = f.svc.AssignMemberRole(ctx, f.user.ID, f.squad.ID, alice.ID, r2.ID)
	require.NoError(t, err)

	assignments, err := f.svc.ListMemberRoles(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, r2.ID, assignments[0].SquadRoleID)

	f.store.FailNext("InsertSquadMemberRole", repo.ErrDuplicate)
	_, err = f.svc.AssignMemberRole(ctx, f.user.ID, f.squad.ID, alice.ID, r1.ID)
	require.Error(t, err)
	assignments, err = f.svc.ListMemberRoles(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, r2.ID, assignments[0].SquadRoleID)

	require.NoError(t, f.svc.UnassignMemberRole(ctx, f.squad.ID, alice.ID))
	require.ErrorIs(t, f.svc.UnassignMemberRole(ctx, f.squad.ID, alice.ID), apperr.ErrNotFound)
	require.Zero(t, f.store.Counts().MemberRoles)

	_, err = f.svc.AssignMemberRole(ctx, f.user.ID, f.squad.ID, uuid.New(), r1.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPhasesAppendInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AppendPhase(ctx, f.squad.ID, PhaseInput{Name: "Descoberta", Objectives: []string{"entrevistas", " "}})
	require.NoError(t, err)
	second, err := f.svc.AppendPhase(ctx, f.squad.ID, PhaseInput{Name: "Entrega"})
	require.NoError(t, err)
	require.Less(t, first.Position, second.Position)
	require.Equal(t, []string{"entrevistas"}, first.Objectives)

	require.NoError(t, f.svc.DeletePhase(ctx, f.squad.ID, first.ID))
	require.ErrorIs(t, f.svc.DeletePhase(ctx, f.squad.ID, first.ID), apperr.ErrNotFound)

	_, err = UpsertSectionTx(ctx, f.store, f.squad.ID, "governance", "comitê semanal", nil, &f.user.ID)
	require.NoError(t, err)
	_, err = UpsertSectionTx(ctx, f.store, f.squad.ID, "governance", "comitê quinzenal", []string{"atas"}, &f.user.ID)
	require.NoError(t, err)
	_, err = UpsertSectionTx(ctx, f.store, f.squad.ID, "qualquer", "", nil, nil)
	require.ErrorIs(t, err, apperr.ErrValidation)

	sections, err := f.svc.ListSections(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, "comitê quinzenal", sections[0].Summary)
}

func TestAppendPhaseLocksSquadFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.store.FailNext("LockSquad", errors.New("lock timeout"))
	_, err := f.svc.AppendPhase(ctx, f.squad.ID, PhaseInput{Name: "Descoberta"})
	require.EqualError(t, err, "lock timeout")
	require.Zero(t, f.store.Counts().Phases)

	_, err = f.svc.AppendPhase(ctx, uuid.New(), PhaseInput{Name: "Descoberta"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Zero(t, f.store.Counts().Phases)
}
