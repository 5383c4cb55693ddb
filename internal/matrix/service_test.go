package matrix

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/repo/repotest"
)

type fixture struct {
	svc     *Service
	store   *repotest.Store
	squad   repo.Squad
	role    repo.SquadRole
	persona repo.SquadPersona
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := repotest.New()
	ws, err := store.CreateWorkspace(ctx, repo.CreateWorkspaceParams{Name: "Produto"})
	require.NoError(t, err)
	sq, err := store.CreateSquad(ctx, repo.CreateSquadParams{WorkspaceID: ws.ID, Name: "Busca"})
	require.NoError(t, err)
	r, err := store.UpsertGlobalRole(ctx, repo.CreateRoleParams{Code: "qa", Label: "QA"})
	require.NoError(t, err)
	p, err := store.UpsertGlobalPersona(ctx, repo.CreatePersonaParams{Name: "Comprador"})
	require.NoError(t, err)
	sr, _, err := store.ActivateSquadRole(ctx, repo.ActivateSquadRoleParams{SquadID: sq.ID, RoleID: &r.ID})
	require.NoError(t, err)
	custom := "Comprador frequente"
	sp, _, err := store.AddSquadPersona(ctx, repo.AddSquadPersonaParams{SquadID: sq.ID, PersonaID: &p.ID, CustomName: &custom})
	require.NoError(t, err)
	return fixture{svc: NewService(store), store: store, squad: sq, role: sr, persona: sp}
}

func TestSaveVersionIsAppendOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	v1, err := f.svc.SaveVersion(ctx, userID, f.squad.ID, SaveInput{
		Description: "primeira",
		Entries: []EntryInput{{
			SquadRoleID: f.role.ID, SquadPersonaID: f.persona.ID,
			CheckpointType: "discovery", RequirementLevel: "obrigatorio",
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, v1.Version)
	require.Equal(t, "QA", v1.Entries[0].RoleLabel)
	require.Equal(t, "Comprador frequente", v1.Entries[0].PersonaLabel)

	v2, err := f.svc.SaveVersion(ctx, userID, f.squad.ID, SaveInput{
		Description: "segunda",
		Entries: []EntryInput{{
			SquadRoleID: f.role.ID, SquadPersonaID: f.persona.ID,
			CheckpointType: "discovery", RequirementLevel: "opcional",
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, v2.Version)

	old, err := f.svc.GetVersion(ctx, f.squad.ID, 1)
	require.NoError(t, err)
	require.Equal(t, "primeira", old.Description)
	require.Equal(t, "obrigatorio", old.Entries[0].RequirementLevel)

	latest, err := f.svc.Latest(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Equal(t, 2, latest.Version)

	versions, err := f.svc.ListVersions(ctx, f.squad.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Greater(t, versions[0].Version, versions[1].Version)

	_, err = f.svc.GetVersion(ctx, f.squad.ID, 9)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSaveVersionValidatesEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	entry := EntryInput{SquadRoleID: f.role.ID, SquadPersonaID: f.persona.ID, CheckpointType: "entrega", RequirementLevel: "recomendado"}

	bad := entry
	bad.RequirementLevel = "talvez"
	_, err := f.svc.SaveVersion(ctx, userID, f.squad.ID, SaveInput{Entries: []EntryInput{bad}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	bad = entry
	bad.CheckpointType = " "
	_, err = f.svc.SaveVersion(ctx, userID, f.squad.ID, SaveInput{Entries: []EntryInput{bad}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	bad = entry
	bad.SquadRoleID = uuid.New()
	_, err = f.svc.SaveVersion(ctx, userID, f.squad.ID, SaveInput{Entries: []EntryInput{bad}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.SaveVersion(ctx, userID, f.squad.ID, SaveInput{Entries: []EntryInput{entry, entry}})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.SaveVersion(ctx, userID, uuid.New(), SaveInput{})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Latest(ctx, f.squad.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
