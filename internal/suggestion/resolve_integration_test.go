package suggestion

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/db"
	"github.com/squadsvirtuais/api/internal/repo"
)

// Requer um Postgres descartável em SQUADS_TEST_DATABASE_URL.
func TestConcurrentResolutionOnPostgres(t *testing.T) {
	dsn := os.Getenv("SQUADS_TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("SQUADS_TEST_DATABASE_URL não definido")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = db.Migrate(ctx, pool)
	require.NoError(t, err)
	store := repo.NewStore(pool)

	name := "Ana"
	user, err := store.CreateUser(ctx, repo.CreateUserParams{Name: &name})
	require.NoError(t, err)
	ws, err := store.CreateWorkspace(ctx, repo.CreateWorkspaceParams{Name: "concorrência", Type: "time"})
	require.NoError(t, err)
	sq, err := store.CreateSquad(ctx, repo.CreateSquadParams{WorkspaceID: ws.ID, Name: "Busca", Status: "rascunho"})
	require.NoError(t, err)
	p, err := store.InsertProposal(ctx, repo.InsertProposalParams{
		SquadID: sq.ID,
		Payload: json.RawMessage(`{"phases":[{"name":"Descoberta"}]}`),
		Model:   "fake",
	})
	require.NoError(t, err)

	svc := NewService(store, nil)
	list, err := svc.Breakdown(ctx, sq, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	target := list[0]
	actor := Actor{UserID: user.ID, Role: "owner"}

	const sessions = 6
	errs := make([]error, sessions)
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = svc.Approve(ctx, actor, sq, target.ID, nil)
				return
			}
			_, errs[i] = svc.Reject(ctx, actor, sq.ID, target.ID, nil)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		require.ErrorIs(t, err, apperr.ErrAlreadyResolved)
	}
	require.Equal(t, 1, winners)

	got, err := store.GetSuggestion(ctx, sq.ID, target.ID)
	require.NoError(t, err)
	phases, err := store.ListPhases(ctx, sq.ID)
	require.NoError(t, err)
	decisions, err := store.ListDecisions(ctx, sq.ID)
	require.NoError(t, err)
	if got.Status == StatusApproved {
		require.Len(t, phases, 1)
		require.Len(t, decisions, 1)
	} else {
		require.Empty(t, phases)
		require.Empty(t, decisions)
	}
}
