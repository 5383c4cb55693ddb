package repo_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/db"
	"github.com/squadsvirtuais/api/internal/repo"
)

// Requer um Postgres descartável em SQUADS_TEST_DATABASE_URL.
func newStore(t *testing.T) (*repo.PgStore, *pgxpool.Pool) {
	t.Helper()
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
	return repo.NewStore(pool), pool
}

func newSquad(t *testing.T, store *repo.PgStore) repo.Squad {
	t.Helper()
	ctx := context.Background()
	ws, err := store.CreateWorkspace(ctx, repo.CreateWorkspaceParams{Name: "ws-" + uuid.NewString(), Type: "time"})
	require.NoError(t, err)
	sq, err := store.CreateSquad(ctx, repo.CreateSquadParams{WorkspaceID: ws.ID, Name: "Busca", Status: "rascunho"})
	require.NoError(t, err)
	return sq
}

func TestActivateSquadRoleConcurrently(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	sq := newSquad(t, store)
	role, err := store.UpsertGlobalRole(ctx, repo.CreateRoleParams{Code: "it_" + uuid.NewString()[:8], Label: "Integração"})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.ActivateSquadRole(ctx, repo.ActivateSquadRoleParams{SquadID: sq.ID, RoleID: &role.ID})
			if !assert.NoError(t, err) {
				return
			}
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, created)
	roles, err := store.ListSquadRoles(ctx, sq.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
}

func TestDecisionsAreAppendOnly(t *testing.T) {
	store, pool := newStore(t)
	ctx := context.Background()
	sq := newSquad(t, store)

	d, err := store.InsertDecision(ctx, repo.InsertDecisionParams{
		SquadID:       sq.ID,
		Title:         "Fase aprovada: Descoberta",
		Decision:      json.RawMessage(`{"type":"phase"}`),
		CreatedByRole: "owner",
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE decisions SET title = 'x' WHERE id = $1`, d.ID)
	require.Error(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM decisions WHERE id = $1`, d.ID)
	require.Error(t, err)
}

func TestInTxRollsBack(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	sq := newSquad(t, store)
	boom := errors.New("boom")

	err := store.InTx(ctx, func(q repo.Querier) error {
		if _, err := q.InsertDecision(ctx, repo.InsertDecisionParams{
			SquadID: sq.ID, Title: "descartada", Decision: json.RawMessage(`{}`), CreatedByRole: "owner",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := store.ListDecisions(ctx, sq.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestMatrixVersionsDeletedOnlyWithSquad(t *testing.T) {
	store, pool := newStore(t)
	ctx := context.Background()
	sq := newSquad(t, store)

	v, err := store.InsertMatrixVersion(ctx, repo.InsertMatrixVersionParams{
		SquadID: sq.ID,
		Version: 1,
		Entries: []repo.MatrixEntry{{
			SquadRoleID: uuid.New(), RoleLabel: "Designer",
			SquadPersonaID: uuid.New(), PersonaLabel: "Compradora",
			CheckpointType: "descoberta", RequirementLevel: "obrigatorio",
		}},
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `DELETE FROM validation_matrix_entries WHERE version_id = $1`, v.ID)
	require.Error(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM validation_matrix_versions WHERE id = $1`, v.ID)
	require.Error(t, err)

	require.NoError(t, store.DeleteSquad(ctx, sq.ID))
	var left int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM validation_matrix_entries WHERE version_id = $1`, v.ID).Scan(&left))
	require.Zero(t, left)
}
