package decision

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/repo/repotest"
)

func TestAppendAndListNewestFirst(t *testing.T) {
	store := repotest.New()
	ctx := context.Background()
	squadID, actor := uuid.New(), uuid.New()

	_, err := AppendTx(ctx, store, Record{SquadID: squadID, Title: "Fase aprovada", Body: map[string]string{"name": "Descoberta"}, Actor: &actor, ActorRole: "owner"})
	require.NoError(t, err)
	second, err := AppendTx(ctx, store, Record{SquadID: squadID, Title: "Persona aprovada", Body: map[string]string{"name": "Comprador"}, Actor: &actor})
	require.NoError(t, err)
	require.Equal(t, "member", second.CreatedByRole)

	items, err := NewService(store).List(ctx, squadID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Persona aprovada", items[0].Title)

	var body map[string]string
	require.NoError(t, json.Unmarshal(items[1].Decision, &body))
	require.Equal(t, "Descoberta", body["name"])
}
