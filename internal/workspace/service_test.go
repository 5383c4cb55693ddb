package workspace

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo/repotest"
)

func newTestService(t *testing.T) (*Service, *repotest.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := repotest.New()
	return NewService(store, NewListCache(rdb)), store, mr
}

func TestCreateMakesCreatorOwner(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	ana := store.SeedUser("Ana", "ana@example.com")

	ws, err := svc.Create(ctx, ana.ID, CreateInput{Name: "  Produto  "})
	require.NoError(t, err)
	require.Equal(t, "Produto", ws.Name)
	require.Equal(t, "time", ws.Type)

	members, err := svc.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, ana.ID, members[0].UserID)
	require.Equal(t, RoleOwner, members[0].Role)

	_, err = svc.Create(ctx, ana.ID, CreateInput{Name: " "})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListIsCachedAndInvalidatedOnMutation(t *testing.T) {
	svc, store, mr := newTestService(t)
	ctx := context.Background()
	ana := store.SeedUser("Ana", "ana@example.com")
	bia := store.SeedUser("Bia", "bia@example.com")

	ws, err := svc.Create(ctx, ana.ID, CreateInput{Name: "Produto"})
	require.NoError(t, err)

	items, err := svc.List(ctx, bia.ID)
	require.NoError(t, err)
	require.Empty(t, items)
	require.True(t, mr.Exists(listKey(bia.ID)))

	owner, err := store.GetWorkspaceMembership(ctx, ws.ID, ana.ID)
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, owner, AddMemberInput{Email: "bia@example.com"})
	require.NoError(t, err)
	require.False(t, mr.Exists(listKey(bia.ID)))

	items, err = svc.List(ctx, bia.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	name := "Plataforma"
	_, err = svc.Update(ctx, owner, UpdateInput{Name: &name})
	require.NoError(t, err)
	items, err = svc.List(ctx, bia.ID)
	require.NoError(t, err)
	require.Equal(t, "Plataforma", items[0].Name)

	require.NoError(t, svc.Delete(ctx, owner))
	items, err = svc.List(ctx, ana.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestMemberRoleRestrictions(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	ana := store.SeedUser("Ana", "ana@example.com")
	bia := store.SeedUser("Bia", "bia@example.com")
	store.SeedUser("Caio", "caio@example.com")

	ws, err := svc.Create(ctx, ana.ID, CreateInput{Name: "Produto"})
	require.NoError(t, err)
	owner, err := store.GetWorkspaceMembership(ctx, ws.ID, ana.ID)
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, owner, AddMemberInput{Email: "bia@example.com", Role: RoleAdmin})
	require.NoError(t, err)
	admin, err := store.GetWorkspaceMembership(ctx, ws.ID, bia.ID)
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, admin, AddMemberInput{Email: "caio@example.com", Role: RoleOwner})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, admin), apperr.ErrForbidden)

	_, err = svc.AddMember(ctx, admin, AddMemberInput{Email: "ninguem@example.com"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.AddMember(ctx, admin, AddMemberInput{Email: "caio@example.com", Role: "chefe"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	m, err := svc.AddMember(ctx, admin, AddMemberInput{Email: "caio@example.com"})
	require.NoError(t, err)
	require.Equal(t, RoleMember, m.Role)

	member, err := store.GetWorkspaceMembership(ctx, ws.ID, m.UserID)
	require.NoError(t, err)
	name := "Outro"
	_, err = svc.Update(ctx, member, UpdateInput{Name: &name})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestListWorksWithoutCache(t *testing.T) {
	store := repotest.New()
	svc := NewService(store, nil)
	ana := store.SeedUser("Ana", "ana@example.com")

	_, err := svc.Create(context.Background(), ana.ID, CreateInput{Name: "Produto"})
	require.NoError(t, err)
	items, err := svc.List(context.Background(), ana.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}
