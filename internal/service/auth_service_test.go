package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/auth"
	"github.com/squadsvirtuais/api/internal/repo/repotest"
)

type stubVerifier struct {
	ident auth.Identity
	err   error
}

func (s *stubVerifier) Verify(context.Context, string) (auth.Identity, error) {
	return s.ident, s.err
}

type stubGitHub struct {
	configured bool
	ident      auth.Identity
	err        error
}

func (s *stubGitHub) Configured() bool                { return s.configured }
func (s *stubGitHub) AuthCodeURL(state string) string { return "https://github.test/authorize?state=" + state }
func (s *stubGitHub) Exchange(context.Context, string) (auth.Identity, error) {
	return s.ident, s.err
}

type authFixture struct {
	svc    *AuthService
	store  *repotest.Store
	google *stubVerifier
	github *stubGitHub
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &authFixture{
		store:  repotest.New(),
		google: &stubVerifier{},
		github: &stubGitHub{configured: true},
	}
	f.svc = NewAuthService(AuthDeps{
		Store:       f.store,
		Sessions:    auth.NewSessionManager("0123456789abcdef0123456789abcdef", time.Hour),
		Google:      f.google,
		GitHub:      f.github,
		States:      auth.NewStateStore(rdb),
		Revocations: auth.NewRevocationStore(rdb),
	})
	return f
}

func googleIdentity(name, email string) auth.Identity {
	return auth.Identity{
		Provider:       auth.ProviderGoogle,
		ProviderUserID: "g-1",
		Email:          email,
		EmailVerified:  true,
		Name:           name,
		Raw:            []byte(`{"sub":"g-1"}`),
	}
}

func TestLoginTwiceKeepsSingleUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.google.ident = googleIdentity("Ana", "Ana@Example.com")
	first, err := f.svc.LoginGoogle(ctx, "token")
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)
	require.Equal(t, "ana@example.com", *first.User.Email)

	f.google.ident = googleIdentity("", "")
	second, err := f.svc.LoginGoogle(ctx, "token")
	require.NoError(t, err)

	require.Equal(t, first.User.ID, second.User.ID)
	require.Equal(t, "Ana", *second.User.Name)
	require.Equal(t, "ana@example.com", *second.User.Email)
	require.True(t, second.User.LastLoginAt.After(*first.User.LastLoginAt))

	counts := f.store.Counts()
	require.Equal(t, 1, counts.Users)
	require.Equal(t, 1, counts.Identities)
}

func TestLoginLinksProvidersByVerifiedEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.google.ident = googleIdentity("Ana", "ana@example.com")
	google, err := f.svc.LoginGoogle(ctx, "token")
	require.NoError(t, err)

	url, err := f.svc.GitHubAuthURL(ctx)
	require.NoError(t, err)
	state := url[len("https://github.test/authorize?state="):]

	f.github.ident = auth.Identity{Provider: auth.ProviderGitHub, ProviderUserID: "42", Email: "ana@example.com", EmailVerified: true, Name: "ana"}
	gh, err := f.svc.LoginGitHub(ctx, "code", state)
	require.NoError(t, err)
	require.Equal(t, google.User.ID, gh.User.ID)

	counts := f.store.Counts()
	require.Equal(t, 1, counts.Users)
	require.Equal(t, 2, counts.Identities)

	_, err = f.svc.LoginGitHub(ctx, "code", state)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	require.Equal(t, "invalid_state", GitHubErrorCode(err))
}

func TestLoginFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	f.google.ident = googleIdentity("Ana", "ana@example.com")
	f.store.FailNext("LinkIdentity", errors.New("conexão perdida"))

	_, err := f.svc.LoginGoogle(context.Background(), "token")
	require.ErrorIs(t, err, apperr.ErrAuthenticationFailed)
	require.NotContains(t, err.(*apperr.Error).Message, "conexão perdida")
	require.Equal(t, "db_error", GitHubErrorCode(err))

	counts := f.store.Counts()
	require.Zero(t, counts.Users)
	require.Zero(t, counts.Identities)
}

func TestLoginPropagatesVerifierErrors(t *testing.T) {
	f := newAuthFixture(t)
	f.google.err = apperr.ErrInvalidCredential

	_, err := f.svc.LoginGoogle(context.Background(), "token")
	require.ErrorIs(t, err, apperr.ErrInvalidCredential)

	f.github.configured = false
	_, err = f.svc.GitHubAuthURL(context.Background())
	require.ErrorIs(t, err, apperr.ErrConfiguration)
	require.Equal(t, "config_error", GitHubErrorCode(err))
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.google.ident = googleIdentity("Ana", "ana@example.com")

	result, err := f.svc.LoginGoogle(ctx, "token")
	require.NoError(t, err)

	claims, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	me, err := f.svc.Me(ctx, result.User.ID)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, me.ID)

	require.NoError(t, f.svc.Logout(ctx, claims))
	_, err = f.svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}
