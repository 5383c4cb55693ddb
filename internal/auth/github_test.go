package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/config"
)

type fakeGitHub struct {
	tokenStatus int
	userStatus  int
	user        map[string]any
	emails      []map[string]any
}

func (f *fakeGitHub) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "gho_test", "token_type": "bearer"})
	})
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.userStatus != 0 {
			w.WriteHeader(f.userStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(f.user)
	})
	mux.HandleFunc("/api/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.emails)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGitHubClient(srv *httptest.Server) *GitHubClient {
	cfg := config.GitHubConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}
	endpoint := oauth2.Endpoint{
		AuthURL:   srv.URL + "/login/oauth/authorize",
		TokenURL:  srv.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	return NewGitHubClientWithEndpoint(cfg, endpoint, srv.URL+"/api")
}

func TestGitHubExchange(t *testing.T) {
	ctx := context.Background()

	t.Run("usa e-mail primário verificado", func(t *testing.T) {
		fake := &fakeGitHub{
			user: map[string]any{"id": 42, "login": "ana", "avatar_url": "https://example.com/a.png"},
			emails: []map[string]any{
				{"email": "old@example.com", "primary": false, "verified": true},
				{"email": "ana@example.com", "primary": true, "verified": true},
			},
		}
		ident, err := newTestGitHubClient(fake.server(t)).Exchange(ctx, "code")
		require.NoError(t, err)
		require.Equal(t, "42", ident.ProviderUserID)
		require.Equal(t, "ana@example.com", ident.Email)
		require.True(t, ident.EmailVerified)
		require.Equal(t, "ana", ident.Name)
	})

	t.Run("sem e-mail", func(t *testing.T) {
		fake := &fakeGitHub{
			user:   map[string]any{"id": 42, "login": "ana"},
			emails: []map[string]any{{"email": "x@example.com", "primary": true, "verified": false}},
		}
		_, err := newTestGitHubClient(fake.server(t)).Exchange(ctx, "code")
		require.ErrorIs(t, err, apperr.ErrEmailUnavailable)
	})

	t.Run("troca de código falha", func(t *testing.T) {
		fake := &fakeGitHub{tokenStatus: http.StatusBadRequest}
		_, err := newTestGitHubClient(fake.server(t)).Exchange(ctx, "code")
		require.ErrorIs(t, err, apperr.ErrOAuthExchangeFailed)
	})

	t.Run("perfil indisponível", func(t *testing.T) {
		fake := &fakeGitHub{userStatus: http.StatusBadGateway}
		_, err := newTestGitHubClient(fake.server(t)).Exchange(ctx, "code")
		require.ErrorIs(t, err, apperr.ErrUserFetchFailed)
	})

	t.Run("sem credenciais", func(t *testing.T) {
		client := NewGitHubClient(config.GitHubConfig{})
		_, err := client.Exchange(ctx, "code")
		require.ErrorIs(t, err, apperr.ErrConfiguration)
	})
}

func TestGitHubAuthCodeURLCarriesState(t *testing.T) {
	client := NewGitHubClient(config.GitHubConfig{ClientID: "id", ClientSecret: "s", RedirectURL: "http://localhost/cb"})
	url := client.AuthCodeURL("abc")
	require.Contains(t, url, "state=abc")
	require.Contains(t, url, "github.com/login/oauth/authorize")
}
