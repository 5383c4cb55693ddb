package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/auth"
	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/config"
	"github.com/squadsvirtuais/api/internal/decision"
	"github.com/squadsvirtuais/api/internal/llm"
	"github.com/squadsvirtuais/api/internal/matrix"
	"github.com/squadsvirtuais/api/internal/problem"
	"github.com/squadsvirtuais/api/internal/proposal"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/repo/repotest"
	"github.com/squadsvirtuais/api/internal/service"
	"github.com/squadsvirtuais/api/internal/squad"
	"github.com/squadsvirtuais/api/internal/suggestion"
	"github.com/squadsvirtuais/api/internal/workspace"
)

type stubVerifier struct{ ident auth.Identity }

func (s *stubVerifier) Verify(context.Context, string) (auth.Identity, error) { return s.ident, nil }

type stubGitHub struct {
	ident auth.Identity
	err   error
}

func (s *stubGitHub) Configured() bool { return true }
func (s *stubGitHub) AuthCodeURL(state string) string { return "https://github.test/authorize?state=" + state }
func (s *stubGitHub) Exchange(context.Context, string) (auth.Identity, error) {
	return s.ident, s.err
}

type stubGenerator struct{ raw string }

func (s stubGenerator) GenerateStructure(context.Context, llm.Problem) (json.RawMessage, error) {
	return json.RawMessage(s.raw), nil
}
func (stubGenerator) Model() string { return "stub" }

type testServer struct {
	t       *testing.T
	handler http.Handler
	google  *stubVerifier
	github  *stubGitHub
	store   *repotest.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repotest.New()
	ts := &testServer{t: t, google: &stubVerifier{}, github: &stubGitHub{}, store: store}
	cfg := &config.Config{
		FrontendURL:     "http://front.test",
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	gen := stubGenerator{raw: `{"governance":{"summary":"Comitê semanal"},"phases":[{"name":"Descoberta"}]}`}
	ts.handler = NewRouter(Deps{
		Config: cfg,
		Auth: service.NewAuthService(service.AuthDeps{
			Store:       store,
			Sessions:    auth.NewSessionManager("0123456789abcdef0123456789abcdef", time.Hour),
			Google:      ts.google,
			GitHub:      ts.github,
			States:      auth.NewStateStore(rdb),
			Revocations: auth.NewRevocationStore(rdb),
		}),
		Access:      service.NewAccessService(store),
		Workspaces:  workspace.NewService(store, workspace.NewListCache(rdb)),
		Catalog:     catalog.NewService(store),
		Squads:      squad.NewService(store),
		Problems:    problem.NewService(store),
		Matrix:      matrix.NewService(store),
		Decisions:   decision.NewService(store),
		Proposals:   proposal.NewService(store, gen, nil),
		Suggestions: suggestion.NewService(store, nil),
		Checks: map[string]func(context.Context) error{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(sub, name, email string) string {
	ts.t.Helper()
	ts.google.ident = auth.Identity{
		Provider: auth.ProviderGoogle, ProviderUserID: sub, Email: email, EmailVerified: true, Name: name,
	}
	rec := ts.do(http.MethodPost, "/auth/google", "", `{"id_token":"x"}`)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string    `json:"token"`
		User  repo.User `json:"user"`
	}
	decode(ts.t, rec, &out)
	require.NotEmpty(ts.t, out.Token)
	return out.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	decode(t, rec, &body)
	require.NotEmpty(t, body.Error)
	return body.Code
}

func TestPublicRoutesAndJSONErrors(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", "", "").Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/ready", "", "").Code)

	rec := ts.do(http.MethodGet, "/nada", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = ts.do(http.MethodDelete, "/health", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "METHOD_NOT_ALLOWED", errorCode(t, rec))

	rec = ts.do(http.MethodPost, "/auth/google", "", `{"id_token":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION", errorCode(t, rec))
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/me", "lixo", "").Code)

	token := ts.login("g-1", "Ana", "ana@example.com")
	rec = ts.do(http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me repo.User
	decode(t, rec, &me)
	require.Equal(t, "ana@example.com", *me.Email)

	require.Equal(t, http.StatusNoContent, ts.do(http.MethodPost, "/auth/logout", token, "").Code)
	require.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/me", token, "").Code)
}

func TestGitHubCallbackRedirects(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/auth/github/callback?code=abc&state=forjado", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "front.test", loc.Host)
	require.Equal(t, "invalid_state", loc.Query().Get("error"))

	rec = ts.do(http.MethodGet, "/auth/github/login", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	authorize, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := authorize.Query().Get("state")
	require.NotEmpty(t, state)

	ts.github.ident = auth.Identity{
		Provider: auth.ProviderGitHub, ProviderUserID: "77", Email: "dev@example.com", EmailVerified: true, Name: "Dev",
	}
	rec = ts.do(http.MethodGet, "/auth/github/callback?code=abc&state="+url.QueryEscape(state), "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err = url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.NotEmpty(t, loc.Query().Get("token"))

	rec = ts.do(http.MethodGet, "/auth/github/callback?code=abc&state="+url.QueryEscape(state), "", "")
	loc, _ = url.Parse(rec.Header().Get("Location"))
	require.Equal(t, "invalid_state", loc.Query().Get("error"), "state só vale uma vez")
}

func TestWorkspaceAccessControl(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.login("g-1", "Ana", "ana@example.com")
	outsider := ts.login("g-2", "Bia", "bia@example.com")

	rec := ts.do(http.MethodPost, "/workspaces", owner, `{"name":"Produto"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ws repo.Workspace
	decode(t, rec, &ws)

	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/workspaces/"+ws.ID.String(), owner, "").Code)

	rec = ts.do(http.MethodGet, "/workspaces/"+ws.ID.String(), outsider, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = ts.do(http.MethodGet, "/workspaces/2f1c0a4e-7d2b-4a8e-9c3f-0b6d5e4a3c21", owner, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/workspaces/abc", owner, "").Code)

	var list []repo.Workspace
	rec = ts.do(http.MethodGet, "/workspaces", owner, "")
	decode(t, rec, &list)
	require.Len(t, list, 1)

	rec = ts.do(http.MethodPost, "/workspaces/"+ws.ID.String()+"/members", owner, `{"email":"bia@example.com","role":"member"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/workspaces/"+ws.ID.String(), outsider, "").Code)
	require.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, "/workspaces/"+ws.ID.String(), outsider, "").Code)
}

func TestSquadFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("g-1", "Ana", "ana@example.com")
	_, err := ts.store.UpsertGlobalRole(context.Background(), repo.CreateRoleParams{Code: "tech_lead", Label: "Tech Lead"})
	require.NoError(t, err)

	var ws repo.Workspace
	decode(t, ts.do(http.MethodPost, "/workspaces", token, `{"name":"Produto"}`), &ws)
	base := "/workspaces/" + ws.ID.String()

	rec := ts.do(http.MethodPost, base+"/squads", token, `{"name":"Busca","status":"ativa"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sq repo.Squad
	decode(t, rec, &sq)
	squadPath := "/squads/" + sq.ID.String()

	rec = ts.do(http.MethodPatch, squadPath, token, `{"status":"arquivada"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var roles []catalog.RoleView
	decode(t, ts.do(http.MethodGet, base+"/roles", token, ""), &roles)
	require.Len(t, roles, 1)
	require.Equal(t, "global", roles[0].Source)

	body := `{"id":"` + roles[0].ID.String() + `"}`
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, squadPath+"/roles", token, body).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, squadPath+"/roles", token, body).Code)

	var active []repo.SquadRole
	decode(t, ts.do(http.MethodGet, squadPath+"/roles", token, ""), &active)
	require.Len(t, active, 1)

	rec = ts.do(http.MethodPatch, base+"/roles/"+roles[0].ID.String(), token, `{"label":"Liderança"}`)
	require.Equal(t, http.StatusForbidden, rec.Code, "catálogo global é somente leitura")

	rec = ts.do(http.MethodPost, squadPath+"/proposals", token, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "NO_PROBLEM_STATEMENT", errorCode(t, rec))

	rec = ts.do(http.MethodPost, base+"/problem-statements", token,
		`{"squad_id":"`+sq.ID.String()+`","title":"Busca","narrative":"Users can't find products"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, squadPath+"/problem-statement", token, "").Code)

	rec = ts.do(http.MethodPost, squadPath+"/proposals", token, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p repo.Proposal
	decode(t, rec, &p)

	rec = ts.do(http.MethodPost, squadPath+"/proposals/"+p.ID.String()+"/breakdown", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var suggestions []repo.Suggestion
	decode(t, rec, &suggestions)
	require.Len(t, suggestions, 2)

	approve := squadPath + "/suggestions/" + suggestions[1].ID.String() + "/approve"
	rec = ts.do(http.MethodPost, approve, token, `{"payload":{"name":"Descoberta guiada"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.do(http.MethodPost, approve, token, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "ALREADY_RESOLVED", errorCode(t, rec))

	rec = ts.do(http.MethodPost, squadPath+"/suggestions/"+suggestions[0].ID.String()+"/reject", token, `{"reason":"cedo demais"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var pending []repo.Suggestion
	decode(t, ts.do(http.MethodGet, squadPath+"/suggestions?status=pending", token, ""), &pending)
	require.Empty(t, pending)
	require.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, squadPath+"/suggestions?status=talvez", token, "").Code)

	var phases []repo.SquadPhase
	decode(t, ts.do(http.MethodGet, squadPath+"/phases", token, ""), &phases)
	require.Len(t, phases, 1)
	require.Equal(t, "Descoberta guiada", phases[0].Name)

	var decisions []repo.Decision
	decode(t, ts.do(http.MethodGet, squadPath+"/decisions", token, ""), &decisions)
	require.Len(t, decisions, 1)
	require.True(t, strings.HasPrefix(decisions[0].Title, "Fase aprovada"))
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login("g-1", "Ana", "ana@example.com")

	ts.store.FailNext("ListWorkspacesByUser", errors.New("pq: connection reset by peer"))
	rec := ts.do(http.MethodGet, "/workspaces", token, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "INTERNAL", errorCode(t, rec))
	require.NotContains(t, rec.Body.String(), "connection reset")
}

func TestReadyHidesCheckErrors(t *testing.T) {
	h := &Handler{Deps: Deps{Checks: map[string]func(context.Context) error{
		"postgres": func(context.Context) error {
			return errors.New("dial tcp 10.0.3.7:5432: password authentication failed for user squads")
		},
	}}}
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "UNAVAILABLE", errorCode(t, rec))
	require.Contains(t, rec.Body.String(), "postgres")
	require.NotContains(t, rec.Body.String(), "10.0.3.7")
	require.NotContains(t, rec.Body.String(), "password")
}
