package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/config"
)

const githubAPIBase = "https://api.github.com"

// GitHubClient realiza a troca de código OAuth e lê o perfil do usuário.
type GitHubClient struct {
	oauth   *oauth2.Config
	apiBase string
}

// NewGitHubClient usa os endpoints públicos do GitHub.
func NewGitHubClient(cfg config.GitHubConfig) *GitHubClient {
	return NewGitHubClientWithEndpoint(cfg, github.Endpoint, githubAPIBase)
}

// NewGitHubClientWithEndpoint permite apontar para outro servidor (GitHub Enterprise, testes).
func NewGitHubClientWithEndpoint(cfg config.GitHubConfig, endpoint oauth2.Endpoint, apiBase string) *GitHubClient {
	return &GitHubClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: strings.TrimRight(apiBase, "/"),
	}
}

// Configured indica se há credenciais para o fluxo OAuth.
func (c *GitHubClient) Configured() bool {
	return c.oauth.ClientID != "" && c.oauth.ClientSecret != ""
}

// AuthCodeURL monta a URL de autorização com o state informado.
func (c *GitHubClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange troca o código por token e devolve a identidade com e-mail verificado.
func (c *GitHubClient) Exchange(ctx context.Context, code string) (Identity, error) {
	if !c.Configured() {
		return Identity{}, apperr.ErrConfiguration
	}
	if code == "" {
		return Identity{}, apperr.ErrOAuthExchangeFailed
	}

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, apperr.ErrOAuthExchangeFailed.Wrap(err)
	}
	client := c.oauth.Client(ctx, tok)

	var user githubUser
	raw, err := c.getJSON(ctx, client, "/user", &user)
	if err != nil || user.ID == 0 {
		return Identity{}, apperr.ErrUserFetchFailed.Wrap(err)
	}

	email, verified := user.Email, user.Email != ""
	var emails []githubEmail
	if _, err := c.getJSON(ctx, client, "/user/emails", &emails); err == nil {
		if primary, ok := pickEmail(emails); ok {
			email, verified = primary, true
		}
	}
	if email == "" {
		return Identity{}, apperr.ErrEmailUnavailable
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return Identity{
		Provider:       ProviderGitHub,
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Email:          email,
		EmailVerified:  verified,
		Name:           name,
		AvatarURL:      user.AvatarURL,
		Raw:            raw,
	}, nil
}

// pickEmail prefere o e-mail primário verificado e aceita qualquer outro verificado.
func pickEmail(emails []githubEmail) (string, bool) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true
		}
	}
	return "", false
}

func (c *GitHubClient) getJSON(ctx context.Context, client *http.Client, path string, out any) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("github %s: status %d", path, resp.StatusCode)
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, json.Unmarshal(raw, out)
}
