package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/auth"
	"github.com/squadsvirtuais/api/internal/repo"
)

type idTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (auth.Identity, error)
}

type codeExchanger interface {
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.Identity, error)
}

type stateStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) error
}

type revocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService concentra login por provedor externo, emissão e encerramento de sessões.
type AuthService struct {
	store       repo.Store
	sessions    *auth.SessionManager
	google      idTokenVerifier
	github      codeExchanger
	states      stateStore
	revocations revocationStore
}

// AuthDeps agrupa os colaboradores do AuthService.
type AuthDeps struct {
	Store       repo.Store
	Sessions    *auth.SessionManager
	Google      idTokenVerifier
	GitHub      codeExchanger
	States      stateStore
	Revocations revocationStore
}

// NewAuthService cria novo serviço.
func NewAuthService(deps AuthDeps) *AuthService {
	return &AuthService{
		store:       deps.Store,
		sessions:    deps.Sessions,
		google:      deps.Google,
		github:      deps.GitHub,
		states:      deps.States,
		revocations: deps.Revocations,
	}
}

// LoginResult representa o retorno de um login bem-sucedido.
type LoginResult struct {
	Token string    `json:"token"`
	User  repo.User `json:"user"`
}

// LoginGoogle valida o ID token e abre sessão.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	ident, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, ident)
}

// GitHubAuthURL emite um state de uso único e devolve a URL de autorização.
func (s *AuthService) GitHubAuthURL(ctx context.Context) (string, error) {
	if !s.github.Configured() {
		return "", apperr.ErrConfiguration
	}
	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", err
	}
	return s.github.AuthCodeURL(state), nil
}

// LoginGitHub consome o state, troca o código e abre sessão.
func (s *AuthService) LoginGitHub(ctx context.Context, code, state string) (*LoginResult, error) {
	if !s.github.Configured() {
		return nil, apperr.ErrConfiguration
	}
	if err := s.states.Consume(ctx, state); err != nil {
		return nil, err
	}
	ident, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.login(ctx, ident)
}

func (s *AuthService) login(ctx context.Context, ident auth.Identity) (*LoginResult, error) {
	user, err := s.resolveUser(ctx, ident)
	if err != nil {
		return nil, err
	}
	token, _, err := s.sessions.Issue(user.ID, deref(user.Email), deref(user.Name))
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", ident.Provider).Str("user_id", user.ID.String()).Msg("login concluído")
	return &LoginResult{Token: token, User: user}, nil
}

// resolveUser faz, numa única transação, o upsert da identidade e a criação, vínculo
// ou atualização do usuário. Falhas viram AuthenticationFailed sem detalhes internos.
func (s *AuthService) resolveUser(ctx context.Context, ident auth.Identity) (repo.User, error) {
	profile := repo.CreateUserParams{
		Name:      optional(ident.Name),
		Email:     optional(strings.ToLower(ident.Email)),
		AvatarURL: optional(ident.AvatarURL),
	}

	var user repo.User
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		identity, err := q.UpsertIdentity(ctx, repo.UpsertIdentityParams{
			Provider:       ident.Provider,
			ProviderUserID: ident.ProviderUserID,
			ProviderEmail:  profile.Email,
			RawProfile:     ident.Raw,
		})
		if err != nil {
			return err
		}

		if identity.UserID != nil {
			user, err = q.TouchUserLogin(ctx, *identity.UserID, profile)
			return err
		}

		if ident.EmailVerified && profile.Email != nil {
			existing, err := q.FindUserByEmail(ctx, *profile.Email)
			switch {
			case err == nil:
				if user, err = q.TouchUserLogin(ctx, existing.ID, profile); err != nil {
					return err
				}
			case !errors.Is(err, repo.ErrNotFound):
				return err
			}
		}
		if user.ID == uuid.Nil {
			if user, err = q.CreateUser(ctx, profile); err != nil {
				return err
			}
		}
		return q.LinkIdentity(ctx, identity.ID, user.ID)
	})
	if err != nil {
		correlation := uuid.NewString()
		log.Error().Err(err).Str("provider", ident.Provider).Str("correlation_id", correlation).Msg("falha ao resolver usuário")
		return repo.User{}, apperr.ErrAuthenticationFailed.Wrap(err).WithMessage("não foi possível autenticar (ref " + correlation + ")")
	}
	return user, nil
}

// Authenticate valida o bearer token e recusa sessões encerradas.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return nil, apperr.ErrUnauthorized.Wrap(err)
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperr.ErrUnauthorized.WithMessage("sessão encerrada")
	}
	return claims, nil
}

// Me devolve o usuário autenticado.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (repo.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.User{}, apperr.ErrUnauthorized
	}
	return user, err
}

// Logout revoga o jti até a expiração natural do token.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// GitHubErrorCode traduz falhas do fluxo GitHub para o código enviado ao front-end.
func GitHubErrorCode(err error) string {
	switch {
	case errors.Is(err, apperr.ErrConfiguration):
		return "config_error"
	case errors.Is(err, apperr.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, apperr.ErrOAuthExchangeFailed):
		return "token_exchange_failed"
	case errors.Is(err, apperr.ErrUserFetchFailed):
		return "user_fetch_failed"
	case errors.Is(err, apperr.ErrEmailUnavailable):
		return "email_missing"
	case errors.Is(err, apperr.ErrAuthenticationFailed):
		return "db_error"
	case errors.Is(err, apperr.ErrInvalidCredential):
		return "auth_failed"
	default:
		return "internal_error"
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
