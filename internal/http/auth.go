package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/apperr"
	httpmiddleware "github.com/squadsvirtuais/api/internal/http/middleware"
	"github.com/squadsvirtuais/api/internal/service"
)

// LoginGoogle troca o ID token do Google por uma sessão.
func (h *Handler) LoginGoogle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDToken string `json:"id_token"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeErr(w, r, err)
		return
	}
	if strings.TrimSpace(payload.IDToken) == "" {
		writeErr(w, r, apperr.Validation("id_token é obrigatório"))
		return
	}

	result, err := h.Auth.LoginGoogle(r.Context(), payload.IDToken)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// GitHubLogin redireciona para a autorização do GitHub.
func (h *Handler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	target, err := h.Auth.GitHubAuthURL(r.Context())
	if err != nil {
		h.redirectWithError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// GitHubCallback conclui o fluxo OAuth e devolve o token ao front-end pela URL.
func (h *Handler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("error") != "" || q.Get("code") == "" {
		h.redirectWithError(w, r, apperr.ErrInvalidCredential)
		return
	}

	result, err := h.Auth.LoginGitHub(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		h.redirectWithError(w, r, err)
		return
	}
	h.redirectToFrontend(w, r, url.Values{"token": {result.Token}})
}

func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := service.GitHubErrorCode(err)
	log.Warn().Err(err).Str("component", "auth").Str("provider", "github").Str("code", code).Msg("falha no login")
	h.redirectToFrontend(w, r, url.Values{"error": {code}})
}

func (h *Handler) redirectToFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	http.Redirect(w, r, h.Config.FrontendURL+"/auth/callback?"+params.Encode(), http.StatusFound)
}

// Logout encerra a sessão atual.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), httpmiddleware.GetClaims(r.Context())); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

// Me devolve o perfil do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Me(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
