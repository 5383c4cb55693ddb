package auth

import (
	"context"
	"encoding/json"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/apperr"
)

const googleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

// GoogleVerifier valida ID tokens emitidos pelo Google para o client id configurado.
type GoogleVerifier struct {
	clientID string
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier usa as chaves públicas do Google, buscadas e renovadas sob demanda.
func NewGoogleVerifier(ctx context.Context, clientID string) *GoogleVerifier {
	return NewGoogleVerifierWithKeySet(clientID, oidc.NewRemoteKeySet(ctx, googleCertsURL))
}

// NewGoogleVerifierWithKeySet permite injetar as chaves (testes).
func NewGoogleVerifierWithKeySet(clientID string, keys oidc.KeySet) *GoogleVerifier {
	// O Google emite tokens com dois formatos de issuer; a checagem é feita em Verify.
	verifier := oidc.NewVerifier("https://accounts.google.com", keys, &oidc.Config{
		ClientID:        clientID,
		SkipIssuerCheck: true,
	})
	return &GoogleVerifier{clientID: clientID, verifier: verifier}
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify confere assinatura, audiência, expiração e issuer do ID token.
func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (Identity, error) {
	if g.clientID == "" {
		return Identity{}, apperr.ErrConfiguration
	}
	if rawIDToken == "" {
		return Identity{}, apperr.ErrInvalidCredential
	}

	token, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Warn().Err(err).Msg("google: id token rejeitado")
		return Identity{}, apperr.ErrInvalidCredential.Wrap(err)
	}
	if !googleIssuers[token.Issuer] {
		return Identity{}, apperr.ErrInvalidCredential
	}

	var claims googleClaims
	if err := token.Claims(&claims); err != nil {
		return Identity{}, apperr.ErrInvalidCredential.Wrap(err)
	}
	var raw json.RawMessage
	_ = token.Claims(&raw)

	return Identity{
		Provider:       ProviderGoogle,
		ProviderUserID: token.Subject,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		Name:           claims.Name,
		AvatarURL:      claims.Picture,
		Raw:            raw,
	}, nil
}
