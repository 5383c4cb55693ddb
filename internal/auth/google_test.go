package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
)

func signGoogleToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func googleClaimsFor(aud, iss string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":            iss,
		"aud":            aud,
		"sub":            "google-123",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"email":          "ana@example.com",
		"email_verified": true,
		"name":           "Ana",
		"picture":        "https://example.com/ana.png",
	}
}

func TestGoogleVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := NewGoogleVerifierWithKeySet("client-1", keys)
	ctx := context.Background()

	t.Run("token válido", func(t *testing.T) {
		for _, iss := range []string{"https://accounts.google.com", "accounts.google.com"} {
			ident, err := verifier.Verify(ctx, signGoogleToken(t, key, googleClaimsFor("client-1", iss)))
			require.NoError(t, err)
			require.Equal(t, ProviderGoogle, ident.Provider)
			require.Equal(t, "google-123", ident.ProviderUserID)
			require.Equal(t, "ana@example.com", ident.Email)
			require.True(t, ident.EmailVerified)
			require.Equal(t, "https://example.com/ana.png", ident.AvatarURL)
			require.Contains(t, string(ident.Raw), "google-123")
		}
	})

	t.Run("audiência diferente", func(t *testing.T) {
		_, err := verifier.Verify(ctx, signGoogleToken(t, key, googleClaimsFor("outro-client", "https://accounts.google.com")))
		require.ErrorIs(t, err, apperr.ErrInvalidCredential)
	})

	t.Run("issuer desconhecido", func(t *testing.T) {
		_, err := verifier.Verify(ctx, signGoogleToken(t, key, googleClaimsFor("client-1", "https://evil.example.com")))
		require.ErrorIs(t, err, apperr.ErrInvalidCredential)
	})

	t.Run("token expirado", func(t *testing.T) {
		claims := googleClaimsFor("client-1", "https://accounts.google.com")
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := verifier.Verify(ctx, signGoogleToken(t, key, claims))
		require.ErrorIs(t, err, apperr.ErrInvalidCredential)
	})

	t.Run("malformado", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "abc.def")
		require.ErrorIs(t, err, apperr.ErrInvalidCredential)
	})

	t.Run("client id ausente", func(t *testing.T) {
		_, err := NewGoogleVerifierWithKeySet("", keys).Verify(ctx, "qualquer")
		require.ErrorIs(t, err, apperr.ErrConfiguration)
	})
}
