package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/auth"
)

type contextKey string

const (
	ContextKeyClaims contextKey = "claims"
	ContextKeyUserID contextKey = "user_id"
)

// Authenticator valida o token de sessão.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// Auth exige Authorization: Bearer e injeta as claims no contexto.
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				WriteAppError(w, r, apperr.ErrUnauthorized.WithMessage("token ausente"))
				return
			}

			claims, err := authenticator.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				WriteAppError(w, r, err)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				WriteAppError(w, r, apperr.ErrUnauthorized.WithMessage("subject inválido"))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims recupera as claims da sessão.
func GetClaims(ctx context.Context) *auth.Claims {
	val, _ := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return val
}

// GetUserID recupera o usuário autenticado.
func GetUserID(ctx context.Context) uuid.UUID {
	val, _ := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return val
}
