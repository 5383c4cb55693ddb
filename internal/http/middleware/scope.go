package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/service"
	"github.com/squadsvirtuais/api/internal/util"
)

const (
	ContextKeyMembership contextKey = "membership"
	ContextKeySquad      contextKey = "squad"
)

// Access resolve o vínculo do usuário com workspace e squad.
type Access interface {
	Workspace(ctx context.Context, userID, workspaceID uuid.UUID) (repo.WorkspaceMember, error)
	Squad(ctx context.Context, userID, squadID uuid.UUID) (service.SquadAccess, error)
}

// WorkspaceScope valida {workspaceID} e injeta o vínculo do usuário.
func WorkspaceScope(access Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspaceID, err := util.ParseID(chi.URLParam(r, "workspaceID"), "workspace")
			if err != nil {
				WriteAppError(w, r, err)
				return
			}
			member, err := access.Workspace(r.Context(), GetUserID(r.Context()), workspaceID)
			if err != nil {
				WriteAppError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ContextKeyMembership, member)))
		})
	}
}

// SquadScope valida {squadID}, carrega a squad e o vínculo com o workspace dela.
func SquadScope(access Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			squadID, err := util.ParseID(chi.URLParam(r, "squadID"), "squad")
			if err != nil {
				WriteAppError(w, r, err)
				return
			}
			sa, err := access.Squad(r.Context(), GetUserID(r.Context()), squadID)
			if err != nil {
				WriteAppError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeySquad, sa.Squad)
			ctx = context.WithValue(ctx, ContextKeyMembership, sa.Member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetMembership devolve o vínculo resolvido pelo escopo.
func GetMembership(ctx context.Context) repo.WorkspaceMember {
	val, _ := ctx.Value(ContextKeyMembership).(repo.WorkspaceMember)
	return val
}

// GetSquad devolve a squad resolvida por SquadScope.
func GetSquad(ctx context.Context) repo.Squad {
	val, _ := ctx.Value(ContextKeySquad).(repo.Squad)
	return val
}
