package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
)

// Service expõe o catálogo de personas e papéis.
type Service struct {
	store repo.Querier
}

func NewService(store repo.Querier) *Service {
	return &Service{store: store}
}

// VisiblePersona e VisibleRole são usados por outros pacotes dentro de transações.
func VisiblePersona(ctx context.Context, q repo.Querier, workspaceID, id uuid.UUID) (repo.Persona, error) {
	return visiblePersona(ctx, q, workspaceID, id)
}

func VisibleRole(ctx context.Context, q repo.Querier, workspaceID, id uuid.UUID) (repo.Role, error) {
	return visibleRole(ctx, q, workspaceID, id)
}

func readOnly() error {
	return apperr.ErrForbidden.WithMessage("itens do catálogo global são somente leitura; duplique para personalizar")
}

func pick(p *string, cur string) string {
	if p == nil {
		return cur
	}
	return *p
}

func pickList(v, cur []string) []string {
	if v == nil {
		return append([]string(nil), cur...)
	}
	return v
}
