// Package catalog trata personas e papéis, que podem ser globais (somente leitura
// para quem não é admin) ou pertencer a um workspace.
package catalog

import (
	"github.com/google/uuid"
)

// Ref identifica uma persona ou papel e sua origem.
type Ref interface {
	EntityID() uuid.UUID
	isRef()
}

// Global aponta para o catálogo compartilhado.
type Global struct {
	ID uuid.UUID
}

// WorkspaceOwned aponta para uma cópia editável do workspace.
type WorkspaceOwned struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
}

func (g Global) EntityID() uuid.UUID         { return g.ID }
func (w WorkspaceOwned) EntityID() uuid.UUID { return w.ID }
func (Global) isRef()                        {}
func (WorkspaceOwned) isRef()                {}

// RefOf monta a Ref a partir da coluna workspace_id (nula para globais).
func RefOf(id uuid.UUID, workspaceID *uuid.UUID) Ref {
	if workspaceID == nil {
		return Global{ID: id}
	}
	return WorkspaceOwned{ID: id, WorkspaceID: *workspaceID}
}

// Split devolve o par (global, workspace) de chaves estrangeiras; exatamente um é preenchido.
func Split(ref Ref) (global, workspace *uuid.UUID) {
	switch r := ref.(type) {
	case Global:
		id := r.ID
		return &id, nil
	case WorkspaceOwned:
		id := r.ID
		return nil, &id
	}
	return nil, nil
}

// Source devolve "global" ou "workspace", como exposto na API.
func Source(ref Ref) string {
	if _, ok := ref.(Global); ok {
		return "global"
	}
	return "workspace"
}

// Actor é quem executa a operação no catálogo.
type Actor struct {
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	Admin       bool
}

// visible informa se o registro pode ser lido a partir do workspace do ator.
func visible(ref Ref, workspaceID uuid.UUID) bool {
	switch r := ref.(type) {
	case Global:
		return true
	case WorkspaceOwned:
		return r.WorkspaceID == workspaceID
	}
	return false
}

// mutable informa se o ator pode alterar o registro.
func mutable(ref Ref, actor Actor) bool {
	if _, ok := ref.(Global); ok {
		return actor.Admin
	}
	return visible(ref, actor.WorkspaceID)
}
