package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/catalog"
)

func (h *Handler) catalogActor(r *http.Request) (catalog.Actor, error) {
	uid := userID(r)
	admin, err := h.Access.IsAdmin(r.Context(), uid)
	if err != nil {
		return catalog.Actor{}, err
	}
	return catalog.Actor{
		UserID:      uid,
		WorkspaceID: workspaceID(r),
		Admin:       admin,
	}, nil
}

// catalogCall resolve ator, id do caminho e corpo antes de chamar o serviço.
func catalogCall[In any, Out any](h *Handler, w http.ResponseWriter, r *http.Request, param string, status int,
	fn func(actor catalog.Actor, id uuid.UUID, in In) (Out, error)) {
	var id uuid.UUID
	if param != "" {
		var err error
		if id, err = pathID(r, param); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	var in In
	if r.Method != http.MethodGet && r.Method != http.MethodDelete {
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	actor, err := h.catalogActor(r)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	out, err := fn(actor, id, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if status == http.StatusNoContent {
		noContent(w)
		return
	}
	WriteJSON(w, status, out)
}

type none struct{}

func (h *Handler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "", http.StatusOK, func(a catalog.Actor, _ uuid.UUID, _ none) ([]catalog.PersonaView, error) {
		items, err := h.Catalog.ListPersonas(r.Context(), a.WorkspaceID)
		return catalog.PersonaViews(items), err
	})
}

func (h *Handler) GetPersona(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "personaID", http.StatusOK, func(a catalog.Actor, id uuid.UUID, _ none) (catalog.PersonaView, error) {
		p, err := h.Catalog.GetPersona(r.Context(), a.WorkspaceID, id)
		return catalog.ViewPersona(p), err
	})
}

func (h *Handler) CreatePersona(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "", http.StatusCreated, func(a catalog.Actor, _ uuid.UUID, in catalog.PersonaInput) (catalog.PersonaView, error) {
		p, err := h.Catalog.CreatePersona(r.Context(), a, in)
		return catalog.ViewPersona(p), err
	})
}

func (h *Handler) UpdatePersona(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "personaID", http.StatusOK, func(a catalog.Actor, id uuid.UUID, in catalog.PersonaPatch) (catalog.PersonaView, error) {
		p, err := h.Catalog.UpdatePersona(r.Context(), a, id, in)
		return catalog.ViewPersona(p), err
	})
}

func (h *Handler) DeletePersona(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "personaID", http.StatusNoContent, func(a catalog.Actor, id uuid.UUID, _ none) (none, error) {
		return none{}, h.Catalog.DeletePersona(r.Context(), a, id)
	})
}

func (h *Handler) DuplicatePersona(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "personaID", http.StatusCreated, func(a catalog.Actor, id uuid.UUID, in catalog.PersonaPatch) (catalog.PersonaView, error) {
		p, err := h.Catalog.DuplicatePersona(r.Context(), a, id, in)
		return catalog.ViewPersona(p), err
	})
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "", http.StatusOK, func(a catalog.Actor, _ uuid.UUID, _ none) ([]catalog.RoleView, error) {
		items, err := h.Catalog.ListRoles(r.Context(), a.WorkspaceID)
		return catalog.RoleViews(items), err
	})
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "roleID", http.StatusOK, func(a catalog.Actor, id uuid.UUID, _ none) (catalog.RoleView, error) {
		role, err := h.Catalog.GetRole(r.Context(), a.WorkspaceID, id)
		return catalog.ViewRole(role), err
	})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "", http.StatusCreated, func(a catalog.Actor, _ uuid.UUID, in catalog.RoleInput) (catalog.RoleView, error) {
		role, err := h.Catalog.CreateRole(r.Context(), a, in)
		return catalog.ViewRole(role), err
	})
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "roleID", http.StatusOK, func(a catalog.Actor, id uuid.UUID, in catalog.RolePatch) (catalog.RoleView, error) {
		role, err := h.Catalog.UpdateRole(r.Context(), a, id, in)
		return catalog.ViewRole(role), err
	})
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "roleID", http.StatusNoContent, func(a catalog.Actor, id uuid.UUID, _ none) (none, error) {
		return none{}, h.Catalog.DeleteRole(r.Context(), a, id)
	})
}

func (h *Handler) DuplicateRole(w http.ResponseWriter, r *http.Request) {
	catalogCall(h, w, r, "roleID", http.StatusCreated, func(a catalog.Actor, id uuid.UUID, in catalog.RolePatch) (catalog.RoleView, error) {
		role, err := h.Catalog.DuplicateRole(r.Context(), a, id, in)
		return catalog.ViewRole(role), err
	})
}
