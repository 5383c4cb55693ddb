package http

import (
	"net/http"

	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/squad"
)

func (h *Handler) ListSquadRoles(w http.ResponseWriter, r *http.Request) {
	items, err := h.Squads.ListRoles(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// ActivateSquadRole responde 201 quando cria a associação e 200 quando ela já estava ativa.
func (h *Handler) ActivateSquadRole(w http.ResponseWriter, r *http.Request) {
	var in squad.ActivateInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	sr, created, err := h.Squads.ActivateRole(r.Context(), currentSquad(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, createdOr(created), sr)
}

func (h *Handler) UpdateSquadRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "squadRoleID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var patch squad.AssociationPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err)
		return
	}
	sr, err := h.Squads.UpdateRole(r.Context(), currentSquad(r).ID, id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sr)
}

func (h *Handler) RemoveSquadRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "squadRoleID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.Squads.RemoveRole(r.Context(), currentSquad(r).ID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

// ReplaceSquadRole copia o papel global para o workspace e troca a associação.
func (h *Handler) ReplaceSquadRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "squadRoleID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var patch catalog.RolePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err)
		return
	}
	sr, err := h.Squads.ReplaceRole(r.Context(), userID(r), currentSquad(r), id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sr)
}

func (h *Handler) ListSquadPersonas(w http.ResponseWriter, r *http.Request) {
	items, err := h.Squads.ListPersonas(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) AddSquadPersona(w http.ResponseWriter, r *http.Request) {
	var in squad.ActivateInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	sp, created, err := h.Squads.AddPersona(r.Context(), currentSquad(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, createdOr(created), sp)
}

func (h *Handler) UpdateSquadPersona(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "squadPersonaID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var patch squad.AssociationPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err)
		return
	}
	sp, err := h.Squads.UpdatePersona(r.Context(), currentSquad(r).ID, id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sp)
}

func (h *Handler) RemoveSquadPersona(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "squadPersonaID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.Squads.RemovePersona(r.Context(), currentSquad(r).ID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) ReplaceSquadPersona(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "squadPersonaID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var patch catalog.PersonaPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err)
		return
	}
	sp, err := h.Squads.ReplacePersona(r.Context(), userID(r), currentSquad(r), id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sp)
}
