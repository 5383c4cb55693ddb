package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/squad"
)

func (h *Handler) ListSquads(w http.ResponseWriter, r *http.Request) {
	items, err := h.Squads.List(r.Context(), workspaceID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateSquad(w http.ResponseWriter, r *http.Request) {
	var in squad.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	sq, err := h.Squads.Create(r.Context(), userID(r), workspaceID(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sq)
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, currentSquad(r))
}

func (h *Handler) UpdateSquad(w http.ResponseWriter, r *http.Request) {
	var in squad.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	sq, err := h.Squads.Update(r.Context(), currentSquad(r).ID, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sq)
}

func (h *Handler) DeleteSquad(w http.ResponseWriter, r *http.Request) {
	if err := h.Squads.Delete(r.Context(), currentSquad(r).ID); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) ListSquadMembers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Squads.ListMembers(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) AddSquadMember(w http.ResponseWriter, r *http.Request) {
	var in squad.MemberInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	m, err := h.Squads.AddMember(r.Context(), currentSquad(r).ID, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) RemoveSquadMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.Squads.RemoveMember(r.Context(), currentSquad(r).ID, memberID); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) ListMemberRoles(w http.ResponseWriter, r *http.Request) {
	items, err := h.Squads.ListMemberRoles(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// AssignMemberRole troca o papel do membro; cada membro tem no máximo um.
func (h *Handler) AssignMemberRole(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var payload struct {
		SquadRoleID uuid.UUID `json:"squad_role_id"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeErr(w, r, err)
		return
	}
	mr, err := h.Squads.AssignMemberRole(r.Context(), userID(r), currentSquad(r).ID, memberID, payload.SquadRoleID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, mr)
}

func (h *Handler) UnassignMemberRole(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.Squads.UnassignMemberRole(r.Context(), currentSquad(r).ID, memberID); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) ListPhases(w http.ResponseWriter, r *http.Request) {
	items, err := h.Squads.ListPhases(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) AppendPhase(w http.ResponseWriter, r *http.Request) {
	var in squad.PhaseInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	ph, err := h.Squads.AppendPhase(r.Context(), currentSquad(r).ID, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ph)
}

func (h *Handler) DeletePhase(w http.ResponseWriter, r *http.Request) {
	phaseID, err := pathID(r, "phaseID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.Squads.DeletePhase(r.Context(), currentSquad(r).ID, phaseID); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	items, err := h.Squads.ListSections(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Decisions.List(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}
