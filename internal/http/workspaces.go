package http

import (
	"net/http"

	httpmiddleware "github.com/squadsvirtuais/api/internal/http/middleware"
	"github.com/squadsvirtuais/api/internal/workspace"
)

func (h *Handler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	items, err := h.Workspaces.List(r.Context(), userID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var in workspace.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	ws, err := h.Workspaces.Create(r.Context(), userID(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ws)
}

func (h *Handler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Workspaces.Get(r.Context(), workspaceID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ws)
}

func (h *Handler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var in workspace.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	ws, err := h.Workspaces.Update(r.Context(), httpmiddleware.GetMembership(r.Context()), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ws)
}

func (h *Handler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspaces.Delete(r.Context(), httpmiddleware.GetMembership(r.Context())); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) ListWorkspaceMembers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Workspaces.ListMembers(r.Context(), workspaceID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) AddWorkspaceMember(w http.ResponseWriter, r *http.Request) {
	var in workspace.AddMemberInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	member, err := h.Workspaces.AddMember(r.Context(), httpmiddleware.GetMembership(r.Context()), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, member)
}
