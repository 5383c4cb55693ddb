package http

import (
	"net/http"

	"github.com/squadsvirtuais/api/internal/problem"
)

func (h *Handler) ListProblems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Problems.List(r.Context(), workspaceID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "problemID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	ps, err := h.Problems.Get(r.Context(), workspaceID(r), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ps)
}

func (h *Handler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var in problem.Input
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	ps, err := h.Problems.Create(r.Context(), userID(r), workspaceID(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ps)
}

func (h *Handler) UpdateProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "problemID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var patch problem.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeErr(w, r, err)
		return
	}
	ps, err := h.Problems.Update(r.Context(), workspaceID(r), id, patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ps)
}

func (h *Handler) DeleteProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "problemID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := h.Problems.Delete(r.Context(), workspaceID(r), id); err != nil {
		writeErr(w, r, err)
		return
	}
	noContent(w)
}

// SquadProblem devolve o problema mais recente vinculado à squad.
func (h *Handler) SquadProblem(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Problems.ForSquad(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ps)
}
