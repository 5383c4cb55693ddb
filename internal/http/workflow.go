package http

import (
	"encoding/json"
	"net/http"

	"github.com/squadsvirtuais/api/internal/matrix"
	"github.com/squadsvirtuais/api/internal/proposal"
	"github.com/squadsvirtuais/api/internal/suggestion"
)

func (h *Handler) LatestMatrix(w http.ResponseWriter, r *http.Request) {
	v, err := h.Matrix.Latest(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) ListMatrixVersions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Matrix.ListVersions(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetMatrixVersion(w http.ResponseWriter, r *http.Request) {
	version, err := pathInt(r, "version")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	v, err := h.Matrix.GetVersion(r.Context(), currentSquad(r).ID, version)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// SaveMatrixVersion grava nova versão; versões anteriores nunca são alteradas.
func (h *Handler) SaveMatrixVersion(w http.ResponseWriter, r *http.Request) {
	var in matrix.SaveInput
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	v, err := h.Matrix.SaveVersion(r.Context(), userID(r), currentSquad(r).ID, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	items, err := h.Proposals.List(r.Context(), currentSquad(r).ID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// GenerateProposal chama o modelo de forma síncrona.
func (h *Handler) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	p, err := h.Proposals.Generate(r.Context(), userID(r), currentSquad(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "proposalID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := h.Proposals.Get(r.Context(), currentSquad(r).ID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ConfirmProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "proposalID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var payload struct {
		Payload *proposal.Payload `json:"payload"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeErr(w, r, err)
		return
	}
	actor := proposal.Actor{UserID: userID(r), Role: membershipRole(r)}
	res, err := h.Proposals.Confirm(r.Context(), actor, currentSquad(r), id, payload.Payload)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) DiscardProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "proposalID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := h.Proposals.Discard(r.Context(), currentSquad(r).ID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) BreakdownProposal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "proposalID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	items, err := h.Suggestions.Breakdown(r.Context(), currentSquad(r), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Suggestions.List(r.Context(), currentSquad(r).ID, r.URL.Query().Get("status"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// ApproveSuggestion aceita {"payload": {...}} opcional com o conteúdo editado.
func (h *Handler) ApproveSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "suggestionID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var payload struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeErr(w, r, err)
		return
	}
	edited := payload.Payload
	if string(edited) == "null" {
		edited = nil
	}
	actor := suggestion.Actor{UserID: userID(r), Role: membershipRole(r)}
	res, err := h.Suggestions.Approve(r.Context(), actor, currentSquad(r), id, edited)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) RejectSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "suggestionID")
	if err != nil {
		writeErr(w, r, err)
		return
	}
	var payload struct {
		Reason *string `json:"reason"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeErr(w, r, err)
		return
	}
	actor := suggestion.Actor{UserID: userID(r), Role: membershipRole(r)}
	s, err := h.Suggestions.Reject(r.Context(), actor, currentSquad(r).ID, id, payload.Reason)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, s)
}
