package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
	httpmiddleware "github.com/squadsvirtuais/api/internal/http/middleware"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

const maxBodyBytes = 1 << 20

// WriteJSON escreve o dado diretamente como corpo.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError escreve o corpo padrão de erro.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	httpmiddleware.WriteError(w, status, code, message, details)
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	httpmiddleware.WriteAppError(w, r, err)
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// createdOr devolve 201 quando algo novo foi gravado e 200 quando já existia.
func createdOr(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// decodeJSON lê o corpo antes de qualquer acesso ao banco. Corpo vazio vale como objeto vazio.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	}
	if e, ok := apperr.As(err); ok {
		return e
	}
	return apperr.Validation("JSON inválido")
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	return util.ParseID(chi.URLParam(r, param), param)
}

func pathInt(r *http.Request, param string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || n <= 0 {
		return 0, apperr.Validation(param + " inválido")
	}
	return n, nil
}

func userID(r *http.Request) uuid.UUID {
	return httpmiddleware.GetUserID(r.Context())
}

func workspaceID(r *http.Request) uuid.UUID {
	return httpmiddleware.GetMembership(r.Context()).WorkspaceID
}

func currentSquad(r *http.Request) repo.Squad {
	return httpmiddleware.GetSquad(r.Context())
}

func membershipRole(r *http.Request) string {
	return httpmiddleware.GetMembership(r.Context()).Role
}
