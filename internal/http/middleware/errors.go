package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
)

// ErrorBody é o corpo padrão de falhas.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindConflict:       http.StatusConflict,
	apperr.KindUpstream:       http.StatusBadGateway,
	apperr.KindInternal:       http.StatusInternalServerError,
}

// WriteError escreve o corpo de erro com o status informado.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: message, Code: code, Details: details})
}

// WriteAppError traduz o erro para status e corpo. Falhas internas só expõem mensagem genérica.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		err = apperr.ErrNotFound
	case errors.Is(err, repo.ErrDuplicate):
		err = apperr.ErrConflict
	}

	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).Str("path", r.URL.Path).Msg("erro interno")
		WriteError(w, http.StatusInternalServerError, apperr.ErrInternal.Code, apperr.ErrInternal.Message, nil)
		return
	}
	if e.Kind == apperr.KindUpstream {
		log.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("falha em serviço externo")
	}
	WriteError(w, statusByKind[e.Kind], e.Code, e.Message, nil)
}
