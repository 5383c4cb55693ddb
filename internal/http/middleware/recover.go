package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/apperr"
)

// Recover devolve 500 genérico em caso de panic e registra a pilha.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error().
				Interface("panic", rec).
				Str("request_id", middleware.GetReqID(r.Context())).
				Bytes("stack", debug.Stack()).
				Msg("panic recuperado")
			WriteError(w, http.StatusInternalServerError, apperr.ErrInternal.Code, apperr.ErrInternal.Message, nil)
		}()
		next.ServeHTTP(w, r)
	})
}
