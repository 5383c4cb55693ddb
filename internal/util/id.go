package util

import (
	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/apperr"
)

// ParseID converte o identificador recebido na URL ou no corpo.
func ParseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(field + " inválido")
	}
	return id, nil
}
