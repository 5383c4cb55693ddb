package util

import (
	"net/mail"
	"strings"

	"github.com/squadsvirtuais/api/internal/apperr"
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("email inválido")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(field + " obrigatório")
	}
	return nil
}

// OneOf garante que value pertence ao conjunto permitido.
func OneOf(value, field string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperr.Validation(field + " inválido: use " + strings.Join(allowed, ", "))
}

// CleanList remove espaços e itens vazios; nil continua nil para preservar "não informado".
func CleanList(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// TrimPtr aplica TrimSpace preservando nil.
func TrimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
