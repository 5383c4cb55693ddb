package util

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/apperr"
)

func TestValidators(t *testing.T) {
	require.NoError(t, ValidateEmail("ana@example.com"))
	require.ErrorIs(t, ValidateEmail("ana"), apperr.ErrValidation)
	require.ErrorIs(t, RequireString("  ", "nome"), apperr.ErrValidation)
	require.NoError(t, OneOf("ativa", "status", "rascunho", "ativa"))
	require.ErrorIs(t, OneOf("arquivada", "status", "rascunho", "ativa"), apperr.ErrValidation)

	_, err := ParseID("xyz", "squad_id")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCleanList(t *testing.T) {
	require.Nil(t, CleanList(nil))
	require.Equal(t, []string{"a", "b"}, CleanList([]string{" a ", "", "b", "  "}))
	require.Equal(t, []string{}, CleanList([]string{" "}))
}
