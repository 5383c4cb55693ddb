// Package apperr define a taxonomia de erros compartilhada pelos serviços e pela camada HTTP.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifica um erro de domínio para fins de resposta.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindUpstream       Kind = "upstream"
	KindInternal       Kind = "internal"
)

// Error carrega tipo, código estável e mensagem exibível ao usuário.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is compara pelo código, permitindo errors.Is com os sentinelas abaixo mesmo após Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap anexa a causa técnica preservando tipo e código.
func (e *Error) Wrap(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// WithMessage devolve cópia com mensagem específica.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg, Err: e.Err}
}

var (
	ErrValidation   = &Error{Kind: KindValidation, Code: "VALIDATION", Message: "dados inválidos"}
	ErrUnauthorized = &Error{Kind: KindAuthentication, Code: "AUTH", Message: "autenticação necessária"}
	ErrForbidden    = &Error{Kind: KindAuthorization, Code: "FORBIDDEN", Message: "acesso negado"}
	ErrNotFound     = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "registro não encontrado"}
	ErrConflict     = &Error{Kind: KindConflict, Code: "CONFLICT", Message: "conflito com o estado atual"}
	ErrInternal     = &Error{Kind: KindInternal, Code: "INTERNAL", Message: "erro interno"}

	ErrAlreadyResolved          = &Error{Kind: KindConflict, Code: "ALREADY_RESOLVED", Message: "sugestão já foi resolvida"}
	ErrNoProblemStatement       = &Error{Kind: KindValidation, Code: "NO_PROBLEM_STATEMENT", Message: "squad não possui problema cadastrado"}
	ErrProposalGenerationFailed = &Error{Kind: KindUpstream, Code: "PROPOSAL_GENERATION_FAILED", Message: "não foi possível gerar a proposta"}

	ErrInvalidCredential    = &Error{Kind: KindAuthentication, Code: "INVALID_CREDENTIAL", Message: "credencial inválida"}
	ErrInvalidState         = &Error{Kind: KindAuthentication, Code: "INVALID_STATE", Message: "estado OAuth inválido"}
	ErrEmailUnavailable     = &Error{Kind: KindAuthentication, Code: "EMAIL_UNAVAILABLE", Message: "e-mail não disponível no provedor"}
	ErrOAuthExchangeFailed  = &Error{Kind: KindUpstream, Code: "OAUTH_EXCHANGE_FAILED", Message: "falha ao trocar código OAuth"}
	ErrUserFetchFailed      = &Error{Kind: KindUpstream, Code: "USER_FETCH_FAILED", Message: "falha ao obter perfil do provedor"}
	ErrConfiguration        = &Error{Kind: KindInternal, Code: "CONFIG_ERROR", Message: "configuração de autenticação ausente"}
	ErrAuthenticationFailed = &Error{Kind: KindAuthentication, Code: "AUTHENTICATION_FAILED", Message: "não foi possível autenticar"}
)

// Validation cria erro de validação com mensagem própria.
func Validation(msg string) *Error {
	return ErrValidation.WithMessage(msg)
}

// Conflict cria erro de conflito com mensagem própria.
func Conflict(msg string) *Error {
	return ErrConflict.WithMessage(msg)
}

// NotFound cria erro de ausência com mensagem própria.
func NotFound(msg string) *Error {
	return ErrNotFound.WithMessage(msg)
}

// KindOf devolve o tipo do erro, tratando erros desconhecidos como internos.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extrai o *Error da cadeia, se existir.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
