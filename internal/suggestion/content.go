// Package suggestion desmembra propostas em sugestões aprováveis e conduz a fila de aprovação.
package suggestion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/proposal"
)

const (
	TypeDecisionContext     = "decision_context"
	TypeProblemMaturity     = "problem_maturity"
	TypePersona             = "persona"
	TypeGovernance          = "governance"
	TypeRole                = "squad_structure_role"
	TypePhase               = "phase"
	TypeCriticalUnknown     = "critical_unknown"
	TypeExecutionModel      = "execution_model"
	TypeValidationStrategy  = "validation_strategy"
	TypeReadinessAssessment = "readiness_assessment"
)

// Content é o conteúdo tipado de uma sugestão. Só os tipos deste pacote o implementam.
type Content interface {
	Type() string
	validate() error
}

type DecisionContext struct{ proposal.Section }
type ProblemMaturity struct{ proposal.Section }
type Governance struct{ proposal.Section }
type ExecutionModel struct{ proposal.Section }
type ValidationStrategy struct{ proposal.Section }
type ReadinessAssessment struct{ proposal.Section }
type Persona struct{ proposal.Persona }
type Role struct{ proposal.Role }
type Phase struct{ proposal.Phase }
type CriticalUnknown struct{ proposal.CriticalUnknown }

func (DecisionContext) Type() string     { return TypeDecisionContext }
func (ProblemMaturity) Type() string     { return TypeProblemMaturity }
func (Governance) Type() string          { return TypeGovernance }
func (ExecutionModel) Type() string      { return TypeExecutionModel }
func (ValidationStrategy) Type() string  { return TypeValidationStrategy }
func (ReadinessAssessment) Type() string { return TypeReadinessAssessment }
func (Persona) Type() string             { return TypePersona }
func (Role) Type() string                { return TypeRole }
func (Phase) Type() string               { return TypePhase }
func (CriticalUnknown) Type() string     { return TypeCriticalUnknown }

func validSection(s proposal.Section) error {
	if strings.TrimSpace(s.Summary) == "" && len(s.Details) == 0 {
		return apperr.Validation("bloco sem conteúdo")
	}
	return nil
}

func (c DecisionContext) validate() error     { return validSection(c.Section) }
func (c ProblemMaturity) validate() error     { return validSection(c.Section) }
func (c Governance) validate() error          { return validSection(c.Section) }
func (c ExecutionModel) validate() error      { return validSection(c.Section) }
func (c ValidationStrategy) validate() error  { return validSection(c.Section) }
func (c ReadinessAssessment) validate() error { return validSection(c.Section) }

func (c Persona) validate() error {
	return proposal.Payload{Personas: []proposal.Persona{c.Persona}}.Validate()
}

func (c Role) validate() error {
	return proposal.Payload{Roles: []proposal.Role{c.Role}}.Validate()
}

func (c Phase) validate() error {
	return proposal.Payload{Phases: []proposal.Phase{c.Phase}}.Validate()
}

func (c CriticalUnknown) validate() error {
	return proposal.Payload{CriticalUnknowns: []proposal.CriticalUnknown{c.CriticalUnknown}}.Validate()
}

// Decode interpreta o payload conforme o tipo gravado na sugestão.
func Decode(typ string, raw []byte) (Content, error) {
	var c Content
	switch typ {
	case TypeDecisionContext:
		c = decode[DecisionContext](raw)
	case TypeProblemMaturity:
		c = decode[ProblemMaturity](raw)
	case TypeGovernance:
		c = decode[Governance](raw)
	case TypeExecutionModel:
		c = decode[ExecutionModel](raw)
	case TypeValidationStrategy:
		c = decode[ValidationStrategy](raw)
	case TypeReadinessAssessment:
		c = decode[ReadinessAssessment](raw)
	case TypePersona:
		c = decode[Persona](raw)
	case TypeRole:
		c = decode[Role](raw)
	case TypePhase:
		c = decode[Phase](raw)
	case TypeCriticalUnknown:
		c = decode[CriticalUnknown](raw)
	default:
		return nil, fmt.Errorf("suggestion: tipo desconhecido %q", typ)
	}
	if c == nil {
		return nil, apperr.Validation("conteúdo da sugestão inválido")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode[T Content](raw []byte) Content {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// FromPayload desmembra a proposta na ordem da fila. Blocos vazios são ignorados.
func FromPayload(p proposal.Payload) []Content {
	sections := map[string]proposal.Section{}
	for _, ns := range p.Sections() {
		sections[ns.Kind] = *ns.Section
	}
	var out []Content
	section := func(kind string, wrap func(proposal.Section) Content) {
		if s, ok := sections[kind]; ok {
			out = append(out, wrap(s))
		}
	}

	section(TypeDecisionContext, func(s proposal.Section) Content { return DecisionContext{s} })
	section(TypeProblemMaturity, func(s proposal.Section) Content { return ProblemMaturity{s} })
	for _, pe := range p.Personas {
		out = append(out, Persona{pe})
	}
	section(TypeGovernance, func(s proposal.Section) Content { return Governance{s} })
	for _, r := range p.Roles {
		out = append(out, Role{r})
	}
	for _, ph := range p.Phases {
		out = append(out, Phase{ph})
	}
	for _, c := range p.CriticalUnknowns {
		out = append(out, CriticalUnknown{c})
	}
	section(TypeExecutionModel, func(s proposal.Section) Content { return ExecutionModel{s} })
	section(TypeValidationStrategy, func(s proposal.Section) Content { return ValidationStrategy{s} })
	section(TypeReadinessAssessment, func(s proposal.Section) Content { return ReadinessAssessment{s} })
	return out
}
