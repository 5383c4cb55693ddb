// Package proposal gera, confirma e descarta propostas de estrutura de squad feitas por IA.
package proposal

import (
	"encoding/json"
	"strings"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/catalog"
)

// Section é um bloco de texto com resumo e detalhes.
type Section struct {
	Summary string   `json:"summary"`
	Details []string `json:"details"`
}

type Phase struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Objectives  []string `json:"objectives"`
}

type Role struct {
	Code             string   `json:"code"`
	Label            string   `json:"label"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
}

// code deriva o código do catálogo; sem código explícito, usa o rótulo.
func (r Role) code() string {
	if code := catalog.NormalizeCode(r.Code); code != "" {
		return code
	}
	return catalog.NormalizeCode(r.Label)
}

type Persona struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Focus      string   `json:"focus"`
	Goals      []string `json:"goals"`
	PainPoints []string `json:"pain_points"`
	Behaviors  []string `json:"behaviors"`
}

type CriticalUnknown struct {
	Question string `json:"question"`
	Impact   string `json:"impact"`
}

// Payload é o conteúdo da proposta; campos ausentes simplesmente não geram efeito.
type Payload struct {
	DecisionContext     *Section          `json:"decision_context,omitempty"`
	ProblemMaturity     *Section          `json:"problem_maturity,omitempty"`
	Governance          *Section          `json:"governance,omitempty"`
	ExecutionModel      *Section          `json:"execution_model,omitempty"`
	ValidationStrategy  *Section          `json:"validation_strategy,omitempty"`
	ReadinessAssessment *Section          `json:"readiness_assessment,omitempty"`
	Phases              []Phase           `json:"phases,omitempty"`
	Roles               []Role            `json:"roles,omitempty"`
	Personas            []Persona         `json:"personas,omitempty"`
	CriticalUnknowns    []CriticalUnknown `json:"critical_unknowns,omitempty"`
	Justifications      json.RawMessage   `json:"justifications,omitempty"`
	Uncertainties       []string          `json:"uncertainties,omitempty"`
}

// Sections lista os blocos únicos presentes, na ordem em que devem ser apresentados.
func (p Payload) Sections() []NamedSection {
	all := []NamedSection{
		{"decision_context", p.DecisionContext},
		{"problem_maturity", p.ProblemMaturity},
		{"governance", p.Governance},
		{"execution_model", p.ExecutionModel},
		{"validation_strategy", p.ValidationStrategy},
		{"readiness_assessment", p.ReadinessAssessment},
	}
	out := all[:0]
	for _, s := range all {
		if s.Section != nil && !s.Section.empty() {
			out = append(out, s)
		}
	}
	return out
}

// NamedSection associa o bloco ao seu tipo.
type NamedSection struct {
	Kind    string
	Section *Section
}

func (s Section) empty() bool {
	return strings.TrimSpace(s.Summary) == "" && len(s.Details) == 0
}

// Parse decodifica e valida o mínimo necessário para aplicar o conteúdo.
func Parse(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, apperr.Validation("proposta com formato inválido")
	}
	return p, p.Validate()
}

// Validate rejeita itens sem o campo que os identifica.
func (p Payload) Validate() error {
	for _, ph := range p.Phases {
		if strings.TrimSpace(ph.Name) == "" {
			return apperr.Validation("fase sem nome na proposta")
		}
	}
	for _, r := range p.Roles {
		if r.code() == "" {
			return apperr.Validation("papel sem código na proposta")
		}
	}
	for _, pe := range p.Personas {
		if strings.TrimSpace(pe.Name) == "" {
			return apperr.Validation("persona sem nome na proposta")
		}
	}
	for _, c := range p.CriticalUnknowns {
		if strings.TrimSpace(c.Question) == "" {
			return apperr.Validation("incógnita crítica sem pergunta na proposta")
		}
	}
	return nil
}
