package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/squadsvirtuais/api/internal/repo"
)

//go:embed seed/catalog.yaml
var defaultSeed []byte

// Seed descreve o catálogo global carregado pelo squadsctl.
type Seed struct {
	Roles    []SeedRole    `yaml:"roles"`
	Personas []SeedPersona `yaml:"personas"`
}

type SeedRole struct {
	Code             string   `yaml:"code"`
	Label            string   `yaml:"label"`
	Description      string   `yaml:"description"`
	Responsibilities []string `yaml:"responsibilities"`
}

type SeedPersona struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Focus      string   `yaml:"focus"`
	Goals      []string `yaml:"goals"`
	PainPoints []string `yaml:"pain_points"`
	Behaviors  []string `yaml:"behaviors"`
}

// ParseSeed lê o YAML; vazio usa o catálogo embutido.
func ParseSeed(data []byte) (Seed, error) {
	if len(data) == 0 {
		data = defaultSeed
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("catalog seed: %w", err)
	}
	for i := range s.Roles {
		s.Roles[i].Code = NormalizeCode(s.Roles[i].Code)
		if !codePattern.MatchString(s.Roles[i].Code) {
			return Seed{}, fmt.Errorf("catalog seed: código de papel inválido %q", s.Roles[i].Code)
		}
	}
	for _, p := range s.Personas {
		if strings.TrimSpace(p.Name) == "" {
			return Seed{}, fmt.Errorf("catalog seed: persona sem nome")
		}
	}
	return s, nil
}

// SeedResult conta os registros gravados.
type SeedResult struct {
	Roles    int
	Personas int
}

// ApplySeed grava papéis globais por código e personas globais por nome, sem duplicar.
func ApplySeed(ctx context.Context, q repo.Querier, s Seed) (SeedResult, error) {
	var res SeedResult
	for _, r := range s.Roles {
		label := r.Label
		if strings.TrimSpace(label) == "" {
			label = r.Code
		}
		if _, err := q.UpsertGlobalRole(ctx, repo.CreateRoleParams{
			Code:             r.Code,
			Label:            label,
			Description:      r.Description,
			Responsibilities: r.Responsibilities,
		}); err != nil {
			return res, fmt.Errorf("papel %s: %w", r.Code, err)
		}
		res.Roles++
	}
	for _, p := range s.Personas {
		if _, err := q.UpsertGlobalPersona(ctx, repo.CreatePersonaParams{
			Name:       strings.TrimSpace(p.Name),
			Type:       p.Type,
			Focus:      p.Focus,
			Goals:      p.Goals,
			PainPoints: p.PainPoints,
			Behaviors:  p.Behaviors,
		}); err != nil {
			return res, fmt.Errorf("persona %s: %w", p.Name, err)
		}
		res.Personas++
	}
	return res, nil
}
