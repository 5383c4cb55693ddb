package catalog

import "github.com/squadsvirtuais/api/internal/repo"

// PersonaView expõe a persona com a origem ("global" ou "workspace").
type PersonaView struct {
	repo.Persona
	Source string `json:"source"`
}

// RoleView expõe o papel com a origem.
type RoleView struct {
	repo.Role
	Source string `json:"source"`
}

func ViewPersona(p repo.Persona) PersonaView {
	return PersonaView{Persona: p, Source: Source(RefOf(p.ID, p.WorkspaceID))}
}

func PersonaViews(items []repo.Persona) []PersonaView {
	out := make([]PersonaView, 0, len(items))
	for _, p := range items {
		out = append(out, ViewPersona(p))
	}
	return out
}

func ViewRole(r repo.Role) RoleView {
	return RoleView{Role: r, Source: Source(RefOf(r.ID, r.WorkspaceID))}
}

func RoleViews(items []repo.Role) []RoleView {
	out := make([]RoleView, 0, len(items))
	for _, r := range items {
		out = append(out, ViewRole(r))
	}
	return out
}
