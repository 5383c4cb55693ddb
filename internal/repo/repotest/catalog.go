package repotest

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func globalFirst(a, b *uuid.UUID) bool { return a == nil && b != nil }

func (m *Memory) ListPersonas(_ context.Context, workspaceID uuid.UUID) ([]repo.Persona, error) {
	st, unlock, err := m.begin("ListPersonas")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.personas, func(p repo.Persona) bool {
		return p.WorkspaceID == nil || *p.WorkspaceID == workspaceID
	}), func(a, b repo.Persona) bool {
		if !sameScope(a.WorkspaceID, b.WorkspaceID) {
			return globalFirst(a.WorkspaceID, b.WorkspaceID)
		}
		return a.Name < b.Name
	}), nil
}

func (m *Memory) GetPersona(_ context.Context, id uuid.UUID) (repo.Persona, error) {
	st, unlock, err := m.begin("GetPersona")
	if err != nil {
		return repo.Persona{}, err
	}
	defer unlock()
	p, ok := st.personas[id]
	if !ok {
		return repo.Persona{}, repo.ErrNotFound
	}
	return p, nil
}

func (st *state) insertPersona(arg repo.CreatePersonaParams) (repo.Persona, error) {
	if arg.WorkspaceID == nil {
		for _, p := range st.personas {
			if p.WorkspaceID == nil && p.Name == arg.Name {
				return repo.Persona{}, repo.ErrDuplicate
			}
		}
	}
	now := st.now()
	p := repo.Persona{
		ID:          uuid.New(),
		WorkspaceID: arg.WorkspaceID,
		Name:        arg.Name,
		Type:        arg.Type,
		Focus:       arg.Focus,
		Goals:       nonNil(arg.Goals),
		PainPoints:  nonNil(arg.PainPoints),
		Behaviors:   nonNil(arg.Behaviors),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if arg.WorkspaceID != nil {
		p.SourcePersonaID = arg.SourcePersonaID
	}
	st.personas[p.ID] = p
	return p, nil
}

func (m *Memory) CreatePersona(_ context.Context, arg repo.CreatePersonaParams) (repo.Persona, error) {
	st, unlock, err := m.begin("CreatePersona")
	if err != nil {
		return repo.Persona{}, err
	}
	defer unlock()
	return st.insertPersona(arg)
}

func (m *Memory) UpsertGlobalPersona(_ context.Context, arg repo.CreatePersonaParams) (repo.Persona, error) {
	st, unlock, err := m.begin("UpsertGlobalPersona")
	if err != nil {
		return repo.Persona{}, err
	}
	defer unlock()
	for id, p := range st.personas {
		if p.WorkspaceID == nil && p.Name == arg.Name {
			p.Type, p.Focus = arg.Type, arg.Focus
			p.Goals, p.PainPoints, p.Behaviors = nonNil(arg.Goals), nonNil(arg.PainPoints), nonNil(arg.Behaviors)
			p.UpdatedAt = st.now()
			st.personas[id] = p
			return p, nil
		}
	}
	arg.WorkspaceID = nil
	return st.insertPersona(arg)
}

func (m *Memory) UpdatePersona(_ context.Context, arg repo.UpdatePersonaParams) (repo.Persona, error) {
	st, unlock, err := m.begin("UpdatePersona")
	if err != nil {
		return repo.Persona{}, err
	}
	defer unlock()
	p, ok := st.personas[arg.ID]
	if !ok || (p.WorkspaceID == nil) != arg.Global {
		return repo.Persona{}, repo.ErrNotFound
	}
	p.Name = coalesce(arg.Name, p.Name)
	p.Type = coalesce(arg.Type, p.Type)
	p.Focus = coalesce(arg.Focus, p.Focus)
	p.Goals = sliceOr(arg.Goals, p.Goals)
	p.PainPoints = sliceOr(arg.PainPoints, p.PainPoints)
	p.Behaviors = sliceOr(arg.Behaviors, p.Behaviors)
	p.UpdatedAt = st.now()
	st.personas[p.ID] = p
	return p, nil
}

func (m *Memory) DeletePersona(_ context.Context, id uuid.UUID, global bool) error {
	st, unlock, err := m.begin("DeletePersona")
	if err != nil {
		return err
	}
	defer unlock()
	p, ok := st.personas[id]
	if !ok || (p.WorkspaceID == nil) != global {
		return repo.ErrNotFound
	}
	st.deletePersona(id)
	return nil
}

func (st *state) deletePersona(id uuid.UUID) {
	delete(st.personas, id)
	for k, v := range st.squadPersonas {
		if (v.PersonaID != nil && *v.PersonaID == id) || (v.WorkspacePersonaID != nil && *v.WorkspacePersonaID == id) {
			delete(st.squadPersonas, k)
		}
	}
}

func (m *Memory) ListRoles(_ context.Context, workspaceID uuid.UUID) ([]repo.Role, error) {
	st, unlock, err := m.begin("ListRoles")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.roles, func(r repo.Role) bool {
		return r.WorkspaceID == nil || *r.WorkspaceID == workspaceID
	}), func(a, b repo.Role) bool {
		if !sameScope(a.WorkspaceID, b.WorkspaceID) {
			return globalFirst(a.WorkspaceID, b.WorkspaceID)
		}
		return a.Label < b.Label
	}), nil
}

func (m *Memory) GetRole(_ context.Context, id uuid.UUID) (repo.Role, error) {
	st, unlock, err := m.begin("GetRole")
	if err != nil {
		return repo.Role{}, err
	}
	defer unlock()
	r, ok := st.roles[id]
	if !ok {
		return repo.Role{}, repo.ErrNotFound
	}
	return r, nil
}

func (m *Memory) FindRoleByCode(_ context.Context, workspaceID uuid.UUID, code string) (repo.Role, error) {
	st, unlock, err := m.begin("FindRoleByCode")
	if err != nil {
		return repo.Role{}, err
	}
	defer unlock()
	var global *repo.Role
	for _, r := range st.roles {
		if r.Code != code {
			continue
		}
		if r.WorkspaceID == nil {
			global = &r
			continue
		}
		if *r.WorkspaceID == workspaceID {
			return r, nil
		}
	}
	if global == nil {
		return repo.Role{}, repo.ErrNotFound
	}
	return *global, nil
}

func (st *state) insertRole(arg repo.CreateRoleParams) (repo.Role, error) {
	for _, r := range st.roles {
		if r.Code == arg.Code && sameScope(r.WorkspaceID, arg.WorkspaceID) {
			return repo.Role{}, repo.ErrDuplicate
		}
	}
	now := st.now()
	r := repo.Role{
		ID:               uuid.New(),
		WorkspaceID:      arg.WorkspaceID,
		Code:             arg.Code,
		Label:            arg.Label,
		Description:      arg.Description,
		Responsibilities: nonNil(arg.Responsibilities),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if arg.WorkspaceID != nil {
		r.SourceRoleID = arg.SourceRoleID
	}
	st.roles[r.ID] = r
	return r, nil
}

func (m *Memory) CreateRole(_ context.Context, arg repo.CreateRoleParams) (repo.Role, error) {
	st, unlock, err := m.begin("CreateRole")
	if err != nil {
		return repo.Role{}, err
	}
	defer unlock()
	return st.insertRole(arg)
}

func (m *Memory) UpsertGlobalRole(_ context.Context, arg repo.CreateRoleParams) (repo.Role, error) {
	st, unlock, err := m.begin("UpsertGlobalRole")
	if err != nil {
		return repo.Role{}, err
	}
	defer unlock()
	for id, r := range st.roles {
		if r.WorkspaceID == nil && r.Code == arg.Code {
			r.Label, r.Description, r.Responsibilities = arg.Label, arg.Description, nonNil(arg.Responsibilities)
			r.UpdatedAt = st.now()
			st.roles[id] = r
			return r, nil
		}
	}
	arg.WorkspaceID = nil
	return st.insertRole(arg)
}

func (m *Memory) UpdateRole(_ context.Context, arg repo.UpdateRoleParams) (repo.Role, error) {
	st, unlock, err := m.begin("UpdateRole")
	if err != nil {
		return repo.Role{}, err
	}
	defer unlock()
	r, ok := st.roles[arg.ID]
	if !ok || (r.WorkspaceID == nil) != arg.Global {
		return repo.Role{}, repo.ErrNotFound
	}
	r.Label = coalesce(arg.Label, r.Label)
	r.Description = coalesce(arg.Description, r.Description)
	r.Responsibilities = sliceOr(arg.Responsibilities, r.Responsibilities)
	r.UpdatedAt = st.now()
	st.roles[r.ID] = r
	return r, nil
}

func (m *Memory) DeleteRole(_ context.Context, id uuid.UUID, global bool) error {
	st, unlock, err := m.begin("DeleteRole")
	if err != nil {
		return err
	}
	defer unlock()
	r, ok := st.roles[id]
	if !ok || (r.WorkspaceID == nil) != global {
		return repo.ErrNotFound
	}
	st.deleteRole(id)
	return nil
}

func (st *state) deleteRole(id uuid.UUID) {
	delete(st.roles, id)
	for k, v := range st.squadRoles {
		if (v.RoleID != nil && *v.RoleID == id) || (v.WorkspaceRoleID != nil && *v.WorkspaceRoleID == id) {
			st.deleteSquadRole(k)
		}
	}
}
