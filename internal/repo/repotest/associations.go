package repotest

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

func refOf(global, workspace *uuid.UUID) uuid.UUID {
	if global != nil {
		return *global
	}
	return *workspace
}

func (st *state) resolveSquadRole(sr repo.SquadRole) repo.SquadRole {
	r := st.roles[refOf(sr.RoleID, sr.WorkspaceRoleID)]
	sr.Code, sr.Label = r.Code, r.Label
	return sr
}

func (st *state) resolveSquadPersona(sp repo.SquadPersona) repo.SquadPersona {
	sp.Name = st.personas[refOf(sp.PersonaID, sp.WorkspacePersonaID)].Name
	return sp
}

func (m *Memory) ListSquadRoles(_ context.Context, squadID uuid.UUID) ([]repo.SquadRole, error) {
	st, unlock, err := m.begin("ListSquadRoles")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := sortBy(values(st.squadRoles, func(sr repo.SquadRole) bool { return sr.SquadID == squadID }),
		func(a, b repo.SquadRole) bool { return a.CreatedAt.Before(b.CreatedAt) })
	for i := range out {
		out[i] = st.resolveSquadRole(out[i])
	}
	return out, nil
}

func (m *Memory) GetSquadRole(_ context.Context, squadID, id uuid.UUID) (repo.SquadRole, error) {
	st, unlock, err := m.begin("GetSquadRole")
	if err != nil {
		return repo.SquadRole{}, err
	}
	defer unlock()
	sr, ok := st.squadRoles[id]
	if !ok || sr.SquadID != squadID {
		return repo.SquadRole{}, repo.ErrNotFound
	}
	return st.resolveSquadRole(sr), nil
}

// ActivateSquadRole imita os índices únicos parciais sobre associações ativas.
func (m *Memory) ActivateSquadRole(_ context.Context, arg repo.ActivateSquadRoleParams) (repo.SquadRole, bool, error) {
	st, unlock, err := m.begin("ActivateSquadRole")
	if err != nil {
		return repo.SquadRole{}, false, err
	}
	defer unlock()
	for _, sr := range st.squadRoles {
		if sr.SquadID == arg.SquadID && sr.Active && sameScope(sr.RoleID, arg.RoleID) && sameScope(sr.WorkspaceRoleID, arg.WorkspaceRoleID) {
			return st.resolveSquadRole(sr), false, nil
		}
	}
	sr := repo.SquadRole{
		ID:                uuid.New(),
		SquadID:           arg.SquadID,
		RoleID:            arg.RoleID,
		WorkspaceRoleID:   arg.WorkspaceRoleID,
		Active:            true,
		CustomName:        arg.CustomName,
		CustomDescription: arg.CustomDescription,
		CreatedAt:         st.now(),
	}
	st.squadRoles[sr.ID] = sr
	return st.resolveSquadRole(sr), true, nil
}

func (m *Memory) UpdateSquadRole(_ context.Context, arg repo.UpdateSquadAssociationParams) (repo.SquadRole, error) {
	st, unlock, err := m.begin("UpdateSquadRole")
	if err != nil {
		return repo.SquadRole{}, err
	}
	defer unlock()
	sr, ok := st.squadRoles[arg.ID]
	if !ok || sr.SquadID != arg.SquadID {
		return repo.SquadRole{}, repo.ErrNotFound
	}
	if arg.Active != nil && *arg.Active && !sr.Active {
		for _, other := range st.squadRoles {
			if other.SquadID == sr.SquadID && other.Active && sameScope(other.RoleID, sr.RoleID) && sameScope(other.WorkspaceRoleID, sr.WorkspaceRoleID) {
				return repo.SquadRole{}, repo.ErrDuplicate
			}
		}
	}
	sr.Active = coalesce(arg.Active, sr.Active)
	if arg.CustomName != nil {
		sr.CustomName = arg.CustomName
	}
	if arg.CustomDescription != nil {
		sr.CustomDescription = arg.CustomDescription
	}
	st.squadRoles[sr.ID] = sr
	return st.resolveSquadRole(sr), nil
}

func (m *Memory) DeleteSquadRole(_ context.Context, squadID, id uuid.UUID) error {
	st, unlock, err := m.begin("DeleteSquadRole")
	if err != nil {
		return err
	}
	defer unlock()
	sr, ok := st.squadRoles[id]
	if !ok || sr.SquadID != squadID {
		return repo.ErrNotFound
	}
	st.deleteSquadRole(id)
	return nil
}

func (st *state) deleteSquadRole(id uuid.UUID) {
	delete(st.squadRoles, id)
	for k, v := range st.memberRoles {
		if v.SquadRoleID == id {
			delete(st.memberRoles, k)
		}
	}
}

func (m *Memory) ListSquadPersonas(_ context.Context, squadID uuid.UUID) ([]repo.SquadPersona, error) {
	st, unlock, err := m.begin("ListSquadPersonas")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := sortBy(values(st.squadPersonas, func(sp repo.SquadPersona) bool { return sp.SquadID == squadID }),
		func(a, b repo.SquadPersona) bool { return a.CreatedAt.Before(b.CreatedAt) })
	for i := range out {
		out[i] = st.resolveSquadPersona(out[i])
	}
	return out, nil
}

func (m *Memory) GetSquadPersona(_ context.Context, squadID, id uuid.UUID) (repo.SquadPersona, error) {
	st, unlock, err := m.begin("GetSquadPersona")
	if err != nil {
		return repo.SquadPersona{}, err
	}
	defer unlock()
	sp, ok := st.squadPersonas[id]
	if !ok || sp.SquadID != squadID {
		return repo.SquadPersona{}, repo.ErrNotFound
	}
	return st.resolveSquadPersona(sp), nil
}

func (m *Memory) AddSquadPersona(_ context.Context, arg repo.AddSquadPersonaParams) (repo.SquadPersona, bool, error) {
	st, unlock, err := m.begin("AddSquadPersona")
	if err != nil {
		return repo.SquadPersona{}, false, err
	}
	defer unlock()
	for _, sp := range st.squadPersonas {
		if sp.SquadID == arg.SquadID && sp.Active && sameScope(sp.PersonaID, arg.PersonaID) && sameScope(sp.WorkspacePersonaID, arg.WorkspacePersonaID) {
			return st.resolveSquadPersona(sp), false, nil
		}
	}
	sp := repo.SquadPersona{
		ID:                 uuid.New(),
		SquadID:            arg.SquadID,
		PersonaID:          arg.PersonaID,
		WorkspacePersonaID: arg.WorkspacePersonaID,
		Active:             true,
		CustomName:         arg.CustomName,
		CustomDescription:  arg.CustomDescription,
		CreatedAt:          st.now(),
	}
	st.squadPersonas[sp.ID] = sp
	return st.resolveSquadPersona(sp), true, nil
}

func (m *Memory) UpdateSquadPersona(_ context.Context, arg repo.UpdateSquadAssociationParams) (repo.SquadPersona, error) {
	st, unlock, err := m.begin("UpdateSquadPersona")
	if err != nil {
		return repo.SquadPersona{}, err
	}
	defer unlock()
	sp, ok := st.squadPersonas[arg.ID]
	if !ok || sp.SquadID != arg.SquadID {
		return repo.SquadPersona{}, repo.ErrNotFound
	}
	if arg.Active != nil && *arg.Active && !sp.Active {
		for _, other := range st.squadPersonas {
			if other.SquadID == sp.SquadID && other.Active && sameScope(other.PersonaID, sp.PersonaID) && sameScope(other.WorkspacePersonaID, sp.WorkspacePersonaID) {
				return repo.SquadPersona{}, repo.ErrDuplicate
			}
		}
	}
	sp.Active = coalesce(arg.Active, sp.Active)
	if arg.CustomName != nil {
		sp.CustomName = arg.CustomName
	}
	if arg.CustomDescription != nil {
		sp.CustomDescription = arg.CustomDescription
	}
	st.squadPersonas[sp.ID] = sp
	return st.resolveSquadPersona(sp), nil
}

func (m *Memory) DeleteSquadPersona(_ context.Context, squadID, id uuid.UUID) error {
	st, unlock, err := m.begin("DeleteSquadPersona")
	if err != nil {
		return err
	}
	defer unlock()
	sp, ok := st.squadPersonas[id]
	if !ok || sp.SquadID != squadID {
		return repo.ErrNotFound
	}
	delete(st.squadPersonas, id)
	return nil
}

func (m *Memory) ListSquadMemberRoles(_ context.Context, squadID uuid.UUID) ([]repo.SquadMemberRole, error) {
	st, unlock, err := m.begin("ListSquadMemberRoles")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.memberRoles, func(mr repo.SquadMemberRole) bool { return mr.SquadID == squadID }),
		func(a, b repo.SquadMemberRole) bool { return a.AssignedAt.Before(b.AssignedAt) }), nil
}

func (m *Memory) DeleteSquadMemberRole(_ context.Context, squadID, memberID uuid.UUID) (bool, error) {
	st, unlock, err := m.begin("DeleteSquadMemberRole")
	if err != nil {
		return false, err
	}
	defer unlock()
	deleted := false
	for k, v := range st.memberRoles {
		if v.SquadID == squadID && v.SquadMemberID == memberID {
			delete(st.memberRoles, k)
			deleted = true
		}
	}
	return deleted, nil
}

// InsertSquadMemberRole respeita UNIQUE (squad_id, squad_member_id).
func (m *Memory) InsertSquadMemberRole(_ context.Context, arg repo.InsertSquadMemberRoleParams) (repo.SquadMemberRole, error) {
	st, unlock, err := m.begin("InsertSquadMemberRole")
	if err != nil {
		return repo.SquadMemberRole{}, err
	}
	defer unlock()
	for _, v := range st.memberRoles {
		if v.SquadID == arg.SquadID && v.SquadMemberID == arg.SquadMemberID {
			return repo.SquadMemberRole{}, repo.ErrDuplicate
		}
	}
	mr := repo.SquadMemberRole{
		ID:            uuid.New(),
		SquadID:       arg.SquadID,
		SquadMemberID: arg.SquadMemberID,
		SquadRoleID:   arg.SquadRoleID,
		AssignedBy:    arg.AssignedBy,
		AssignedAt:    st.now(),
	}
	st.memberRoles[mr.ID] = mr
	return mr, nil
}
