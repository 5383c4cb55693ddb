package repotest

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

func (m *Memory) ListSquads(_ context.Context, workspaceID uuid.UUID) ([]repo.Squad, error) {
	st, unlock, err := m.begin("ListSquads")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.squads, func(s repo.Squad) bool { return s.WorkspaceID == workspaceID }),
		func(a, b repo.Squad) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (m *Memory) GetSquad(_ context.Context, id uuid.UUID) (repo.Squad, error) {
	return m.squad("GetSquad", id)
}

// LockSquad equivale a GetSquad; InTx já serializa as transações.
func (m *Memory) LockSquad(_ context.Context, id uuid.UUID) (repo.Squad, error) {
	return m.squad("LockSquad", id)
}

func (m *Memory) squad(method string, id uuid.UUID) (repo.Squad, error) {
	st, unlock, err := m.begin(method)
	if err != nil {
		return repo.Squad{}, err
	}
	defer unlock()
	s, ok := st.squads[id]
	if !ok {
		return repo.Squad{}, repo.ErrNotFound
	}
	return s, nil
}

func (m *Memory) CreateSquad(_ context.Context, arg repo.CreateSquadParams) (repo.Squad, error) {
	st, unlock, err := m.begin("CreateSquad")
	if err != nil {
		return repo.Squad{}, err
	}
	defer unlock()
	if _, ok := st.workspaces[arg.WorkspaceID]; !ok {
		return repo.Squad{}, repo.ErrNotFound
	}
	status := arg.Status
	if status == "" {
		status = "rascunho"
	}
	now := st.now()
	s := repo.Squad{
		ID:          uuid.New(),
		WorkspaceID: arg.WorkspaceID,
		Name:        arg.Name,
		Description: arg.Description,
		Status:      status,
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	st.squads[s.ID] = s
	return s, nil
}

func (m *Memory) UpdateSquad(_ context.Context, arg repo.UpdateSquadParams) (repo.Squad, error) {
	st, unlock, err := m.begin("UpdateSquad")
	if err != nil {
		return repo.Squad{}, err
	}
	defer unlock()
	s, ok := st.squads[arg.ID]
	if !ok {
		return repo.Squad{}, repo.ErrNotFound
	}
	s.Name = coalesce(arg.Name, s.Name)
	if arg.Description != nil {
		s.Description = arg.Description
	}
	s.Status = coalesce(arg.Status, s.Status)
	s.UpdatedAt = st.now()
	st.squads[s.ID] = s
	return s, nil
}

func (m *Memory) DeleteSquad(_ context.Context, id uuid.UUID) error {
	st, unlock, err := m.begin("DeleteSquad")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := st.squads[id]; !ok {
		return repo.ErrNotFound
	}
	st.deleteSquad(id)
	return nil
}

// deleteSquad reproduz as cascatas do schema; decisões permanecem.
func (st *state) deleteSquad(id uuid.UUID) {
	delete(st.squads, id)
	for k, v := range st.squadMembers {
		if v.SquadID == id {
			delete(st.squadMembers, k)
		}
	}
	for k, v := range st.squadRoles {
		if v.SquadID == id {
			delete(st.squadRoles, k)
		}
	}
	for k, v := range st.squadPersonas {
		if v.SquadID == id {
			delete(st.squadPersonas, k)
		}
	}
	for k, v := range st.memberRoles {
		if v.SquadID == id {
			delete(st.memberRoles, k)
		}
	}
	for k, v := range st.phases {
		if v.SquadID == id {
			delete(st.phases, k)
		}
	}
	for k := range st.sections {
		if k.squadID == id {
			delete(st.sections, k)
		}
	}
	for k, v := range st.proposals {
		if v.SquadID == id {
			delete(st.proposals, k)
		}
	}
	for k, v := range st.suggestions {
		if v.SquadID == id {
			delete(st.suggestions, k)
		}
	}
	kept := st.matrix[:0:0]
	for _, v := range st.matrix {
		if v.SquadID != id {
			kept = append(kept, v)
		}
	}
	st.matrix = kept
	for k, v := range st.problems {
		if v.SquadID != nil && *v.SquadID == id {
			v.SquadID = nil
			st.problems[k] = v
		}
	}
}

func (m *Memory) ListSquadMembers(_ context.Context, squadID uuid.UUID) ([]repo.SquadMember, error) {
	st, unlock, err := m.begin("ListSquadMembers")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.squadMembers, func(sm repo.SquadMember) bool { return sm.SquadID == squadID }),
		func(a, b repo.SquadMember) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (m *Memory) GetSquadMember(_ context.Context, squadID, id uuid.UUID) (repo.SquadMember, error) {
	st, unlock, err := m.begin("GetSquadMember")
	if err != nil {
		return repo.SquadMember{}, err
	}
	defer unlock()
	sm, ok := st.squadMembers[id]
	if !ok || sm.SquadID != squadID {
		return repo.SquadMember{}, repo.ErrNotFound
	}
	return sm, nil
}

func (m *Memory) CreateSquadMember(_ context.Context, arg repo.CreateSquadMemberParams) (repo.SquadMember, error) {
	st, unlock, err := m.begin("CreateSquadMember")
	if err != nil {
		return repo.SquadMember{}, err
	}
	defer unlock()
	sm := repo.SquadMember{
		ID:        uuid.New(),
		SquadID:   arg.SquadID,
		UserID:    arg.UserID,
		Name:      arg.Name,
		Email:     arg.Email,
		CreatedAt: st.now(),
	}
	st.squadMembers[sm.ID] = sm
	return sm, nil
}

func (m *Memory) DeleteSquadMember(_ context.Context, squadID, id uuid.UUID) error {
	st, unlock, err := m.begin("DeleteSquadMember")
	if err != nil {
		return err
	}
	defer unlock()
	sm, ok := st.squadMembers[id]
	if !ok || sm.SquadID != squadID {
		return repo.ErrNotFound
	}
	delete(st.squadMembers, id)
	for k, v := range st.memberRoles {
		if v.SquadMemberID == id {
			delete(st.memberRoles, k)
		}
	}
	return nil
}
