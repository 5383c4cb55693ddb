package repotest

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

func byName(a, b repo.Workspace) bool { return a.Name < b.Name }

func (m *Memory) ListWorkspaces(_ context.Context) ([]repo.Workspace, error) {
	st, unlock, err := m.begin("ListWorkspaces")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.workspaces, nil), func(a, b repo.Workspace) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (m *Memory) ListWorkspacesByUser(_ context.Context, userID uuid.UUID) ([]repo.Workspace, error) {
	st, unlock, err := m.begin("ListWorkspacesByUser")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.workspaces, func(w repo.Workspace) bool {
		_, ok := st.members[memberKey{w.ID, userID}]
		return ok
	}), byName), nil
}

func (m *Memory) GetWorkspace(_ context.Context, id uuid.UUID) (repo.Workspace, error) {
	st, unlock, err := m.begin("GetWorkspace")
	if err != nil {
		return repo.Workspace{}, err
	}
	defer unlock()
	w, ok := st.workspaces[id]
	if !ok {
		return repo.Workspace{}, repo.ErrNotFound
	}
	return w, nil
}

func (m *Memory) CreateWorkspace(_ context.Context, arg repo.CreateWorkspaceParams) (repo.Workspace, error) {
	st, unlock, err := m.begin("CreateWorkspace")
	if err != nil {
		return repo.Workspace{}, err
	}
	defer unlock()
	now := st.now()
	w := repo.Workspace{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
		Type:        arg.Type,
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	st.workspaces[w.ID] = w
	return w, nil
}

func (m *Memory) UpdateWorkspace(_ context.Context, arg repo.UpdateWorkspaceParams) (repo.Workspace, error) {
	st, unlock, err := m.begin("UpdateWorkspace")
	if err != nil {
		return repo.Workspace{}, err
	}
	defer unlock()
	w, ok := st.workspaces[arg.ID]
	if !ok {
		return repo.Workspace{}, repo.ErrNotFound
	}
	w.Name = coalesce(arg.Name, w.Name)
	if arg.Description != nil {
		w.Description = arg.Description
	}
	w.Type = coalesce(arg.Type, w.Type)
	w.UpdatedAt = st.now()
	st.workspaces[w.ID] = w
	return w, nil
}

func (m *Memory) DeleteWorkspace(_ context.Context, id uuid.UUID) error {
	st, unlock, err := m.begin("DeleteWorkspace")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := st.workspaces[id]; !ok {
		return repo.ErrNotFound
	}
	delete(st.workspaces, id)
	for k := range st.members {
		if k.workspaceID == id {
			delete(st.members, k)
		}
	}
	for sid, s := range st.squads {
		if s.WorkspaceID == id {
			st.deleteSquad(sid)
		}
	}
	for pid, p := range st.personas {
		if p.WorkspaceID != nil && *p.WorkspaceID == id {
			st.deletePersona(pid)
		}
	}
	for rid, r := range st.roles {
		if r.WorkspaceID != nil && *r.WorkspaceID == id {
			st.deleteRole(rid)
		}
	}
	for pid, p := range st.problems {
		if p.WorkspaceID == id {
			delete(st.problems, pid)
		}
	}
	return nil
}

func (m *Memory) AddWorkspaceMember(_ context.Context, workspaceID, userID uuid.UUID, role string) (repo.WorkspaceMember, error) {
	st, unlock, err := m.begin("AddWorkspaceMember")
	if err != nil {
		return repo.WorkspaceMember{}, err
	}
	defer unlock()
	key := memberKey{workspaceID, userID}
	member, ok := st.members[key]
	if !ok {
		member = repo.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, CreatedAt: st.now()}
	}
	member.Role = role
	st.members[key] = member
	return member, nil
}

func (m *Memory) ListWorkspaceMembers(_ context.Context, workspaceID uuid.UUID) ([]repo.WorkspaceMember, error) {
	st, unlock, err := m.begin("ListWorkspaceMembers")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := sortBy(values(st.members, func(wm repo.WorkspaceMember) bool { return wm.WorkspaceID == workspaceID }),
		func(a, b repo.WorkspaceMember) bool { return a.CreatedAt.Before(b.CreatedAt) })
	for i := range out {
		u := st.users[out[i].UserID]
		out[i].UserName, out[i].UserEmail = u.Name, u.Email
	}
	return out, nil
}

func (m *Memory) GetWorkspaceMembership(_ context.Context, workspaceID, userID uuid.UUID) (repo.WorkspaceMember, error) {
	st, unlock, err := m.begin("GetWorkspaceMembership")
	if err != nil {
		return repo.WorkspaceMember{}, err
	}
	defer unlock()
	member, ok := st.members[memberKey{workspaceID, userID}]
	if !ok {
		return repo.WorkspaceMember{}, repo.ErrNotFound
	}
	return member, nil
}

// SeedUser cria um usuário diretamente, sem passar por login.
func (s *Store) SeedUser(name, email string) repo.User {
	u, _ := s.CreateUser(context.Background(), repo.CreateUserParams{Name: &name, Email: &email})
	return u
}
