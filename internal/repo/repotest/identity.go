package repotest

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

func (m *Memory) UpsertIdentity(_ context.Context, arg repo.UpsertIdentityParams) (repo.UserIdentity, error) {
	st, unlock, err := m.begin("UpsertIdentity")
	if err != nil {
		return repo.UserIdentity{}, err
	}
	defer unlock()

	now := st.now()
	raw := arg.RawProfile
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	for id, ident := range st.identities {
		if ident.Provider == arg.Provider && ident.ProviderUserID == arg.ProviderUserID {
			if arg.ProviderEmail != nil {
				ident.ProviderEmail = arg.ProviderEmail
			}
			ident.RawProfile = raw
			ident.LastLoginAt = &now
			st.identities[id] = ident
			return ident, nil
		}
	}
	ident := repo.UserIdentity{
		ID:             uuid.New(),
		Provider:       arg.Provider,
		ProviderUserID: arg.ProviderUserID,
		ProviderEmail:  arg.ProviderEmail,
		RawProfile:     raw,
		LastLoginAt:    &now,
	}
	st.identities[ident.ID] = ident
	return ident, nil
}

func (m *Memory) LinkIdentity(_ context.Context, identityID, userID uuid.UUID) error {
	st, unlock, err := m.begin("LinkIdentity")
	if err != nil {
		return err
	}
	defer unlock()

	ident, ok := st.identities[identityID]
	if !ok {
		return repo.ErrNotFound
	}
	ident.UserID = &userID
	st.identities[identityID] = ident
	return nil
}

func (m *Memory) CreateUser(_ context.Context, arg repo.CreateUserParams) (repo.User, error) {
	st, unlock, err := m.begin("CreateUser")
	if err != nil {
		return repo.User{}, err
	}
	defer unlock()

	now := st.now()
	u := repo.User{
		ID:          uuid.New(),
		Name:        arg.Name,
		Email:       arg.Email,
		AvatarURL:   arg.AvatarURL,
		Role:        "member",
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	st.users[u.ID] = u
	return u, nil
}

func (m *Memory) TouchUserLogin(_ context.Context, id uuid.UUID, arg repo.CreateUserParams) (repo.User, error) {
	st, unlock, err := m.begin("TouchUserLogin")
	if err != nil {
		return repo.User{}, err
	}
	defer unlock()

	u, ok := st.users[id]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	now := st.now()
	if arg.Name != nil {
		u.Name = arg.Name
	}
	if arg.Email != nil {
		u.Email = arg.Email
	}
	if arg.AvatarURL != nil {
		u.AvatarURL = arg.AvatarURL
	}
	u.LastLoginAt = &now
	u.UpdatedAt = now
	st.users[id] = u
	return u, nil
}

func (m *Memory) GetUserByID(_ context.Context, id uuid.UUID) (repo.User, error) {
	st, unlock, err := m.begin("GetUserByID")
	if err != nil {
		return repo.User{}, err
	}
	defer unlock()

	u, ok := st.users[id]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (repo.User, error) {
	st, unlock, err := m.begin("FindUserByEmail")
	if err != nil {
		return repo.User{}, err
	}
	defer unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	found := sortBy(values(st.users, func(u repo.User) bool {
		return u.Email != nil && strings.ToLower(*u.Email) == email
	}), func(a, b repo.User) bool { return a.CreatedAt.Before(b.CreatedAt) })
	if len(found) == 0 {
		return repo.User{}, repo.ErrNotFound
	}
	return found[0], nil
}

// IdentityFor devolve a identidade (provider, providerUserID), se existir.
func (s *Store) IdentityFor(provider, providerUserID string) (repo.UserIdentity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ident := range s.st.identities {
		if ident.Provider == provider && ident.ProviderUserID == providerUserID {
			return ident, true
		}
	}
	return repo.UserIdentity{}, false
}
