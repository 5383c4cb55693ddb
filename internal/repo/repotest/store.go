// Package repotest fornece um repo.Store em memória para testes de serviço.
// Transações trabalham sobre uma cópia do estado, publicada apenas no commit.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

type memberKey struct{ workspaceID, userID uuid.UUID }

type sectionKey struct {
	squadID uuid.UUID
	kind    string
}

type state struct {
	clock         time.Time
	users         map[uuid.UUID]repo.User
	identities    map[uuid.UUID]repo.UserIdentity
	workspaces    map[uuid.UUID]repo.Workspace
	members       map[memberKey]repo.WorkspaceMember
	squads        map[uuid.UUID]repo.Squad
	squadMembers  map[uuid.UUID]repo.SquadMember
	personas      map[uuid.UUID]repo.Persona
	roles         map[uuid.UUID]repo.Role
	squadRoles    map[uuid.UUID]repo.SquadRole
	squadPersonas map[uuid.UUID]repo.SquadPersona
	memberRoles   map[uuid.UUID]repo.SquadMemberRole
	problems      map[uuid.UUID]repo.ProblemStatement
	phases        map[uuid.UUID]repo.SquadPhase
	sections      map[sectionKey]repo.SquadSection
	decisions     []repo.Decision
	matrix        []repo.MatrixVersion
	proposals     map[uuid.UUID]repo.Proposal
	suggestions   map[uuid.UUID]repo.Suggestion
}

func newState() *state {
	return &state{
		clock:         time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		users:         map[uuid.UUID]repo.User{},
		identities:    map[uuid.UUID]repo.UserIdentity{},
		workspaces:    map[uuid.UUID]repo.Workspace{},
		members:       map[memberKey]repo.WorkspaceMember{},
		squads:        map[uuid.UUID]repo.Squad{},
		squadMembers:  map[uuid.UUID]repo.SquadMember{},
		personas:      map[uuid.UUID]repo.Persona{},
		roles:         map[uuid.UUID]repo.Role{},
		squadRoles:    map[uuid.UUID]repo.SquadRole{},
		squadPersonas: map[uuid.UUID]repo.SquadPersona{},
		memberRoles:   map[uuid.UUID]repo.SquadMemberRole{},
		problems:      map[uuid.UUID]repo.ProblemStatement{},
		phases:        map[uuid.UUID]repo.SquadPhase{},
		sections:      map[sectionKey]repo.SquadSection{},
		proposals:     map[uuid.UUID]repo.Proposal{},
		suggestions:   map[uuid.UUID]repo.Suggestion{},
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *state) clone() *state {
	return &state{
		clock:         s.clock,
		users:         cloneMap(s.users),
		identities:    cloneMap(s.identities),
		workspaces:    cloneMap(s.workspaces),
		members:       cloneMap(s.members),
		squads:        cloneMap(s.squads),
		squadMembers:  cloneMap(s.squadMembers),
		personas:      cloneMap(s.personas),
		roles:         cloneMap(s.roles),
		squadRoles:    cloneMap(s.squadRoles),
		squadPersonas: cloneMap(s.squadPersonas),
		memberRoles:   cloneMap(s.memberRoles),
		problems:      cloneMap(s.problems),
		phases:        cloneMap(s.phases),
		sections:      cloneMap(s.sections),
		decisions:     append([]repo.Decision(nil), s.decisions...),
		matrix:        append([]repo.MatrixVersion(nil), s.matrix...),
		proposals:     cloneMap(s.proposals),
		suggestions:   cloneMap(s.suggestions),
	}
}

// now avança um relógio artificial para manter a ordenação por created_at determinística.
func (s *state) now() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// Memory implementa repo.Querier sobre um estado em memória.
type Memory struct {
	mu    *sync.Mutex
	st    *state
	fails *failures
}

type failures struct {
	mu     sync.Mutex
	byName map[string]error
}

func (f *failures) take(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.byName[method]
	if ok {
		delete(f.byName, method)
	}
	return err
}

// Store é o duplo de repo.Store.
type Store struct {
	*Memory
	txMu sync.Mutex
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return &Store{Memory: &Memory{mu: &sync.Mutex{}, st: newState(), fails: &failures{byName: map[string]error{}}}}
}

// FailNext faz a próxima chamada ao método informado devolver err.
func (s *Store) FailNext(method string, err error) {
	s.fails.mu.Lock()
	defer s.fails.mu.Unlock()
	s.fails.byName[method] = err
}

// InTx serializa as transações e só publica o estado se fn terminar sem erro.
func (s *Store) InTx(ctx context.Context, fn func(repo.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	tx := &Memory{mu: &sync.Mutex{}, st: snapshot, fails: s.fails}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = snapshot
	s.mu.Unlock()
	return nil
}

func (m *Memory) begin(method string) (*state, func(), error) {
	if err := m.fails.take(method); err != nil {
		return nil, nil, err
	}
	m.mu.Lock()
	return m.st, m.mu.Unlock, nil
}

// Counts expõe totais por tabela para asserções.
type Counts struct {
	Users, Identities, SquadRoles, SquadPersonas, MemberRoles, Phases, Decisions, Suggestions int
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Users:         len(s.st.users),
		Identities:    len(s.st.identities),
		SquadRoles:    len(s.st.squadRoles),
		SquadPersonas: len(s.st.squadPersonas),
		MemberRoles:   len(s.st.memberRoles),
		Phases:        len(s.st.phases),
		Decisions:     len(s.st.decisions),
		Suggestions:   len(s.st.suggestions),
	}
}

// SetUserRole promove ou rebaixa o usuário (ex.: admin do catálogo global).
func (s *Store) SetUserRole(id uuid.UUID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.st.users[id]
	u.Role = role
	s.st.users[id] = u
}

func values[K comparable, V any](src map[K]V, keep func(V) bool) []V {
	out := []V{}
	for _, v := range src {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func sortBy[T any](items []T, less func(a, b T) bool) []T {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return items
}

func coalesce[T any](p *T, cur T) T {
	if p == nil {
		return cur
	}
	return *p
}

func sliceOr(v, cur []string) []string {
	if v == nil {
		return cur
	}
	return v
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return append([]string(nil), v...)
}
