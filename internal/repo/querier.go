package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/squadsvirtuais/api/internal/db"
)

// Querier lista todas as consultas disponíveis; os serviços dependem dele e não de *Queries.
type Querier interface {
	UpsertIdentity(ctx context.Context, arg UpsertIdentityParams) (UserIdentity, error)
	LinkIdentity(ctx context.Context, identityID, userID uuid.UUID) error
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	TouchUserLogin(ctx context.Context, id uuid.UUID, arg CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)

	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	ListWorkspacesByUser(ctx context.Context, userID uuid.UUID) ([]Workspace, error)
	GetWorkspace(ctx context.Context, id uuid.UUID) (Workspace, error)
	CreateWorkspace(ctx context.Context, arg CreateWorkspaceParams) (Workspace, error)
	UpdateWorkspace(ctx context.Context, arg UpdateWorkspaceParams) (Workspace, error)
	DeleteWorkspace(ctx context.Context, id uuid.UUID) error
	AddWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID, role string) (WorkspaceMember, error)
	ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]WorkspaceMember, error)
	GetWorkspaceMembership(ctx context.Context, workspaceID, userID uuid.UUID) (WorkspaceMember, error)

	ListSquads(ctx context.Context, workspaceID uuid.UUID) ([]Squad, error)
	GetSquad(ctx context.Context, id uuid.UUID) (Squad, error)
	LockSquad(ctx context.Context, id uuid.UUID) (Squad, error)
	CreateSquad(ctx context.Context, arg CreateSquadParams) (Squad, error)
	UpdateSquad(ctx context.Context, arg UpdateSquadParams) (Squad, error)
	DeleteSquad(ctx context.Context, id uuid.UUID) error
	ListSquadMembers(ctx context.Context, squadID uuid.UUID) ([]SquadMember, error)
	GetSquadMember(ctx context.Context, squadID, id uuid.UUID) (SquadMember, error)
	CreateSquadMember(ctx context.Context, arg CreateSquadMemberParams) (SquadMember, error)
	DeleteSquadMember(ctx context.Context, squadID, id uuid.UUID) error

	ListPersonas(ctx context.Context, workspaceID uuid.UUID) ([]Persona, error)
	GetPersona(ctx context.Context, id uuid.UUID) (Persona, error)
	CreatePersona(ctx context.Context, arg CreatePersonaParams) (Persona, error)
	UpsertGlobalPersona(ctx context.Context, arg CreatePersonaParams) (Persona, error)
	UpdatePersona(ctx context.Context, arg UpdatePersonaParams) (Persona, error)
	DeletePersona(ctx context.Context, id uuid.UUID, global bool) error
	ListRoles(ctx context.Context, workspaceID uuid.UUID) ([]Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (Role, error)
	FindRoleByCode(ctx context.Context, workspaceID uuid.UUID, code string) (Role, error)
	CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error)
	UpsertGlobalRole(ctx context.Context, arg CreateRoleParams) (Role, error)
	UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID, global bool) error

	ListSquadRoles(ctx context.Context, squadID uuid.UUID) ([]SquadRole, error)
	GetSquadRole(ctx context.Context, squadID, id uuid.UUID) (SquadRole, error)
	ActivateSquadRole(ctx context.Context, arg ActivateSquadRoleParams) (SquadRole, bool, error)
	UpdateSquadRole(ctx context.Context, arg UpdateSquadAssociationParams) (SquadRole, error)
	DeleteSquadRole(ctx context.Context, squadID, id uuid.UUID) error
	ListSquadPersonas(ctx context.Context, squadID uuid.UUID) ([]SquadPersona, error)
	GetSquadPersona(ctx context.Context, squadID, id uuid.UUID) (SquadPersona, error)
	AddSquadPersona(ctx context.Context, arg AddSquadPersonaParams) (SquadPersona, bool, error)
	UpdateSquadPersona(ctx context.Context, arg UpdateSquadAssociationParams) (SquadPersona, error)
	DeleteSquadPersona(ctx context.Context, squadID, id uuid.UUID) error
	ListSquadMemberRoles(ctx context.Context, squadID uuid.UUID) ([]SquadMemberRole, error)
	DeleteSquadMemberRole(ctx context.Context, squadID, memberID uuid.UUID) (bool, error)
	InsertSquadMemberRole(ctx context.Context, arg InsertSquadMemberRoleParams) (SquadMemberRole, error)

	ListProblemStatements(ctx context.Context, workspaceID uuid.UUID) ([]ProblemStatement, error)
	GetProblemStatement(ctx context.Context, id uuid.UUID) (ProblemStatement, error)
	GetLatestProblemStatementBySquad(ctx context.Context, squadID uuid.UUID) (ProblemStatement, error)
	CreateProblemStatement(ctx context.Context, arg CreateProblemStatementParams) (ProblemStatement, error)
	UpdateProblemStatement(ctx context.Context, arg UpdateProblemStatementParams) (ProblemStatement, error)
	DeleteProblemStatement(ctx context.Context, id uuid.UUID) error
	AppendOpenQuestion(ctx context.Context, id uuid.UUID, question string) (ProblemStatement, error)

	ListPhases(ctx context.Context, squadID uuid.UUID) ([]SquadPhase, error)
	AppendPhase(ctx context.Context, arg AppendPhaseParams) (SquadPhase, error)
	DeletePhase(ctx context.Context, squadID, id uuid.UUID) error
	ListSections(ctx context.Context, squadID uuid.UUID) ([]SquadSection, error)
	UpsertSection(ctx context.Context, arg UpsertSectionParams) (SquadSection, error)

	InsertDecision(ctx context.Context, arg InsertDecisionParams) (Decision, error)
	ListDecisions(ctx context.Context, squadID uuid.UUID) ([]Decision, error)

	MaxMatrixVersion(ctx context.Context, squadID uuid.UUID) (int, error)
	InsertMatrixVersion(ctx context.Context, arg InsertMatrixVersionParams) (MatrixVersion, error)
	ListMatrixVersions(ctx context.Context, squadID uuid.UUID) ([]MatrixVersion, error)
	GetMatrixVersion(ctx context.Context, squadID uuid.UUID, version int) (MatrixVersion, error)

	InsertProposal(ctx context.Context, arg InsertProposalParams) (Proposal, error)
	GetProposal(ctx context.Context, squadID, id uuid.UUID) (Proposal, error)
	GetProposalForUpdate(ctx context.Context, squadID, id uuid.UUID) (Proposal, error)
	ListProposals(ctx context.Context, squadID uuid.UUID) ([]Proposal, error)
	ResolveProposal(ctx context.Context, arg ResolveProposalParams) (Proposal, error)
	MarkProposalBrokenDown(ctx context.Context, id uuid.UUID) (bool, error)

	InsertSuggestion(ctx context.Context, arg InsertSuggestionParams) (Suggestion, error)
	ListSuggestions(ctx context.Context, squadID uuid.UUID, status string) ([]Suggestion, error)
	ListSuggestionsByProposal(ctx context.Context, proposalID uuid.UUID) ([]Suggestion, error)
	GetSuggestion(ctx context.Context, squadID, id uuid.UUID) (Suggestion, error)
	GetSuggestionForUpdate(ctx context.Context, squadID, id uuid.UUID) (Suggestion, error)
	ResolveSuggestion(ctx context.Context, arg ResolveSuggestionParams) (Suggestion, error)
}

var _ Querier = (*Queries)(nil)

// Store acrescenta a Querier a execução transacional.
type Store interface {
	Querier
	InTx(ctx context.Context, fn func(Querier) error) error
}

// PgStore implementa Store sobre um pool pgx.
type PgStore struct {
	*Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{Queries: New(pool), pool: pool}
}

// InTx executa fn com Queries ligadas a uma única transação; qualquer erro desfaz tudo.
func (s *PgStore) InTx(ctx context.Context, fn func(Querier) error) error {
	return db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(New(tx))
	})
}
