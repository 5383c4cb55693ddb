package repo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User representa uma pessoa autenticada.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Name        *string    `json:"name"`
	Email       *string    `json:"email"`
	AvatarURL   *string    `json:"avatar_url"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserIdentity vincula uma credencial de provedor a um User.
type UserIdentity struct {
	ID             uuid.UUID       `json:"id"`
	UserID         *uuid.UUID      `json:"user_id"`
	Provider       string          `json:"provider"`
	ProviderUserID string          `json:"provider_user_id"`
	ProviderEmail  *string         `json:"provider_email"`
	RawProfile     json.RawMessage `json:"raw_profile"`
	LastLoginAt    *time.Time      `json:"last_login_at"`
}

// Workspace agrupa squads de um mesmo time/organização.
type Workspace struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Type        string     `json:"type"`
	CreatedBy   *uuid.UUID `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// WorkspaceMember vincula usuário ao workspace com papel.
type WorkspaceMember struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	UserName    *string   `json:"user_name,omitempty"`
	UserEmail   *string   `json:"user_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Squad é o time que trabalha um problema.
type Squad struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	CreatedBy   *uuid.UUID `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SquadMember é uma pessoa participante da squad.
type SquadMember struct {
	ID        uuid.UUID  `json:"id"`
	SquadID   uuid.UUID  `json:"squad_id"`
	UserID    *uuid.UUID `json:"user_id"`
	Name      string     `json:"name"`
	Email     *string    `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
}

// Persona é um arquétipo de stakeholder, global ou do workspace.
// WorkspaceID nulo indica persona global.
type Persona struct {
	ID              uuid.UUID  `json:"id"`
	WorkspaceID     *uuid.UUID `json:"workspace_id"`
	SourcePersonaID *uuid.UUID `json:"source_persona_id,omitempty"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Focus           string     `json:"focus"`
	Goals           []string   `json:"goals"`
	PainPoints      []string   `json:"pain_points"`
	Behaviors       []string   `json:"behaviors"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Role é uma especialidade, global ou do workspace.
// WorkspaceID nulo indica papel global.
type Role struct {
	ID               uuid.UUID  `json:"id"`
	WorkspaceID      *uuid.UUID `json:"workspace_id"`
	SourceRoleID     *uuid.UUID `json:"source_role_id,omitempty"`
	Code             string     `json:"code"`
	Label            string     `json:"label"`
	Description      string     `json:"description"`
	Responsibilities []string   `json:"responsibilities"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SquadRole associa um Role ativo à squad. Exatamente um entre RoleID e WorkspaceRoleID é preenchido.
type SquadRole struct {
	ID                uuid.UUID  `json:"id"`
	SquadID           uuid.UUID  `json:"squad_id"`
	RoleID            *uuid.UUID `json:"role_id"`
	WorkspaceRoleID   *uuid.UUID `json:"workspace_role_id"`
	Active            bool       `json:"active"`
	CustomName        *string    `json:"custom_name"`
	CustomDescription *string    `json:"custom_description"`
	Code              string     `json:"code"`
	Label             string     `json:"label"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SquadPersona associa uma Persona ativa à squad. Exatamente um entre PersonaID e WorkspacePersonaID é preenchido.
type SquadPersona struct {
	ID                 uuid.UUID  `json:"id"`
	SquadID            uuid.UUID  `json:"squad_id"`
	PersonaID          *uuid.UUID `json:"persona_id"`
	WorkspacePersonaID *uuid.UUID `json:"workspace_persona_id"`
	Active             bool       `json:"active"`
	CustomName         *string    `json:"custom_name"`
	CustomDescription  *string    `json:"custom_description"`
	Name               string     `json:"name"`
	CreatedAt          time.Time  `json:"created_at"`
}

// SquadMemberRole atribui um SquadRole a um membro.
type SquadMemberRole struct {
	ID            uuid.UUID  `json:"id"`
	SquadID       uuid.UUID  `json:"squad_id"`
	SquadMemberID uuid.UUID  `json:"squad_member_id"`
	SquadRoleID   uuid.UUID  `json:"squad_role_id"`
	AssignedBy    *uuid.UUID `json:"assigned_by"`
	AssignedAt    time.Time  `json:"assigned_at"`
}

// ProblemStatement é o problema de negócio que justifica a squad.
type ProblemStatement struct {
	ID             uuid.UUID  `json:"id"`
	WorkspaceID    uuid.UUID  `json:"workspace_id"`
	SquadID        *uuid.UUID `json:"squad_id"`
	Title          string     `json:"title"`
	Narrative      string     `json:"narrative"`
	SuccessMetrics []string   `json:"success_metrics"`
	Constraints    []string   `json:"constraints"`
	Assumptions    []string   `json:"assumptions"`
	OpenQuestions  []string   `json:"open_questions"`
	CreatedBy      *uuid.UUID `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SquadPhase é uma etapa do fluxo de trabalho da squad.
type SquadPhase struct {
	ID          uuid.UUID `json:"id"`
	SquadID     uuid.UUID `json:"squad_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Objectives  []string  `json:"objectives"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// SquadSection guarda um bloco de contexto aprovado (governança, modelo de execução, ...).
type SquadSection struct {
	SquadID   uuid.UUID  `json:"squad_id"`
	Kind      string     `json:"kind"`
	Summary   string     `json:"summary"`
	Details   []string   `json:"details"`
	UpdatedBy *uuid.UUID `json:"updated_by"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Decision é o registro imutável de uma mudança aprovada.
type Decision struct {
	ID            uuid.UUID       `json:"id"`
	SquadID       uuid.UUID       `json:"squad_id"`
	Title         string          `json:"title"`
	Decision      json.RawMessage `json:"decision"`
	CreatedBy     *uuid.UUID      `json:"created_by"`
	CreatedByRole string          `json:"created_by_role"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MatrixVersion é uma versão imutável da matriz de validação.
type MatrixVersion struct {
	ID          uuid.UUID     `json:"id"`
	SquadID     uuid.UUID     `json:"squad_id"`
	Version     int           `json:"version"`
	Description string        `json:"description"`
	CreatedBy   *uuid.UUID    `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	Entries     []MatrixEntry `json:"entries"`
}

// MatrixEntry mapeia (papel, persona, checkpoint) para um nível de exigência.
type MatrixEntry struct {
	ID               uuid.UUID `json:"id"`
	SquadRoleID      uuid.UUID `json:"squad_role_id"`
	RoleLabel        string    `json:"role_label"`
	SquadPersonaID   uuid.UUID `json:"squad_persona_id"`
	PersonaLabel     string    `json:"persona_label"`
	CheckpointType   string    `json:"checkpoint_type"`
	RequirementLevel string    `json:"requirement_level"`
}

// Proposal é a proposta de estrutura gerada por IA.
type Proposal struct {
	ID                 uuid.UUID       `json:"id"`
	SquadID            uuid.UUID       `json:"squad_id"`
	ProblemStatementID *uuid.UUID      `json:"problem_statement_id"`
	Payload            json.RawMessage `json:"proposal_payload"`
	Uncertainties      []string        `json:"uncertainties"`
	Status             string          `json:"status"`
	Model              string          `json:"model"`
	CreatedBy          *uuid.UUID      `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	ResolvedAt         *time.Time      `json:"resolved_at"`
	BrokenDownAt       *time.Time      `json:"broken_down_at"`
}

// Suggestion é uma unidade aprovável extraída de uma proposta.
type Suggestion struct {
	ID              uuid.UUID       `json:"id"`
	ProposalID      uuid.UUID       `json:"proposal_id"`
	SquadID         uuid.UUID       `json:"squad_id"`
	Type            string          `json:"type"`
	Payload         json.RawMessage `json:"payload"`
	Position        int             `json:"position"`
	Status          string          `json:"status"`
	RejectionReason *string         `json:"rejection_reason"`
	ResolvedBy      *uuid.UUID      `json:"resolved_by"`
	ResolvedAt      *time.Time      `json:"resolved_at"`
	CreatedAt       time.Time       `json:"created_at"`
}
