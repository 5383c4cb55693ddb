package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

var codePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// RoleInput é usado na criação; o código não muda depois.
type RoleInput struct {
	Code             string   `json:"code"`
	Label            string   `json:"label"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Global           bool     `json:"global"`
}

// RolePatch não aceita código.
type RolePatch struct {
	Label            *string  `json:"label"`
	Description      *string  `json:"description"`
	Responsibilities []string `json:"responsibilities"`
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCode transforma texto livre em código: sem acentos, minúsculo, separado por "_".
// Caracteres fora de [a-z0-9_-] são descartados; o resultado pode ficar vazio.
func NormalizeCode(code string) string {
	plain, _, err := transform.String(stripMarks, strings.TrimSpace(code))
	if err != nil {
		plain = code
	}
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
		case r == '_' || unicode.IsSpace(r) || unicode.IsPunct(r):
			sep = true
		}
	}
	return strings.TrimLeft(b.String(), "-_")
}

func (in *RoleInput) normalize() error {
	in.Code = NormalizeCode(in.Code)
	in.Label = strings.TrimSpace(in.Label)
	if in.Code == "" {
		return apperr.Validation("código obrigatório")
	}
	if !codePattern.MatchString(in.Code) {
		return apperr.Validation("código inválido: use letras minúsculas, números, _ ou -")
	}
	if in.Label == "" {
		in.Label = in.Code
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Responsibilities = util.CleanList(in.Responsibilities)
	return nil
}

func duplicateCode(err error) error {
	if errors.Is(err, repo.ErrDuplicate) {
		return apperr.Conflict("já existe papel com esse código")
	}
	return err
}

// CreateRoleTx insere papel do workspace usando a transação recebida.
func CreateRoleTx(ctx context.Context, q repo.Querier, workspaceID uuid.UUID, in RoleInput, createdBy *uuid.UUID) (repo.Role, error) {
	if err := in.normalize(); err != nil {
		return repo.Role{}, err
	}
	r, err := q.CreateRole(ctx, repo.CreateRoleParams{
		WorkspaceID:      &workspaceID,
		Code:             in.Code,
		Label:            in.Label,
		Description:      in.Description,
		Responsibilities: in.Responsibilities,
		CreatedBy:        createdBy,
	})
	return r, duplicateCode(err)
}

// CloneRoleTx copia source para o workspace. O código original é mantido enquanto estiver livre
// no workspace; cópias seguintes recebem sufixo (_2, _3, ...).
func CloneRoleTx(ctx context.Context, q repo.Querier, workspaceID uuid.UUID, source repo.Role, patch RolePatch, createdBy *uuid.UUID) (repo.Role, error) {
	code, err := freeWorkspaceCode(ctx, q, workspaceID, source.Code)
	if err != nil {
		return repo.Role{}, err
	}
	sourceID := source.ID
	r, err := q.CreateRole(ctx, repo.CreateRoleParams{
		WorkspaceID:      &workspaceID,
		SourceRoleID:     &sourceID,
		Code:             code,
		Label:            strings.TrimSpace(pick(patch.Label, source.Label)),
		Description:      strings.TrimSpace(pick(patch.Description, source.Description)),
		Responsibilities: util.CleanList(pickList(patch.Responsibilities, source.Responsibilities)),
		CreatedBy:        createdBy,
	})
	return r, duplicateCode(err)
}

const maxCodeSuffix = 100

// freeWorkspaceCode procura antes de inserir: uma violação de unicidade abortaria a transação.
func freeWorkspaceCode(ctx context.Context, q repo.Querier, workspaceID uuid.UUID, base string) (string, error) {
	for n := 1; n <= maxCodeSuffix; n++ {
		code := base
		if n > 1 {
			code = fmt.Sprintf("%s_%d", base, n)
		}
		r, err := q.FindRoleByCode(ctx, workspaceID, code)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return code, nil
		case err != nil:
			return "", err
		case r.WorkspaceID == nil:
			// só existe o global; o workspace ainda não usa o código
			return code, nil
		}
	}
	return "", apperr.Conflict("já existem cópias demais desse papel no workspace")
}

func (s *Service) ListRoles(ctx context.Context, workspaceID uuid.UUID) ([]repo.Role, error) {
	return s.store.ListRoles(ctx, workspaceID)
}

func (s *Service) GetRole(ctx context.Context, workspaceID, id uuid.UUID) (repo.Role, error) {
	return visibleRole(ctx, s.store, workspaceID, id)
}

func (s *Service) CreateRole(ctx context.Context, actor Actor, in RoleInput) (repo.Role, error) {
	if !in.Global {
		return CreateRoleTx(ctx, s.store, actor.WorkspaceID, in, &actor.UserID)
	}
	if !actor.Admin {
		return repo.Role{}, apperr.ErrForbidden.WithMessage("apenas administradores alteram o catálogo global")
	}
	if err := in.normalize(); err != nil {
		return repo.Role{}, err
	}
	r, err := s.store.CreateRole(ctx, repo.CreateRoleParams{
		Code:             in.Code,
		Label:            in.Label,
		Description:      in.Description,
		Responsibilities: in.Responsibilities,
	})
	return r, duplicateCode(err)
}

func (s *Service) UpdateRole(ctx context.Context, actor Actor, id uuid.UUID, patch RolePatch) (repo.Role, error) {
	current, err := visibleRole(ctx, s.store, actor.WorkspaceID, id)
	if err != nil {
		return repo.Role{}, err
	}
	ref := RefOf(current.ID, current.WorkspaceID)
	if !mutable(ref, actor) {
		return repo.Role{}, readOnly()
	}
	if patch.Label != nil && strings.TrimSpace(*patch.Label) == "" {
		return repo.Role{}, apperr.Validation("rótulo obrigatório")
	}
	_, global := ref.(Global)
	return s.store.UpdateRole(ctx, repo.UpdateRoleParams{
		ID:               id,
		Global:           global,
		Label:            util.TrimPtr(patch.Label),
		Description:      util.TrimPtr(patch.Description),
		Responsibilities: util.CleanList(patch.Responsibilities),
	})
}

func (s *Service) DeleteRole(ctx context.Context, actor Actor, id uuid.UUID) error {
	current, err := visibleRole(ctx, s.store, actor.WorkspaceID, id)
	if err != nil {
		return err
	}
	ref := RefOf(current.ID, current.WorkspaceID)
	if !mutable(ref, actor) {
		return readOnly()
	}
	_, global := ref.(Global)
	return s.store.DeleteRole(ctx, id, global)
}

// DuplicateRole cria cópia editável no workspace do ator, com o mesmo código.
func (s *Service) DuplicateRole(ctx context.Context, actor Actor, id uuid.UUID, patch RolePatch) (repo.Role, error) {
	source, err := visibleRole(ctx, s.store, actor.WorkspaceID, id)
	if err != nil {
		return repo.Role{}, err
	}
	if source.WorkspaceID != nil {
		return repo.Role{}, apperr.Conflict("papel já pertence ao workspace; edite-o diretamente")
	}
	return CloneRoleTx(ctx, s.store, actor.WorkspaceID, source, patch, &actor.UserID)
}

func visibleRole(ctx context.Context, q repo.Querier, workspaceID, id uuid.UUID) (repo.Role, error) {
	r, err := q.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Role{}, apperr.NotFound("papel não encontrado")
		}
		return repo.Role{}, err
	}
	if !visible(RefOf(r.ID, r.WorkspaceID), workspaceID) {
		return repo.Role{}, apperr.NotFound("papel não encontrado")
	}
	return r, nil
}
