package proposal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/decision"
	"github.com/squadsvirtuais/api/internal/llm"
	"github.com/squadsvirtuais/api/internal/notify"
	"github.com/squadsvirtuais/api/internal/repo"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDiscarded = "discarded"
)

// Generator produz o JSON da proposta a partir do problema.
type Generator interface {
	GenerateStructure(ctx context.Context, p llm.Problem) (json.RawMessage, error)
	Model() string
}

type Service struct {
	store    repo.Store
	gen      Generator
	notifier notify.Notifier
}

func NewService(store repo.Store, gen Generator, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: store, gen: gen, notifier: notifier}
}

// Actor identifica quem confirma e seu papel no workspace.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// Generate chama o modelo com o problema mais recente da squad e grava a proposta pendente.
// A chamada é síncrona e não há nova tentativa automática.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, sq repo.Squad) (repo.Proposal, error) {
	ps, err := s.store.GetLatestProblemStatementBySquad(ctx, sq.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Proposal{}, apperr.ErrNoProblemStatement
		}
		return repo.Proposal{}, err
	}

	raw, err := s.gen.GenerateStructure(ctx, llm.Problem{
		Title:          ps.Title,
		Narrative:      ps.Narrative,
		SuccessMetrics: ps.SuccessMetrics,
		Constraints:    ps.Constraints,
		Assumptions:    ps.Assumptions,
		OpenQuestions:  ps.OpenQuestions,
	})
	if err != nil {
		log.Error().Err(err).Str("component", "proposal").Str("squad_id", sq.ID.String()).Msg("falha ao gerar proposta")
		return repo.Proposal{}, apperr.ErrProposalGenerationFailed.Wrap(err)
	}
	payload, err := Parse(raw)
	if err != nil {
		log.Error().Err(err).Str("component", "proposal").Str("squad_id", sq.ID.String()).Msg("proposta gerada inválida")
		return repo.Proposal{}, apperr.ErrProposalGenerationFailed.Wrap(err)
	}

	return s.store.InsertProposal(ctx, repo.InsertProposalParams{
		SquadID:            sq.ID,
		ProblemStatementID: &ps.ID,
		Payload:            raw,
		Uncertainties:      payload.Uncertainties,
		Model:              s.gen.Model(),
		CreatedBy:          &userID,
	})
}

func (s *Service) List(ctx context.Context, squadID uuid.UUID) ([]repo.Proposal, error) {
	return s.store.ListProposals(ctx, squadID)
}

func (s *Service) Get(ctx context.Context, squadID, id uuid.UUID) (repo.Proposal, error) {
	p, err := s.store.GetProposal(ctx, squadID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.Proposal{}, apperr.NotFound("proposta não encontrada")
	}
	return p, err
}

// ConfirmResult devolve a proposta confirmada e o que foi criado.
type ConfirmResult struct {
	Proposal repo.Proposal `json:"proposal"`
	Applied  Summary       `json:"applied"`
}

// Confirm aplica a proposta (ou a versão editada) e registra a decisão, tudo na mesma transação.
func (s *Service) Confirm(ctx context.Context, actor Actor, sq repo.Squad, id uuid.UUID, edited *Payload) (ConfirmResult, error) {
	var result ConfirmResult
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		current, err := lockPending(ctx, q, sq.ID, id)
		if err != nil {
			return err
		}
		if current.BrokenDownAt != nil {
			return apperr.Conflict("proposta já foi desmembrada em sugestões; aprove-as pela fila")
		}

		var payload Payload
		var stored json.RawMessage
		if edited != nil {
			if err := edited.Validate(); err != nil {
				return err
			}
			payload = *edited
			if stored, err = json.Marshal(edited); err != nil {
				return err
			}
		} else if payload, err = Parse(current.Payload); err != nil {
			return err
		}

		result.Applied, err = ApplyAll(ctx, q, Target{Squad: sq, Actor: actor.UserID}, payload)
		if err != nil {
			return err
		}
		result.Proposal, err = q.ResolveProposal(ctx, repo.ResolveProposalParams{ID: id, Status: StatusConfirmed, Payload: stored})
		if err != nil {
			return conflictIfGone(err)
		}
		_, err = decision.AppendTx(ctx, q, decision.Record{
			SquadID: sq.ID,
			Title:   "Proposta de estrutura confirmada",
			Body: map[string]any{
				"proposal_id": id,
				"edited":      edited != nil,
				"applied":     result.Applied,
				"payload":     payload,
			},
			Actor:     &actor.UserID,
			ActorRole: actor.Role,
		})
		return err
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	s.notifier.Notify(ctx, notify.Message{Title: "Proposta de estrutura confirmada", Squad: sq.Name})
	return result, nil
}

// Discard encerra a proposta sem efeitos em outras entidades.
func (s *Service) Discard(ctx context.Context, squadID, id uuid.UUID) (repo.Proposal, error) {
	var discarded repo.Proposal
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		if _, err := lockPending(ctx, q, squadID, id); err != nil {
			return err
		}
		var err error
		discarded, err = q.ResolveProposal(ctx, repo.ResolveProposalParams{ID: id, Status: StatusDiscarded})
		return conflictIfGone(err)
	})
	return discarded, err
}

// lockPending trava a proposta e exige que ainda esteja pendente.
func lockPending(ctx context.Context, q repo.Querier, squadID, id uuid.UUID) (repo.Proposal, error) {
	p, err := q.GetProposalForUpdate(ctx, squadID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Proposal{}, apperr.NotFound("proposta não encontrada")
		}
		return repo.Proposal{}, err
	}
	if p.Status != StatusPending {
		return repo.Proposal{}, apperr.Conflict("proposta já foi " + statusLabel(p.Status))
	}
	return p, nil
}

// LockPending é usado pelo desmembramento em sugestões.
func LockPending(ctx context.Context, q repo.Querier, squadID, id uuid.UUID) (repo.Proposal, error) {
	return lockPending(ctx, q, squadID, id)
}

func conflictIfGone(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.Conflict("proposta não está mais pendente")
	}
	return err
}

func statusLabel(status string) string {
	switch status {
	case StatusConfirmed:
		return "confirmada"
	case StatusDiscarded:
		return "descartada"
	}
	return status
}
