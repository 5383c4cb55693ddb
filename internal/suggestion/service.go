package suggestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/apperr"
	"github.com/squadsvirtuais/api/internal/decision"
	"github.com/squadsvirtuais/api/internal/notify"
	"github.com/squadsvirtuais/api/internal/proposal"
	"github.com/squadsvirtuais/api/internal/repo"
	"github.com/squadsvirtuais/api/internal/util"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Service struct {
	store    repo.Store
	notifier notify.Notifier
}

func NewService(store repo.Store, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{store: store, notifier: notifier}
}

// Breakdown transforma a proposta pendente em sugestões. Repetir a chamada devolve as já criadas.
func (s *Service) Breakdown(ctx context.Context, sq repo.Squad, proposalID uuid.UUID) ([]repo.Suggestion, error) {
	out := []repo.Suggestion{}
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		p, err := proposal.LockPending(ctx, q, sq.ID, proposalID)
		if err != nil {
			return err
		}
		marked, err := q.MarkProposalBrokenDown(ctx, p.ID)
		if err != nil {
			return err
		}
		if !marked {
			out, err = q.ListSuggestionsByProposal(ctx, p.ID)
			return err
		}

		payload, err := proposal.Parse(p.Payload)
		if err != nil {
			return err
		}
		for i, c := range FromPayload(payload) {
			raw, err := json.Marshal(c)
			if err != nil {
				return err
			}
			created, err := q.InsertSuggestion(ctx, repo.InsertSuggestionParams{
				ProposalID: p.ID,
				SquadID:    sq.ID,
				Type:       c.Type(),
				Payload:    raw,
				Position:   i,
			})
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("component", "suggestion").Str("proposal_id", proposalID.String()).Int("count", len(out)).Msg("proposta desmembrada")
	return out, nil
}

// List filtra pela situação; vazio traz todas.
func (s *Service) List(ctx context.Context, squadID uuid.UUID, status string) ([]repo.Suggestion, error) {
	if status != "" {
		if err := util.OneOf(status, "status", StatusPending, StatusApproved, StatusRejected); err != nil {
			return nil, err
		}
	}
	return s.store.ListSuggestions(ctx, squadID, status)
}

func (s *Service) ListPending(ctx context.Context, squadID uuid.UUID) ([]repo.Suggestion, error) {
	return s.store.ListSuggestions(ctx, squadID, StatusPending)
}

// Actor identifica quem resolve a sugestão e seu papel no workspace.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// ApproveResult traz a sugestão resolvida e a entidade criada ou alterada.
type ApproveResult struct {
	Suggestion repo.Suggestion `json:"suggestion"`
	Applied    any             `json:"applied"`
}

// Approve aplica o conteúdo (ou a versão editada), registra a decisão e marca a sugestão, tudo ou nada.
func (s *Service) Approve(ctx context.Context, actor Actor, sq repo.Squad, id uuid.UUID, edited json.RawMessage) (ApproveResult, error) {
	var result ApproveResult
	var title string
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		current, err := lockPending(ctx, q, sq.ID, id)
		if err != nil {
			return err
		}

		raw := current.Payload
		if len(edited) > 0 {
			raw = edited
		}
		content, err := Decode(current.Type, raw)
		if err != nil {
			return err
		}
		title, result.Applied, err = apply(ctx, q, proposal.Target{Squad: sq, Actor: actor.UserID}, content)
		if err != nil {
			return err
		}

		var stored json.RawMessage
		if len(edited) > 0 {
			if stored, err = json.Marshal(content); err != nil {
				return err
			}
		}
		result.Suggestion, err = q.ResolveSuggestion(ctx, repo.ResolveSuggestionParams{
			ID:         id,
			Status:     StatusApproved,
			Payload:    stored,
			ResolvedBy: &actor.UserID,
		})
		if err != nil {
			return alreadyResolvedIfGone(err)
		}
		_, err = decision.AppendTx(ctx, q, decision.Record{
			SquadID: sq.ID,
			Title:   title,
			Body: map[string]any{
				"suggestion_id": id,
				"proposal_id":   current.ProposalID,
				"type":          current.Type,
				"edited":        len(edited) > 0,
				"content":       content,
			},
			Actor:     &actor.UserID,
			ActorRole: actor.Role,
		})
		return err
	})
	if err != nil {
		return ApproveResult{}, err
	}
	s.notifier.Notify(ctx, notify.Message{Title: title, Squad: sq.Name})
	return result, nil
}

// Reject encerra a sugestão sem efeitos colaterais.
func (s *Service) Reject(ctx context.Context, actor Actor, squadID, id uuid.UUID, reason *string) (repo.Suggestion, error) {
	var rejected repo.Suggestion
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		if _, err := lockPending(ctx, q, squadID, id); err != nil {
			return err
		}
		var err error
		rejected, err = q.ResolveSuggestion(ctx, repo.ResolveSuggestionParams{
			ID:              id,
			Status:          StatusRejected,
			RejectionReason: util.TrimPtr(reason),
			ResolvedBy:      &actor.UserID,
		})
		return alreadyResolvedIfGone(err)
	})
	return rejected, err
}

func lockPending(ctx context.Context, q repo.Querier, squadID, id uuid.UUID) (repo.Suggestion, error) {
	sg, err := q.GetSuggestionForUpdate(ctx, squadID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Suggestion{}, apperr.NotFound("sugestão não encontrada")
		}
		return repo.Suggestion{}, err
	}
	if sg.Status != StatusPending {
		return repo.Suggestion{}, apperr.ErrAlreadyResolved
	}
	return sg, nil
}

func alreadyResolvedIfGone(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.ErrAlreadyResolved
	}
	return err
}

// apply despacha o conteúdo para o caminho de escrita correspondente.
func apply(ctx context.Context, q repo.Querier, t proposal.Target, c Content) (string, any, error) {
	switch c := c.(type) {
	case DecisionContext:
		return section(ctx, q, t, c.Type(), "Contexto de decisão aprovado", c.Section)
	case ProblemMaturity:
		return section(ctx, q, t, c.Type(), "Maturidade do problema aprovada", c.Section)
	case Governance:
		return section(ctx, q, t, c.Type(), "Governança aprovada", c.Section)
	case ExecutionModel:
		return section(ctx, q, t, c.Type(), "Modelo de execução aprovado", c.Section)
	case ValidationStrategy:
		return section(ctx, q, t, c.Type(), "Estratégia de validação aprovada", c.Section)
	case ReadinessAssessment:
		return section(ctx, q, t, c.Type(), "Avaliação de prontidão aprovada", c.Section)
	case Persona:
		sp, err := proposal.ApplyPersona(ctx, q, t, c.Persona)
		return "Persona aprovada: " + c.Name, sp, err
	case Role:
		label := c.Label
		if label == "" {
			label = c.Code
		}
		sr, err := proposal.ApplyRole(ctx, q, t, c.Role)
		return "Papel aprovado: " + label, sr, err
	case Phase:
		ph, err := proposal.ApplyPhase(ctx, q, t, c.Phase)
		return "Fase aprovada: " + c.Name, ph, err
	case CriticalUnknown:
		ps, err := proposal.ApplyCriticalUnknown(ctx, q, t, c.CriticalUnknown)
		return "Incógnita crítica registrada", ps, err
	}
	return "", nil, fmt.Errorf("suggestion: conteúdo sem aplicação %T", c)
}

func section(ctx context.Context, q repo.Querier, t proposal.Target, kind, title string, s proposal.Section) (string, any, error) {
	sec, err := proposal.ApplySection(ctx, q, t, kind, s)
	return title, sec, err
}
