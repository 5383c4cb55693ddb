// Package decision expõe o histórico imutável de decisões das squads.
package decision

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

type Service struct {
	store repo.Querier
}

func NewService(store repo.Querier) *Service {
	return &Service{store: store}
}

// List devolve as decisões da squad, mais recentes primeiro.
func (s *Service) List(ctx context.Context, squadID uuid.UUID) ([]repo.Decision, error) {
	return s.store.ListDecisions(ctx, squadID)
}

// Record descreve o que foi aprovado e por quem.
type Record struct {
	SquadID uuid.UUID
	Title   string
	Body    any
	Actor   *uuid.UUID
	// ActorRole é o papel do autor no workspace no momento da decisão.
	ActorRole string
}

// AppendTx grava a decisão na transação recebida; falhar aqui desfaz a operação inteira.
func AppendTx(ctx context.Context, q repo.Querier, r Record) (repo.Decision, error) {
	body, err := json.Marshal(r.Body)
	if err != nil {
		return repo.Decision{}, err
	}
	role := strings.TrimSpace(r.ActorRole)
	if role == "" {
		role = "member"
	}
	return q.InsertDecision(ctx, repo.InsertDecisionParams{
		SquadID:       r.SquadID,
		Title:         r.Title,
		Decision:      body,
		CreatedBy:     r.Actor,
		CreatedByRole: role,
	})
}
