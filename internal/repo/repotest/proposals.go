package repotest

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

func (m *Memory) InsertProposal(_ context.Context, arg repo.InsertProposalParams) (repo.Proposal, error) {
	st, unlock, err := m.begin("InsertProposal")
	if err != nil {
		return repo.Proposal{}, err
	}
	defer unlock()
	now := st.now()
	p := repo.Proposal{
		ID:                 uuid.New(),
		SquadID:            arg.SquadID,
		ProblemStatementID: arg.ProblemStatementID,
		Payload:            arg.Payload,
		Uncertainties:      nonNil(arg.Uncertainties),
		Status:             "pending",
		Model:              arg.Model,
		CreatedBy:          arg.CreatedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	st.proposals[p.ID] = p
	return p, nil
}

func (m *Memory) GetProposal(_ context.Context, squadID, id uuid.UUID) (repo.Proposal, error) {
	st, unlock, err := m.begin("GetProposal")
	if err != nil {
		return repo.Proposal{}, err
	}
	defer unlock()
	p, ok := st.proposals[id]
	if !ok || p.SquadID != squadID {
		return repo.Proposal{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *Memory) GetProposalForUpdate(ctx context.Context, squadID, id uuid.UUID) (repo.Proposal, error) {
	return m.GetProposal(ctx, squadID, id)
}

func (m *Memory) ListProposals(_ context.Context, squadID uuid.UUID) ([]repo.Proposal, error) {
	st, unlock, err := m.begin("ListProposals")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.proposals, func(p repo.Proposal) bool { return p.SquadID == squadID }),
		func(a, b repo.Proposal) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (m *Memory) ResolveProposal(_ context.Context, arg repo.ResolveProposalParams) (repo.Proposal, error) {
	st, unlock, err := m.begin("ResolveProposal")
	if err != nil {
		return repo.Proposal{}, err
	}
	defer unlock()
	p, ok := st.proposals[arg.ID]
	if !ok || p.Status != "pending" {
		return repo.Proposal{}, repo.ErrNotFound
	}
	now := st.now()
	p.Status = arg.Status
	if len(arg.Payload) > 0 {
		p.Payload = arg.Payload
	}
	p.ResolvedAt = &now
	p.UpdatedAt = now
	st.proposals[p.ID] = p
	return p, nil
}

func (m *Memory) MarkProposalBrokenDown(_ context.Context, id uuid.UUID) (bool, error) {
	st, unlock, err := m.begin("MarkProposalBrokenDown")
	if err != nil {
		return false, err
	}
	defer unlock()
	p, ok := st.proposals[id]
	if !ok || p.BrokenDownAt != nil {
		return false, nil
	}
	now := st.now()
	p.BrokenDownAt = &now
	st.proposals[id] = p
	return true, nil
}

func (m *Memory) InsertSuggestion(_ context.Context, arg repo.InsertSuggestionParams) (repo.Suggestion, error) {
	st, unlock, err := m.begin("InsertSuggestion")
	if err != nil {
		return repo.Suggestion{}, err
	}
	defer unlock()
	for _, s := range st.suggestions {
		if s.ProposalID == arg.ProposalID && s.Position == arg.Position {
			return repo.Suggestion{}, repo.ErrDuplicate
		}
	}
	s := repo.Suggestion{
		ID:         uuid.New(),
		ProposalID: arg.ProposalID,
		SquadID:    arg.SquadID,
		Type:       arg.Type,
		Payload:    arg.Payload,
		Position:   arg.Position,
		Status:     "pending",
		CreatedAt:  st.now(),
	}
	st.suggestions[s.ID] = s
	return s, nil
}

func queueOrder(a, b repo.Suggestion) bool {
	if a.ProposalID == b.ProposalID {
		return a.Position < b.Position
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (m *Memory) ListSuggestions(_ context.Context, squadID uuid.UUID, status string) ([]repo.Suggestion, error) {
	st, unlock, err := m.begin("ListSuggestions")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.suggestions, func(s repo.Suggestion) bool {
		return s.SquadID == squadID && (status == "" || s.Status == status)
	}), queueOrder), nil
}

func (m *Memory) ListSuggestionsByProposal(_ context.Context, proposalID uuid.UUID) ([]repo.Suggestion, error) {
	st, unlock, err := m.begin("ListSuggestionsByProposal")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.suggestions, func(s repo.Suggestion) bool { return s.ProposalID == proposalID }), queueOrder), nil
}

func (m *Memory) GetSuggestion(_ context.Context, squadID, id uuid.UUID) (repo.Suggestion, error) {
	st, unlock, err := m.begin("GetSuggestion")
	if err != nil {
		return repo.Suggestion{}, err
	}
	defer unlock()
	s, ok := st.suggestions[id]
	if !ok || s.SquadID != squadID {
		return repo.Suggestion{}, repo.ErrNotFound
	}
	return s, nil
}

func (m *Memory) GetSuggestionForUpdate(ctx context.Context, squadID, id uuid.UUID) (repo.Suggestion, error) {
	return m.GetSuggestion(ctx, squadID, id)
}

func (m *Memory) ResolveSuggestion(_ context.Context, arg repo.ResolveSuggestionParams) (repo.Suggestion, error) {
	st, unlock, err := m.begin("ResolveSuggestion")
	if err != nil {
		return repo.Suggestion{}, err
	}
	defer unlock()
	s, ok := st.suggestions[arg.ID]
	if !ok || s.Status != "pending" {
		return repo.Suggestion{}, repo.ErrNotFound
	}
	now := st.now()
	s.Status = arg.Status
	if len(arg.Payload) > 0 {
		s.Payload = arg.Payload
	}
	s.RejectionReason = arg.RejectionReason
	s.ResolvedBy = arg.ResolvedBy
	s.ResolvedAt = &now
	st.suggestions[s.ID] = s
	return s, nil
}
