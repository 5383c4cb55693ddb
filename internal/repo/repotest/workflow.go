package repotest

import (
	"context"

	"github.com/google/uuid"

	"github.com/squadsvirtuais/api/internal/repo"
)

func newestFirst(a, b repo.ProblemStatement) bool { return a.CreatedAt.After(b.CreatedAt) }

func (m *Memory) ListProblemStatements(_ context.Context, workspaceID uuid.UUID) ([]repo.ProblemStatement, error) {
	st, unlock, err := m.begin("ListProblemStatements")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.problems, func(p repo.ProblemStatement) bool { return p.WorkspaceID == workspaceID }), newestFirst), nil
}

func (m *Memory) GetProblemStatement(_ context.Context, id uuid.UUID) (repo.ProblemStatement, error) {
	st, unlock, err := m.begin("GetProblemStatement")
	if err != nil {
		return repo.ProblemStatement{}, err
	}
	defer unlock()
	p, ok := st.problems[id]
	if !ok {
		return repo.ProblemStatement{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *Memory) GetLatestProblemStatementBySquad(_ context.Context, squadID uuid.UUID) (repo.ProblemStatement, error) {
	st, unlock, err := m.begin("GetLatestProblemStatementBySquad")
	if err != nil {
		return repo.ProblemStatement{}, err
	}
	defer unlock()
	found := sortBy(values(st.problems, func(p repo.ProblemStatement) bool {
		return p.SquadID != nil && *p.SquadID == squadID
	}), newestFirst)
	if len(found) == 0 {
		return repo.ProblemStatement{}, repo.ErrNotFound
	}
	return found[0], nil
}

func (m *Memory) CreateProblemStatement(_ context.Context, arg repo.CreateProblemStatementParams) (repo.ProblemStatement, error) {
	st, unlock, err := m.begin("CreateProblemStatement")
	if err != nil {
		return repo.ProblemStatement{}, err
	}
	defer unlock()
	now := st.now()
	p := repo.ProblemStatement{
		ID:             uuid.New(),
		WorkspaceID:    arg.WorkspaceID,
		SquadID:        arg.SquadID,
		Title:          arg.Title,
		Narrative:      arg.Narrative,
		SuccessMetrics: nonNil(arg.SuccessMetrics),
		Constraints:    nonNil(arg.Constraints),
		Assumptions:    nonNil(arg.Assumptions),
		OpenQuestions:  nonNil(arg.OpenQuestions),
		CreatedBy:      arg.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	st.problems[p.ID] = p
	return p, nil
}

func (m *Memory) UpdateProblemStatement(_ context.Context, arg repo.UpdateProblemStatementParams) (repo.ProblemStatement, error) {
	st, unlock, err := m.begin("UpdateProblemStatement")
	if err != nil {
		return repo.ProblemStatement{}, err
	}
	defer unlock()
	p, ok := st.problems[arg.ID]
	if !ok {
		return repo.ProblemStatement{}, repo.ErrNotFound
	}
	if arg.SetSquad {
		p.SquadID = arg.SquadID
	}
	p.Title = coalesce(arg.Title, p.Title)
	p.Narrative = coalesce(arg.Narrative, p.Narrative)
	p.SuccessMetrics = sliceOr(arg.SuccessMetrics, p.SuccessMetrics)
	p.Constraints = sliceOr(arg.Constraints, p.Constraints)
	p.Assumptions = sliceOr(arg.Assumptions, p.Assumptions)
	p.OpenQuestions = sliceOr(arg.OpenQuestions, p.OpenQuestions)
	p.UpdatedAt = st.now()
	st.problems[p.ID] = p
	return p, nil
}

func (m *Memory) DeleteProblemStatement(_ context.Context, id uuid.UUID) error {
	st, unlock, err := m.begin("DeleteProblemStatement")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := st.problems[id]; !ok {
		return repo.ErrNotFound
	}
	delete(st.problems, id)
	return nil
}

func (m *Memory) AppendOpenQuestion(_ context.Context, id uuid.UUID, question string) (repo.ProblemStatement, error) {
	st, unlock, err := m.begin("AppendOpenQuestion")
	if err != nil {
		return repo.ProblemStatement{}, err
	}
	defer unlock()
	p, ok := st.problems[id]
	if !ok {
		return repo.ProblemStatement{}, repo.ErrNotFound
	}
	p.OpenQuestions = append(nonNil(p.OpenQuestions), question)
	p.UpdatedAt = st.now()
	st.problems[id] = p
	return p, nil
}

func (m *Memory) ListPhases(_ context.Context, squadID uuid.UUID) ([]repo.SquadPhase, error) {
	st, unlock, err := m.begin("ListPhases")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.phases, func(p repo.SquadPhase) bool { return p.SquadID == squadID }),
		func(a, b repo.SquadPhase) bool { return a.Position < b.Position }), nil
}

func (m *Memory) AppendPhase(_ context.Context, arg repo.AppendPhaseParams) (repo.SquadPhase, error) {
	st, unlock, err := m.begin("AppendPhase")
	if err != nil {
		return repo.SquadPhase{}, err
	}
	defer unlock()
	position := 0
	for _, p := range st.phases {
		if p.SquadID == arg.SquadID && p.Position > position {
			position = p.Position
		}
	}
	phase := repo.SquadPhase{
		ID:          uuid.New(),
		SquadID:     arg.SquadID,
		Name:        arg.Name,
		Description: arg.Description,
		Objectives:  nonNil(arg.Objectives),
		Position:    position + 1,
		CreatedAt:   st.now(),
	}
	st.phases[phase.ID] = phase
	return phase, nil
}

func (m *Memory) DeletePhase(_ context.Context, squadID, id uuid.UUID) error {
	st, unlock, err := m.begin("DeletePhase")
	if err != nil {
		return err
	}
	defer unlock()
	p, ok := st.phases[id]
	if !ok || p.SquadID != squadID {
		return repo.ErrNotFound
	}
	delete(st.phases, id)
	return nil
}

func (m *Memory) ListSections(_ context.Context, squadID uuid.UUID) ([]repo.SquadSection, error) {
	st, unlock, err := m.begin("ListSections")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sortBy(values(st.sections, func(s repo.SquadSection) bool { return s.SquadID == squadID }),
		func(a, b repo.SquadSection) bool { return a.Kind < b.Kind }), nil
}

func (m *Memory) UpsertSection(_ context.Context, arg repo.UpsertSectionParams) (repo.SquadSection, error) {
	st, unlock, err := m.begin("UpsertSection")
	if err != nil {
		return repo.SquadSection{}, err
	}
	defer unlock()
	section := repo.SquadSection{
		SquadID:   arg.SquadID,
		Kind:      arg.Kind,
		Summary:   arg.Summary,
		Details:   nonNil(arg.Details),
		UpdatedBy: arg.UpdatedBy,
		UpdatedAt: st.now(),
	}
	st.sections[sectionKey{arg.SquadID, arg.Kind}] = section
	return section, nil
}

func (m *Memory) InsertDecision(_ context.Context, arg repo.InsertDecisionParams) (repo.Decision, error) {
	st, unlock, err := m.begin("InsertDecision")
	if err != nil {
		return repo.Decision{}, err
	}
	defer unlock()
	d := repo.Decision{
		ID:            uuid.New(),
		SquadID:       arg.SquadID,
		Title:         arg.Title,
		Decision:      arg.Decision,
		CreatedBy:     arg.CreatedBy,
		CreatedByRole: arg.CreatedByRole,
		CreatedAt:     st.now(),
	}
	st.decisions = append(st.decisions, d)
	return d, nil
}

func (m *Memory) ListDecisions(_ context.Context, squadID uuid.UUID) ([]repo.Decision, error) {
	st, unlock, err := m.begin("ListDecisions")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := []repo.Decision{}
	for i := len(st.decisions) - 1; i >= 0; i-- {
		if st.decisions[i].SquadID == squadID {
			out = append(out, st.decisions[i])
		}
	}
	return out, nil
}

func (m *Memory) MaxMatrixVersion(_ context.Context, squadID uuid.UUID) (int, error) {
	st, unlock, err := m.begin("MaxMatrixVersion")
	if err != nil {
		return 0, err
	}
	defer unlock()
	current := 0
	for _, v := range st.matrix {
		if v.SquadID == squadID && v.Version > current {
			current = v.Version
		}
	}
	return current, nil
}

func (m *Memory) InsertMatrixVersion(_ context.Context, arg repo.InsertMatrixVersionParams) (repo.MatrixVersion, error) {
	st, unlock, err := m.begin("InsertMatrixVersion")
	if err != nil {
		return repo.MatrixVersion{}, err
	}
	defer unlock()
	for _, v := range st.matrix {
		if v.SquadID == arg.SquadID && v.Version == arg.Version {
			return repo.MatrixVersion{}, repo.ErrDuplicate
		}
	}
	v := repo.MatrixVersion{
		ID:          uuid.New(),
		SquadID:     arg.SquadID,
		Version:     arg.Version,
		Description: arg.Description,
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   st.now(),
		Entries:     make([]repo.MatrixEntry, 0, len(arg.Entries)),
	}
	for _, e := range arg.Entries {
		e.ID = uuid.New()
		v.Entries = append(v.Entries, e)
	}
	st.matrix = append(st.matrix, v)
	return v, nil
}

func (m *Memory) ListMatrixVersions(_ context.Context, squadID uuid.UUID) ([]repo.MatrixVersion, error) {
	st, unlock, err := m.begin("ListMatrixVersions")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := []repo.MatrixVersion{}
	for _, v := range st.matrix {
		if v.SquadID == squadID {
			v.Entries = []repo.MatrixEntry{}
			out = append(out, v)
		}
	}
	return sortBy(out, func(a, b repo.MatrixVersion) bool { return a.Version > b.Version }), nil
}

func (m *Memory) GetMatrixVersion(_ context.Context, squadID uuid.UUID, version int) (repo.MatrixVersion, error) {
	st, unlock, err := m.begin("GetMatrixVersion")
	if err != nil {
		return repo.MatrixVersion{}, err
	}
	defer unlock()
	var found *repo.MatrixVersion
	for i := range st.matrix {
		v := st.matrix[i]
		if v.SquadID != squadID {
			continue
		}
		if version > 0 && v.Version == version {
			found = &v
			break
		}
		if version <= 0 && (found == nil || v.Version > found.Version) {
			found = &v
		}
	}
	if found == nil {
		return repo.MatrixVersion{}, repo.ErrNotFound
	}
	out := *found
	out.Entries = append([]repo.MatrixEntry{}, found.Entries...)
	return out, nil
}
