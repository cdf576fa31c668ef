package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"debate-tab/internal/allocation"
	"debate-tab/internal/models"
	"debate-tab/internal/repository"

	"github.com/google/uuid"
)

type AllocationService struct {
	repo           *repository.Repository
	allocator      allocation.Allocator
	ownInstitution bool
	logs           *ActionLogService

	mu      sync.Mutex
	running map[uint]struct{} // rounds with an allocation write in flight
}

func NewAllocationService(
	repo *repository.Repository,
	opts allocation.Options,
	logs *ActionLogService,
) *AllocationService {
	return &AllocationService{
		repo:           repo,
		allocator:      allocation.NewHungarianAllocator(opts),
		ownInstitution: opts.OwnInstitutionConflict,
		logs:           logs,
		running:        make(map[uint]struct{}),
	}
}

// lockRound marks the round busy until release is called. Entries only
// live while a write is in flight. ok is false when the round is already busy.
func (s *AllocationService) lockRound(roundID uint) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.running[roundID]; busy {
		return nil, false
	}
	s.running[roundID] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.running, roundID)
		s.mu.Unlock()
	}, true
}

// CreateAllocation runs the automatic allocator for a confirmed draw and
// replaces every panel of the round with the result.
func (s *AllocationService) CreateAllocation(ctx context.Context, roundID uint, actor string) (*models.AllocationResponse, error) {
	release, ok := s.lockRound(roundID)
	if !ok {
		return nil, ErrAllocationInProgress
	}
	defer release()

	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}
	switch round.DrawStatus {
	case models.DrawStatusConfirmed:
	case models.DrawStatusReleased:
		return nil, ErrDrawReleased
	default:
		return nil, ErrDrawNotConfirmed
	}

	debates, err := s.repo.GetDraw(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draw: %w", err)
	}
	adjs, err := s.repo.GetAvailableAdjudicators(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load available adjudicators: %w", err)
	}
	input, err := s.buildInput(ctx, round, debates, adjs)
	if err != nil {
		return nil, err
	}

	result, err := s.allocator.Allocate(input)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate adjudicators: %w", err)
	}

	var rows []models.DebateAdjudicator
	for _, p := range result.Panels {
		rows = append(rows, panelRows(p.DebateID, p.Chair, p.Panelists, p.Trainees)...)
	}
	run := &models.AllocationRun{
		ID:       uuid.New(),
		RoundID:  roundID,
		Debates:  len(debates),
		Unfilled: len(result.Unfilled),
		Unused:   len(result.Unused),
		Cost:     result.Cost,
		Actor:    actor,
	}
	if err := s.repo.ReplaceRoundAllocation(ctx, roundID, rows, run); err != nil {
		return nil, fmt.Errorf("failed to save allocation: %w", err)
	}

	log.Printf("[Allocation] Round %d: allocated %d debates (%d unfilled, %d unused), cost %.2f, run %s",
		roundID, len(debates), len(result.Unfilled), len(result.Unused), result.Cost, run.ID)

	s.logs.Log(ctx, round.TournamentID, &round.ID, models.ActionAdjudicatorsAutoAllocate, actor, map[string]interface{}{
		"run_id":   run.ID.String(),
		"debates":  len(debates),
		"unfilled": len(result.Unfilled),
		"unused":   len(result.Unused),
	})

	byID := make(map[uint]*models.Adjudicator, len(adjs))
	for _, a := range adjs {
		byID[a.ID] = a
	}
	resp := newAllocationResponse(debates)
	for _, p := range result.Panels {
		panel := resp.Debates[p.DebateID]
		if p.Chair != nil {
			ref := models.NewAdjudicatorRef(byID[*p.Chair])
			panel.Chair = &ref
		}
		for _, id := range p.Panelists {
			panel.Panel = append(panel.Panel, models.NewAdjudicatorRef(byID[id]))
		}
		for _, id := range p.Trainees {
			panel.Trainees = append(panel.Trainees, models.NewAdjudicatorRef(byID[id]))
		}
		resp.Debates[p.DebateID] = panel
	}
	for _, id := range result.Unused {
		resp.Unused = append(resp.Unused, models.NewAdjudicatorRef(byID[id]))
	}
	resp.Unfilled = result.Unfilled
	resp.RunID = &run.ID
	return resp, nil
}

// GetAllocation returns the current panels of a round and the available
// adjudicators that are not on any of them.
func (s *AllocationService) GetAllocation(ctx context.Context, roundID uint) (*models.AllocationResponse, error) {
	if _, err := s.repo.GetRound(ctx, roundID); err != nil {
		return nil, notFound(err, "round")
	}

	debates, err := s.repo.GetDraw(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draw: %w", err)
	}
	rows, err := s.repo.GetDebateAdjudicators(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load panels: %w", err)
	}
	available, err := s.repo.GetAvailableAdjudicators(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load available adjudicators: %w", err)
	}

	resp := newAllocationResponse(debates)
	placed := make(map[uint]bool, len(rows))
	for _, row := range rows {
		placed[row.AdjudicatorID] = true
		panel, ok := resp.Debates[row.DebateID]
		if !ok || row.Adjudicator == nil {
			continue
		}
		ref := models.NewAdjudicatorRef(row.Adjudicator)
		switch row.Position {
		case models.PositionChair:
			panel.Chair = &ref
		case models.PositionPanelist:
			panel.Panel = append(panel.Panel, ref)
		case models.PositionTrainee:
			panel.Trainees = append(panel.Trainees, ref)
		}
		resp.Debates[row.DebateID] = panel
	}
	for _, a := range available {
		if !placed[a.ID] {
			resp.Unused = append(resp.Unused, models.NewAdjudicatorRef(a))
		}
	}
	for _, d := range debates {
		if resp.Debates[d.ID].Chair == nil {
			resp.Unfilled = append(resp.Unfilled, d.ID)
		}
	}

	run, err := s.repo.GetLatestAllocationRun(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load allocation run: %w", err)
	}
	if run != nil {
		resp.RunID = &run.ID
	}
	return resp, nil
}

// SaveAllocation replaces the panels of the debates listed in req after
// checking that the result is a valid allocation for the round.
func (s *AllocationService) SaveAllocation(
	ctx context.Context,
	roundID uint,
	req *models.SaveAllocationRequest,
	actor string,
) (*models.AllocationResponse, error) {
	if err := s.savePanels(ctx, roundID, req, actor); err != nil {
		return nil, err
	}
	return s.GetAllocation(ctx, roundID)
}

func (s *AllocationService) savePanels(
	ctx context.Context,
	roundID uint,
	req *models.SaveAllocationRequest,
	actor string,
) error {
	release, ok := s.lockRound(roundID)
	if !ok {
		return ErrAllocationInProgress
	}
	defer release()

	rows, round, err := s.validatePanels(ctx, roundID, req)
	if err != nil {
		return err
	}

	debateIDs := make([]uint, 0, len(req.Debates))
	for _, d := range req.Debates {
		debateIDs = append(debateIDs, d.DebateID)
	}
	if err := s.repo.ReplaceDebatePanels(ctx, debateIDs, rows); err != nil {
		return fmt.Errorf("failed to save allocation: %w", err)
	}

	log.Printf("[Allocation] Round %d: saved panels for %d debates", roundID, len(debateIDs))
	s.logs.Log(ctx, round.TournamentID, &round.ID, models.ActionAdjudicatorsSave, actor, map[string]interface{}{
		"debates": debateIDs,
	})
	return nil
}

func (s *AllocationService) validatePanels(
	ctx context.Context,
	roundID uint,
	req *models.SaveAllocationRequest,
) ([]models.DebateAdjudicator, *models.Round, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, nil, notFound(err, "round")
	}
	debates, err := s.repo.GetDraw(ctx, roundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load draw: %w", err)
	}
	adjs, err := s.repo.GetAdjudicators(ctx, round.TournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load adjudicators: %w", err)
	}
	existing, err := s.repo.GetDebateAdjudicators(ctx, roundID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load panels: %w", err)
	}
	checker, err := s.conflictChecker(ctx, round.TournamentID, adjs)
	if err != nil {
		return nil, nil, err
	}

	draw := make(map[uint]allocation.Debate, len(debates))
	for _, d := range debates {
		draw[d.ID] = toAllocationDebate(d)
	}
	known := make(map[uint]bool, len(adjs))
	for _, a := range adjs {
		known[a.ID] = true
	}

	listed := make(map[uint]bool, len(req.Debates))
	for _, d := range req.Debates {
		if _, ok := draw[d.DebateID]; !ok {
			return nil, nil, fmt.Errorf("%w: debate %d is not in round %d", ErrInvalidAllocation, d.DebateID, roundID)
		}
		if listed[d.DebateID] {
			return nil, nil, fmt.Errorf("%w: debate %d listed twice", ErrInvalidAllocation, d.DebateID)
		}
		listed[d.DebateID] = true
	}

	// adjudicators staying on debates the request leaves alone still count as used
	used := make(map[uint]uint)
	for _, row := range existing {
		if !listed[row.DebateID] {
			used[row.AdjudicatorID] = row.DebateID
		}
	}

	var rows []models.DebateAdjudicator
	for _, d := range req.Debates {
		panel := panelRows(d.DebateID, d.ChairID, d.PanelIDs, d.TraineeIDs)
		for _, row := range panel {
			id := row.AdjudicatorID
			if !known[id] {
				return nil, nil, fmt.Errorf("%w: unknown adjudicator %d", ErrInvalidAllocation, id)
			}
			if other, dup := used[id]; dup {
				return nil, nil, fmt.Errorf("%w: adjudicator %d is already on debate %d", ErrInvalidAllocation, id, other)
			}
			if checker.Conflicted(id, draw[d.DebateID]) {
				return nil, nil, fmt.Errorf("%w: adjudicator %d is conflicted with debate %d", ErrInvalidAllocation, id, d.DebateID)
			}
			used[id] = d.DebateID
		}
		rows = append(rows, panel...)
	}
	return rows, round, nil
}

// GetConflicts lists, per adjudicator, the teams they may not judge and the
// teams they judged in earlier rounds.
func (s *AllocationService) GetConflicts(ctx context.Context, roundID uint) (*models.ConflictsResponse, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}
	adjs, err := s.repo.GetAdjudicators(ctx, round.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjudicators: %w", err)
	}
	teams, err := s.repo.GetTeams(ctx, round.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	checker, err := s.conflictChecker(ctx, round.TournamentID, adjs)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.GetHistory(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	resp := &models.ConflictsResponse{
		Conflict: make(map[uint][]uint),
		History:  make(map[uint][]uint),
	}
	for _, a := range adjs {
		for _, t := range teams {
			if checker.ConflictedWithTeam(a.ID, allocation.Team{ID: t.ID, InstitutionID: t.InstitutionID}) {
				resp.Conflict[a.ID] = append(resp.Conflict[a.ID], t.ID)
			}
		}
	}

	seen := make(map[[2]uint]bool)
	addHistory := func(adjID, teamID uint) {
		key := [2]uint{adjID, teamID}
		if teamID == 0 || seen[key] {
			return
		}
		seen[key] = true
		resp.History[adjID] = append(resp.History[adjID], teamID)
	}
	for _, h := range history {
		addHistory(h.AdjudicatorID, h.AffTeamID)
		addHistory(h.AdjudicatorID, h.NegTeamID)
	}
	for id := range resp.History {
		ids := resp.History[id]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return resp, nil
}

func (s *AllocationService) buildInput(
	ctx context.Context,
	round *models.Round,
	debates []*models.Debate,
	adjs []*models.Adjudicator,
) (allocation.Input, error) {
	teamConflicts, err := s.repo.GetTeamConflicts(ctx, round.TournamentID)
	if err != nil {
		return allocation.Input{}, fmt.Errorf("failed to load conflicts: %w", err)
	}
	instConflicts, err := s.repo.GetInstitutionConflicts(ctx, round.TournamentID)
	if err != nil {
		return allocation.Input{}, fmt.Errorf("failed to load institution conflicts: %w", err)
	}
	history, err := s.repo.GetHistory(ctx, round)
	if err != nil {
		return allocation.Input{}, fmt.Errorf("failed to load history: %w", err)
	}

	var in allocation.Input
	for _, d := range debates {
		in.Debates = append(in.Debates, toAllocationDebate(d))
	}
	for _, a := range adjs {
		in.Adjudicators = append(in.Adjudicators, toAllocationAdjudicator(a))
	}
	for _, c := range teamConflicts {
		in.TeamConflicts = append(in.TeamConflicts, allocation.TeamConflict{AdjudicatorID: c.AdjudicatorID, TeamID: c.TeamID})
	}
	for _, c := range instConflicts {
		in.InstitutionConflicts = append(in.InstitutionConflicts, allocation.InstitutionConflict{
			AdjudicatorID: c.AdjudicatorID,
			InstitutionID: c.InstitutionID,
		})
	}
	for _, h := range history {
		in.History = append(in.History,
			allocation.Pairing{AdjudicatorID: h.AdjudicatorID, TeamID: h.AffTeamID},
			allocation.Pairing{AdjudicatorID: h.AdjudicatorID, TeamID: h.NegTeamID},
		)
	}
	return in, nil
}

func (s *AllocationService) conflictChecker(
	ctx context.Context,
	tournamentID uint,
	adjs []*models.Adjudicator,
) (*allocation.ConflictChecker, error) {
	teamConflicts, err := s.repo.GetTeamConflicts(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conflicts: %w", err)
	}
	instConflicts, err := s.repo.GetInstitutionConflicts(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load institution conflicts: %w", err)
	}

	pool := make([]allocation.Adjudicator, 0, len(adjs))
	for _, a := range adjs {
		pool = append(pool, toAllocationAdjudicator(a))
	}
	tc := make([]allocation.TeamConflict, 0, len(teamConflicts))
	for _, c := range teamConflicts {
		tc = append(tc, allocation.TeamConflict{AdjudicatorID: c.AdjudicatorID, TeamID: c.TeamID})
	}
	ic := make([]allocation.InstitutionConflict, 0, len(instConflicts))
	for _, c := range instConflicts {
		ic = append(ic, allocation.InstitutionConflict{AdjudicatorID: c.AdjudicatorID, InstitutionID: c.InstitutionID})
	}
	return allocation.NewConflictChecker(pool, tc, ic, s.ownInstitution), nil
}

func newAllocationResponse(debates []*models.Debate) *models.AllocationResponse {
	resp := &models.AllocationResponse{
		Debates: make(map[uint]models.DebatePanel, len(debates)),
		Unused:  []models.AdjudicatorRef{},
	}
	for _, d := range debates {
		resp.Debates[d.ID] = models.DebatePanel{
			Panel:    []models.AdjudicatorRef{},
			Trainees: []models.AdjudicatorRef{},
		}
	}
	return resp
}

func panelRows(debateID uint, chair *uint, panelists, trainees []uint) []models.DebateAdjudicator {
	var rows []models.DebateAdjudicator
	if chair != nil {
		rows = append(rows, models.DebateAdjudicator{DebateID: debateID, AdjudicatorID: *chair, Position: models.PositionChair})
	}
	for _, id := range panelists {
		rows = append(rows, models.DebateAdjudicator{DebateID: debateID, AdjudicatorID: id, Position: models.PositionPanelist})
	}
	for _, id := range trainees {
		rows = append(rows, models.DebateAdjudicator{DebateID: debateID, AdjudicatorID: id, Position: models.PositionTrainee})
	}
	return rows
}

func toAllocationDebate(d *models.Debate) allocation.Debate {
	out := allocation.Debate{ID: d.ID, Importance: d.Importance}
	if d.AffTeam != nil {
		out.Aff = allocation.Team{ID: d.AffTeam.ID, InstitutionID: d.AffTeam.InstitutionID}
	}
	if d.NegTeam != nil {
		out.Neg = allocation.Team{ID: d.NegTeam.ID, InstitutionID: d.NegTeam.InstitutionID}
	}
	return out
}

func toAllocationAdjudicator(a *models.Adjudicator) allocation.Adjudicator {
	return allocation.Adjudicator{
		ID:            a.ID,
		InstitutionID: a.InstitutionID,
		Score:         a.TestScore.InexactFloat64(),
		Trainee:       a.IsTrainee,
	}
}
