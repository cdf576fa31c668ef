package services

import (
	"context"
	"fmt"
	"log"

	"debate-tab/internal/allocation"
	"debate-tab/internal/models"
	"debate-tab/internal/repository"
)

type DivisionService struct {
	repo         *repository.Repository
	logs         *ActionLogService
	divisionSize int
}

func NewDivisionService(repo *repository.Repository, logs *ActionLogService, divisionSize int) *DivisionService {
	return &DivisionService{repo: repo, logs: logs, divisionSize: divisionSize}
}

// CreateDivisionAllocation rebuilds the tournament's divisions from its venue
// groups and assigns every team to one of them. Nothing is changed when the
// teams do not fit.
func (s *DivisionService) CreateDivisionAllocation(
	ctx context.Context,
	tournamentID uint,
	actor string,
) (*models.DivisionAllocationResponse, error) {
	if _, err := s.repo.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err, "tournament")
	}
	groups, err := s.repo.GetVenueGroups(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue groups: %w", err)
	}
	teams, err := s.repo.GetTeams(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	prefs, err := s.repo.GetTeamVenuePreferences(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue preferences: %w", err)
	}

	divisions := s.planDivisions(tournamentID, groups)
	slots := make([]allocation.DivisionSlot, len(divisions))
	for i, d := range divisions {
		slots[i] = allocation.DivisionSlot{ID: uint(i + 1), VenueGroupID: d.VenueGroupID, Capacity: d.Capacity}
	}

	// prefs arrive ordered by team then priority
	preferences := make(map[uint][]uint, len(teams))
	for _, p := range prefs {
		preferences[p.TeamID] = append(preferences[p.TeamID], p.VenueGroupID)
	}
	input := make([]allocation.DivisionTeam, len(teams))
	for i, t := range teams {
		input[i] = allocation.DivisionTeam{ID: t.ID, Preferences: preferences[t.ID]}
	}

	result := allocation.AllocateDivisions(input, slots)
	if !result.Success {
		log.Printf("[Divisions] Tournament %d: %d teams do not fit into %d divisions", tournamentID, len(teams), len(divisions))
		return nil, ErrDivisionsInfeasible
	}

	assignments := make(map[uint]int, len(result.Assignments))
	for teamID, slotID := range result.Assignments {
		assignments[teamID] = int(slotID) - 1
	}
	if err := s.repo.ReplaceDivisions(ctx, tournamentID, divisions, assignments); err != nil {
		return nil, fmt.Errorf("failed to save divisions: %w", err)
	}

	log.Printf("[Divisions] Tournament %d: %d teams in %d divisions, %d preference hits",
		tournamentID, len(teams), len(divisions), result.PreferenceHits)
	s.logs.Log(ctx, tournamentID, nil, models.ActionDivisionsAllocate, actor, map[string]interface{}{
		"divisions":       len(divisions),
		"teams":           len(teams),
		"preference_hits": result.PreferenceHits,
	})

	counts := make(map[uint]int, len(divisions))
	for _, idx := range assignments {
		counts[divisions[idx].ID]++
	}
	resp := &models.DivisionAllocationResponse{
		Divisions:      make([]models.DivisionSummary, 0, len(divisions)),
		Assigned:       len(assignments),
		PreferenceHits: result.PreferenceHits,
	}
	for _, d := range divisions {
		resp.Divisions = append(resp.Divisions, divisionSummary(d, counts[d.ID]))
	}
	return resp, nil
}

// planDivisions lays out divisionSize-team divisions over each venue group's capacity
func (s *DivisionService) planDivisions(tournamentID uint, groups []*models.VenueGroup) []*models.Division {
	var divisions []*models.Division
	for _, g := range groups {
		if g.TeamCapacity <= 0 {
			continue
		}
		count := max(1, g.TeamCapacity/s.divisionSize)
		capacity := min(s.divisionSize, g.TeamCapacity)
		for i := 0; i < count; i++ {
			divisions = append(divisions, &models.Division{
				TournamentID: tournamentID,
				VenueGroupID: g.ID,
				Name:         fmt.Sprintf("%s %d", g.Name, i+1),
				Capacity:     capacity,
			})
		}
	}
	return divisions
}

// SaveDivisions moves teams into the given divisions. The resulting team
// count of every division must stay within its capacity.
func (s *DivisionService) SaveDivisions(
	ctx context.Context,
	tournamentID uint,
	req *models.SaveDivisionsRequest,
	actor string,
) ([]models.VenueGroupSummary, error) {
	if _, err := s.repo.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err, "tournament")
	}
	divisions, err := s.repo.GetDivisions(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load divisions: %w", err)
	}
	teams, err := s.repo.GetTeams(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	byID := make(map[uint]*models.Division, len(divisions))
	for _, d := range divisions {
		byID[d.ID] = d
	}
	current := make(map[uint]*uint, len(teams))
	for _, t := range teams {
		current[t.ID] = t.DivisionID
	}

	counts := make(map[uint]int, len(divisions))
	for teamID, divisionID := range current {
		if _, moved := req.Assignments[teamID]; !moved && divisionID != nil {
			counts[*divisionID]++
		}
	}
	for teamID, divisionID := range req.Assignments {
		if _, ok := current[teamID]; !ok {
			return nil, fmt.Errorf("%w: team %d is not in this tournament", ErrInvalidDivisions, teamID)
		}
		if _, ok := byID[divisionID]; !ok {
			return nil, fmt.Errorf("%w: unknown division %d", ErrInvalidDivisions, divisionID)
		}
		counts[divisionID]++
	}
	for id, n := range counts {
		if d, ok := byID[id]; ok && n > d.Capacity {
			return nil, fmt.Errorf("%w: division %s holds %d teams, capacity %d", ErrInvalidDivisions, d.Name, n, d.Capacity)
		}
	}

	if err := s.repo.AssignTeamDivisions(ctx, tournamentID, req.Assignments); err != nil {
		return nil, fmt.Errorf("failed to save divisions: %w", err)
	}

	s.logs.Log(ctx, tournamentID, nil, models.ActionDivisionsSave, actor, map[string]interface{}{
		"teams": len(req.Assignments),
	})
	return s.ListDivisions(ctx, tournamentID)
}

// ListDivisions returns each venue group with its divisions and team counts
func (s *DivisionService) ListDivisions(ctx context.Context, tournamentID uint) ([]models.VenueGroupSummary, error) {
	if _, err := s.repo.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err, "tournament")
	}
	groups, err := s.repo.GetVenueGroups(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue groups: %w", err)
	}
	divisions, err := s.repo.GetDivisions(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load divisions: %w", err)
	}
	counts, err := s.repo.CountTeamsByDivision(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}

	summaries := make([]models.VenueGroupSummary, 0, len(groups))
	index := make(map[uint]int, len(groups))
	for _, g := range groups {
		index[g.ID] = len(summaries)
		summaries = append(summaries, models.VenueGroupSummary{
			ID:        g.ID,
			Name:      g.Name,
			Divisions: []models.DivisionSummary{},
		})
	}
	for _, d := range divisions {
		i, ok := index[d.VenueGroupID]
		if !ok {
			continue
		}
		summaries[i].Divisions = append(summaries[i].Divisions, divisionSummary(d, counts[d.ID]))
		summaries[i].TotalDivs++
		summaries[i].TotalTeams += counts[d.ID]
	}
	return summaries, nil
}

func divisionSummary(d *models.Division, teams int) models.DivisionSummary {
	return models.DivisionSummary{
		ID:           d.ID,
		Name:         d.Name,
		VenueGroupID: d.VenueGroupID,
		Capacity:     d.Capacity,
		TeamsCount:   teams,
	}
}
