package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"debate-tab/internal/models"
	"debate-tab/internal/repository"
)

type DrawService struct {
	repo *repository.Repository
	logs *ActionLogService
	now  func() time.Time
}

func NewDrawService(repo *repository.Repository, logs *ActionLogService) *DrawService {
	return &DrawService{repo: repo, logs: logs, now: time.Now}
}

// ConfirmDraw marks a draft draw as confirmed
func (s *DrawService) ConfirmDraw(ctx context.Context, roundID uint, actor string) (*models.Round, error) {
	return s.transition(ctx, roundID, []models.DrawStatus{models.DrawStatusDraft}, models.DrawStatusConfirmed,
		models.ActionDrawConfirm, actor)
}

// ReleaseDraw publishes a confirmed draw
func (s *DrawService) ReleaseDraw(ctx context.Context, roundID uint, actor string) (*models.Round, error) {
	return s.transition(ctx, roundID, []models.DrawStatus{models.DrawStatusConfirmed}, models.DrawStatusReleased,
		models.ActionDrawRelease, actor)
}

// UnreleaseDraw takes a released draw back to confirmed
func (s *DrawService) UnreleaseDraw(ctx context.Context, roundID uint, actor string) (*models.Round, error) {
	return s.transition(ctx, roundID, []models.DrawStatus{models.DrawStatusReleased}, models.DrawStatusConfirmed,
		models.ActionDrawUnrelease, actor)
}

func (s *DrawService) transition(
	ctx context.Context,
	roundID uint,
	from []models.DrawStatus,
	to models.DrawStatus,
	action models.ActionType,
	actor string,
) (*models.Round, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}

	ok, err := s.repo.TransitionDrawStatus(ctx, roundID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update draw status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidDrawStatus, round.DrawStatus, to)
	}

	log.Printf("[Draw] Round %d: draw %s -> %s", roundID, round.DrawStatus, to)
	s.logs.Log(ctx, round.TournamentID, &round.ID, action, actor, map[string]interface{}{
		"from": string(round.DrawStatus),
		"to":   string(to),
	})

	round.DrawStatus = to
	return round, nil
}

// UpdateDebateImportance sets the importance of one debate of a round
func (s *DrawService) UpdateDebateImportance(
	ctx context.Context,
	roundID, debateID uint,
	importance int,
	actor string,
) (*models.Debate, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}
	debate, err := s.repo.GetDebate(ctx, roundID, debateID)
	if err != nil {
		return nil, notFound(err, "debate")
	}

	if err := s.repo.UpdateDebateImportance(ctx, debateID, importance); err != nil {
		return nil, fmt.Errorf("failed to update importance: %w", err)
	}

	s.logs.Log(ctx, round.TournamentID, &round.ID, models.ActionDebateImportanceEdit, actor, map[string]interface{}{
		"debate_id": debateID,
		"from":      debate.Importance,
		"to":        importance,
	})

	debate.Importance = importance
	return debate, nil
}

// SetAdjudicatorAvailability replaces the set of adjudicators available in a round
func (s *DrawService) SetAdjudicatorAvailability(
	ctx context.Context,
	roundID uint,
	adjudicatorIDs []uint,
	actor string,
) ([]uint, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}
	adjs, err := s.repo.GetAdjudicators(ctx, round.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjudicators: %w", err)
	}
	known := make(map[uint]bool, len(adjs))
	for _, a := range adjs {
		known[a.ID] = true
	}

	seen := make(map[uint]bool, len(adjudicatorIDs))
	ids := make([]uint, 0, len(adjudicatorIDs))
	for _, id := range adjudicatorIDs {
		if !known[id] {
			return nil, fmt.Errorf("%w: adjudicator %d is not in this tournament", ErrInvalidAvailability, id)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if err := s.repo.SetAvailability(ctx, roundID, ids); err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", err)
	}

	s.logs.Log(ctx, round.TournamentID, &round.ID, models.ActionAvailabilitySave, actor, map[string]interface{}{
		"count": len(ids),
	})
	return ids, nil
}

// CopyPreviousAvailability makes the adjudicators available in the
// previous round of the tournament available in this one
func (s *DrawService) CopyPreviousAvailability(ctx context.Context, roundID uint, actor string) ([]uint, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}
	prev, err := s.repo.GetRoundBySeq(ctx, round.TournamentID, round.Seq-1)
	if err != nil {
		return nil, notFound(err, "previous round")
	}

	ids, err := s.repo.GetAvailability(ctx, prev.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	if ids == nil {
		ids = []uint{}
	}
	if err := s.repo.SetAvailability(ctx, roundID, ids); err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", err)
	}

	log.Printf("[Draw] Round %d: copied %d available adjudicators from round %d", roundID, len(ids), prev.ID)
	s.logs.Log(ctx, round.TournamentID, &round.ID, models.ActionAvailabilitySave, actor, map[string]interface{}{
		"count":       len(ids),
		"copied_from": prev.ID,
	})
	return ids, nil
}

// GetAdjudicatorAvailability returns the IDs of adjudicators available in a round
func (s *DrawService) GetAdjudicatorAvailability(ctx context.Context, roundID uint) ([]uint, error) {
	if _, err := s.repo.GetRound(ctx, roundID); err != nil {
		return nil, notFound(err, "round")
	}
	ids, err := s.repo.GetAvailability(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability: %w", err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

// SetRoundStartTime sets the round to start at "HH:MM" on the current day
func (s *DrawService) SetRoundStartTime(ctx context.Context, roundID uint, startTime, actor string) (*models.Round, error) {
	parsed, err := time.Parse("15:04", startTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartTime, startTime)
	}

	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}

	now := s.now()
	startsAt := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	round.StartsAt = &startsAt
	if err := s.repo.SetRoundStartsAt(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to set start time: %w", err)
	}

	s.logs.Log(ctx, round.TournamentID, &round.ID, models.ActionRoundStartTimeSet, actor, map[string]interface{}{
		"start_time": startTime,
	})
	return round, nil
}

// SaveVenues places debates of the round in venues of the same tournament.
// Debates not listed keep their venue.
func (s *DrawService) SaveVenues(
	ctx context.Context,
	roundID uint,
	req *models.SaveVenuesRequest,
	actor string,
) ([]*models.Debate, error) {
	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, notFound(err, "round")
	}
	debates, err := s.repo.GetRoundDebates(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load debates: %w", err)
	}
	venues, err := s.repo.GetVenues(ctx, round.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load venues: %w", err)
	}

	inRound := make(map[uint]bool, len(debates))
	for _, d := range debates {
		inRound[d.ID] = true
	}
	known := make(map[uint]bool, len(venues))
	for _, v := range venues {
		known[v.ID] = true
	}

	assignments := make(map[uint]*uint, len(req.Debates))
	for _, d := range req.Debates {
		if !inRound[d.DebateID] {
			return nil, fmt.Errorf("%w: debate %d is not in this round", ErrInvalidVenues, d.DebateID)
		}
		if _, dup := assignments[d.DebateID]; dup {
			return nil, fmt.Errorf("%w: debate %d listed twice", ErrInvalidVenues, d.DebateID)
		}
		if d.VenueID != nil && !known[*d.VenueID] {
			return nil, fmt.Errorf("%w: venue %d is not in this tournament", ErrInvalidVenues, *d.VenueID)
		}
		assignments[d.DebateID] = d.VenueID
	}

	if err := s.repo.AssignDebateVenues(ctx, roundID, assignments); err != nil {
		return nil, fmt.Errorf("failed to save venues: %w", err)
	}

	s.logs.Log(ctx, round.TournamentID, &round.ID, models.ActionVenuesSave, actor, map[string]interface{}{
		"debates": len(assignments),
	})

	debates, err = s.repo.GetRoundDebates(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load debates: %w", err)
	}
	return debates, nil
}
