package services

import (
	"context"
	"fmt"
	"log"

	"debate-tab/internal/models"
	"debate-tab/internal/repository"

	"github.com/shopspring/decimal"
)

var maxTestScore = decimal.NewFromInt(10)

type AdjudicatorService struct {
	repo *repository.Repository
	logs *ActionLogService
}

func NewAdjudicatorService(repo *repository.Repository, logs *ActionLogService) *AdjudicatorService {
	return &AdjudicatorService{repo: repo, logs: logs}
}

// SetTestScore updates an adjudicator's test score and records the change.
// roundID, when set, must be a round of the same tournament.
func (s *AdjudicatorService) SetTestScore(
	ctx context.Context,
	tournamentID, adjudicatorID uint,
	score decimal.Decimal,
	roundID *uint,
	actor string,
) (*models.Adjudicator, error) {
	if score.IsNegative() || score.GreaterThan(maxTestScore) {
		return nil, ErrInvalidTestScore
	}
	score = score.Round(2)

	adj, err := s.repo.GetAdjudicator(ctx, tournamentID, adjudicatorID)
	if err != nil {
		return nil, notFound(err, "adjudicator")
	}
	if roundID != nil {
		round, err := s.repo.GetRound(ctx, *roundID)
		if err != nil || round.TournamentID != tournamentID {
			return nil, fmt.Errorf("round %d: %w", *roundID, ErrNotFound)
		}
	}

	previous := adj.TestScore
	if err := s.repo.SetTestScore(ctx, adj.ID, score, roundID); err != nil {
		return nil, fmt.Errorf("failed to set test score: %w", err)
	}

	log.Printf("[Adjudicators] %s test score %s -> %s", adj.Name, previous, score)
	s.logs.Log(ctx, tournamentID, roundID, models.ActionTestScoreEdit, actor, map[string]interface{}{
		"adjudicator_id": adj.ID,
		"from":           previous.String(),
		"to":             score.String(),
	})

	adj.TestScore = score
	return adj, nil
}

// SetNote replaces an adjudicator's notes
func (s *AdjudicatorService) SetNote(
	ctx context.Context,
	tournamentID, adjudicatorID uint,
	note, actor string,
) (*models.Adjudicator, error) {
	adj, err := s.repo.GetAdjudicator(ctx, tournamentID, adjudicatorID)
	if err != nil {
		return nil, notFound(err, "adjudicator")
	}
	if err := s.repo.UpdateAdjudicatorNotes(ctx, adj.ID, note); err != nil {
		return nil, fmt.Errorf("failed to update notes: %w", err)
	}

	s.logs.Log(ctx, tournamentID, nil, models.ActionAdjudicatorNoteEdit, actor, map[string]interface{}{
		"adjudicator_id": adj.ID,
	})

	adj.Notes = note
	return adj, nil
}

// ListScores lists every adjudicator of the tournament with their score and debate count
func (s *AdjudicatorService) ListScores(ctx context.Context, tournamentID uint) ([]models.AdjudicatorScore, error) {
	if _, err := s.repo.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err, "tournament")
	}
	adjs, err := s.repo.GetAdjudicators(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load adjudicators: %w", err)
	}
	debates, err := s.repo.CountDebatesByAdjudicator(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count debates: %w", err)
	}

	scores := make([]models.AdjudicatorScore, 0, len(adjs))
	for _, a := range adjs {
		scores = append(scores, models.AdjudicatorScore{
			ID:        a.ID,
			Name:      a.DisplayName(),
			TestScore: a.TestScore,
			IsTrainee: a.IsTrainee,
			Breaking:  a.Breaking,
			Notes:     a.Notes,
			Debates:   debates[a.ID],
		})
	}
	return scores, nil
}
