package repository

import (
	"context"

	"debate-tab/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// HistoryRow is one adjudicator placement in an earlier round
type HistoryRow struct {
	AdjudicatorID uint
	AffTeamID     uint
	NegTeamID     uint
}

// GetTournament retrieves a tournament by ID
func (r *Repository) GetTournament(ctx context.Context, tournamentID uint) (*models.Tournament, error) {
	var tournament models.Tournament
	err := r.db.WithContext(ctx).First(&tournament, tournamentID).Error
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

// GetRound retrieves a round by ID
func (r *Repository) GetRound(ctx context.Context, roundID uint) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).First(&round, roundID).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// TransitionDrawStatus moves a round to status to if it is currently in one of from.
// Returns false when the round was not in an allowed state.
func (r *Repository) TransitionDrawStatus(
	ctx context.Context,
	roundID uint,
	from []models.DrawStatus,
	to models.DrawStatus,
) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Round{}).
		Where("id = ? AND draw_status IN ?", roundID, from).
		Update("draw_status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetRoundStartsAt updates the start time of a round
func (r *Repository) SetRoundStartsAt(ctx context.Context, round *models.Round) error {
	return r.db.WithContext(ctx).Model(round).Update("starts_at", round.StartsAt).Error
}

// GetDebate retrieves a debate of a round
func (r *Repository) GetDebate(ctx context.Context, roundID, debateID uint) (*models.Debate, error) {
	var debate models.Debate
	err := r.db.WithContext(ctx).
		Where("id = ? AND round_id = ?", debateID, roundID).
		First(&debate).Error
	if err != nil {
		return nil, err
	}
	return &debate, nil
}

// GetDraw retrieves the non-bye debates of a round with their teams
func (r *Repository) GetDraw(ctx context.Context, roundID uint) ([]*models.Debate, error) {
	var debates []*models.Debate
	err := r.db.WithContext(ctx).
		Preload("AffTeam.Institution").
		Preload("NegTeam.Institution").
		Where("round_id = ? AND bye = ?", roundID, false).
		Order("id ASC").
		Find(&debates).Error
	if err != nil {
		return nil, err
	}
	return debates, nil
}

// UpdateDebateImportance sets the importance of a debate
func (r *Repository) UpdateDebateImportance(ctx context.Context, debateID uint, importance int) error {
	return r.db.WithContext(ctx).Model(&models.Debate{}).
		Where("id = ?", debateID).
		Update("importance", importance).Error
}

// GetHistory retrieves every placement made in rounds of the tournament before round
func (r *Repository) GetHistory(ctx context.Context, round *models.Round) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := r.db.WithContext(ctx).
		Table("debate_adjudicators").
		Select("debate_adjudicators.adjudicator_id, debates.aff_team_id, debates.neg_team_id").
		Joins("JOIN debates ON debates.id = debate_adjudicators.debate_id").
		Joins("JOIN rounds ON rounds.id = debates.round_id").
		Where("rounds.tournament_id = ? AND rounds.seq < ? AND debates.bye = ?", round.TournamentID, round.Seq, false).
		Order("debate_adjudicators.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetDebateAdjudicators retrieves the current panels of a round
func (r *Repository) GetDebateAdjudicators(ctx context.Context, roundID uint) ([]*models.DebateAdjudicator, error) {
	var rows []*models.DebateAdjudicator
	err := r.db.WithContext(ctx).
		Select("debate_adjudicators.*").
		Joins("JOIN debates ON debates.id = debate_adjudicators.debate_id").
		Where("debates.round_id = ?", roundID).
		Preload("Adjudicator.Institution").
		Order("debate_adjudicators.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceRoundAllocation swaps the panels of the round's non-bye debates for rows and records run
func (r *Repository) ReplaceRoundAllocation(
	ctx context.Context,
	roundID uint,
	rows []models.DebateAdjudicator,
	run *models.AllocationRun,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var debateIDs []uint
		if err := tx.Model(&models.Debate{}).Where("round_id = ? AND bye = ?", roundID, false).Pluck("id", &debateIDs).Error; err != nil {
			return err
		}
		if err := replacePanels(tx, debateIDs, rows); err != nil {
			return err
		}
		if run != nil {
			return tx.Create(run).Error
		}
		return nil
	})
}

// ReplaceDebatePanels swaps the panels of the given debates for rows
func (r *Repository) ReplaceDebatePanels(ctx context.Context, debateIDs []uint, rows []models.DebateAdjudicator) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replacePanels(tx, debateIDs, rows)
	})
}

func replacePanels(tx *gorm.DB, debateIDs []uint, rows []models.DebateAdjudicator) error {
	if len(debateIDs) > 0 {
		if err := tx.Where("debate_id IN ?", debateIDs).Delete(&models.DebateAdjudicator{}).Error; err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// GetLatestAllocationRun retrieves the most recent automatic allocation of a round
func (r *Repository) GetLatestAllocationRun(ctx context.Context, roundID uint) (*models.AllocationRun, error) {
	var run models.AllocationRun
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("created_at DESC").
		First(&run).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// SetAvailability replaces the set of adjudicators available in a round
func (r *Repository) SetAvailability(ctx context.Context, roundID uint, adjudicatorIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("round_id = ?", roundID).Delete(&models.ActiveAdjudicator{}).Error; err != nil {
			return err
		}
		if len(adjudicatorIDs) == 0 {
			return nil
		}
		rows := make([]models.ActiveAdjudicator, 0, len(adjudicatorIDs))
		for _, id := range adjudicatorIDs {
			rows = append(rows, models.ActiveAdjudicator{RoundID: roundID, AdjudicatorID: id})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

// GetAvailability retrieves the IDs of adjudicators available in a round
func (r *Repository) GetAvailability(ctx context.Context, roundID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.ActiveAdjudicator{}).
		Where("round_id = ?", roundID).
		Order("adjudicator_id ASC").
		Pluck("adjudicator_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
