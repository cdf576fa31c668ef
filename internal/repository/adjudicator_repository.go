package repository

import (
	"context"

	"debate-tab/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetAdjudicator retrieves an adjudicator of a tournament
func (r *Repository) GetAdjudicator(ctx context.Context, tournamentID, adjudicatorID uint) (*models.Adjudicator, error) {
	var adj models.Adjudicator
	err := r.db.WithContext(ctx).
		Preload("Institution").
		Where("id = ? AND tournament_id = ?", adjudicatorID, tournamentID).
		First(&adj).Error
	if err != nil {
		return nil, err
	}
	return &adj, nil
}

// GetAdjudicators retrieves every adjudicator of a tournament ordered by ID
func (r *Repository) GetAdjudicators(ctx context.Context, tournamentID uint) ([]*models.Adjudicator, error) {
	var adjs []*models.Adjudicator
	err := r.db.WithContext(ctx).
		Preload("Institution").
		Where("tournament_id = ?", tournamentID).
		Order("id ASC").
		Find(&adjs).Error
	if err != nil {
		return nil, err
	}
	return adjs, nil
}

// GetAvailableAdjudicators retrieves the adjudicators marked available in a round
func (r *Repository) GetAvailableAdjudicators(ctx context.Context, roundID uint) ([]*models.Adjudicator, error) {
	var adjs []*models.Adjudicator
	err := r.db.WithContext(ctx).
		Select("adjudicators.*").
		Joins("JOIN active_adjudicators ON active_adjudicators.adjudicator_id = adjudicators.id").
		Where("active_adjudicators.round_id = ?", roundID).
		Preload("Institution").
		Order("adjudicators.id ASC").
		Find(&adjs).Error
	if err != nil {
		return nil, err
	}
	return adjs, nil
}

// GetTeamConflicts retrieves the adjudicator-team conflicts of a tournament
func (r *Repository) GetTeamConflicts(ctx context.Context, tournamentID uint) ([]models.AdjudicatorConflict, error) {
	var conflicts []models.AdjudicatorConflict
	err := r.db.WithContext(ctx).
		Select("adjudicator_conflicts.*").
		Joins("JOIN adjudicators ON adjudicators.id = adjudicator_conflicts.adjudicator_id").
		Where("adjudicators.tournament_id = ?", tournamentID).
		Order("adjudicator_conflicts.id ASC").
		Find(&conflicts).Error
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// GetInstitutionConflicts retrieves the adjudicator-institution conflicts of a tournament
func (r *Repository) GetInstitutionConflicts(ctx context.Context, tournamentID uint) ([]models.AdjudicatorInstitutionConflict, error) {
	var conflicts []models.AdjudicatorInstitutionConflict
	err := r.db.WithContext(ctx).
		Select("adjudicator_institution_conflicts.*").
		Joins("JOIN adjudicators ON adjudicators.id = adjudicator_institution_conflicts.adjudicator_id").
		Where("adjudicators.tournament_id = ?", tournamentID).
		Order("adjudicator_institution_conflicts.id ASC").
		Find(&conflicts).Error
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

// SetTestScore updates an adjudicator's test score and appends a history row
func (r *Repository) SetTestScore(ctx context.Context, adjudicatorID uint, score decimal.Decimal, roundID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Adjudicator{}).
			Where("id = ?", adjudicatorID).
			Update("test_score", score).Error; err != nil {
			return err
		}
		return tx.Create(&models.AdjudicatorTestScoreHistory{
			AdjudicatorID: adjudicatorID,
			RoundID:       roundID,
			Score:         score,
		}).Error
	})
}

// GetTestScoreHistory retrieves an adjudicator's test score changes, newest first
func (r *Repository) GetTestScoreHistory(ctx context.Context, adjudicatorID uint) ([]models.AdjudicatorTestScoreHistory, error) {
	var history []models.AdjudicatorTestScoreHistory
	err := r.db.WithContext(ctx).
		Where("adjudicator_id = ?", adjudicatorID).
		Order("id DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// UpdateAdjudicatorNotes replaces an adjudicator's notes
func (r *Repository) UpdateAdjudicatorNotes(ctx context.Context, adjudicatorID uint, notes string) error {
	return r.db.WithContext(ctx).Model(&models.Adjudicator{}).
		Where("id = ?", adjudicatorID).
		Update("notes", notes).Error
}

// CountDebatesByAdjudicator counts the debates each adjudicator of a tournament sat on
func (r *Repository) CountDebatesByAdjudicator(ctx context.Context, tournamentID uint) (map[uint]int, error) {
	var rows []struct {
		AdjudicatorID uint
		Count         int
	}
	err := r.db.WithContext(ctx).
		Table("debate_adjudicators").
		Select("debate_adjudicators.adjudicator_id, COUNT(*) AS count").
		Joins("JOIN adjudicators ON adjudicators.id = debate_adjudicators.adjudicator_id").
		Where("adjudicators.tournament_id = ?", tournamentID).
		Group("debate_adjudicators.adjudicator_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.AdjudicatorID] = row.Count
	}
	return counts, nil
}
