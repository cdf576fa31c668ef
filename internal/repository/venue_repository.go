package repository

import (
	"context"

	"debate-tab/internal/models"

	"gorm.io/gorm"
)

// GetRoundBySeq retrieves the round of a tournament with the given sequence number
func (r *Repository) GetRoundBySeq(ctx context.Context, tournamentID uint, seq int) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Where("tournament_id = ? AND seq = ?", tournamentID, seq).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetVenues retrieves the venues of a tournament, highest priority first
func (r *Repository) GetVenues(ctx context.Context, tournamentID uint) ([]*models.Venue, error) {
	var venues []*models.Venue
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("priority DESC, id ASC").
		Find(&venues).Error
	if err != nil {
		return nil, err
	}
	return venues, nil
}

// GetRoundDebates retrieves every debate of a round, byes included, with its venue
func (r *Repository) GetRoundDebates(ctx context.Context, roundID uint) ([]*models.Debate, error) {
	var debates []*models.Debate
	err := r.db.WithContext(ctx).
		Preload("Venue").
		Where("round_id = ?", roundID).
		Order("id ASC").
		Find(&debates).Error
	if err != nil {
		return nil, err
	}
	return debates, nil
}

// AssignDebateVenues sets the venue of each debate in venues; a nil venue clears it
func (r *Repository) AssignDebateVenues(ctx context.Context, roundID uint, venues map[uint]*uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, debateID := range sortedKeys(venues) {
			result := tx.Model(&models.Debate{}).
				Where("id = ? AND round_id = ?", debateID, roundID).
				Update("venue_id", venues[debateID])
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
