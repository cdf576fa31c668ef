package repository

import (
	"context"
	"fmt"
	"sort"

	"debate-tab/internal/models"

	"gorm.io/gorm"
)

// GetTeams retrieves every team of a tournament ordered by ID
func (r *Repository) GetTeams(ctx context.Context, tournamentID uint) ([]*models.Team, error) {
	var teams []*models.Team
	err := r.db.WithContext(ctx).
		Preload("Institution").
		Where("tournament_id = ?", tournamentID).
		Order("id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// GetVenueGroups retrieves the venue groups of a tournament ordered by ID
func (r *Repository) GetVenueGroups(ctx context.Context, tournamentID uint) ([]*models.VenueGroup, error) {
	var groups []*models.VenueGroup
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("id ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// GetTeamVenuePreferences retrieves team preferences ordered by team then priority
func (r *Repository) GetTeamVenuePreferences(ctx context.Context, tournamentID uint) ([]models.TeamVenuePreference, error) {
	var prefs []models.TeamVenuePreference
	err := r.db.WithContext(ctx).
		Select("team_venue_preferences.*").
		Joins("JOIN teams ON teams.id = team_venue_preferences.team_id").
		Where("teams.tournament_id = ?", tournamentID).
		Order("team_venue_preferences.team_id ASC, team_venue_preferences.priority ASC").
		Find(&prefs).Error
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// GetDivisions retrieves the divisions of a tournament ordered by venue group then ID
func (r *Repository) GetDivisions(ctx context.Context, tournamentID uint) ([]*models.Division, error) {
	var divisions []*models.Division
	err := r.db.WithContext(ctx).
		Preload("VenueGroup").
		Where("tournament_id = ?", tournamentID).
		Order("venue_group_id ASC, id ASC").
		Find(&divisions).Error
	if err != nil {
		return nil, err
	}
	return divisions, nil
}

// CountTeamsByDivision counts the teams assigned to each division of a tournament
func (r *Repository) CountTeamsByDivision(ctx context.Context, tournamentID uint) (map[uint]int, error) {
	var rows []struct {
		DivisionID uint
		Count      int
	}
	err := r.db.WithContext(ctx).Model(&models.Team{}).
		Select("division_id, COUNT(*) AS count").
		Where("tournament_id = ? AND division_id IS NOT NULL", tournamentID).
		Group("division_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.DivisionID] = row.Count
	}
	return counts, nil
}

// ReplaceDivisions drops the tournament's divisions, creates divisions and
// assigns teams. assignments maps a team ID to an index into divisions.
func (r *Repository) ReplaceDivisions(
	ctx context.Context,
	tournamentID uint,
	divisions []*models.Division,
	assignments map[uint]int,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Team{}).
			Where("tournament_id = ?", tournamentID).
			Update("division_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", tournamentID).Delete(&models.Division{}).Error; err != nil {
			return err
		}
		if len(divisions) > 0 {
			if err := tx.Create(&divisions).Error; err != nil {
				return err
			}
		}

		for _, teamID := range sortedKeys(assignments) {
			idx := assignments[teamID]
			if idx < 0 || idx >= len(divisions) {
				return fmt.Errorf("team %d assigned to unknown division index %d", teamID, idx)
			}
			if err := assignTeam(tx, tournamentID, teamID, divisions[idx].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// AssignTeamDivisions moves teams into divisions. assignments maps a team ID to a division ID.
func (r *Repository) AssignTeamDivisions(ctx context.Context, tournamentID uint, assignments map[uint]uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, teamID := range sortedKeys(assignments) {
			if err := assignTeam(tx, tournamentID, teamID, assignments[teamID]); err != nil {
				return err
			}
		}
		return nil
	})
}

func assignTeam(tx *gorm.DB, tournamentID, teamID, divisionID uint) error {
	result := tx.Model(&models.Team{}).
		Where("id = ? AND tournament_id = ?", teamID, tournamentID).
		Update("division_id", divisionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("team %d: %w", teamID, gorm.ErrRecordNotFound)
	}
	return nil
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
