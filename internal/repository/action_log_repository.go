package repository

import (
	"context"

	"debate-tab/internal/models"
)

// CreateActionLog stores an action log entry
func (r *Repository) CreateActionLog(ctx context.Context, entry *models.ActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListActionLogs retrieves a page of a tournament's action log, newest first
func (r *Repository) ListActionLogs(ctx context.Context, tournamentID uint, limit, offset int) ([]*models.ActionLog, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ActionLog{}).
		Where("tournament_id = ?", tournamentID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var logs []*models.ActionLog
	err = r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
