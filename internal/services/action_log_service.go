package services

import (
	"context"
	"log"

	"debate-tab/internal/models"
	"debate-tab/internal/repository"
)

const (
	defaultLogPageSize = 50
	maxLogPageSize     = 200
)

type ActionLogService struct {
	repo *repository.Repository
}

func NewActionLogService(repo *repository.Repository) *ActionLogService {
	return &ActionLogService{repo: repo}
}

// Log records an admin action. A failed write is logged and returned but
// never undoes the action it describes.
func (s *ActionLogService) Log(
	ctx context.Context,
	tournamentID uint,
	roundID *uint,
	actionType models.ActionType,
	actor string,
	details map[string]interface{},
) error {
	entry := &models.ActionLog{
		TournamentID: tournamentID,
		RoundID:      roundID,
		Type:         actionType,
		Actor:        actor,
		Details:      models.JSONB(details),
	}
	if err := s.repo.CreateActionLog(ctx, entry); err != nil {
		log.Printf("[ActionLog] Failed to record %s for tournament %d: %v", actionType, tournamentID, err)
		return err
	}
	return nil
}

// List returns a page of the tournament's action log, newest first
func (s *ActionLogService) List(ctx context.Context, tournamentID uint, limit, offset int) ([]*models.ActionLog, int64, error) {
	if limit <= 0 {
		limit = defaultLogPageSize
	}
	if limit > maxLogPageSize {
		limit = maxLogPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListActionLogs(ctx, tournamentID, limit, offset)
}
