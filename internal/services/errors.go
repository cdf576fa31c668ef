package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDrawReleased         = errors.New("draw is already released")
	ErrDrawNotConfirmed     = errors.New("draw is not confirmed")
	ErrInvalidDrawStatus    = errors.New("invalid draw status transition")
	ErrAllocationInProgress = errors.New("allocation already in progress for this round")
	ErrInvalidAllocation    = errors.New("invalid allocation")
	ErrDivisionsInfeasible  = errors.New("teams do not fit into the available divisions")
	ErrInvalidDivisions     = errors.New("invalid division assignment")
	ErrInvalidStartTime     = errors.New("start time must be HH:MM")
	ErrInvalidAvailability  = errors.New("invalid availability")
	ErrInvalidVenues        = errors.New("invalid venue assignment")
	ErrInvalidTestScore     = errors.New("test score must be between 0 and 10")
)

// notFound maps gorm's missing-record error onto ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
