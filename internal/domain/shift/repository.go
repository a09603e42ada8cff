package shift

import (
	"context"
	"fmt"
	"time"
)

type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (Shift, error)
	// GetActiveAssignment returns nil when no assignment covers at.
	GetActiveAssignment(ctx context.Context, staffID string, at time.Time) (*Assignment, error)
	IsOffDate(ctx context.Context, shiftID string, date time.Time) (bool, error)
}

// ActiveShift resolves the shift a staff member works at the given instant.
// It returns nil, nil when the staff has no covering assignment.
func ActiveShift(ctx context.Context, repo ShiftRepository, staffID string, at time.Time) (*Shift, error) {
	assignment, err := repo.GetActiveAssignment(ctx, staffID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to get active shift assignment: %w", err)
	}
	if assignment == nil {
		return nil, nil
	}

	sh, err := repo.GetByID(ctx, assignment.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return &sh, nil
}
