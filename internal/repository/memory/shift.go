package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
)

// AddShift stores a shift, assigning an ID when empty.
func (s *Store) AddShift(sh shift.Shift) shift.Shift {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sh.ID == "" {
		sh.ID = newID()
	}
	now := time.Now()
	sh.CreatedAt, sh.UpdatedAt = now, now
	s.data.shifts[sh.ID] = sh
	return sh
}

// AssignShift stores an active, open-ended assignment starting on startDate.
func (s *Store) AssignShift(staffID, shiftID string, startDate time.Time) shift.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	a := shift.Assignment{
		ID:        newID(),
		StaffID:   staffID,
		ShiftID:   shiftID,
		StartDate: startDate,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data.assignments = append(s.data.assignments, a)
	return a
}

// AddOffDate marks date as a day off for every staff on the shift.
func (s *Store) AddOffDate(shiftID string, date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.offDates[shiftID] == nil {
		s.data.offDates[shiftID] = make(map[string]bool)
	}
	s.data.offDates[shiftID][date.Format(clock.DateLayout)] = true
}

type shiftRepository struct {
	*Store
}

// Shifts returns the store's shift.ShiftRepository.
func (s *Store) Shifts() shift.ShiftRepository {
	return shiftRepository{s}
}

// GetByID implements shift.ShiftRepository.
func (s shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.data.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return sh, nil
}

// GetActiveAssignment implements shift.ShiftRepository. The latest starting
// assignment wins when several cover at.
func (s shiftRepository) GetActiveAssignment(ctx context.Context, staffID string, at time.Time) (*shift.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *shift.Assignment
	for _, a := range s.data.assignments {
		if a.StaffID != staffID || !a.Covers(at) {
			continue
		}
		if found == nil || a.StartDate.After(found.StartDate) {
			a := a
			found = &a
		}
	}
	return found, nil
}

// IsOffDate implements shift.ShiftRepository.
func (s shiftRepository) IsOffDate(ctx context.Context, shiftID string, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data.offDates[shiftID][date.Format(clock.DateLayout)], nil
}
