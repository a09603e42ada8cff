package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
)

type payrollRepository struct {
	*Store
}

// Payroll returns the store's payroll.PayrollRepository.
func (s *Store) Payroll() payroll.PayrollRepository {
	return payrollRepository{s}
}

func (s payrollRepository) findSettlement(staffID, period string) (payroll.Settlement, bool) {
	for _, st := range s.data.settlements {
		if st.StaffID == staffID && st.Period == period {
			return st, true
		}
	}
	return payroll.Settlement{}, false
}

// UpsertSettlement implements payroll.PayrollRepository.
func (s payrollRepository) UpsertSettlement(ctx context.Context, st payroll.Settlement) (payroll.Settlement, bool, error) {
	defer s.lockWrite(ctx)()

	if err := s.fault("UpsertSettlement"); err != nil {
		return payroll.Settlement{}, false, err
	}

	now := time.Now()
	if st.IsPaid {
		st.PaidAt = &now
	}

	existing, ok := s.findSettlement(st.StaffID, st.Period)
	if !ok {
		st.ID = newID()
		st.CreatedAt, st.UpdatedAt = now, now
		s.data.settlements[st.ID] = st
		return st, true, nil
	}

	st.ID = existing.ID
	if st.IsPaid && existing.PaidAt != nil {
		st.PaidAt = existing.PaidAt
	}
	st.CreatedBy = existing.CreatedBy
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = now
	s.data.settlements[st.ID] = st
	return st, false, nil
}

// GetSettlement implements payroll.PayrollRepository.
func (s payrollRepository) GetSettlement(ctx context.Context, staffID, period string) (payroll.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.findSettlement(staffID, period)
	if !ok {
		return payroll.Settlement{}, payroll.ErrSettlementNotFound
	}
	return st, nil
}

// ListSettlements implements payroll.PayrollRepository.
func (s payrollRepository) ListSettlements(ctx context.Context, period string, staffIDs []string) ([]payroll.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []payroll.Settlement
	for _, st := range s.data.settlements {
		if st.Period == period && slices.Contains(staffIDs, st.StaffID) {
			result = append(result, st)
		}
	}
	return result, nil
}

// ListAttendanceMarks implements payroll.PayrollRepository.
func (s payrollRepository) ListAttendanceMarks(ctx context.Context, staffIDs []string, from, to time.Time) ([]payroll.AttendanceMark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []payroll.AttendanceMark
	for _, d := range s.data.days {
		if !slices.Contains(staffIDs, d.StaffID) || d.Date.Before(from) || !d.Date.Before(to) {
			continue
		}
		result = append(result, payroll.AttendanceMark{
			StaffID: d.StaffID,
			Date:    d.Date.In(from.Location()).Format(clock.DateLayout),
			Status:  d.Status,
		})
	}
	return result, nil
}
