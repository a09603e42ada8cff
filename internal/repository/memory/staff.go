package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/shopspring/decimal"
)

// AddStaff stores a staff member, assigning an ID when empty.
func (s *Store) AddStaff(member staff.Staff) staff.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()

	if member.ID == "" {
		member.ID = newID()
	}
	now := time.Now()
	member.CreatedAt, member.UpdatedAt = now, now
	s.data.staff[member.ID] = member
	return member
}

type staffRepository struct {
	*Store
}

// Staff returns the store's staff.StaffRepository.
func (s *Store) Staff() staff.StaffRepository {
	return staffRepository{s}
}

// GetByID implements staff.StaffRepository.
func (s staffRepository) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.data.staff[id]
	if !ok {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	return member, nil
}

// ListActive implements staff.StaffRepository.
func (s staffRepository) ListActive(ctx context.Context, branchID *string) ([]staff.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []staff.Staff
	for _, member := range s.data.staff {
		if !member.IsActive {
			continue
		}
		if branchID != nil && (member.BranchID == nil || *member.BranchID != *branchID) {
			continue
		}
		result = append(result, member)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// UpdateSalary implements staff.StaffRepository.
func (s staffRepository) UpdateSalary(ctx context.Context, id string, salary decimal.Decimal) error {
	defer s.lockWrite(ctx)()

	if err := s.fault("UpdateSalary"); err != nil {
		return err
	}
	member, ok := s.data.staff[id]
	if !ok {
		return staff.ErrStaffNotFound
	}
	member.Salary = salary
	member.UpdatedAt = time.Now()
	s.data.staff[id] = member
	return nil
}
