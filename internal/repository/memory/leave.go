package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
)

type balanceRepository struct {
	*Store
}

// Balances returns the store's leave.BalanceRepository.
func (s *Store) Balances() leave.BalanceRepository {
	return balanceRepository{s}
}

func balanceKey(staffID string, year int) string {
	return fmt.Sprintf("%s|%d", staffID, year)
}

// GetOrCreate implements leave.BalanceRepository.
func (s balanceRepository) GetOrCreate(ctx context.Context, seed leave.Balance) (leave.Balance, error) {
	defer s.lockWrite(ctx)()

	if err := s.fault("GetOrCreateBalance"); err != nil {
		return leave.Balance{}, err
	}
	key := balanceKey(seed.StaffID, seed.Year)
	if b, ok := s.data.balances[key]; ok {
		return b, nil
	}
	seed.ID = newID()
	now := time.Now()
	seed.CreatedAt, seed.UpdatedAt = now, now
	s.data.balances[key] = seed
	return seed, nil
}

// Update implements leave.BalanceRepository.
func (s balanceRepository) Update(ctx context.Context, balance leave.Balance) error {
	defer s.lockWrite(ctx)()

	if err := s.fault("UpdateBalance"); err != nil {
		return err
	}
	key := balanceKey(balance.StaffID, balance.Year)
	if _, ok := s.data.balances[key]; !ok {
		return fmt.Errorf("leave balance %s not found", key)
	}
	balance.UpdatedAt = time.Now()
	s.data.balances[key] = balance
	return nil
}

type applicationRepository struct {
	*Store
}

// Applications returns the store's leave.ApplicationRepository.
func (s *Store) Applications() leave.ApplicationRepository {
	return applicationRepository{s}
}

func cloneApplication(app leave.Application) leave.Application {
	app.RequestedDates = slices.Clone(app.RequestedDates)
	app.ApprovedDates = slices.Clone(app.ApprovedDates)
	app.PaidLeaveDates = slices.Clone(app.PaidLeaveDates)
	app.RejectedDates = slices.Clone(app.RejectedDates)
	app.MedicalDocuments = slices.Clone(app.MedicalDocuments)
	return app
}

// Create implements leave.ApplicationRepository.
func (s applicationRepository) Create(ctx context.Context, app leave.Application) (leave.Application, error) {
	defer s.lockWrite(ctx)()

	if app.ID == "" {
		app.ID = newID()
	}
	now := time.Now()
	app.CreatedAt, app.UpdatedAt = now, now
	s.data.applications[app.ID] = cloneApplication(app)
	return cloneApplication(app), nil
}

// GetByID implements leave.ApplicationRepository.
func (s applicationRepository) GetByID(ctx context.Context, id string) (leave.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.data.applications[id]
	if !ok {
		return leave.Application{}, leave.ErrApplicationNotFound
	}
	return cloneApplication(app), nil
}

// GetByIDForUpdate implements leave.ApplicationRepository. Transactions are
// already serialized, so it is a plain read.
func (s applicationRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.Application, error) {
	return s.GetByID(ctx, id)
}

// Update implements leave.ApplicationRepository.
func (s applicationRepository) Update(ctx context.Context, app leave.Application) error {
	defer s.lockWrite(ctx)()

	if err := s.fault("UpdateApplication"); err != nil {
		return err
	}
	existing, ok := s.data.applications[app.ID]
	if !ok {
		return leave.ErrApplicationNotFound
	}
	app.CreatedAt = existing.CreatedAt
	app.UpdatedAt = time.Now()
	s.data.applications[app.ID] = cloneApplication(app)
	return nil
}

// List implements leave.ApplicationRepository.
func (s applicationRepository) List(ctx context.Context, filter leave.ListFilter) ([]leave.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []leave.Application
	for _, app := range s.data.applications {
		if filter.StaffID != nil && app.StaffID != *filter.StaffID {
			continue
		}
		if filter.Status != nil && string(app.Status) != *filter.Status {
			continue
		}
		if filter.LeaveType != nil && string(app.LeaveType) != *filter.LeaveType {
			continue
		}
		// Date filters select applications overlapping the range.
		if filter.StartDate != nil && app.EndDate < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && app.StartDate > *filter.EndDate {
			continue
		}
		matched = append(matched, app)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return []leave.Application{}, total, nil
	}
	end := min(offset+limit, len(matched))

	result := make([]leave.Application, 0, end-offset)
	for _, app := range matched[offset:end] {
		result = append(result, cloneApplication(app))
	}
	return result, total, nil
}

// ListGranted implements leave.ApplicationRepository.
func (s applicationRepository) ListGranted(ctx context.Context, staffIDs []string, from, to string) ([]leave.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []leave.Application
	for _, app := range s.data.applications {
		if !app.Status.Granted() || !slices.Contains(staffIDs, app.StaffID) {
			continue
		}
		if app.EndDate < from || app.StartDate > to {
			continue
		}
		result = append(result, cloneApplication(app))
	}
	return result, nil
}

// ExpirePending implements leave.ApplicationRepository.
func (s applicationRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	defer s.lockWrite(ctx)()

	var count int64
	for id, app := range s.data.applications {
		if app.Status != leave.StatusPending || !app.Expired(now) {
			continue
		}
		app.Status = leave.StatusExpired
		app.UpdatedAt = now
		s.data.applications[id] = app
		count++
	}
	return count, nil
}
