// Package memory keeps every repository in process memory. It backs the
// service tests and the API when no DATABASE_URL is configured.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/leave"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/domain/staff"
	"github.com/google/uuid"
)

type txKey struct{}

type state struct {
	staff        map[string]staff.Staff
	shifts       map[string]shift.Shift
	assignments  []shift.Assignment
	offDates     map[string]map[string]bool // shift ID -> YYYY-MM-DD
	events       []attendance.Event
	days         map[string]attendance.Day
	balances     map[string]leave.Balance // staffID|year
	applications map[string]leave.Application
	settlements  map[string]payroll.Settlement
}

func newState() state {
	return state{
		staff:        make(map[string]staff.Staff),
		shifts:       make(map[string]shift.Shift),
		offDates:     make(map[string]map[string]bool),
		days:         make(map[string]attendance.Day),
		balances:     make(map[string]leave.Balance),
		applications: make(map[string]leave.Application),
		settlements:  make(map[string]payroll.Settlement),
	}
}

// clone copies every table. Stored values are never mutated in place, so
// copying the containers is enough.
func (s state) clone() state {
	offDates := make(map[string]map[string]bool, len(s.offDates))
	for k, v := range s.offDates {
		offDates[k] = maps.Clone(v)
	}
	return state{
		staff:        maps.Clone(s.staff),
		shifts:       maps.Clone(s.shifts),
		assignments:  slices.Clone(s.assignments),
		offDates:     offDates,
		events:       slices.Clone(s.events),
		days:         maps.Clone(s.days),
		balances:     maps.Clone(s.balances),
		applications: maps.Clone(s.applications),
		settlements:  maps.Clone(s.settlements),
	}
}

// Store implements every repository interface plus database.Transactor.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state

	faults map[string]error
}

func NewStore() *Store {
	return &Store{
		data:   newState(),
		faults: make(map[string]error),
	}
}

// WithinTransaction runs fn against a snapshot that is restored when fn
// fails or panics. Transactions are serialized with each other and with
// writes made outside a transaction; nested calls join the outer one.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// lockWrite takes the locks a write needs and returns the matching unlock.
// A write outside a transaction waits for any running transaction so a
// rollback cannot discard it.
func (s *Store) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) restore(snapshot state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// InjectFault makes the next call of the named repository method fail with err.
func (s *Store) InjectFault(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method] = err
}

// fault must be called with mu held.
func (s *Store) fault(method string) error {
	if err, ok := s.faults[method]; ok {
		delete(s.faults, method)
		return err
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}
