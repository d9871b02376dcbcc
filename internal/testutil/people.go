package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"

	"swapiloader/internal/people"
)

// MemoryRepo is an in-memory people.Repository.
type MemoryRepo struct {
	mu           sync.Mutex
	records      []people.Record
	nextID       int
	resets       int
	openSessions int
	maxSessions  int
	earlyOpen    bool
	resetErr     error
	commitErrs   map[int]error
}

var _ people.Repository = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{commitErrs: make(map[int]error)}
}

// FailResetWith makes ResetSchema return err.
func (m *MemoryRepo) FailResetWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetErr = err
}

// FailCommitFor makes any commit containing sourceID return err.
func (m *MemoryRepo) FailCommitFor(sourceID int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitErrs[sourceID] = err
}

func (m *MemoryRepo) ResetSchema(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.records = nil
	m.resets++
	return nil
}

func (m *MemoryRepo) OpenSession(ctx context.Context) (people.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resets == 0 {
		m.earlyOpen = true
	}
	m.openSessions++
	m.maxSessions = max(m.maxSessions, m.openSessions)
	return &memorySession{repo: m}, nil
}

func (m *MemoryRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

// List returns records ordered by source id.
func (m *MemoryRepo) List(ctx context.Context) ([]people.Record, error) {
	m.mu.Lock()
	out := slices.Clone(m.records)
	m.mu.Unlock()

	slices.SortFunc(out, func(a, b people.Record) int { return a.SourceID - b.SourceID })
	return out, nil
}

func (m *MemoryRepo) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// OpenSessions is the number of sessions not yet closed.
func (m *MemoryRepo) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openSessions
}

// MaxSessions is the peak number of concurrently open sessions.
func (m *MemoryRepo) MaxSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxSessions
}

// OpenedBeforeReset reports whether a session was opened before the first reset.
func (m *MemoryRepo) OpenedBeforeReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.earlyOpen
}

type memorySession struct {
	repo    *MemoryRepo
	pending []*people.Record
	closed  bool
}

func (s *memorySession) Add(rec *people.Record) {
	s.pending = append(s.pending, rec)
}

func (s *memorySession) Commit(ctx context.Context) error {
	if s.closed {
		return errors.New("session closed")
	}
	m := s.repo
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range s.pending {
		if err := m.commitErrs[p.SourceID]; err != nil {
			s.pending = nil
			return err
		}
	}
	for _, p := range s.pending {
		m.nextID++
		p.ID = m.nextID
		m.records = append(m.records, *p)
	}
	s.pending = nil
	return nil
}

func (s *memorySession) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pending = nil
	s.repo.mu.Lock()
	s.repo.openSessions--
	s.repo.mu.Unlock()
}
