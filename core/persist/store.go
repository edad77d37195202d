// Package persist defines the durable, day-keyed store of resolved
// appointments.
package persist

import (
	"context"
	"sync"

	"github.com/kilianp07/docksched/core/model"
)

// Store keeps the resolved set of each day. Save replaces the whole day.
type Store interface {
	Load(ctx context.Context, day string) ([]model.Appointment, error)
	Save(ctx context.Context, day string, items []model.Appointment) error
	Close() error
}

// MemoryStore is an in-process Store used when no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[string][]model.Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: map[string][]model.Appointment{}}
}

func (s *MemoryStore) Load(_ context.Context, day string) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.days[day]
	out := make([]model.Appointment, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, day string, items []model.Appointment) error {
	cp := make([]model.Appointment, len(items))
	copy(cp, items)
	s.mu.Lock()
	s.days[day] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
