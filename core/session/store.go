// Package session keeps operator edits that have not reached durable
// storage yet, keyed by day. It replaces any process-wide cache: callers
// own a Store and pass it explicitly.
package session

import (
	"sort"
	"sync"

	"github.com/kilianp07/docksched/core/model"
)

// Store is the day-keyed session cache.
type Store interface {
	Edits(day string) []model.Appointment
	Put(day string, a model.Appointment)
	Delete(day, id string)
	Deleted(day string) map[string]bool
	Clear(day string)
	Reset()
	Days() []string
}

type dayState struct {
	edits   []model.Appointment
	index   map[string]int
	deleted map[string]bool
}

func newDayState() *dayState {
	return &dayState{index: map[string]int{}, deleted: map[string]bool{}}
}

// MemoryStore is a mutex guarded in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[string]*dayState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: map[string]*dayState{}}
}

func (s *MemoryStore) day(key string) *dayState {
	d, ok := s.days[key]
	if !ok {
		d = newDayState()
		s.days[key] = d
	}
	return d
}

// Edits returns a copy of the day's edited appointments in first-edit order.
func (s *MemoryStore) Edits(day string) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.days[day]
	if !ok {
		return nil
	}
	out := make([]model.Appointment, len(d.edits))
	copy(out, d.edits)
	return out
}

// Put records a as the latest session copy of its id.
func (s *MemoryStore) Put(day string, a model.Appointment) {
	s.mu.Lock()
	d := s.day(day)
	if i, ok := d.index[a.ID]; ok {
		d.edits[i] = a
	} else {
		d.index[a.ID] = len(d.edits)
		d.edits = append(d.edits, a)
	}
	s.mu.Unlock()
}

// Delete drops any session copy of id and tombstones it for the day.
func (s *MemoryStore) Delete(day, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.day(day)
	d.deleted[id] = true
	i, ok := d.index[id]
	if !ok {
		return
	}
	d.edits = append(d.edits[:i], d.edits[i+1:]...)
	delete(d.index, id)
	for j := i; j < len(d.edits); j++ {
		d.index[d.edits[j].ID] = j
	}
}

// Deleted returns a copy of the day's tombstones.
func (s *MemoryStore) Deleted(day string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]bool{}
	if d, ok := s.days[day]; ok {
		for id := range d.deleted {
			out[id] = true
		}
	}
	return out
}

// Clear forgets the edits and tombstones of one day.
func (s *MemoryStore) Clear(day string) {
	s.mu.Lock()
	delete(s.days, day)
	s.mu.Unlock()
}

// Reset forgets everything.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	s.days = map[string]*dayState{}
	s.mu.Unlock()
}

// Days lists the day keys holding session state, sorted.
func (s *MemoryStore) Days() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]string, 0, len(s.days))
	for k := range s.days {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
