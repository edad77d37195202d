// Package reconcile combines the candidate copies of a day's appointments.
package reconcile

import "github.com/kilianp07/docksched/core/model"

// Sources are the candidate copies of one day, lowest precedence first.
type Sources struct {
	Fresh     []model.Appointment
	Persisted []model.Appointment
	Session   []model.Appointment
	// Deleted ids are excluded whatever their source.
	Deleted map[string]bool
}

// Merge returns one appointment per id. A session copy beats a persisted
// copy, which beats the fresh fetch. Ids keep the position of their first
// occurrence scanning Fresh, then Persisted, then Session. The result is
// not resolved; callers must run it through the resolver.
func Merge(src Sources) []model.Appointment {
	pos := make(map[string]int)
	var out []model.Appointment
	layer := func(items []model.Appointment) {
		for _, a := range items {
			if a.ID == "" || src.Deleted[a.ID] {
				continue
			}
			if i, ok := pos[a.ID]; ok {
				out[i] = a
				continue
			}
			pos[a.ID] = len(out)
			out = append(out, a)
		}
	}
	layer(src.Fresh)
	layer(src.Persisted)
	layer(src.Session)
	return out
}

// Replace swaps the appointment with the same id in items, appending it
// when absent. items is not modified.
func Replace(items []model.Appointment, a model.Appointment) []model.Appointment {
	out := make([]model.Appointment, 0, len(items)+1)
	found := false
	for _, it := range items {
		if it.ID == a.ID {
			out = append(out, a)
			found = true
			continue
		}
		out = append(out, it)
	}
	if !found {
		out = append(out, a)
	}
	return out
}

// Remove drops the appointment with the given id. It reports whether one
// was found.
func Remove(items []model.Appointment, id string) ([]model.Appointment, bool) {
	out := make([]model.Appointment, 0, len(items))
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}
