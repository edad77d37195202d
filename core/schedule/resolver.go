// Package schedule contains the gate-local overlap resolver and the
// lifecycle sweep. Both are pure functions over a snapshot of one day.
package schedule

import (
	"sort"
	"time"

	"github.com/kilianp07/docksched/core/model"
)

// Shift records one start time moved by the resolver.
type Shift struct {
	ID     string    `json:"id"`
	GateID string    `json:"gate_id"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// Resolve returns a copy of items in which no two appointments on the same
// gate overlap. Later appointments are pushed to the end of the previous
// one; durations never change. The result is sorted by start time, ties
// keeping input order.
func Resolve(items []model.Appointment) []model.Appointment {
	out, _ := ResolveReport(items)
	return out
}

// ResolveReport is Resolve that also lists every shift it applied.
func ResolveReport(items []model.Appointment) ([]model.Appointment, []Shift) {
	out := make([]model.Appointment, len(items))
	copy(out, items)

	byGate := make(map[string][]int)
	var order []string
	for i, a := range out {
		if _, ok := byGate[a.GateID]; !ok {
			order = append(order, a.GateID)
		}
		byGate[a.GateID] = append(byGate[a.GateID], i)
	}

	var shifts []Shift
	for _, g := range order {
		idx := byGate[g]
		sort.SliceStable(idx, func(i, j int) bool {
			return out[idx[i]].ScheduledAt.Before(out[idx[j]].ScheduledAt)
		})
		var prevEnd time.Time
		for n, i := range idx {
			a := &out[i]
			if n > 0 && a.ScheduledAt.Before(prevEnd) {
				shifts = append(shifts, Shift{ID: a.ID, GateID: g, From: a.ScheduledAt, To: prevEnd})
				a.SetScheduledAt(prevEnd)
			}
			prevEnd = a.End()
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, shifts
}

// Conflict is a pair of overlapping appointments on one gate.
type Conflict struct {
	GateID string
	First  string
	Second string
}

// Conflicts lists overlapping pairs without modifying items.
func Conflicts(items []model.Appointment) []Conflict {
	byGate := make(map[string][]model.Appointment)
	var order []string
	for _, a := range items {
		if _, ok := byGate[a.GateID]; !ok {
			order = append(order, a.GateID)
		}
		byGate[a.GateID] = append(byGate[a.GateID], a)
	}
	var out []Conflict
	for _, g := range order {
		group := byGate[g]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ScheduledAt.Before(group[j].ScheduledAt)
		})
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if !group[j].ScheduledAt.Before(group[i].End()) {
					break
				}
				out = append(out, Conflict{GateID: g, First: group[i].ID, Second: group[j].ID})
			}
		}
	}
	return out
}
