// Package gates holds the static table of physical gates. Lookups are pure;
// the table is never mutated after construction.
package gates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/docksched/core/model"
)

// Well-known gate identifiers used by the classifier.
const (
	CourierGate       = "Brama W1"
	LoadGate          = "Brama W3"
	DefaultUnloadGate = "Brama W5"
	SpecialGate       = "Brama W8"
)

// Gate describes one loading position.
type Gate struct {
	ID        string              `json:"id" yaml:"id"`
	Operation model.OperationType `json:"operation" yaml:"operation"`
	// Ramp is true for a dock ramp and false for a ground level drive-in lane.
	Ramp  bool   `json:"ramp" yaml:"ramp"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
}

// Directory is an ordered, read-only set of gates.
type Directory struct {
	gates []Gate
	index map[string]int
}

// DefaultGates mirrors the physical layout of the warehouse yard.
func DefaultGates() []Gate {
	return []Gate{
		{ID: "Brama W1", Operation: model.OperationCourier, Ramp: false, Group: "Couriers"},
		{ID: "Brama W3", Operation: model.OperationLoad, Ramp: true, Group: "Loading"},
		{ID: "Brama W4", Operation: model.OperationLoad, Ramp: false},
		{ID: "Brama W5", Operation: model.OperationUnload, Ramp: true, Group: "Unloading"},
		{ID: "Brama W6", Operation: model.OperationUnload, Ramp: false},
		{ID: "Brama W7", Operation: model.OperationUnload, Ramp: false},
		{ID: "Brama W8", Operation: model.OperationUnload, Ramp: true},
	}
}

// Default returns the directory built from DefaultGates.
func Default() *Directory {
	d, _ := New(DefaultGates())
	return d
}

// New validates gs and builds a directory preserving their order.
// The classifier's target gates must all be present.
func New(gs []Gate) (*Directory, error) {
	d := &Directory{gates: make([]Gate, 0, len(gs)), index: make(map[string]int, len(gs))}
	for _, g := range gs {
		g.ID = strings.TrimSpace(g.ID)
		if g.ID == "" {
			return nil, fmt.Errorf("gate id is required")
		}
		if !g.Operation.Valid() {
			return nil, fmt.Errorf("gate %s: unknown operation %q", g.ID, g.Operation)
		}
		if _, dup := d.index[g.ID]; dup {
			return nil, fmt.Errorf("duplicate gate %s", g.ID)
		}
		d.index[g.ID] = len(d.gates)
		d.gates = append(d.gates, g)
	}
	for _, id := range []string{CourierGate, LoadGate, DefaultUnloadGate, SpecialGate} {
		if _, ok := d.index[id]; !ok {
			return nil, fmt.Errorf("directory is missing required gate %s", id)
		}
	}
	return d, nil
}

// Lookup returns the gate with the given id.
func (d *Directory) Lookup(id string) (Gate, bool) {
	i, ok := d.index[id]
	if !ok {
		return Gate{}, false
	}
	return d.gates[i], true
}

// Contains reports whether id belongs to the directory.
func (d *Directory) Contains(id string) bool {
	_, ok := d.index[id]
	return ok
}

// All returns a copy of the gates in directory order.
func (d *Directory) All() []Gate {
	out := make([]Gate, len(d.gates))
	copy(out, d.gates)
	return out
}

// IDs returns gate identifiers in directory order.
func (d *Directory) IDs() []string {
	ids := make([]string, len(d.gates))
	for i, g := range d.gates {
		ids[i] = g.ID
	}
	return ids
}

// Visible returns the gates shown on the board: not administratively
// blocked and holding at least one appointment.
func (d *Directory) Visible(blocked []string, items []model.Appointment) []Gate {
	skip := make(map[string]bool, len(blocked))
	for _, id := range blocked {
		skip[id] = true
	}
	used := make(map[string]bool)
	for _, a := range items {
		used[a.GateID] = true
	}
	var out []Gate
	for _, g := range d.gates {
		if skip[g.ID] || !used[g.ID] {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Unknown returns the ids in ids that are not part of the directory, sorted.
func (d *Directory) Unknown(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !d.Contains(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
