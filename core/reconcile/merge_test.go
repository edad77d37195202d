package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/docksched/core/model"
)

func a(id, gate string) model.Appointment {
	return model.Appointment{ID: id, GateID: gate, DurationMinutes: 90}
}

func TestMergePrecedence(t *testing.T) {
	out := Merge(Sources{
		Fresh:     []model.Appointment{a("x", "Brama W5")},
		Persisted: []model.Appointment{a("x", "Brama W6")},
		Session:   []model.Appointment{a("x", "Brama W7")},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "Brama W7", out[0].GateID)

	out = Merge(Sources{
		Fresh:     []model.Appointment{a("x", "Brama W5")},
		Persisted: []model.Appointment{a("x", "Brama W6")},
	})
	assert.Equal(t, "Brama W6", out[0].GateID)
}

func TestMergeUnionKeepsOrder(t *testing.T) {
	out := Merge(Sources{
		Fresh:     []model.Appointment{a("1", "G"), a("2", "G")},
		Persisted: []model.Appointment{a("3", "G"), a("1", "H")},
		Session:   []model.Appointment{a("4", "G"), a("2", "H")},
	})
	ids := make([]string, len(out))
	for i, it := range out {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Equal(t, "H", out[0].GateID)
	assert.Equal(t, "H", out[1].GateID)
}

func TestMergeTombstones(t *testing.T) {
	out := Merge(Sources{
		Fresh:   []model.Appointment{a("1", "G"), a("2", "G")},
		Session: []model.Appointment{a("2", "H")},
		Deleted: map[string]bool{"2": true},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge(Sources{}))
}

func TestReplaceAndRemove(t *testing.T) {
	items := []model.Appointment{a("1", "G"), a("2", "G")}
	out := Replace(items, a("2", "H"))
	assert.Equal(t, "H", out[1].GateID)
	assert.Equal(t, "G", items[1].GateID)
	out = Replace(items, a("3", "G"))
	assert.Len(t, out, 3)

	out, ok := Remove(items, "1")
	assert.True(t, ok)
	assert.Len(t, out, 1)
	_, ok = Remove(items, "9")
	assert.False(t, ok)
}
