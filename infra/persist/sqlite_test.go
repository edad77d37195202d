package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/docksched/core/model"
)

func appt(id string, hh int) model.Appointment {
	a := model.Appointment{ID: id, SourceID: id, GateID: "Brama W5", DurationMinutes: 90, State: model.StatePending}
	a.SetScheduledAt(time.Date(2025, 11, 20, hh, 0, 0, 0, time.UTC))
	return a
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "deliveries.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	arrived := time.Date(2025, 11, 20, 8, 5, 0, 0, time.UTC)
	b := appt("b", 8)
	b.MarkOnSite(arrived)
	require.NoError(t, store.Save(ctx, "2025-11-20", []model.Appointment{appt("c", 10), b}))
	require.NoError(t, store.Save(ctx, "2025-11-21", []model.Appointment{appt("d", 9)}))

	out, err := store.Load(ctx, "2025-11-20")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "c", out[0].ID)
	assert.Equal(t, model.StateOnSite, out[1].State)
	require.NotNil(t, out[1].ArrivedAt)
	assert.True(t, arrived.Equal(*out[1].ArrivedAt))
	assert.True(t, out[0].ScheduledAt.Equal(time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)))
}

func TestSQLiteStore_SaveReplacesDay(t *testing.T) {
	store, err := NewSQLiteStore("file:persist_replace.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "2025-11-20", []model.Appointment{appt("a", 8), appt("b", 9)}))
	require.NoError(t, store.Save(ctx, "2025-11-20", []model.Appointment{appt("b", 11)}))
	out, err := store.Load(ctx, "2025-11-20")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "11:00", out[0].TimeLabel)

	empty, err := store.Load(ctx, "2030-01-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
