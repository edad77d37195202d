package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/docksched/core/schedule"
)

func sampleRecord(day, trigger string, at time.Time) LogRecord {
	r := NewRecord(day, trigger, at)
	r.Items = 3
	r.Shifts = []schedule.Shift{{ID: "del-1-" + day, GateID: "Brama W5", From: at, To: at.Add(time.Hour)}}
	r.Departed = []string{"del-9-" + day}
	return r
}

func TestLogQueryMatches(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)
	r := sampleRecord("2025-11-20", "refresh", now)
	cases := []struct {
		name string
		q    LogQuery
		want bool
	}{
		{"empty", LogQuery{}, true},
		{"day", LogQuery{Day: "2025-11-21"}, false},
		{"trigger", LogQuery{Trigger: "sweep"}, false},
		{"before start", LogQuery{Start: now.Add(time.Minute)}, false},
		{"shifted id", LogQuery{AppointmentID: "del-1-2025-11-20"}, true},
		{"departed id", LogQuery{AppointmentID: "del-9-2025-11-20"}, true},
		{"other id", LogQuery{AppointmentID: "del-5-2025-11-20"}, false},
	}
	for _, c := range cases {
		if got := c.q.Matches(r); got != c.want {
			t.Errorf("%s: want %v got %v", c.name, c.want, got)
		}
	}
	r.Subject = "del-5-2025-11-20"
	if !(LogQuery{AppointmentID: "del-5-2025-11-20"}).Matches(r) {
		t.Errorf("subject should match")
	}
}

func TestNewRecordUniqueIDs(t *testing.T) {
	a := NewRecord("d", "edit", time.Now())
	b := NewRecord("d", "edit", time.Now())
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}

func TestSQLiteStore_AppendQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:audit_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()
	now := time.Now()
	if err := store.Append(ctx, sampleRecord("2025-11-20", "refresh", now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, sampleRecord("2025-11-20", "sweep", now.Add(time.Second))); err != nil {
		t.Fatalf("append: %v", err)
	}
	out, err := store.Query(ctx, LogQuery{Day: "2025-11-20", Trigger: "sweep"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].Trigger != "sweep" || len(out[0].Shifts) != 1 {
		t.Fatalf("unexpected records %#v", out)
	}
	out, _ = store.Query(ctx, LogQuery{AppointmentID: "del-1-2025-11-20"})
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	rec := sampleRecord("2025-11-20", "refresh", time.Now())
	for i := 0; i < 100; i++ {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, _ := filepath.Glob(path + "*")
	if len(files) == 0 {
		t.Fatalf("expected log files")
	}
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	now := time.Now()
	_ = store.Append(context.Background(), sampleRecord("2025-11-21", "sweep", now.Add(time.Second)))
	_ = store.Append(context.Background(), sampleRecord("2025-11-20", "refresh", now))
	out, err := store.Query(context.Background(), LogQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 || out[0].Day != "2025-11-20" {
		t.Fatalf("unexpected records %#v", out)
	}
	out, _ = store.Query(context.Background(), LogQuery{Day: "2025-11-21"})
	if len(out) != 1 {
		t.Fatalf("expected one record for day")
	}
}
