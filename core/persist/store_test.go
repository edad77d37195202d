package persist

import (
	"context"
	"testing"

	"github.com/kilianp07/docksched/core/model"
)

func TestMemoryStore_SaveReplacesDay(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Save(ctx, "2025-11-20", []model.Appointment{{ID: "a"}, {ID: "b"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "2025-11-20", []model.Appointment{{ID: "c"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load(ctx, "2025-11-20")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0].ID != "c" {
		t.Fatalf("unexpected %#v", out)
	}
	out[0].ID = "mutated"
	again, _ := s.Load(ctx, "2025-11-20")
	if again[0].ID != "c" {
		t.Fatalf("store leaked its slice")
	}
	empty, _ := s.Load(ctx, "2025-11-21")
	if len(empty) != 0 {
		t.Fatalf("expected empty day")
	}
}
