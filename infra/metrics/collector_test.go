package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/docksched/core/events"
	coremetrics "github.com/kilianp07/docksched/core/metrics"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/schedule"
	"github.com/kilianp07/docksched/internal/eventbus"
)

type recordingSink struct {
	mu        sync.Mutex
	cycles    []coremetrics.CycleEvent
	occupancy []coremetrics.GateOccupancy
}

func (r *recordingSink) RecordCycle(ev coremetrics.CycleEvent) error {
	r.mu.Lock()
	r.cycles = append(r.cycles, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingSink) RecordOccupancy(ev coremetrics.GateOccupancy) error {
	r.mu.Lock()
	r.occupancy = append(r.occupancy, ev)
	r.mu.Unlock()
	return nil
}

func TestCycleCollector(t *testing.T) {
	bus := eventbus.NewTyped[events.DayChanged](4)
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartCycleCollector(ctx, bus, sink)

	items := []model.Appointment{
		{ID: "a", GateID: "Brama W5", State: model.StateOnSite},
		{ID: "b", GateID: "Brama W5", State: model.StatePending},
		{ID: "c", GateID: "Brama W1", State: model.StatePending},
	}
	bus.Publish(events.DayChanged{
		Day: "2025-11-20", Trigger: events.TriggerEdit, Items: items,
		Shifts: []schedule.Shift{{ID: "b"}}, Time: time.Now(),
	})

	deadline := time.After(time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.occupancy)
		sink.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("collector did not record")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	c := sink.cycles[0]
	if c.Trigger != "edit" || c.Items != 3 || c.OnSite != 1 || c.Shifts != 1 {
		t.Fatalf("unexpected cycle %+v", c)
	}
	if sink.occupancy[0].Gates["Brama W5"] != 2 {
		t.Fatalf("unexpected occupancy %+v", sink.occupancy[0])
	}
}

func TestCycleCollectorReportsDroppedDeliveries(t *testing.T) {
	bus := eventbus.NewTyped[events.DayChanged](1)
	stale := bus.Subscribe()
	defer bus.Unsubscribe(stale)
	bus.Publish(events.DayChanged{Day: "2025-11-20"})
	bus.Publish(events.DayChanged{Day: "2025-11-20"})

	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartCycleCollector(ctx, bus, sink)
	bus.Publish(events.DayChanged{Day: "2025-11-20", Trigger: events.TriggerSweep})

	deadline := time.After(time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.cycles)
		sink.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("collector did not record")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if got := sink.cycles[0].Dropped; got != 2 {
		t.Fatalf("expected 2 dropped deliveries, got %d", got)
	}
}
