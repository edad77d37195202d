package metrics

import (
	"context"

	"github.com/kilianp07/docksched/core/events"
	coremetrics "github.com/kilianp07/docksched/core/metrics"
	"github.com/kilianp07/docksched/core/schedule"
	"github.com/kilianp07/docksched/internal/eventbus"
)

// StartCycleCollector subscribes to resolved days and records a cycle and
// the gate occupancy for each. Every cycle carries the bus drop count. It stops when ctx is canceled or the bus
// is closed.
func StartCycleCollector(ctx context.Context, bus *eventbus.TypedBus[events.DayChanged], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev, bus.Dropped())
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev events.DayChanged, dropped uint64) {
	c := cycleEvent(ev)
	c.Dropped = dropped
	_ = sink.RecordCycle(c)
	if r, ok := sink.(coremetrics.OccupancyRecorder); ok {
		_ = r.RecordOccupancy(occupancy(ev))
	}
}

func cycleEvent(ev events.DayChanged) coremetrics.CycleEvent {
	c := coremetrics.CycleEvent{
		Day:       ev.Day,
		Trigger:   string(ev.Trigger),
		Items:     len(ev.Items),
		Shifts:    len(ev.Shifts),
		Departed:  len(ev.Departed),
		Conflicts: len(schedule.Conflicts(ev.Items)),
		Duration:  ev.Duration,
		Time:      ev.Time,
	}
	for _, a := range ev.Items {
		if a.OnSite() {
			c.OnSite++
		}
	}
	return c
}

func occupancy(ev events.DayChanged) coremetrics.GateOccupancy {
	gates := make(map[string]int)
	for _, a := range ev.Items {
		gates[a.GateID]++
	}
	return coremetrics.GateOccupancy{Day: ev.Day, Gates: gates, Time: ev.Time}
}
