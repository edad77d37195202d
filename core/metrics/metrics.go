package metrics

import "time"

// CycleEvent summarises one resolution of a day.
type CycleEvent struct {
	Day       string
	Trigger   string
	Items     int
	OnSite    int
	Shifts    int
	Departed  int
	Conflicts int
	// Dropped is the running count of bus deliveries missed by slow
	// subscribers.
	Dropped  uint64
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records resolution cycles.
type MetricsSink interface {
	RecordCycle(ev CycleEvent) error
}

// FetchEvent describes one upstream fetch.
type FetchEvent struct {
	Day      string
	Records  int
	Kept     int
	Failed   bool
	Duration time.Duration
	Time     time.Time
}

// FetchRecorder records upstream fetches.
type FetchRecorder interface {
	RecordFetch(ev FetchEvent) error
}

// EditEvent describes an operator change, accepted or rejected.
type EditEvent struct {
	Day      string
	Kind     string
	Accepted bool
	Time     time.Time
}

// EditRecorder records operator changes.
type EditRecorder interface {
	RecordEdit(ev EditEvent) error
}

// GateOccupancy is the number of appointments per gate for a day.
type GateOccupancy struct {
	Day   string
	Gates map[string]int
	Time  time.Time
}

// OccupancyRecorder records per gate load.
type OccupancyRecorder interface {
	RecordOccupancy(ev GateOccupancy) error
}

// PersistFailure reports a failed background save.
type PersistFailure struct {
	Day  string
	Err  string
	Time time.Time
}

// PersistFailureRecorder records failed saves.
type PersistFailureRecorder interface {
	RecordPersistFailure(ev PersistFailure) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCycle(CycleEvent) error              { return nil }
func (NopSink) RecordFetch(FetchEvent) error              { return nil }
func (NopSink) RecordEdit(EditEvent) error                { return nil }
func (NopSink) RecordOccupancy(GateOccupancy) error       { return nil }
func (NopSink) RecordPersistFailure(PersistFailure) error { return nil }
