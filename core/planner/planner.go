// Package planner owns the per-day appointment sets. Every mutation runs
// under one mutex and ends with a full resolution of the day, so readers
// only ever observe conflict-free sets.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/docksched/core/audit"
	"github.com/kilianp07/docksched/core/classify"
	"github.com/kilianp07/docksched/core/edit"
	"github.com/kilianp07/docksched/core/events"
	"github.com/kilianp07/docksched/core/gates"
	"github.com/kilianp07/docksched/core/logger"
	"github.com/kilianp07/docksched/core/metrics"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/monitoring"
	"github.com/kilianp07/docksched/core/persist"
	"github.com/kilianp07/docksched/core/schedule"
	"github.com/kilianp07/docksched/core/session"
	"github.com/kilianp07/docksched/core/source"
	"github.com/kilianp07/docksched/internal/eventbus"
)

var (
	// ErrNotFound is returned when an appointment id is not part of the day.
	ErrNotFound = errors.New("appointment not found")
	// ErrRefreshInProgress is returned when a refresh is already running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// Planner orchestrates fetch, classification, merge and resolution.
type Planner struct {
	dir        *gates.Directory
	classifier *classify.Classifier
	validator  *edit.Validator
	src        source.Source
	store      persist.Store
	sess       session.Store
	loc        *time.Location
	blocked    []string
	log        logger.Logger

	sink     metrics.MetricsSink
	auditLog audit.LogStore
	bus      *eventbus.TypedBus[events.DayChanged]
	now      func() time.Time

	mu         sync.Mutex
	days       map[string][]model.Appointment
	refreshing sync.Mutex

	bg      sync.WaitGroup
	saveMu  sync.Mutex
	saveSeq map[string]uint64
}

// New builds a planner. src may be nil when the process only serves
// stored days.
func New(dir *gates.Directory, cls *classify.Classifier, v *edit.Validator, src source.Source, store persist.Store, sess session.Store, loc *time.Location, log logger.Logger) (*Planner, error) {
	if dir == nil || cls == nil || v == nil || store == nil || sess == nil || log == nil {
		return nil, fmt.Errorf("planner: nil parameter provided to New")
	}
	if loc == nil {
		loc = time.Local
	}
	return &Planner{
		dir:        dir,
		classifier: cls,
		validator:  v,
		src:        src,
		store:      store,
		sess:       sess,
		loc:        loc,
		log:        log,
		sink:       metrics.NopSink{},
		auditLog:   audit.NopStore{},
		now:        time.Now,
		days:       make(map[string][]model.Appointment),
		saveSeq:    make(map[string]uint64),
	}, nil
}

// SetMetricsSink configures where fetch, edit and persistence events go.
func (p *Planner) SetMetricsSink(s metrics.MetricsSink) {
	if s != nil {
		p.sink = s
	}
}

// SetAuditStore configures the store receiving one record per cycle.
func (p *Planner) SetAuditStore(s audit.LogStore) {
	if s != nil {
		p.auditLog = s
	}
}

// SetBus configures the bus on which DayChanged events are published.
func (p *Planner) SetBus(b *eventbus.TypedBus[events.DayChanged]) { p.bus = b }

// SetBlockedGates hides gates from Visible.
func (p *Planner) SetBlockedGates(ids []string) {
	p.mu.Lock()
	p.blocked = append([]string(nil), ids...)
	p.mu.Unlock()
}

// SetClock replaces the time source.
func (p *Planner) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// Location returns the zone day keys are computed in.
func (p *Planner) Location() *time.Location { return p.loc }

// Directory returns the gate directory.
func (p *Planner) Directory() *gates.Directory { return p.dir }

// Window returns the operating hours edits are validated against.
func (p *Planner) Window() edit.Window { return p.validator.Window() }

// Today returns the key of the current day.
func (p *Planner) Today() string { return model.DayKey(p.now().In(p.loc)) }

// Refresh fetches the upstream list, keeps the records of day, merges
// them with persisted and session copies and stores the resolved result.
// The previous set stays in place when the fetch fails.
func (p *Planner) Refresh(ctx context.Context, day string) ([]model.Appointment, error) {
	dayStart, err := model.ParseDayKey(day, p.loc)
	if err != nil {
		return nil, err
	}
	if p.src == nil {
		return nil, errors.New("planner: no upstream source configured")
	}
	if !p.refreshing.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer p.refreshing.Unlock()

	start := p.now()
	raw, err := p.src.Fetch(ctx, dayStart)
	fetchEv := metrics.FetchEvent{Day: day, Records: len(raw), Failed: err != nil, Duration: p.now().Sub(start), Time: start}
	if err != nil {
		p.recordFetch(fetchEv)
		monitoring.CaptureException(err, map[string]string{"component": "planner", "day": day})
		return nil, fmt.Errorf("refresh %s: %w", day, err)
	}
	fresh := p.classifier.ClassifyAll(ingestDay(raw, dayStart, p.loc, p.now()))
	fetchEv.Kept = len(fresh)
	p.recordFetch(fetchEv)

	persisted, err := p.loadPersisted(ctx, day)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	base := persisted
	if cur, ok := p.days[day]; ok {
		base = cur
	}
	merged := p.merge(day, fresh, base)
	items := p.commit(day, cycle{trigger: events.TriggerRefresh, start: start}, merged)
	p.mu.Unlock()
	return items, nil
}

// Sweep marks long staying vehicles as departed on every loaded day.
// A cancelled ctx stops the sweep between days; days already swept stay
// committed.
func (p *Planner) Sweep(ctx context.Context) map[string][]string {
	now := p.now()
	out := map[string][]string{}
	p.mu.Lock()
	defer p.mu.Unlock()
	for day, items := range p.days {
		if ctx.Err() != nil {
			break
		}
		swept, departed := schedule.Sweep(items, now)
		if len(departed) == 0 {
			continue
		}
		p.syncSession(day, swept, departed)
		p.commit(day, cycle{trigger: events.TriggerSweep, departed: departed, start: now}, swept)
		out[day] = departed
	}
	return out
}

// Edit validates req and applies it to one appointment of day.
func (p *Planner) Edit(ctx context.Context, day, id string, req edit.Request) (model.Appointment, error) {
	if err := p.validator.Validate(req); err != nil {
		p.recordEdit(day, "edit", false)
		return model.Appointment{}, err
	}
	return p.mutate(ctx, day, id, events.TriggerEdit, func(a model.Appointment) model.Appointment {
		return edit.Apply(a, req, p.now())
	})
}

// Move drops one appointment on a gate and start instant. The instant is
// snapped to edit.MoveGrid in the planner's zone before validation.
func (p *Planner) Move(ctx context.Context, day, id string, req edit.MoveRequest) (model.Appointment, error) {
	dayStart, err := model.ParseDayKey(day, p.loc)
	if err != nil {
		return model.Appointment{}, err
	}
	if !req.ScheduledAt.IsZero() {
		req.ScheduledAt = edit.Snap(req.ScheduledAt.In(p.loc), edit.MoveGrid)
	}
	if err := p.validator.ValidateMove(req, dayStart); err != nil {
		p.recordEdit(day, "move", false)
		return model.Appointment{}, err
	}
	return p.mutate(ctx, day, id, events.TriggerMove, func(a model.Appointment) model.Appointment {
		return edit.ApplyMove(a, req)
	})
}

// MarkArrived applies the external Pending to OnSite signal.
func (p *Planner) MarkArrived(ctx context.Context, day, id string, at time.Time) (model.Appointment, error) {
	return p.mutate(ctx, day, id, events.TriggerArrival, func(a model.Appointment) model.Appointment {
		if a.State == model.StatePending {
			a.MarkOnSite(at)
		}
		return a
	})
}

// Delete removes one appointment and keeps it from coming back on refresh.
func (p *Planner) Delete(ctx context.Context, day, id string) error {
	if err := p.ensureDay(ctx, day); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	rest, ok := removeID(p.days[day], id)
	if !ok {
		p.recordEdit(day, "delete", false)
		return ErrNotFound
	}
	p.sess.Delete(day, id)
	p.commit(day, cycle{trigger: events.TriggerDelete, subject: id, start: p.now()}, rest)
	p.recordEdit(day, "delete", true)
	return nil
}

// Snapshot returns the resolved set of day, loading it from storage on
// first access.
func (p *Planner) Snapshot(ctx context.Context, day string) ([]model.Appointment, error) {
	if err := p.ensureDay(ctx, day); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.days[day]), nil
}

// Visible returns the gates to show for a set of appointments.
func (p *Planner) Visible(items []model.Appointment) []gates.Gate {
	p.mu.Lock()
	blocked := p.blocked
	p.mu.Unlock()
	return p.dir.Visible(blocked, items)
}

// LoadedDays lists the days currently held in memory.
func (p *Planner) LoadedDays() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.days))
	for d := range p.days {
		out = append(out, d)
	}
	return out
}

// Forget drops a day from memory and from the session store.
func (p *Planner) Forget(day string) {
	p.mu.Lock()
	delete(p.days, day)
	p.mu.Unlock()
	p.sess.Clear(day)
}

// Wait blocks until background saves have finished.
func (p *Planner) Wait() { p.bg.Wait() }

func (p *Planner) mutate(ctx context.Context, day, id string, trig events.Trigger, fn func(model.Appointment) model.Appointment) (model.Appointment, error) {
	if err := p.ensureDay(ctx, day); err != nil {
		return model.Appointment{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cur := p.days[day]
	idx := indexOf(cur, id)
	if idx < 0 {
		p.recordEdit(day, string(trig), false)
		return model.Appointment{}, ErrNotFound
	}
	updated := fn(cur[idx])
	p.sess.Put(day, updated)
	merged := p.merge(day, nil, cur)
	items := p.commit(day, cycle{trigger: trig, subject: id, start: p.now()}, merged)
	p.recordEdit(day, string(trig), true)
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return updated, nil
}

func (p *Planner) ensureDay(ctx context.Context, day string) error {
	if _, err := model.ParseDayKey(day, p.loc); err != nil {
		return err
	}
	p.mu.Lock()
	_, ok := p.days[day]
	p.mu.Unlock()
	if ok {
		return nil
	}
	items, err := p.loadPersisted(ctx, day)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.days[day]; ok {
		return nil
	}
	merged := p.merge(day, nil, items)
	p.days[day] = schedule.Resolve(merged)
	return nil
}

func (p *Planner) loadPersisted(ctx context.Context, day string) ([]model.Appointment, error) {
	items, err := p.store.Load(ctx, day)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"component": "planner", "day": day})
		return nil, fmt.Errorf("load %s: %w", day, err)
	}
	return items, nil
}

func (p *Planner) recordFetch(ev metrics.FetchEvent) {
	if r, ok := p.sink.(metrics.FetchRecorder); ok {
		_ = r.RecordFetch(ev)
	}
}

func (p *Planner) recordEdit(day, kind string, ok bool) {
	if r, is := p.sink.(metrics.EditRecorder); is {
		_ = r.RecordEdit(metrics.EditEvent{Day: day, Kind: kind, Accepted: ok, Time: p.now()})
	}
}
