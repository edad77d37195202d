package planner

import (
	"context"
	"time"

	"github.com/kilianp07/docksched/core/audit"
	"github.com/kilianp07/docksched/core/events"
	"github.com/kilianp07/docksched/core/ingest"
	"github.com/kilianp07/docksched/core/metrics"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/monitoring"
	"github.com/kilianp07/docksched/core/reconcile"
	"github.com/kilianp07/docksched/core/schedule"
	"github.com/kilianp07/docksched/core/source"
)

const saveTimeout = 10 * time.Second

type cycle struct {
	trigger  events.Trigger
	subject  string
	departed []string
	start    time.Time
}

// merge layers session edits over base over fresh. Must hold p.mu.
func (p *Planner) merge(day string, fresh, base []model.Appointment) []model.Appointment {
	edits := p.sess.Edits(day)
	merged := reconcile.Merge(reconcile.Sources{
		Fresh:     fresh,
		Persisted: base,
		Session:   edits,
		Deleted:   p.sess.Deleted(day),
	})
	return promoteArrivals(merged, fresh, edits)
}

// promoteArrivals lets the upstream on-site flag move a stored pending copy
// to on site. Ids an operator edited in this session keep their state.
func promoteArrivals(merged, fresh, edits []model.Appointment) []model.Appointment {
	edited := make(map[string]bool, len(edits))
	for _, e := range edits {
		edited[e.ID] = true
	}
	arrived := make(map[string]model.Appointment)
	for _, f := range fresh {
		if f.OnSite() && f.ArrivedAt != nil && !edited[f.ID] {
			arrived[f.ID] = f
		}
	}
	if len(arrived) == 0 {
		return merged
	}
	for i := range merged {
		f, ok := arrived[merged[i].ID]
		if ok && merged[i].State == model.StatePending {
			merged[i].MarkOnSite(*f.ArrivedAt)
		}
	}
	return merged
}

// commit resolves items, installs them as the day's set and hands copies
// to storage, audit and subscribers. Must hold p.mu.
func (p *Planner) commit(day string, c cycle, items []model.Appointment) []model.Appointment {
	resolved, shifts := schedule.ResolveReport(items)
	p.days[day] = resolved
	snapshot := clone(resolved)

	p.saveAsync(day, clone(resolved))

	rec := audit.NewRecord(day, string(c.trigger), c.start)
	rec.Items = len(resolved)
	rec.Shifts = shifts
	rec.Departed = c.departed
	rec.Subject = c.subject
	rec.Duration = p.now().Sub(c.start)
	p.appendAudit(rec)

	if p.bus != nil {
		p.bus.Publish(events.DayChanged{
			Day:      day,
			Trigger:  c.trigger,
			Items:    clone(resolved),
			Shifts:   shifts,
			Departed: c.departed,
			Duration: rec.Duration,
			Time:     c.start,
		})
	}
	p.log.Infow("day resolved", map[string]any{
		"day":      day,
		"trigger":  string(c.trigger),
		"items":    len(resolved),
		"shifts":   len(shifts),
		"departed": len(c.departed),
	})
	return snapshot
}

// syncSession refreshes session copies of departed ids so a later merge
// does not resurrect their earlier state. Must hold p.mu.
func (p *Planner) syncSession(day string, items []model.Appointment, departed []string) {
	gone := make(map[string]bool, len(departed))
	for _, id := range departed {
		gone[id] = true
	}
	for _, e := range p.sess.Edits(day) {
		if !gone[e.ID] {
			continue
		}
		if i := indexOf(items, e.ID); i >= 0 {
			p.sess.Put(day, items[i])
		}
	}
}

// saveAsync persists the day in the background. Saves of one day are
// applied in commit order; a save overtaken by a newer one is skipped.
func (p *Planner) saveAsync(day string, items []model.Appointment) {
	p.saveMu.Lock()
	p.saveSeq[day]++
	seq := p.saveSeq[day]
	p.saveMu.Unlock()

	p.bg.Add(1)
	go func() {
		defer p.bg.Done()
		defer monitoring.Recover()
		p.saveMu.Lock()
		defer p.saveMu.Unlock()
		if p.saveSeq[day] != seq {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := p.store.Save(ctx, day, items); err != nil {
			p.log.Errorf("save %s: %v", day, err)
			monitoring.CaptureException(err, map[string]string{"component": "planner", "day": day})
			if r, ok := p.sink.(metrics.PersistFailureRecorder); ok {
				_ = r.RecordPersistFailure(metrics.PersistFailure{Day: day, Err: err.Error(), Time: p.now()})
			}
		}
	}()
}

func (p *Planner) appendAudit(rec audit.LogRecord) {
	p.bg.Add(1)
	go func() {
		defer p.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := p.auditLog.Append(ctx, rec); err != nil {
			p.log.Warnf("audit append: %v", err)
		}
	}()
}

func ingestDay(raw []source.Item, day time.Time, loc *time.Location, now time.Time) []ingest.Record {
	return ingest.NormalizeDay(raw, day, loc, now)
}

func indexOf(items []model.Appointment, id string) int {
	for i, a := range items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func removeID(items []model.Appointment, id string) ([]model.Appointment, bool) {
	return reconcile.Remove(items, id)
}

func clone(items []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, len(items))
	copy(out, items)
	return out
}
