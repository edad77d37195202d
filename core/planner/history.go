package planner

import (
	"context"
	"time"

	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/stats"
)

// History returns the statistics of the stats.HistoryDays days ending at
// base. Days held in memory are counted as they are now; other days come
// from storage.
func (p *Planner) History(ctx context.Context, base time.Time) []stats.DayStats {
	return stats.History(ctx, base.In(p.loc), p.dayItems)
}

// Stats returns the counters of one day and the utilisation of every
// gate over the operating window.
func (p *Planner) Stats(ctx context.Context, day string) (stats.Report, error) {
	items, err := p.Snapshot(ctx, day)
	if err != nil {
		return stats.Report{}, err
	}
	win := p.Window()
	return stats.ForReport(day, items, p.dir.IDs(), win.Close-win.Open), nil
}

func (p *Planner) dayItems(ctx context.Context, day string) ([]model.Appointment, error) {
	p.mu.Lock()
	items, ok := p.days[day]
	p.mu.Unlock()
	if ok {
		return clone(items), nil
	}
	return p.store.Load(ctx, day)
}
