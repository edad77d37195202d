// Package stats aggregates appointments into daily and per gate figures.
package stats

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/docksched/core/model"
)

// HistoryDays is the length of the history window, base day included.
const HistoryDays = 7

// DayStats counts one day's appointments. Arrived includes departed
// vehicles.
type DayStats struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Arrived int    `json:"arrived"`
	Pending int    `json:"pending"`
}

// ForDay computes the counts of items under the given day key.
func ForDay(day string, items []model.Appointment) DayStats {
	s := DayStats{Date: day, Total: len(items)}
	for _, a := range items {
		switch a.State {
		case model.StateOnSite, model.StateDeparted:
			s.Arrived++
		case model.StatePending:
			s.Pending++
		}
	}
	return s
}

// Loader returns the stored appointments of one day.
type Loader func(ctx context.Context, day string) ([]model.Appointment, error)

// History returns HistoryDays entries ending at base, oldest first. A day
// that cannot be loaded counts as empty.
func History(ctx context.Context, base time.Time, load Loader) []DayStats {
	out := make([]DayStats, 0, HistoryDays)
	for i := HistoryDays - 1; i >= 0; i-- {
		key := model.DayKey(base.AddDate(0, 0, -i))
		items, err := load(ctx, key)
		if err != nil {
			items = nil
		}
		out = append(out, ForDay(key, items))
	}
	return out
}

// TypeCounts counts appointments per operation type. The "on_site" key
// counts vehicles currently present.
func TypeCounts(items []model.Appointment) map[string]int {
	out := map[string]int{
		string(model.OperationLoad):    0,
		string(model.OperationUnload):  0,
		string(model.OperationCourier): 0,
		string(model.StateOnSite):      0,
	}
	for _, a := range items {
		out[string(a.Operation)]++
		if a.OnSite() {
			out[string(model.StateOnSite)]++
		}
	}
	return out
}

// GateLoad is the booked time on one gate.
type GateLoad struct {
	GateID       string  `json:"gate_id"`
	Appointments int     `json:"appointments"`
	Minutes      int     `json:"minutes"`
	Share        float64 `json:"share"`
}

// Utilisation summarises how evenly work is spread across gates.
type Utilisation struct {
	Gates  []GateLoad `json:"gates"`
	Mean   float64    `json:"mean_minutes"`
	StdDev float64    `json:"stddev_minutes"`
}

// GateUtilisation computes booked minutes per gate listed in gateIDs, as a
// share of the operating window of windowMinutes.
func GateUtilisation(items []model.Appointment, gateIDs []string, windowMinutes int) Utilisation {
	minutes := make(map[string]int, len(gateIDs))
	counts := make(map[string]int, len(gateIDs))
	for _, a := range items {
		minutes[a.GateID] += a.DurationMinutes
		counts[a.GateID]++
	}
	u := Utilisation{Gates: make([]GateLoad, 0, len(gateIDs))}
	xs := make([]float64, 0, len(gateIDs))
	for _, id := range gateIDs {
		g := GateLoad{GateID: id, Appointments: counts[id], Minutes: minutes[id]}
		if windowMinutes > 0 {
			g.Share = float64(g.Minutes) / float64(windowMinutes)
		}
		u.Gates = append(u.Gates, g)
		xs = append(xs, float64(g.Minutes))
	}
	if len(xs) > 0 {
		u.Mean = stat.Mean(xs, nil)
	}
	if len(xs) > 1 {
		u.StdDev = stat.StdDev(xs, nil)
	}
	sort.SliceStable(u.Gates, func(i, j int) bool { return u.Gates[i].Minutes > u.Gates[j].Minutes })
	return u
}

// Report combines the counters and the gate utilisation of one day.
type Report struct {
	Day         DayStats       `json:"day"`
	Counts      map[string]int `json:"counts"`
	Utilisation Utilisation    `json:"utilisation"`
}

// ForReport builds the Report of day over gateIDs and a window of
// windowMinutes.
func ForReport(day string, items []model.Appointment, gateIDs []string, windowMinutes int) Report {
	return Report{
		Day:         ForDay(day, items),
		Counts:      TypeCounts(items),
		Utilisation: GateUtilisation(items, gateIDs, windowMinutes),
	}
}
