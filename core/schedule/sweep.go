package schedule

import (
	"time"

	"github.com/kilianp07/docksched/core/model"
)

// DwellTimeout is how long a vehicle may stay on site before it is
// considered departed.
const DwellTimeout = 12 * time.Hour

// Sweep marks as departed every on-site appointment that arrived more than
// DwellTimeout before now. When nothing changes it returns items itself so
// callers can skip downstream work by comparing slices. The ids that
// transitioned are returned alongside.
func Sweep(items []model.Appointment, now time.Time) ([]model.Appointment, []string) {
	var departed []string
	var out []model.Appointment
	for i, a := range items {
		if !expired(a, now) {
			continue
		}
		if out == nil {
			out = make([]model.Appointment, len(items))
			copy(out, items)
		}
		out[i].MarkDeparted()
		departed = append(departed, a.ID)
	}
	if out == nil {
		return items, nil
	}
	return out, departed
}

func expired(a model.Appointment, now time.Time) bool {
	if a.State != model.StateOnSite || a.ArrivedAt == nil {
		return false
	}
	return now.Sub(*a.ArrivedAt) > DwellTimeout
}
