package events

import (
	"time"

	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/schedule"
)

// Trigger names what caused a day to be re-resolved.
type Trigger string

const (
	TriggerRefresh Trigger = "refresh"
	TriggerSweep   Trigger = "sweep"
	TriggerEdit    Trigger = "edit"
	TriggerMove    Trigger = "move"
	TriggerDelete  Trigger = "delete"
	TriggerArrival Trigger = "arrival"
)

// DayChanged carries the resolved set of one day after a mutation.
type DayChanged struct {
	Day      string
	Trigger  Trigger
	Items    []model.Appointment
	Shifts   []schedule.Shift
	Departed []string
	Duration time.Duration
	Time     time.Time
}
