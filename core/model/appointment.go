package model

import (
	"fmt"
	"time"
)

// OperationType classifies what a vehicle does at the gate.
type OperationType string

const (
	OperationLoad    OperationType = "load"
	OperationUnload  OperationType = "unload"
	OperationCourier OperationType = "courier"
)

// Valid reports whether t is one of the known operation types.
func (t OperationType) Valid() bool {
	switch t {
	case OperationLoad, OperationUnload, OperationCourier:
		return true
	default:
		return false
	}
}

// LifecycleState is the single source of truth for an appointment's
// presence on site. Departed is terminal.
type LifecycleState string

const (
	StatePending  LifecycleState = "pending"
	StateOnSite   LifecycleState = "on_site"
	StateDeparted LifecycleState = "departed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s LifecycleState) Valid() bool {
	switch s {
	case StatePending, StateOnSite, StateDeparted:
		return true
	default:
		return false
	}
}

// Appointment is one scheduled vehicle visit at a gate.
type Appointment struct {
	ID              string         `json:"id"`
	SourceID        string         `json:"source_id"`
	ScheduledAt     time.Time      `json:"scheduled_at"`
	TimeLabel       string         `json:"time_label"`
	DurationMinutes int            `json:"duration_minutes"`
	CompanyName     string         `json:"company_name"`
	PlateNumber     string         `json:"plate_number"`
	Operation       OperationType  `json:"operation_type"`
	GateID          string         `json:"gate_id"`
	State           LifecycleState `json:"lifecycle_state"`
	ArrivedAt       *time.Time     `json:"arrived_at,omitempty"`
	CreatedLocal    string         `json:"created_local,omitempty"`
}

// OnSite is the boolean view of the lifecycle state.
func (a Appointment) OnSite() bool { return a.State == StateOnSite }

// Duration returns the slot length occupied at the gate.
func (a Appointment) Duration() time.Duration {
	return time.Duration(a.DurationMinutes) * time.Minute
}

// End returns the instant the gate becomes free again.
func (a Appointment) End() time.Time { return a.ScheduledAt.Add(a.Duration()) }

// SetScheduledAt moves the appointment and re-derives its time label.
// Every mutation of ScheduledAt must go through here.
func (a *Appointment) SetScheduledAt(t time.Time) {
	a.ScheduledAt = t
	a.TimeLabel = FormatTimeLabel(t)
}

// MarkOnSite transitions a pending appointment to on site at the given time.
func (a *Appointment) MarkOnSite(at time.Time) {
	if a.State == StateOnSite {
		return
	}
	a.State = StateOnSite
	t := at
	a.ArrivedAt = &t
}

// MarkDeparted transitions the appointment to the terminal state.
func (a *Appointment) MarkDeparted() { a.State = StateDeparted }

// MarkPending reverts an appointment to pending and forgets the arrival.
func (a *Appointment) MarkPending() {
	a.State = StatePending
	a.ArrivedAt = nil
}

// FormatTimeLabel renders the local wall-clock time of t as zero padded HH:MM.
func FormatTimeLabel(t time.Time) string { return t.Format("15:04") }

// DayKey returns the YYYY-MM-DD key of t in its own location.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }

// ParseDayKey parses a YYYY-MM-DD key as midnight in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation("2006-01-02", key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", key, err)
	}
	return d, nil
}

// AppointmentID builds the stable per-day identity of a source record.
func AppointmentID(sourceID, dayKey string) string {
	return fmt.Sprintf("del-%s-%s", sourceID, dayKey)
}
