package edit

import (
	"strings"
	"time"

	"github.com/kilianp07/docksched/core/classify"
	"github.com/kilianp07/docksched/core/model"
)

// Request replaces the editable fields of one appointment.
type Request struct {
	CompanyName string               `json:"company_name" validate:"required"`
	PlateNumber string               `json:"plate_number" validate:"required"`
	GateID      string               `json:"gate_id" validate:"required,gate"`
	TimeLabel   string               `json:"time_label" validate:"required,timelabel"`
	State       model.LifecycleState `json:"lifecycle_state,omitempty" validate:"omitempty,lifecycle"`
}

// MoveRequest is a drag and drop of one appointment to a gate and instant.
type MoveRequest struct {
	GateID      string    `json:"gate_id" validate:"required,gate"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// Validate checks req field by field. A nil result means it is valid.
func (v *Validator) Validate(req Request) error {
	req.CompanyName = trim(req.CompanyName)
	req.PlateNumber = trim(req.PlateNumber)
	fe := v.check(req)
	if _, bad := fe["time_label"]; !bad {
		if m, err := ParseTimeLabel(req.TimeLabel); err == nil && !v.window.Contains(m) {
			fe["time_label"] = "outside operating hours"
		}
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// ValidateMove checks a move of an appointment belonging to day.
func (v *Validator) ValidateMove(req MoveRequest, day time.Time) error {
	fe := v.check(req)
	if _, bad := fe["scheduled_at"]; !bad && model.DayKey(req.ScheduledAt.In(day.Location())) != model.DayKey(day) {
		fe["scheduled_at"] = "must fall on " + model.DayKey(day)
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Apply returns a with req applied. The start instant is rebuilt from the
// time label on the appointment's own calendar day. The operation type is
// left as classified. An operator may set any state, Departed included,
// and may take a Departed appointment back. req must have passed Validate.
func Apply(a model.Appointment, req Request, now time.Time) model.Appointment {
	a.CompanyName = trim(req.CompanyName)
	a.PlateNumber = trim(req.PlateNumber)
	a.GateID = req.GateID
	if m, err := ParseTimeLabel(req.TimeLabel); err == nil {
		a.SetScheduledAt(at(a.ScheduledAt, m))
	}
	switch req.State {
	case model.StateOnSite:
		a.MarkOnSite(now)
	case model.StatePending:
		a.MarkPending()
	case model.StateDeparted:
		a.MarkDeparted()
	}
	return a
}

// ApplyMove returns a moved to req's gate and instant. A numeric source id
// is re-run through the load threshold, which also replaces a courier
// classification.
func ApplyMove(a model.Appointment, req MoveRequest) model.Appointment {
	a.GateID = req.GateID
	a.SetScheduledAt(req.ScheduledAt.In(a.ScheduledAt.Location()))
	if _, ok := classify.NumericID(a.SourceID); ok {
		a.Operation = classify.OperationForSourceID(a.SourceID)
	}
	return a
}

// MoveGrid is the step dropped appointments are snapped to.
const MoveGrid = 15 * time.Minute

// Snap rounds t to the nearest multiple of step after midnight.
func Snap(t time.Time, step time.Duration) time.Time {
	if step <= 0 {
		return t
	}
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.Add(t.Sub(midnight).Round(step))
}

func trim(s string) string { return strings.TrimSpace(s) }
