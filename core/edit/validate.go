// Package edit validates and applies operator changes to one appointment.
package edit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/docksched/core/gates"
	"github.com/kilianp07/docksched/core/model"
)

// ErrValidation is matched by every FieldErrors value.
var ErrValidation = errors.New("validation failed")

// FieldErrors maps a request field to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() error { return ErrValidation }

// Window is the daily operating window, in minutes after midnight.
type Window struct {
	Open  int
	Close int
}

// DefaultWindow is 06:30 to 20:30.
var DefaultWindow = Window{Open: 6*60 + 30, Close: 20*60 + 30}

// ParseWindow builds a window from two HH:MM labels.
func ParseWindow(openLabel, closeLabel string) (Window, error) {
	o, err := ParseTimeLabel(openLabel)
	if err != nil {
		return Window{}, fmt.Errorf("open time: %w", err)
	}
	c, err := ParseTimeLabel(closeLabel)
	if err != nil {
		return Window{}, fmt.Errorf("close time: %w", err)
	}
	if c <= o {
		return Window{}, fmt.Errorf("close time %s must be after open time %s", closeLabel, openLabel)
	}
	return Window{Open: o, Close: c}, nil
}

// Contains reports whether minute lies inside the window, bounds included.
func (w Window) Contains(minute int) bool { return minute >= w.Open && minute <= w.Close }

// ParseTimeLabel parses H:MM or HH:MM on a 24 hour clock and returns the
// minutes after midnight.
func ParseTimeLabel(s string) (int, error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 || !digits(h) || !digits(m) {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hh := atoi(h)
	mm := atoi(m)
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return hh*60 + mm, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// Validator checks edit and move requests against the gate directory and
// the operating window.
type Validator struct {
	v      *validator.Validate
	window Window
}

// NewValidator registers the custom "gate", "timelabel" and "lifecycle"
// tags against dir.
func NewValidator(dir *gates.Directory, window Window) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("gate", func(fl validator.FieldLevel) bool {
		return dir.Contains(fl.Field().String())
	})
	_ = v.RegisterValidation("timelabel", func(fl validator.FieldLevel) bool {
		_, err := ParseTimeLabel(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("lifecycle", func(fl validator.FieldLevel) bool {
		return model.LifecycleState(fl.Field().String()).Valid()
	})
	return &Validator{v: v, window: window}
}

// Window returns the operating window used for time checks.
func (v *Validator) Window() Window { return v.window }

func (v *Validator) check(req any) FieldErrors {
	fe := FieldErrors{}
	err := v.v.Struct(req)
	if err == nil {
		return fe
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		fe["request"] = err.Error()
		return fe
	}
	for _, e := range ve {
		fe[jsonName(e.StructField())] = message(e)
	}
	return fe
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gate":
		return fmt.Sprintf("unknown gate %q", e.Value())
	case "timelabel":
		return "expected HH:MM (24h)"
	case "lifecycle":
		return fmt.Sprintf("unknown state %q", e.Value())
	default:
		return "failed " + e.Tag()
	}
}

var fieldNames = map[string]string{
	"CompanyName": "company_name",
	"PlateNumber": "plate_number",
	"GateID":      "gate_id",
	"TimeLabel":   "time_label",
	"State":       "lifecycle_state",
	"ScheduledAt": "scheduled_at",
}

func jsonName(field string) string {
	if n, ok := fieldNames[field]; ok {
		return n
	}
	return strings.ToLower(field)
}

// at builds the instant of minute on the calendar day of day.
func at(day time.Time, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, day.Location())
}
