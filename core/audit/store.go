// Package audit records every resolution cycle of a day: what triggered
// it, which start times moved and which vehicles were marked departed.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/docksched/core/schedule"
)

// LogRecord captures one resolution cycle.
type LogRecord struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Day       string           `json:"day"`
	Trigger   string           `json:"trigger"`
	Items     int              `json:"items"`
	Shifts    []schedule.Shift `json:"shifts,omitempty"`
	Departed  []string         `json:"departed,omitempty"`
	Subject   string           `json:"subject,omitempty"`
	Duration  time.Duration    `json:"duration_ns"`
}

// NewRecord stamps a record with a fresh id.
func NewRecord(day, trigger string, at time.Time) LogRecord {
	return LogRecord{ID: uuid.NewString(), Timestamp: at, Day: day, Trigger: trigger}
}

// LogQuery defines filters for retrieving records.
type LogQuery struct {
	Start         time.Time
	End           time.Time
	Day           string
	Trigger       string
	AppointmentID string
}

// Matches reports whether r passes every filter of q.
func (q LogQuery) Matches(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Day != "" && r.Day != q.Day {
		return false
	}
	if q.Trigger != "" && r.Trigger != q.Trigger {
		return false
	}
	if q.AppointmentID == "" || r.Subject == q.AppointmentID {
		return true
	}
	for _, s := range r.Shifts {
		if s.ID == q.AppointmentID {
			return true
		}
	}
	for _, id := range r.Departed {
		if id == q.AppointmentID {
			return true
		}
	}
	return false
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, LogRecord) error              { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]LogRecord, error) { return nil, nil }
func (NopStore) Close() error                                         { return nil }
