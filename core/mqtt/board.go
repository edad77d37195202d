// Package mqtt defines the gate display board published over MQTT and
// the arrival signal received from gate terminals.
package mqtt

import (
	"errors"
	"time"

	"github.com/kilianp07/docksched/core/model"
)

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt: not connected")

// Board is the retained message describing one resolved day.
type Board struct {
	Day       string      `json:"day"`
	Trigger   string      `json:"trigger,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
	Gates     []BoardGate `json:"gates"`
}

// BoardGate lists the appointments of one gate in start order.
type BoardGate struct {
	GateID       string       `json:"gate_id"`
	Appointments []BoardEntry `json:"appointments"`
}

type BoardEntry struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Company   string `json:"company"`
	Plate     string `json:"plate"`
	Operation string `json:"operation_type"`
	State     string `json:"state"`
}

// BuildBoard groups resolved items by gate, keeping their order. Gates
// appear in order of first appointment.
func BuildBoard(day, trigger string, items []model.Appointment, at time.Time) Board {
	b := Board{Day: day, Trigger: trigger, UpdatedAt: at, Gates: []BoardGate{}}
	idx := map[string]int{}
	for _, a := range items {
		i, ok := idx[a.GateID]
		if !ok {
			i = len(b.Gates)
			idx[a.GateID] = i
			b.Gates = append(b.Gates, BoardGate{GateID: a.GateID})
		}
		b.Gates[i].Appointments = append(b.Gates[i].Appointments, BoardEntry{
			ID:        a.ID,
			Time:      a.TimeLabel,
			Company:   a.CompanyName,
			Plate:     a.PlateNumber,
			Operation: string(a.Operation),
			State:     string(a.State),
		})
	}
	return b
}

// BoardPublisher pushes boards to gate displays.
type BoardPublisher interface {
	PublishBoard(b Board) error
}

// Arrival is the signal sent by a gate terminal when a vehicle checks in.
type Arrival struct {
	ID     string    `json:"id"`
	Day    string    `json:"day"`
	OnSite bool      `json:"on_site"`
	At     time.Time `json:"at,omitempty"`
}

// Validate reports whether the arrival names an appointment.
func (a Arrival) Validate() error {
	if a.ID == "" || a.Day == "" {
		return errors.New("arrival requires id and day")
	}
	return nil
}

// ArrivalHandler consumes arrival signals.
type ArrivalHandler func(Arrival)
