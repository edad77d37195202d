// Package classify turns normalized upstream records into appointments.
package classify

import (
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/docksched/core/gates"
	"github.com/kilianp07/docksched/core/ingest"
	"github.com/kilianp07/docksched/core/model"
)

// LoadThreshold is the first source id booked as a loading. Lower ids are
// unloadings.
const LoadThreshold = 2800

// UnknownCompany replaces an empty company name.
const UnknownCompany = "Unknown company"

const courierMarker = "kurier"

// specialClients are routed to the special unload gate.
var specialClients = []string{"celltrion", "alvotech"}

// Classifier assigns operation type and gate to incoming records.
type Classifier struct {
	DefaultDuration int
	Now             func() time.Time
}

// New returns a classifier stamping new appointments with defaultDuration minutes.
func New(defaultDuration int) *Classifier {
	if defaultDuration <= 0 {
		defaultDuration = 90
	}
	return &Classifier{DefaultDuration: defaultDuration, Now: time.Now}
}

// Classify builds an appointment from rec. It returns false when the record
// has no source id.
func (c *Classifier) Classify(rec ingest.Record) (model.Appointment, bool) {
	if strings.TrimSpace(rec.SourceID) == "" {
		return model.Appointment{}, false
	}
	company := strings.TrimSpace(rec.Company)
	if company == "" {
		company = UnknownCompany
	}
	op := OperationForSourceID(rec.SourceID)
	if IsCourier(company, rec.Plate) {
		op = model.OperationCourier
	}
	a := model.Appointment{
		ID:              model.AppointmentID(rec.SourceID, model.DayKey(rec.ScheduledAt)),
		SourceID:        rec.SourceID,
		DurationMinutes: c.DefaultDuration,
		CompanyName:     company,
		PlateNumber:     rec.Plate,
		Operation:       op,
		GateID:          GateFor(op, company),
		State:           model.StatePending,
		CreatedLocal:    rec.Created,
	}
	a.SetScheduledAt(rec.ScheduledAt)
	if rec.OnSite {
		a.MarkOnSite(c.now())
	}
	return a, true
}

// ClassifyAll classifies recs, dropping those without an identifier.
func (c *Classifier) ClassifyAll(recs []ingest.Record) []model.Appointment {
	out := make([]model.Appointment, 0, len(recs))
	for _, r := range recs {
		if a, ok := c.Classify(r); ok {
			out = append(out, a)
		}
	}
	return out
}

func (c *Classifier) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// NumericID strips every non-digit from sourceID and parses the rest.
func NumericID(sourceID string) (int, bool) {
	var b strings.Builder
	for _, r := range sourceID {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// OperationForSourceID applies the id threshold. Ids without digits are
// unloadings.
func OperationForSourceID(sourceID string) model.OperationType {
	if n, ok := NumericID(sourceID); ok && n >= LoadThreshold {
		return model.OperationLoad
	}
	return model.OperationUnload
}

// IsCourier reports whether company or plate mentions a courier.
func IsCourier(company, plate string) bool {
	return strings.Contains(strings.ToLower(company), courierMarker) ||
		strings.Contains(strings.ToLower(plate), courierMarker)
}

// IsSpecialClient reports whether company is on the special handling list.
func IsSpecialClient(company string) bool {
	lc := strings.ToLower(company)
	for _, s := range specialClients {
		if strings.Contains(lc, s) {
			return true
		}
	}
	return false
}

// GateFor is the default gate assignment. It is total: every input maps to
// exactly one gate of the default directory.
func GateFor(op model.OperationType, company string) string {
	switch {
	case op == model.OperationCourier:
		return gates.CourierGate
	case op == model.OperationLoad:
		return gates.LoadGate
	case IsSpecialClient(company):
		return gates.SpecialGate
	default:
		return gates.DefaultUnloadGate
	}
}
