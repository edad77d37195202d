package export

import (
	"encoding/csv"
	"io"

	"github.com/kilianp07/docksched/core/model"
)

// BOM lets spreadsheet tools detect UTF-8 in the detailed export.
const BOM = "\uFEFF"

// DayHeader is the column set of the detailed day export.
var DayHeader = []string{"Date", "Time", "Company", "Plate", "Gate", "Status", "Type"}

// StatusLabel is the human readable form of a lifecycle state.
func StatusLabel(s model.LifecycleState) string {
	switch s {
	case model.StateOnSite:
		return "On site"
	case model.StateDeparted:
		return "Departed"
	default:
		return "Pending"
	}
}

// TypeLabel is the human readable form of an operation type.
func TypeLabel(t model.OperationType) string {
	switch t {
	case model.OperationLoad:
		return "Load"
	case model.OperationCourier:
		return "Courier"
	default:
		return "Unload"
	}
}

// WriteDayCSV writes one row per appointment, prefixed by a UTF-8 BOM.
// Dates are written as DD.MM.YYYY in the appointment's own zone.
func WriteDayCSV(w io.Writer, items []model.Appointment) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(DayHeader); err != nil {
		return err
	}
	for _, a := range items {
		rec := []string{
			a.ScheduledAt.Format("02.01.2006"),
			a.TimeLabel,
			a.CompanyName,
			a.PlateNumber,
			a.GateID,
			StatusLabel(a.State),
			TypeLabel(a.Operation),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DayFileName is the download name of a day export.
func DayFileName(day string) string { return "deliveries-" + day + ".csv" }
