package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/docksched/core/stats"
)

// HistoryFileName is the download name of the history export.
const HistoryFileName = "warehouse-statistics.csv"

// WriteHistoryJSON writes the history as a JSON array.
func WriteHistoryJSON(w io.Writer, history []stats.DayStats) error {
	if history == nil {
		history = []stats.DayStats{}
	}
	return json.NewEncoder(w).Encode(history)
}

// WriteHistoryCSV writes one row per day: Date, Total, Arrived, Pending.
func WriteHistoryCSV(w io.Writer, history []stats.DayStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Total", "Arrived", "Pending"}); err != nil {
		return err
	}
	for _, d := range history {
		rec := []string{d.Date, strconv.Itoa(d.Total), strconv.Itoa(d.Arrived), strconv.Itoa(d.Pending)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
