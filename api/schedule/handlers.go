package schedule

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/docksched/core/audit"
	"github.com/kilianp07/docksched/core/edit"
	"github.com/kilianp07/docksched/core/gates"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/planner"
	"github.com/kilianp07/docksched/core/stats"
	"github.com/kilianp07/docksched/pkg/export"
)

// DayResponse is the board listing of one day.
type DayResponse struct {
	Day          string              `json:"day"`
	Appointments []model.Appointment `json:"appointments"`
	Gates        []gates.Gate        `json:"gates"`
	Counts       map[string]int      `json:"counts"`
}

// StatsResponse combines the day counters and the gate utilisation.
type StatsResponse = stats.Report

// listGates handles GET /api/gates. With ?day= only the visible gates of
// that day are returned.
func (s *Server) listGates(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		writeJSON(w, http.StatusOK, s.planner.Directory().All())
		return
	}
	items, err := s.planner.Snapshot(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nonNilGates(s.planner.Visible(items)))
}

// listAppointments handles GET /api/days/{day}/appointments?q=&type=.
// Gates and counts describe the whole day, not the filtered listing.
func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	typ, err := planner.ParseFilterType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	items, err := s.planner.Snapshot(r.Context(), day)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DayResponse{
		Day:          day,
		Appointments: planner.Filter(items, r.URL.Query().Get("q"), typ),
		Gates:        nonNilGates(s.planner.Visible(items)),
		Counts:       stats.TypeCounts(items),
	})
}

func nonNilGates(g []gates.Gate) []gates.Gate {
	if g == nil {
		return []gates.Gate{}
	}
	return g
}

// refresh handles POST /api/days/{day}/refresh.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	items, err := s.planner.Refresh(r.Context(), day)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DayResponse{
		Day:          day,
		Appointments: items,
		Gates:        nonNilGates(s.planner.Visible(items)),
		Counts:       stats.TypeCounts(items),
	})
}

// editAppointment handles PUT /api/days/{day}/appointments/{id}.
func (s *Server) editAppointment(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	var req edit.Request
	if !decode(w, r, &req) {
		return
	}
	a, err := s.planner.Edit(r.Context(), day, chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// moveAppointment handles POST /api/days/{day}/appointments/{id}/move.
func (s *Server) moveAppointment(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	var req edit.MoveRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := s.planner.Move(r.Context(), day, chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// markArrived handles POST /api/days/{day}/appointments/{id}/arrive.
func (s *Server) markArrived(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	a, err := s.planner.MarkArrived(r.Context(), day, chi.URLParam(r, "id"), s.now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// deleteAppointment handles DELETE /api/days/{day}/appointments/{id}.
func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	if err := s.planner.Delete(r.Context(), day, chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dayStats handles GET /api/days/{day}/stats.
func (s *Server) dayStats(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	report, err := s.planner.Stats(r.Context(), day)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// exportDay handles GET /api/days/{day}/export.csv.
func (s *Server) exportDay(w http.ResponseWriter, r *http.Request) {
	day, _ := dayFrom(r)
	items, err := s.planner.Snapshot(r.Context(), day)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DayFileName(day)+`"`)
	if err := export.WriteDayCSV(w, items); err != nil {
		s.log.Errorf("export %s: %v", day, err)
	}
}

// historyBase parses ?base=YYYY-MM-DD, defaulting to today.
func (s *Server) historyBase(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	base := r.URL.Query().Get("base")
	if base == "" {
		base = s.planner.Today()
	}
	t, err := model.ParseDayKey(base, s.planner.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return time.Time{}, false
	}
	return t, true
}

// history handles GET /api/history?base=.
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	base, ok := s.historyBase(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteHistoryJSON(w, s.planner.History(r.Context(), base)); err != nil {
		s.log.Errorf("history: %v", err)
	}
}

// historyCSV handles GET /api/history.csv?base=.
func (s *Server) historyCSV(w http.ResponseWriter, r *http.Request) {
	base, ok := s.historyBase(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.HistoryFileName+`"`)
	if err := export.WriteHistoryCSV(w, s.planner.History(r.Context(), base)); err != nil {
		s.log.Errorf("history csv: %v", err)
	}
}

// historyChart handles GET /api/history/chart?base=.
func (s *Server) historyChart(w http.ResponseWriter, r *http.Request) {
	base, ok := s.historyBase(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteHistoryChart(w, s.planner.History(r.Context(), base)); err != nil {
		s.log.Errorf("history chart: %v", err)
	}
}

// auditLog handles GET /api/audit?day=&trigger=&id=&start=&end=.
func (s *Server) auditLog(w http.ResponseWriter, r *http.Request) {
	q := audit.LogQuery{
		Day:           r.URL.Query().Get("day"),
		Trigger:       r.URL.Query().Get("trigger"),
		AppointmentID: r.URL.Query().Get("id"),
	}
	if v := r.URL.Query().Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.Start = t
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.End = t
		}
	}
	records, err := s.audit.Query(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if records == nil {
		records = []audit.LogRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
