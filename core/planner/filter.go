package planner

import (
	"fmt"
	"strings"

	"github.com/kilianp07/docksched/core/model"
)

// FilterType narrows a listing to one kind of appointment.
type FilterType string

const (
	FilterAll     FilterType = ""
	FilterLoad    FilterType = "LOAD"
	FilterUnload  FilterType = "UNLOAD"
	FilterCourier FilterType = "COURIER"
	FilterOnSite  FilterType = "ONSITE"
)

// ParseFilterType accepts the listing type names case-insensitively.
func ParseFilterType(s string) (FilterType, error) {
	switch t := FilterType(strings.ToUpper(strings.TrimSpace(s))); t {
	case FilterAll, FilterLoad, FilterUnload, FilterCourier, FilterOnSite:
		return t, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter type %q", s)
	}
}

// Filter returns the items matching the free text query and the type.
// The query is matched case-insensitively against company, plate and
// source id. Order is preserved.
func Filter(items []model.Appointment, query string, typ FilterType) []model.Appointment {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Appointment, 0, len(items))
	for _, a := range items {
		if !matchesType(a, typ) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(a.CompanyName), q) &&
			!strings.Contains(strings.ToLower(a.PlateNumber), q) &&
			!strings.Contains(strings.ToLower(a.SourceID), q) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesType(a model.Appointment, typ FilterType) bool {
	switch typ {
	case FilterLoad:
		return a.Operation == model.OperationLoad
	case FilterUnload:
		return a.Operation == model.OperationUnload
	case FilterCourier:
		return a.Operation == model.OperationCourier
	case FilterOnSite:
		return a.OnSite()
	default:
		return true
	}
}
