// Package ingest adapts loosely shaped upstream list items into normalized
// records. Each logical field is read from a fixed, ordered list of source
// field names; the first non-empty one wins.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one normalized upstream item, ready for classification.
type Record struct {
	SourceID    string
	ScheduledAt time.Time
	Company     string
	Plate       string
	OnSite      bool
	Created     string
}

// Field alias lists, in lookup order.
var (
	IDFields        = []string{"Id", "ID", "id"}
	ScheduledFields = []string{"Awizacja", "OData__x0032_025_Awizacja"}
	CompanyFields   = []string{"Kierunek_x002f_Nazwa_x0020_Dostawcy", "Title"}
	PlateFields     = []string{
		"Numery_x0020_rejestracyjne",
		"Rejestracja",
		"OData__x004e_umery_x0020_rejestracyjne",
		"NumeryRejestracyjne",
		"NrRejestracyjny",
		"Nr_x0020_rejestracyjny",
	}
	OnSiteFields  = []string{"Tak_x002f_Nie", "Status"}
	CreatedFields = []string{"Created"}
)

// SelectFields lists every source column the adapter may read.
func SelectFields() []string {
	var out []string
	for _, group := range [][]string{IDFields[:1], ScheduledFields, CompanyFields, PlateFields, OnSiteFields, CreatedFields} {
		out = append(out, group...)
	}
	return out
}

// Normalize maps item onto a Record. It returns false when the item carries
// no identifier or no timestamp at all; such items are dropped silently.
// Timestamps that are present but unparseable fall back to now.
func Normalize(item map[string]any, loc *time.Location, now time.Time) (Record, bool) {
	id := first(item, IDFields)
	if id == "" {
		return Record{}, false
	}
	raw := first(item, ScheduledFields)
	if raw == "" {
		return Record{}, false
	}
	return Record{
		SourceID:    id,
		ScheduledAt: ParseTimestamp(raw, loc, now),
		Company:     first(item, CompanyFields),
		Plate:       first(item, PlateFields),
		OnSite:      strings.EqualFold(first(item, OnSiteFields), "tak"),
		Created:     first(item, CreatedFields),
	}, true
}

// NormalizeDay normalizes items and keeps those scheduled on day, compared
// by calendar date in loc. Input order is preserved.
func NormalizeDay(items []map[string]any, day time.Time, loc *time.Location, now time.Time) []Record {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := day.In(loc).Date()
	out := make([]Record, 0, len(items))
	for _, it := range items {
		rec, ok := Normalize(it, loc, now)
		if !ok {
			continue
		}
		ry, rm, rd := rec.ScheduledAt.In(loc).Date()
		if ry != y || rm != m || rd != d {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func first(item map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := item[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "tak"
		}
		return "nie"
	default:
		return fmt.Sprint(t)
	}
}
