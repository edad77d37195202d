// Package export renders day listings and statistics history as CSV, JSON
// and an HTML chart.
package export
