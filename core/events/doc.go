// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - DayChanged: a day's resolved set was replaced (refresh, sweep, edit,
//     move, delete or arrival)
package events
