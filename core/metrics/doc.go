// Package metrics defines the sinks that observe scheduling cycles. Sinks
// like PromSink and InfluxSink live in infra/metrics and register
// themselves by name; NewMetricsSink builds one sink, or a MultiSink when
// several are configured. Optional recorder interfaces let a sink opt in to
// fetch, edit and persistence events.
package metrics
