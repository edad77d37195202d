package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/docksched/core/metrics"
)

// PromSink exposes resolution cycles, fetches and edits as Prometheus
// metrics. The HTTP endpoint is served separately on cfg.PrometheusPort.
type PromSink struct {
	cycles        *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	shifts        *prometheus.CounterVec
	departed      prometheus.Counter
	appointments  *prometheus.GaugeVec
	onSite        *prometheus.GaugeVec
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	fetchRecords  *prometheus.GaugeVec
	edits         *prometheus.CounterVec
	gateLoad      *prometheus.GaugeVec
	saveFailures  prometheus.Counter
	busDropped    prometheus.Gauge
}

// NewPromSink registers the scheduler metrics on the default registerer.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.cycles, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docksched_cycles_total",
		Help: "Resolution cycles per trigger",
	}, []string{"trigger"})); err != nil {
		return nil, err
	}
	if s.cycleDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docksched_cycle_duration_seconds",
		Help:    "Time from trigger to resolved day",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})); err != nil {
		return nil, err
	}
	if s.shifts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docksched_shifted_appointments_total",
		Help: "Appointments pushed later by the resolver",
	}, []string{"trigger"})); err != nil {
		return nil, err
	}
	if s.departed, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docksched_departed_total",
		Help: "Vehicles marked departed by the dwell sweep",
	})); err != nil {
		return nil, err
	}
	if s.appointments, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "docksched_appointments",
		Help: "Appointments in the resolved day",
	}, []string{"day"})); err != nil {
		return nil, err
	}
	if s.onSite, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "docksched_on_site",
		Help: "Vehicles currently on site",
	}, []string{"day"})); err != nil {
		return nil, err
	}
	if s.fetches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docksched_fetches_total",
		Help: "Upstream fetches by result",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if s.fetchDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "docksched_fetch_duration_seconds",
		Help:    "Upstream fetch latency",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.fetchRecords, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "docksched_fetch_records",
		Help: "Records in the last fetch, before and after day filtering",
	}, []string{"stage"})); err != nil {
		return nil, err
	}
	if s.edits, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docksched_edits_total",
		Help: "Operator changes by kind and outcome",
	}, []string{"kind", "accepted"})); err != nil {
		return nil, err
	}
	if s.gateLoad, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "docksched_gate_appointments",
		Help: "Appointments per gate in the last resolved day",
	}, []string{"gate"})); err != nil {
		return nil, err
	}
	if s.saveFailures, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "docksched_persist_failures_total",
		Help: "Background saves that failed",
	})); err != nil {
		return nil, err
	}
	if s.busDropped, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "docksched_bus_dropped_events",
		Help: "Day change deliveries missed by slow subscribers",
	})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCycle counts the cycle and updates the day gauges.
func (s *PromSink) RecordCycle(ev coremetrics.CycleEvent) error {
	s.cycles.WithLabelValues(ev.Trigger).Inc()
	s.cycleDuration.WithLabelValues(ev.Trigger).Observe(ev.Duration.Seconds())
	s.shifts.WithLabelValues(ev.Trigger).Add(float64(ev.Shifts))
	s.departed.Add(float64(ev.Departed))
	s.appointments.WithLabelValues(ev.Day).Set(float64(ev.Items))
	s.onSite.WithLabelValues(ev.Day).Set(float64(ev.OnSite))
	s.busDropped.Set(float64(ev.Dropped))
	return nil
}

func (s *PromSink) RecordFetch(ev coremetrics.FetchEvent) error {
	result := "ok"
	if ev.Failed {
		result = "error"
	}
	s.fetches.WithLabelValues(result).Inc()
	s.fetchDuration.Observe(ev.Duration.Seconds())
	if !ev.Failed {
		s.fetchRecords.WithLabelValues("received").Set(float64(ev.Records))
		s.fetchRecords.WithLabelValues("kept").Set(float64(ev.Kept))
	}
	return nil
}

func (s *PromSink) RecordEdit(ev coremetrics.EditEvent) error {
	s.edits.WithLabelValues(ev.Kind, strconv.FormatBool(ev.Accepted)).Inc()
	return nil
}

// RecordOccupancy replaces the per gate gauges with the latest day.
func (s *PromSink) RecordOccupancy(ev coremetrics.GateOccupancy) error {
	s.gateLoad.Reset()
	for gate, n := range ev.Gates {
		s.gateLoad.WithLabelValues(gate).Set(float64(n))
	}
	return nil
}

func (s *PromSink) RecordPersistFailure(coremetrics.PersistFailure) error {
	s.saveFailures.Inc()
	return nil
}
