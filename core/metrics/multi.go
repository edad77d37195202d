package metrics

// MultiSink fans events out to several sinks, stopping at the first error.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordCycle(ev CycleEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCycle(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordFetch forwards to sinks implementing FetchRecorder.
func (m *MultiSink) RecordFetch(ev FetchEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(FetchRecorder); ok {
			if err := r.RecordFetch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEdit forwards to sinks implementing EditRecorder.
func (m *MultiSink) RecordEdit(ev EditEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(EditRecorder); ok {
			if err := r.RecordEdit(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordOccupancy forwards to sinks implementing OccupancyRecorder.
func (m *MultiSink) RecordOccupancy(ev GateOccupancy) error {
	for _, s := range m.Sinks {
		if r, ok := s.(OccupancyRecorder); ok {
			if err := r.RecordOccupancy(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPersistFailure forwards to sinks implementing PersistFailureRecorder.
func (m *MultiSink) RecordPersistFailure(ev PersistFailure) error {
	for _, s := range m.Sinks {
		if r, ok := s.(PersistFailureRecorder); ok {
			if err := r.RecordPersistFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
