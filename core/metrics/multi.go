package metrics

import "io"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordForecast forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordForecast(ev ForecastEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordForecast(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSave forwards save outcomes to sinks that support them.
func (m *MultiSink) RecordSave(ev SaveEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SaveRecorder); ok {
			if err := rec.RecordSave(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordModelLoad forwards load outcomes to sinks that support them.
func (m *MultiSink) RecordModelLoad(ev ModelLoadEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ModelLoadRecorder); ok {
			if err := rec.RecordModelLoad(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases sinks that hold connections.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
