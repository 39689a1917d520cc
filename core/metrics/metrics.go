// Package metrics defines interfaces for recording forecast events. Sinks like
// PromSink and InfluxSink record completed forecasts and history writes and
// can be combined with MultiSink. Recording is observability only: sink errors
// are logged by callers and never affect the response path.
package metrics

import "time"

// ForecastEvent captures one completed (or failed) forecast computation.
type ForecastEvent struct {
	RequestID string
	Species   string
	Province  string
	City      string
	Points    int
	Duration  time.Duration
	Error     string
	Time      time.Time
}

// ForecastRecorder records forecast computations.
type ForecastRecorder interface {
	RecordForecast(ev ForecastEvent) error
}

// SaveEvent captures the outcome of one best-effort history write.
type SaveEvent struct {
	RequestID string
	Species   string
	Saved     bool
	Error     string
	Time      time.Time
}

// SaveRecorder records history write outcomes.
type SaveRecorder interface {
	RecordSave(ev SaveEvent) error
}

// ModelLoadEvent captures one artifact load attempt at startup.
type ModelLoadEvent struct {
	Species  string
	Strategy string
	Loaded   bool
	Time     time.Time
}

// ModelLoadRecorder records artifact load outcomes.
type ModelLoadRecorder interface {
	RecordModelLoad(ev ModelLoadEvent) error
}

// Sink is the minimal surface every metrics backend implements. Additional
// recorder interfaces are optional capabilities probed with type assertions.
type Sink interface {
	ForecastRecorder
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordForecast(ForecastEvent) error   { return nil }
func (NopSink) RecordSave(SaveEvent) error           { return nil }
func (NopSink) RecordModelLoad(ModelLoadEvent) error { return nil }
