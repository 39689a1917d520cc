package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/jdalisay/anihan/core/metrics"
)

// PromSink records forecast events in Prometheus metrics.
type PromSink struct {
	forecasts *prometheus.CounterVec
	points    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	saves     *prometheus.CounterVec
	models    *prometheus.GaugeVec
}

// NewPromSink registers forecast metrics on the default Prometheus registerer.
// The metrics server is started separately; see StartPromServer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	forecasts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forecasts_total",
		Help: "Total number of forecast computations",
	}, []string{"species", "outcome"})
	points := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forecast_points_total",
		Help: "Total number of prediction points generated",
	}, []string{"species"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forecast_duration_seconds",
		Help:    "Time spent computing one forecast",
		Buckets: prometheus.DefBuckets,
	}, []string{"species"})
	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "history_saves_total",
		Help: "Total number of best-effort history writes",
	}, []string{"species", "saved"})
	models := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "models_loaded",
		Help: "Whether a species' model artifact is loaded",
	}, []string{"species"})

	s := &PromSink{forecasts: forecasts, points: points, duration: duration, saves: saves, models: models}
	for _, c := range []prometheus.Collector{forecasts, points, duration, saves, models} {
		if err := register(reg, c, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector, s *PromSink) error {
	err := reg.Register(c)
	if err == nil {
		return nil
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		switch existing := are.ExistingCollector.(type) {
		case *prometheus.CounterVec:
			switch c {
			case s.forecasts:
				s.forecasts = existing
			case s.points:
				s.points = existing
			case s.saves:
				s.saves = existing
			}
		case *prometheus.HistogramVec:
			s.duration = existing
		case *prometheus.GaugeVec:
			s.models = existing
		}
		return nil
	}
	return err
}

// RecordForecast counts the computation and observes its duration.
func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	outcome := "success"
	if ev.Error != "" {
		outcome = "failure"
	}
	s.forecasts.WithLabelValues(ev.Species, outcome).Inc()
	if ev.Error == "" {
		s.points.WithLabelValues(ev.Species).Add(float64(ev.Points))
	}
	s.duration.WithLabelValues(ev.Species).Observe(ev.Duration.Seconds())
	return nil
}

// RecordSave counts history write outcomes.
func (s *PromSink) RecordSave(ev coremetrics.SaveEvent) error {
	s.saves.WithLabelValues(ev.Species, strconv.FormatBool(ev.Saved)).Inc()
	return nil
}

// RecordModelLoad tracks per-species artifact availability.
func (s *PromSink) RecordModelLoad(ev coremetrics.ModelLoadEvent) error {
	v := 0.0
	if ev.Loaded {
		v = 1
	}
	s.models.WithLabelValues(ev.Species).Set(v)
	return nil
}
