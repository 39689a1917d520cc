package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jdalisay/anihan/core/artifact"
	"github.com/jdalisay/anihan/core/history"
	"github.com/jdalisay/anihan/core/logger"
	"github.com/jdalisay/anihan/core/metrics"
	"github.com/jdalisay/anihan/core/model"
)

// Metadata accompanies a successful forecast response. RequestID is present
// only when the history write succeeded.
type Metadata struct {
	Province        string    `json:"province"`
	City            string    `json:"city"`
	DateFrom        string    `json:"dateFrom"`
	DateTo          string    `json:"dateTo"`
	PredictionCount int       `json:"predictionCount"`
	RequestID       string    `json:"requestId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Response is the typed result of one forecast call.
type Response struct {
	Success     bool                    `json:"success"`
	Predictions []model.PredictionPoint `json:"predictions"`
	ModelInfo   model.ModelInfo         `json:"modelInfo"`
	Metadata    Metadata                `json:"metadata"`
}

// Service wires the model registry, the engine, the history gateway and the
// metrics sink into the forecast operation. The registry is passed in
// explicitly; there is no ambient global model cache.
type Service struct {
	registry *artifact.Registry
	engine   *Engine
	store    history.Store
	sink     metrics.Sink
	log      logger.Logger
	known    []string
}

// NewService builds a forecast service. store may be nil, which disables
// history persistence entirely: predictions still succeed, nothing is saved.
func NewService(reg *artifact.Registry, engine *Engine, store history.Store, sink metrics.Sink, known []string, log logger.Logger) *Service {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Service{registry: reg, engine: engine, store: store, sink: sink, log: log, known: known}
}

// KnownSpecies returns the configured species set.
func (s *Service) KnownSpecies() []string { return s.known }

// Models lists every registered model.
func (s *Service) Models() []model.ModelInfo { return s.registry.Infos() }

// Available reports whether a species has a loaded model.
func (s *Service) Available(species string) bool { return s.registry.Available(species) }

// History exposes the persistence gateway for retrieval endpoints, or nil when
// persistence is disabled.
func (s *Service) History() history.Store { return s.store }

// Forecast runs the full prediction flow: resolve the model handle, compute
// the point sequence, then attempt the best-effort history save. The save is
// strictly two-phase: it happens only after a complete successful result, and
// its failure is carried solely as an absent requestId in the metadata.
func (s *Service) Forecast(ctx context.Context, req model.ForecastRequest) (*Response, error) {
	start := time.Now()

	handle, err := s.registry.Handle(req.Species)
	if err != nil {
		s.recordForecast("", req, 0, start, err)
		return nil, err
	}

	points, err := s.engine.Predict(handle, req)
	if err != nil {
		s.recordForecast("", req, 0, start, err)
		return nil, err
	}
	s.log.Infof("forecast %s %s: %d points", req.Species, horizon(req.DateFrom, req.DateTo), len(points))

	requestID := s.save(ctx, req, points)
	s.recordForecast(requestID, req, len(points), start, nil)

	return &Response{
		Success:     true,
		Predictions: points,
		ModelInfo: model.ModelInfo{
			Species:  handle.Species,
			Name:     handle.Name,
			Version:  handle.Version,
			Strategy: handle.Strategy,
			LoadedAt: handle.LoadedAt,
			Loaded:   true,
		},
		Metadata: Metadata{
			Province:        req.Province,
			City:            req.City,
			DateFrom:        model.TruncateDay(req.DateFrom).Format(model.DateLayout),
			DateTo:          model.TruncateDay(req.DateTo).Format(model.DateLayout),
			PredictionCount: len(points),
			RequestID:       requestID,
			Timestamp:       time.Now().UTC(),
		},
	}, nil
}

// save persists the request and its points. Failures are logged and recorded,
// never propagated: the response goes out regardless, with an empty requestID.
func (s *Service) save(ctx context.Context, req model.ForecastRequest, points []model.PredictionPoint) string {
	if s.store == nil {
		return ""
	}
	requestID := uuid.NewString()
	rec := history.Record{
		RequestID: requestID,
		Species:   req.Species,
		Province:  req.Province,
		City:      req.City,
		DateFrom:  model.TruncateDay(req.DateFrom),
		DateTo:    model.TruncateDay(req.DateTo),
		CreatedAt: time.Now().UTC(),
		IPAddress: req.ClientIP,
		UserAgent: req.UserAgent,
	}
	if err := s.store.Save(ctx, rec, points); err != nil {
		s.log.Errorf("history save for %s failed: %v", req.Species, err)
		s.recordSave(requestID, req.Species, false, err)
		return ""
	}
	s.log.Infof("saved forecast with request_id %s", requestID)
	s.recordSave(requestID, req.Species, true, nil)
	return requestID
}

func (s *Service) recordForecast(requestID string, req model.ForecastRequest, points int, start time.Time, err error) {
	ev := metrics.ForecastEvent{
		RequestID: requestID,
		Species:   req.Species,
		Province:  req.Province,
		City:      req.City,
		Points:    points,
		Duration:  time.Since(start),
		Time:      time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if serr := s.sink.RecordForecast(ev); serr != nil {
		s.log.Warnf("metrics sink: %v", serr)
	}
}

func (s *Service) recordSave(requestID, species string, saved bool, err error) {
	rec, ok := s.sink.(metrics.SaveRecorder)
	if !ok {
		return
	}
	ev := metrics.SaveEvent{RequestID: requestID, Species: species, Saved: saved, Time: time.Now().UTC()}
	if err != nil {
		ev.Error = err.Error()
	}
	if serr := rec.RecordSave(ev); serr != nil {
		s.log.Warnf("metrics sink: %v", serr)
	}
}
