// Package app assembles the forecast service from configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jdalisay/anihan/api"
	"github.com/jdalisay/anihan/config"
	"github.com/jdalisay/anihan/core/artifact"
	"github.com/jdalisay/anihan/core/forecast"
	"github.com/jdalisay/anihan/core/history"
	"github.com/jdalisay/anihan/core/logger"
	coremetrics "github.com/jdalisay/anihan/core/metrics"
	"github.com/jdalisay/anihan/infra/metrics"
	"github.com/jdalisay/anihan/infra/store"

	// register the built-in metrics sinks
	_ "github.com/jdalisay/anihan/infra/notify"

	infralogger "github.com/jdalisay/anihan/infra/logger"
)

// Service owns the HTTP server and every backend it serves from.
type Service struct {
	Forecast *forecast.Service

	server   *http.Server
	store    history.Store
	sink     coremetrics.Sink
	log      logger.Logger
	promPort string
}

// New creates a Service from the configuration. Model load failures and an
// unreachable history database are degradations, not startup errors: the
// service comes up and serves whatever is available.
func New(cfg *config.Config) (*Service, error) {
	logg := infralogger.New("service")

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	reg := artifact.NewRegistry(artifact.NewLoader(logg), logg)
	for _, entry := range cfg.Models.Entries {
		loadErr := reg.Load(entry.Registry())
		if loadErr != nil {
			logg.Errorf("model %s unavailable: %v", entry.Species, loadErr)
		}
		recordModelLoad(sink, reg, logg, entry.Species, loadErr == nil)
	}

	var st history.Store
	if cfg.Database.Driver != "none" {
		st, err = store.Open(cfg.Database.Store(), logg)
		if err != nil {
			logg.Errorf("history store unavailable, persistence disabled: %v", err)
			st = nil
		}
	}

	svc := forecast.NewService(reg, forecast.NewEngine(logg), st, sink, cfg.Models.Species(), logg)

	s := &Service{
		Forecast: svc,
		store:    st,
		sink:     sink,
		log:      logg,
		promPort: cfg.Metrics.PrometheusPort,
		server: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      api.NewMux(svc, logg),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		},
	}
	return s, nil
}

func recordModelLoad(sink coremetrics.Sink, reg *artifact.Registry, log logger.Logger, species string, loaded bool) {
	rec, ok := sink.(coremetrics.ModelLoadRecorder)
	if !ok {
		return
	}
	ev := coremetrics.ModelLoadEvent{Species: species, Loaded: loaded, Time: time.Now().UTC()}
	if loaded {
		if h, err := reg.Handle(species); err == nil {
			ev.Strategy = h.Strategy
		}
	}
	if err := rec.RecordModelLoad(ev); err != nil {
		log.Warnf("metrics sink: %v", err)
	}
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// listener fails.
func (s *Service) Run(ctx context.Context) error {
	if s.promPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Close releases the history store and any closable sink.
func (s *Service) Close() error {
	var firstErr error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			firstErr = err
		}
	}
	if c, ok := s.sink.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
