package artifact

import (
	"fmt"
	"os"
	"time"

	"github.com/jdalisay/anihan/core/feature"
	"github.com/jdalisay/anihan/core/logger"
)

// ModelHandle is an immutable reference to one loaded artifact together with
// its resolved feature schema. Handles are created once per species and shared
// read-only across requests for the life of the process.
type ModelHandle struct {
	Species   string
	Name      string
	Version   string
	Strategy  string
	LoadedAt  time.Time
	Predictor Predictor
	Schema    feature.Schema
}

// Loader deserializes artifacts using a fixed strategy order.
type Loader struct {
	strategies []Strategy
	log        logger.Logger
}

// NewLoader builds a loader with the default strategy order.
func NewLoader(log logger.Logger) *Loader {
	return &Loader{strategies: Strategies(), log: log}
}

// Load reads the artifact at path and tries each strategy in order, each in
// full isolation: a strategy failure is recorded and the next one runs. The
// first strategy that yields a predictor wins. When every strategy fails the
// returned error is a *LoadError carrying all per-strategy reasons.
//
// The fallback schema and defaults table resolve the handle's schema once at
// load time; see feature.SchemaOf.
func (l *Loader) Load(species, name, path string, fallback feature.Schema, defaults map[string]float64) (*ModelHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		lerr := &LoadError{Path: path, Attempts: []StrategyFailure{{Strategy: "read", Err: err}}}
		l.log.Warnf("artifact %s for %s unreadable: %v", path, species, err)
		return nil, lerr
	}

	var attempts []StrategyFailure
	for _, s := range l.strategies {
		pred, err := l.tryStrategy(s, data)
		if err != nil {
			attempts = append(attempts, StrategyFailure{Strategy: s.Name, Err: err})
			continue
		}
		version := "1.0.0"
		if d, ok := pred.(Describer); ok && d.ModelVersion() != "" {
			version = d.ModelVersion()
		}
		handle := &ModelHandle{
			Species:   species,
			Name:      name,
			Version:   version,
			Strategy:  s.Name,
			LoadedAt:  time.Now().UTC(),
			Predictor: pred,
			Schema:    feature.SchemaOf(pred, fallback, defaults),
		}
		l.log.Infof("loaded %s model from %s using strategy %s", species, path, s.Name)
		return handle, nil
	}

	lerr := &LoadError{Path: path, Attempts: attempts}
	l.log.Warnf("failed to load %s model: %v", species, lerr)
	return nil, lerr
}

// tryStrategy isolates a single decode attempt, converting panics inside a
// strategy into ordinary failures.
func (l *Loader) tryStrategy(s Strategy, data []byte) (pred Predictor, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred = nil
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	pred, err = s.Decode(data)
	if err == nil && pred == nil {
		err = fmt.Errorf("strategy returned no predictor")
	}
	return pred, err
}
