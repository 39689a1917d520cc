package artifact

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jdalisay/anihan/core/feature"
	"github.com/jdalisay/anihan/core/logger"
	"github.com/jdalisay/anihan/core/model"
)

// ModelConfig describes one species' artifact and its fallback schema.
type ModelConfig struct {
	Species  string
	Name     string
	Path     string
	Fallback feature.Schema
	Defaults map[string]float64
}

// Registry owns one ModelHandle per species. Loading is mutex-guarded so a
// species is deserialized at most once; after that handles are read-only and
// lookups never block on I/O. A species whose load failed stays registered as
// unavailable, keeping the failure reason for diagnostics.
type Registry struct {
	mu       sync.RWMutex
	loader   *Loader
	handles  map[string]*ModelHandle
	failures map[string]error
	log      logger.Logger
}

// NewRegistry returns an empty registry using the given loader.
func NewRegistry(loader *Loader, log logger.Logger) *Registry {
	return &Registry{
		loader:   loader,
		handles:  make(map[string]*ModelHandle),
		failures: make(map[string]error),
		log:      log,
	}
}

// Load loads the species' artifact unless a handle already exists. A load
// failure marks the species unavailable and is returned for visibility, but
// callers keep serving the other species regardless.
func (r *Registry) Load(cfg ModelConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[cfg.Species]; ok {
		return nil
	}
	handle, err := r.loader.Load(cfg.Species, cfg.Name, cfg.Path, cfg.Fallback, cfg.Defaults)
	if err != nil {
		r.failures[cfg.Species] = err
		return err
	}
	delete(r.failures, cfg.Species)
	r.handles[cfg.Species] = handle
	return nil
}

// Handle returns the loaded handle for a species, or ErrModelUnavailable when
// the species never loaded.
func (r *Registry) Handle(species string) (*ModelHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handles[species]; ok {
		return h, nil
	}
	if err, ok := r.failures[species]; ok {
		return nil, fmt.Errorf("%s: %w", species, err)
	}
	return nil, fmt.Errorf("%s: %w", species, ErrModelUnavailable)
}

// Available reports whether the species has a loaded model.
func (r *Registry) Available(species string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[species]
	return ok
}

// Infos lists every registered species, loaded or failed, sorted by species.
func (r *Registry) Infos() []model.ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]model.ModelInfo, 0, len(r.handles)+len(r.failures))
	for _, h := range r.handles {
		infos = append(infos, model.ModelInfo{
			Species:  h.Species,
			Name:     h.Name,
			Version:  h.Version,
			Strategy: h.Strategy,
			LoadedAt: h.LoadedAt,
			Loaded:   true,
		})
	}
	for species := range r.failures {
		infos = append(infos, model.ModelInfo{Species: species, Loaded: false})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Species < infos[j].Species })
	return infos
}
