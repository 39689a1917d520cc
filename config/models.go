package config

import (
	"fmt"

	"github.com/jdalisay/anihan/core/artifact"
	"github.com/jdalisay/anihan/core/feature"
)

// ModelEntry configures one species' artifact. FallbackFeatures is the schema
// used when the artifact does not announce its own feature names; Defaults
// fills feature values the caller leaves out.
type ModelEntry struct {
	Species          string             `json:"species"`
	Name             string             `json:"name"`
	Path             string             `json:"path"`
	FallbackFeatures []string           `json:"fallbackFeatures"`
	Defaults         map[string]float64 `json:"defaults"`
}

// ModelsConfig is the per-species artifact table.
type ModelsConfig struct {
	Dir     string       `json:"dir"`
	Entries []ModelEntry `json:"entries"`
}

// Standard pond inputs shared by the shipped harvest models.
var standardFeatures = []string{"Fingerlings", "SurvivalRate", "AvgWeight"}

var standardDefaults = map[string]float64{
	"Fingerlings":  5000,
	"SurvivalRate": 85.0,
	"AvgWeight":    250.0,
}

func (c *ModelsConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "models"
	}
	if len(c.Entries) == 0 {
		c.Entries = []ModelEntry{
			{Species: "tilapia", Name: "tilapia_harvest", Path: c.Dir + "/tilapia.model"},
			{Species: "bangus", Name: "bangus_harvest", Path: c.Dir + "/bangus.model"},
		}
	}
	for i := range c.Entries {
		e := &c.Entries[i]
		if e.Name == "" {
			e.Name = e.Species + "_harvest"
		}
		if e.Path == "" {
			e.Path = c.Dir + "/" + e.Species + ".model"
		}
		if len(e.FallbackFeatures) == 0 {
			e.FallbackFeatures = append([]string(nil), standardFeatures...)
		}
		if len(e.Defaults) == 0 {
			e.Defaults = make(map[string]float64, len(standardDefaults))
			for k, v := range standardDefaults {
				e.Defaults[k] = v
			}
		}
	}
}

func (c ModelsConfig) Validate() error {
	seen := make(map[string]bool, len(c.Entries))
	for _, e := range c.Entries {
		if e.Species == "" {
			return fmt.Errorf("models.entries: species is required")
		}
		if seen[e.Species] {
			return fmt.Errorf("models.entries: duplicate species %s", e.Species)
		}
		seen[e.Species] = true
	}
	return nil
}

// Species lists the configured species in entry order.
func (c ModelsConfig) Species() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Species
	}
	return out
}

// Registry converts one entry to the loader's config type.
func (e ModelEntry) Registry() artifact.ModelConfig {
	fields := make([]feature.Field, len(e.FallbackFeatures))
	for i, name := range e.FallbackFeatures {
		fields[i] = feature.Field{Name: name, Default: e.Defaults[name]}
	}
	return artifact.ModelConfig{
		Species:  e.Species,
		Name:     e.Name,
		Path:     e.Path,
		Fallback: feature.NewSchema(fields...),
		Defaults: e.Defaults,
	}
}
