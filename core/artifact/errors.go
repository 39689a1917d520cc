package artifact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelUnavailable marks a species whose artifact failed every load
// strategy or was never configured. Other species are unaffected.
var ErrModelUnavailable = errors.New("model unavailable")

// StrategyFailure records why one deserialization strategy rejected an
// artifact.
type StrategyFailure struct {
	Strategy string
	Err      error
}

// LoadError aggregates the per-strategy failure reasons for one artifact.
type LoadError struct {
	Path     string
	Attempts []StrategyFailure
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load %s: all strategies failed", e.Path)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", a.Strategy, a.Err)
	}
	return b.String()
}

// Unwrap lets callers treat any load failure as an unavailable model.
func (e *LoadError) Unwrap() error { return ErrModelUnavailable }
