package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MaxForecastDays bounds the inclusive size of a requested date range.
const MaxForecastDays = 365

// ForecastRequest describes one harvest forecast call after transport-level
// decoding. Dates are calendar days; the time component is ignored.
type ForecastRequest struct {
	Species  string    `json:"species"`
	Province string    `json:"province"`
	City     string    `json:"city"`
	DateFrom time.Time `json:"dateFrom"`
	DateTo   time.Time `json:"dateTo"`

	// Features carries caller-supplied feature values. Anything the caller
	// does not provide falls back to the schema default for the species.
	Features map[string]float64 `json:"features,omitempty"`

	ClientIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// Days returns the inclusive number of calendar days covered by the request.
func (r ForecastRequest) Days() int {
	from := truncateDay(r.DateFrom)
	to := truncateDay(r.DateTo)
	return int(to.Sub(from)/(24*time.Hour)) + 1
}

// Validate checks the request fields against the set of known species.
func (r ForecastRequest) Validate(known []string) error {
	found := false
	for _, s := range known {
		if s == r.Species {
			found = true
			break
		}
	}
	if !found {
		return &ValidationError{Field: "species", Reason: fmt.Sprintf("unknown species %q", r.Species)}
	}
	if r.Province == "" {
		return &ValidationError{Field: "province", Reason: "province is required"}
	}
	if r.City == "" {
		return &ValidationError{Field: "city", Reason: "city is required"}
	}
	if r.DateFrom.IsZero() || r.DateTo.IsZero() {
		return &ValidationError{Field: "dateFrom", Reason: "dateFrom and dateTo are required"}
	}
	if truncateDay(r.DateTo).Before(truncateDay(r.DateFrom)) {
		return &ValidationError{Field: "dateTo", Reason: "dateTo must not precede dateFrom"}
	}
	if r.Days() > MaxForecastDays {
		return &ValidationError{Field: "dateTo", Reason: fmt.Sprintf("date range exceeds %d days", MaxForecastDays)}
	}
	return nil
}

// ValidationError reports a rejected request together with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PredictionPoint is one day of a forecast. Confidence bounds are present only
// when the underlying model can estimate intervals.
type PredictionPoint struct {
	Date            time.Time `json:"date"`
	PredictedValue  float64   `json:"predictedValue"`
	ConfidenceLower *float64  `json:"confidenceLower,omitempty"`
	ConfidenceUpper *float64  `json:"confidenceUpper,omitempty"`
}

// ModelInfo summarises one loaded artifact for API consumers.
type ModelInfo struct {
	Species  string    `json:"species"`
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Strategy string    `json:"strategy,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitempty"`
	Loaded   bool      `json:"loaded"`
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TruncateDay normalises a timestamp to UTC midnight of the same calendar day.
func TruncateDay(t time.Time) time.Time { return truncateDay(t) }
