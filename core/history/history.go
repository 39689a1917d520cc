// Package history defines the persistence gateway for prediction requests and
// their result points. Saving is best-effort: a failed save degrades to
// "prediction succeeded, not saved" and never fails the response path.
// Retrieval operations distinguish a missing record (ErrNotFound) from an
// unreachable store (ErrUnavailable).
package history

import (
	"context"
	"errors"
	"time"

	"github.com/jdalisay/anihan/core/model"
)

// ErrNotFound marks retrieval or deletion of an unknown request token.
var ErrNotFound = errors.New("prediction request not found")

// ErrUnavailable marks a backing store that cannot be reached. It is a
// service condition, never to be confused with an empty result.
var ErrUnavailable = errors.New("history store unavailable")

// MaxPageSize is the hard server-side cap on list page sizes.
const MaxPageSize = 100

// Record is one persisted prediction request.
type Record struct {
	RequestID string    `json:"requestId" db:"request_id"`
	Species   string    `json:"species" db:"species"`
	Province  string    `json:"province" db:"province"`
	City      string    `json:"city" db:"city"`
	DateFrom  time.Time `json:"dateFrom" db:"date_from"`
	DateTo    time.Time `json:"dateTo" db:"date_to"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	IPAddress string    `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent string    `json:"userAgent,omitempty" db:"user_agent"`
}

// Summary is a listing row: the record plus its point count.
type Summary struct {
	Record
	PredictionCount int `json:"predictionCount" db:"prediction_count"`
}

// Filter restricts listings. Set fields are combined with AND.
type Filter struct {
	Species  string
	Province string
	City     string
}

// Store persists records with their point sets. A record and its points are
// written and deleted atomically: either all points for a request exist or
// none do, and every point references an existing record.
type Store interface {
	// Save writes the record and its points in one unit. It is only ever
	// called after a complete, successful prediction result.
	Save(ctx context.Context, rec Record, points []model.PredictionPoint) error
	// Get returns the record and its points ordered by date ascending.
	Get(ctx context.Context, requestID string) (Record, []model.PredictionPoint, error)
	// List returns matching records newest-first. limit is capped at
	// MaxPageSize regardless of the requested value.
	List(ctx context.Context, f Filter, skip, limit int) ([]Summary, error)
	// Count returns the total number of records matching the filter.
	Count(ctx context.Context, f Filter) (int, error)
	// Delete removes the record and all its points. Deleting an unknown or
	// already-deleted id reports ErrNotFound.
	Delete(ctx context.Context, requestID string) error
	Close() error
}

// ClampLimit applies the server-side page size cap.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
