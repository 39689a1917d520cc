package history

import (
	"context"
	"sort"
	"sync"

	"github.com/jdalisay/anihan/core/model"
)

// MemoryStore keeps records in process memory. It backs tests and runs the
// service without a database; everything is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	points  map[string][]model.PredictionPoint
	order   []string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		points:  make(map[string][]model.PredictionPoint),
	}
}

func (s *MemoryStore) Save(_ context.Context, rec Record, points []model.PredictionPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.RequestID]; !ok {
		s.order = append(s.order, rec.RequestID)
	}
	s.records[rec.RequestID] = rec
	cp := make([]model.PredictionPoint, len(points))
	copy(cp, points)
	s.points[rec.RequestID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, requestID string) (Record, []model.PredictionPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[requestID]
	if !ok {
		return Record{}, nil, ErrNotFound
	}
	pts := make([]model.PredictionPoint, len(s.points[requestID]))
	copy(pts, s.points[requestID])
	sort.Slice(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
	return rec, pts, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter, skip, limit int) ([]Summary, error) {
	limit = ClampLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Summary
	// order holds insertion order; listings are newest-first.
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.records[s.order[i]]
		if !matches(f, rec) {
			continue
		}
		matched = append(matched, Summary{Record: rec, PredictionCount: len(s.points[rec.RequestID])})
	}
	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryStore) Count(_ context.Context, f Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.records {
		if matches(f, rec) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Delete(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[requestID]; !ok {
		return ErrNotFound
	}
	delete(s.records, requestID)
	delete(s.points, requestID)
	for i, id := range s.order {
		if id == requestID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func matches(f Filter, rec Record) bool {
	if f.Species != "" && rec.Species != f.Species {
		return false
	}
	if f.Province != "" && rec.Province != f.Province {
		return false
	}
	if f.City != "" && rec.City != f.City {
		return false
	}
	return true
}
