package storage

import (
	"context"
	"errors"
	"sync"

	"ecalab/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	reports     map[string]model.Report
	series      map[string]model.Series
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.reports = make(map[string]model.Report)
	s.series = make(map[string]model.Series)
	return nil
}

func (s *MemoryStore) SaveReport(_ context.Context, report model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if err := checkVersion(report.VersionedRecord); err != nil {
		return err
	}
	s.reports[report.ID] = report
	return nil
}

func (s *MemoryStore) GetReport(_ context.Context, id string) (model.Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	return report, ok, nil
}

func (s *MemoryStore) ListReports(_ context.Context, kind string) ([]model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	sortReports(out)
	return out, nil
}

func (s *MemoryStore) SaveSeries(_ context.Context, series model.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if err := checkVersion(series.VersionedRecord); err != nil {
		return err
	}
	points := make([]model.SeriesPoint, len(series.Points))
	copy(points, series.Points)
	series.Points = points
	s.series[series.RunID] = series
	return nil
}

func (s *MemoryStore) GetSeries(_ context.Context, runID string) (model.Series, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[runID]
	if !ok {
		return model.Series{}, false, nil
	}
	points := make([]model.SeriesPoint, len(series.Points))
	copy(points, series.Points)
	series.Points = points
	return series, true, nil
}
