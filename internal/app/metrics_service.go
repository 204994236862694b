// Package app holds the application services and business logic.
package app

import (
	"context"
	"math"

	"fitlane/internal/domain"
)

// MetricsService encapsulates the metrics use cases. Every snapshot it
// returns has passed DailyMetrics.IsValid.
type MetricsService struct {
	repo domain.MetricsRepository
}

// NewMetricsService creates a MetricsService backed by the given repository.
func NewMetricsService(repo domain.MetricsRepository) *MetricsService {
	return &MetricsService{repo: repo}
}

// GetToday returns today's validated snapshot.
func (s *MetricsService) GetToday(ctx context.Context) (domain.DailyMetrics, error) {
	m, err := s.repo.GetToday(ctx)
	if err != nil {
		return domain.DailyMetrics{}, err
	}
	return checked(m, "Invalid metrics data")
}

// Refresh forces a fetch from the remote source.
func (s *MetricsService) Refresh(ctx context.Context) (domain.DailyMetrics, error) {
	m, err := s.repo.Refresh(ctx)
	if err != nil {
		return domain.DailyMetrics{}, err
	}
	return checked(m, "Refreshed metrics are invalid")
}

// UpdateMetric validates and stores a new value for one field. Invalid input
// is rejected before the repository is called.
func (s *MetricsService) UpdateMetric(ctx context.Context, field domain.Field, value float64) (domain.DailyMetrics, error) {
	if !field.Valid() {
		_, err := domain.ParseField(string(field))
		return domain.DailyMetrics{}, err
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.DailyMetrics{}, domain.NewValidationError("Metric value cannot be negative", nil)
	}
	if field.Integral() && value > domain.MaxIntegralValue {
		return domain.DailyMetrics{}, domain.NewValidationError("Metric value is out of range", nil)
	}

	m, err := s.repo.UpdateField(ctx, field, value)
	if err != nil {
		return domain.DailyMetrics{}, err
	}
	return checked(m, "Updated metrics are invalid")
}

// Save persists a complete snapshot supplied by the caller.
func (s *MetricsService) Save(ctx context.Context, m domain.DailyMetrics) error {
	if !m.IsValid() {
		return domain.NewValidationError("Invalid metrics data", nil)
	}
	return s.repo.SaveSnapshot(ctx, m)
}

// Progress returns today's progress towards each target.
func (s *MetricsService) Progress(ctx context.Context) ([]domain.MetricProgress, error) {
	m, err := s.GetToday(ctx)
	if err != nil {
		return nil, err
	}
	return m.Progress(), nil
}

// Push syncs today's snapshot with the remote source.
func (s *MetricsService) Push(ctx context.Context) (domain.DailyMetrics, error) {
	m, err := s.repo.Push(ctx)
	if err != nil {
		return domain.DailyMetrics{}, err
	}
	return checked(m, "Synced metrics are invalid")
}

// ClearCache drops the locally cached snapshot.
func (s *MetricsService) ClearCache(ctx context.Context) error {
	return s.repo.ClearCache(ctx)
}

func checked(m domain.DailyMetrics, msg string) (domain.DailyMetrics, error) {
	if !m.IsValid() {
		return domain.DailyMetrics{}, domain.NewValidationError(msg, nil)
	}
	return m, nil
}
