// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"fmt"
	"math"
)

// Default daily targets used by the stand-in remote source.
const (
	DefaultCaloriesTarget = 2000
	DefaultStepsTarget    = 10000
	DefaultWaterTarget    = 8
	DefaultSleepTarget    = 8
)

// MaxIntegralValue bounds whole-number fields so they fit every int size.
const MaxIntegralValue = math.MaxInt32

// DailyMetrics is a complete snapshot of one calendar day's health metrics.
type DailyMetrics struct {
	CaloriesConsumed       int     `json:"caloriesConsumed" yaml:"caloriesConsumed"`
	CaloriesConsumedTarget int     `json:"caloriesConsumedTarget" yaml:"caloriesConsumedTarget"`
	Steps                  int     `json:"steps" yaml:"steps"`
	StepsTarget            int     `json:"stepsTarget" yaml:"stepsTarget"`
	WaterGlasses           int     `json:"waterGlasses" yaml:"waterGlasses"`
	WaterTarget            int     `json:"waterTarget" yaml:"waterTarget"`
	SleepHours             float64 `json:"sleepHours" yaml:"sleepHours"`
	SleepTarget            float64 `json:"sleepTarget" yaml:"sleepTarget"`
	HeartRate              *int    `json:"heartRate,omitempty" yaml:"heartRate,omitempty"`
}

// Field names a single value inside a DailyMetrics snapshot.
type Field string

const (
	FieldCaloriesConsumed       Field = "caloriesConsumed"
	FieldCaloriesConsumedTarget Field = "caloriesConsumedTarget"
	FieldSteps                  Field = "steps"
	FieldStepsTarget            Field = "stepsTarget"
	FieldWaterGlasses           Field = "waterGlasses"
	FieldWaterTarget            Field = "waterTarget"
	FieldSleepHours             Field = "sleepHours"
	FieldSleepTarget            Field = "sleepTarget"
	FieldHeartRate              Field = "heartRate"
)

// Fields lists every updatable field in declaration order.
var Fields = []Field{
	FieldCaloriesConsumed,
	FieldCaloriesConsumedTarget,
	FieldSteps,
	FieldStepsTarget,
	FieldWaterGlasses,
	FieldWaterTarget,
	FieldSleepHours,
	FieldSleepTarget,
	FieldHeartRate,
}

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Integral reports whether the field only holds whole numbers.
func (f Field) Integral() bool {
	return f != FieldSleepHours && f != FieldSleepTarget
}

// ParseField converts s into a Field, failing with a validation error for
// unknown names.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !f.Valid() {
		return "", NewValidationError(fmt.Sprintf("unknown metric field %q", s), nil)
	}
	return f, nil
}

// With returns a copy of m with field replaced by value.
func (m DailyMetrics) With(field Field, value float64) (DailyMetrics, error) {
	if !field.Valid() {
		return m, NewValidationError(fmt.Sprintf("unknown metric field %q", field), nil)
	}
	if field.Integral() && value != math.Trunc(value) {
		return m, NewValidationError(fmt.Sprintf("%s must be a whole number", field), nil)
	}
	if field.Integral() && math.Abs(value) > MaxIntegralValue {
		return m, NewValidationError(fmt.Sprintf("%s is out of range", field), nil)
	}

	out := m
	switch field {
	case FieldCaloriesConsumed:
		out.CaloriesConsumed = int(value)
	case FieldCaloriesConsumedTarget:
		out.CaloriesConsumedTarget = int(value)
	case FieldSteps:
		out.Steps = int(value)
	case FieldStepsTarget:
		out.StepsTarget = int(value)
	case FieldWaterGlasses:
		out.WaterGlasses = int(value)
	case FieldWaterTarget:
		out.WaterTarget = int(value)
	case FieldSleepHours:
		out.SleepHours = value
	case FieldSleepTarget:
		out.SleepTarget = value
	case FieldHeartRate:
		hr := int(value)
		out.HeartRate = &hr
	}
	return out, nil
}

// IsValid reports whether every numeric field is finite and non-negative.
// A missing heart rate is valid.
func (m DailyMetrics) IsValid() bool {
	if m.CaloriesConsumed < 0 || m.CaloriesConsumedTarget < 0 ||
		m.Steps < 0 || m.StepsTarget < 0 ||
		m.WaterGlasses < 0 || m.WaterTarget < 0 {
		return false
	}
	if !nonNegative(m.SleepHours) || !nonNegative(m.SleepTarget) {
		return false
	}
	return m.HeartRate == nil || *m.HeartRate >= 0
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// MetricType identifies a tracked metric for progress reporting.
type MetricType string

const (
	MetricSteps     MetricType = "Steps"
	MetricCalories  MetricType = "Calories"
	MetricWater     MetricType = "Water"
	MetricSleep     MetricType = "Sleep"
)

// MetricProgress is the progress of one metric towards its daily target.
type MetricProgress struct {
	Metric   MetricType `json:"metric" yaml:"metric"`
	Current  float64    `json:"current" yaml:"current"`
	Target   float64    `json:"target" yaml:"target"`
	Percent  float64    `json:"percent" yaml:"percent"`
	Achieved bool       `json:"achieved" yaml:"achieved"`
}

// CalculateProgress returns current as a percentage of target, capped at 100.
// A zero target yields 0.
func CalculateProgress(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	return math.Min(current/target*100, 100)
}

// IsGoalAchieved reports whether current has reached target.
func IsGoalAchieved(current, target float64) bool {
	return current >= target
}

// Progress returns the progress of every metric that has a target.
func (m DailyMetrics) Progress() []MetricProgress {
	pairs := []struct {
		metric          MetricType
		current, target float64
	}{
		{MetricCalories, float64(m.CaloriesConsumed), float64(m.CaloriesConsumedTarget)},
		{MetricSteps, float64(m.Steps), float64(m.StepsTarget)},
		{MetricWater, float64(m.WaterGlasses), float64(m.WaterTarget)},
		{MetricSleep, m.SleepHours, m.SleepTarget},
	}
	out := make([]MetricProgress, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, MetricProgress{
			Metric:   p.metric,
			Current:  p.current,
			Target:   p.target,
			Percent:  CalculateProgress(p.current, p.target),
			Achieved: IsGoalAchieved(p.current, p.target),
		})
	}
	return out
}

// MetricsLocalStore is the port for the on-device copy of today's snapshot.
// Read returns nil without error when nothing fresh is stored.
type MetricsLocalStore interface {
	Read(ctx context.Context) (*CachedEntry, error)
	Write(ctx context.Context, m DailyMetrics) error
	Clear(ctx context.Context) error
}

// MetricsRemoteSource is the port for the upstream system of record.
type MetricsRemoteSource interface {
	FetchToday(ctx context.Context) (DailyMetrics, error)
	Sync(ctx context.Context, m DailyMetrics) (DailyMetrics, error)
}

// MetricsRepository is the offline-first contract consumed by the use cases.
type MetricsRepository interface {
	GetToday(ctx context.Context) (DailyMetrics, error)
	UpdateField(ctx context.Context, field Field, value float64) (DailyMetrics, error)
	Refresh(ctx context.Context) (DailyMetrics, error)
	SaveSnapshot(ctx context.Context, m DailyMetrics) error
	Push(ctx context.Context) (DailyMetrics, error)
	ClearCache(ctx context.Context) error
}
