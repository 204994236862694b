package domain

import (
	"context"
	"time"
)

// DayStampLayout is the calendar-day format stored next to cached snapshots,
// e.g. "Mon Jan 01 2024".
const DayStampLayout = "Mon Jan 02 2006"

// Storage keys, one slot per installation.
const (
	MetricsStorageKey = "@fitlane:daily_metrics"
	ProfileStorageKey = "@fitlane:user_profile"
)

// CachedEntry is a snapshot tagged with the calendar day it was stored on.
type CachedEntry struct {
	Date    string       `json:"date"`
	Metrics DailyMetrics `json:"metrics"`
}

// DayStamp formats t as a calendar day in loc.
func DayStamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayStampLayout)
}

// IsFreshOn reports whether the entry was stored on the given day stamp.
func (e CachedEntry) IsFreshOn(day string) bool {
	return e.Date == day
}

// KeyValueStore is the port for durable string storage. GetItem reports
// ok=false for a missing key. SetItem replaces the whole value atomically.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
