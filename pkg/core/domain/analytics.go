package domain

import (
	"slices"
	"time"
)

// UnknownLabel buckets clicks that carry no value for a grouped field.
const UnknownLabel = "unknown"

// AnalyticsData is derived from click facts at query time and never persisted.
type AnalyticsData struct {
	TotalClicks   int64        `json:"total_clicks"`
	ClicksPerLink []LinkClicks `json:"clicks_per_link"`
	DeviceStats   []LabelCount `json:"device_stats"`
	BrowserStats  []LabelCount `json:"browser_stats"`
	TimelineData  []DailyClick `json:"timeline_data"`
}

// Clone returns a deep copy of d.
func (d *AnalyticsData) Clone() *AnalyticsData {
	if d == nil {
		return nil
	}
	out := *d
	out.ClicksPerLink = slices.Clone(d.ClicksPerLink)
	out.DeviceStats = slices.Clone(d.DeviceStats)
	out.BrowserStats = slices.Clone(d.BrowserStats)
	out.TimelineData = slices.Clone(d.TimelineData)
	return &out
}

type LinkClicks struct {
	LinkID int64  `json:"link_id"`
	Title  string `json:"title"`
	Count  int64  `json:"count"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DailyClick struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Count int64  `json:"count"`
}

// AnalyticsOptions bounds the facts that are aggregated. From is inclusive,
// To exclusive. FillGaps emits zero-count days between the first and last day
// of the timeline (or the full range when both bounds are set).
type AnalyticsOptions struct {
	From     *time.Time
	To       *time.Time
	FillGaps bool
}
