package core

import (
	"time"
)

// LookupStats holds aggregated lookup statistics for monitoring.
type LookupStats struct {
	TotalLookups      int64            `json:"total_lookups"`
	SuccessfulLookups int64            `json:"successful_lookups"`
	FailedLookups     int64            `json:"failed_lookups"`
	TotalResponseTime int64            `json:"total_response_time"`
	LastLookupTime    time.Time        `json:"last_lookup_time"`
	CategoryCounts    map[string]int64 `json:"category_counts"`
	SnapshotCounts    map[string]int64 `json:"snapshot_counts"`
	LookupHistory     []LookupRecord   `json:"lookup_history"`
}

// LookupRecord represents a single selection lookup for history tracking.
type LookupRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	ResponseTime int64     `json:"response_time"`
	Snapshot     string    `json:"snapshot"`
	Category     string    `json:"category"`
}

// PeriodStats holds computed statistics for a time period.
type PeriodStats struct {
	Lookups         int64   `json:"lookups"`
	SuccessRate     float64 `json:"successRate"`
	AvgResponseTime int64   `json:"avgResponseTime"`
	QPS             float64 `json:"qps"`
}

// EmptyLookupStats returns stats with all collections initialised.
func EmptyLookupStats() *LookupStats {
	return &LookupStats{
		CategoryCounts: map[string]int64{},
		SnapshotCounts: map[string]int64{},
		LookupHistory:  []LookupRecord{},
	}
}

// Normalize replaces nil collections left by decoding older payloads.
func (s *LookupStats) Normalize() {
	if s.CategoryCounts == nil {
		s.CategoryCounts = map[string]int64{}
	}
	if s.SnapshotCounts == nil {
		s.SnapshotCounts = map[string]int64{}
	}
	if s.LookupHistory == nil {
		s.LookupHistory = []LookupRecord{}
	}
}
