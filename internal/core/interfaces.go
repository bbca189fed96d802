package core

import (
	"time"
)

// Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// Cache interface
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, duration time.Duration)
	Stop()
}

// StorageInterface storage interface
type StorageInterface interface {
	SaveStats(stats *LookupStats) error
	LoadStats() (*LookupStats, error)
	Close() error
}

// MetricsCollector interface
type MetricsCollector interface {
	RecordLookup(success bool, responseTime int64, snapshot string, category string)
	RecordCacheHit()
	RecordCacheMiss()
	GetQPS() float64
}

// NopLogger empty logger implementation
type NopLogger struct{}

func (*NopLogger) Debug(format string, args ...any) {}
func (*NopLogger) Info(format string, args ...any)  {}
func (*NopLogger) Warn(format string, args ...any)  {}
func (*NopLogger) Error(format string, args ...any) {}
func (*NopLogger) Fatal(format string, args ...any) {}

// NopMetrics empty metrics collector implementation
type NopMetrics struct{}

func (*NopMetrics) RecordLookup(success bool, responseTime int64, snapshot string, category string) {
}
func (*NopMetrics) RecordCacheHit()  {}
func (*NopMetrics) RecordCacheMiss() {}
func (*NopMetrics) GetQPS() float64  { return 0 }
