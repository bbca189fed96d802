package metrics

import (
	"maps"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"modelpicker/internal/core"
)

// atomicLookupStats holds the lock-free lookup counters.
type atomicLookupStats struct {
	TotalLookups      atomic.Int64
	SuccessfulLookups atomic.Int64
	FailedLookups     atomic.Int64
	TotalResponseTime atomic.Int64
	CacheHits         atomic.Int64
	CacheMisses       atomic.Int64
}

// MetricsConfig configuration for MetricsService
type MetricsConfig struct {
	SaveInterval time.Duration
	HistorySize  int
	Storage      core.StorageInterface
	Logger       core.Logger
}

// MetricsService collects lookup metrics and persists them through storage.
type MetricsService struct {
	atomicStats atomicLookupStats

	historyMu      sync.RWMutex
	lookupHistory  []core.LookupRecord
	lastLookupTime time.Time
	categoryCounts map[string]int64
	snapshotCounts map[string]int64
	lastSaveTime   time.Time
	maxHistorySize int

	bufferMu      sync.Mutex
	historyBuffer []core.LookupRecord

	recentMu      sync.Mutex
	recentLookups []time.Time

	storage         core.StorageInterface
	logger          core.Logger
	minSaveInterval time.Duration
	flushTicker     *time.Ticker
	done            chan struct{}
	closeOnce       sync.Once
	closeErr        error
}

// NewMetricsService creates a MetricsService and starts its history flusher.
func NewMetricsService(config MetricsConfig) *MetricsService {
	historySize := config.HistorySize
	if historySize <= 0 {
		historySize = core.HistoryBufferSize
	}
	saveInterval := config.SaveInterval
	if saveInterval <= 0 {
		saveInterval = core.MinSaveInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = &core.NopLogger{}
	}

	ms := &MetricsService{
		maxHistorySize:  historySize,
		categoryCounts:  map[string]int64{},
		snapshotCounts:  map[string]int64{},
		storage:         config.Storage,
		logger:          logger,
		minSaveInterval: saveInterval,
		done:            make(chan struct{}),
		historyBuffer:   make([]core.LookupRecord, 0, core.HistoryBatchSize),
	}

	ms.flushTicker = time.NewTicker(core.HistoryFlushInterval)
	go ms.flushLoop()

	return ms
}

func (ms *MetricsService) flushLoop() {
	for {
		select {
		case <-ms.flushTicker.C:
			ms.flushBuffer()
		case <-ms.done:
			return
		}
	}
}

func (ms *MetricsService) flushBuffer() {
	ms.bufferMu.Lock()
	if len(ms.historyBuffer) == 0 {
		ms.bufferMu.Unlock()
		return
	}
	batch := ms.historyBuffer
	ms.historyBuffer = make([]core.LookupRecord, 0, core.HistoryBatchSize)
	ms.bufferMu.Unlock()

	ms.historyMu.Lock()
	ms.lookupHistory = append(ms.lookupHistory, batch...)
	if len(ms.lookupHistory) > ms.maxHistorySize {
		ms.lookupHistory = ms.lookupHistory[len(ms.lookupHistory)-ms.maxHistorySize:]
	}
	ms.historyMu.Unlock()
}

// RecordLookup records the outcome of one selection lookup. snapshot is the
// resolved date when resolution succeeded, otherwise the raw request value.
func (ms *MetricsService) RecordLookup(success bool, responseTime int64, snapshot string, category string) {
	now := time.Now()

	ms.atomicStats.TotalLookups.Add(1)
	ms.atomicStats.TotalResponseTime.Add(responseTime)
	if success {
		ms.atomicStats.SuccessfulLookups.Add(1)
	} else {
		ms.atomicStats.FailedLookups.Add(1)
	}

	ms.historyMu.Lock()
	ms.lastLookupTime = now
	if success {
		ms.categoryCounts[category]++
		ms.snapshotCounts[snapshot]++
	}
	ms.historyMu.Unlock()

	ms.recentMu.Lock()
	ms.recentLookups = append(pruneBefore(ms.recentLookups, now.Add(-time.Minute)), now)
	ms.recentMu.Unlock()

	ms.bufferMu.Lock()
	ms.historyBuffer = append(ms.historyBuffer, core.LookupRecord{
		Timestamp:    now,
		Success:      success,
		ResponseTime: responseTime,
		Snapshot:     snapshot,
		Category:     category,
	})
	shouldFlush := len(ms.historyBuffer) >= core.HistoryBatchSize
	ms.bufferMu.Unlock()

	if shouldFlush {
		ms.flushBuffer()
	}

	ms.SaveStatsDebounced()
}

// RecordCacheHit records a selection cache hit
func (ms *MetricsService) RecordCacheHit() {
	ms.atomicStats.CacheHits.Add(1)
}

// RecordCacheMiss records a selection cache miss
func (ms *MetricsService) RecordCacheMiss() {
	ms.atomicStats.CacheMisses.Add(1)
}

// CacheCounters returns the hit and miss totals since start.
func (ms *MetricsService) CacheCounters() (hits, misses int64) {
	return ms.atomicStats.CacheHits.Load(), ms.atomicStats.CacheMisses.Load()
}

// pruneBefore drops leading timestamps older than cutoff. times is ordered.
func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	start := 0
	for start < len(times) && times[start].Before(cutoff) {
		start++
	}
	if start == 0 {
		return times
	}
	kept := make([]time.Time, len(times)-start)
	copy(kept, times[start:])
	return kept
}

// GetQPS returns lookups per second over the last minute.
func (ms *MetricsService) GetQPS() float64 {
	ms.recentMu.Lock()
	defer ms.recentMu.Unlock()

	ms.recentLookups = pruneBefore(ms.recentLookups, time.Now().Add(-time.Minute))
	if len(ms.recentLookups) == 0 {
		return 0
	}
	return math.Round(float64(len(ms.recentLookups))/60.0*1000) / 1000
}

// GetLookupStats returns a copy of the current stats.
func (ms *MetricsService) GetLookupStats() core.LookupStats {
	ms.flushBuffer()
	ms.historyMu.RLock()
	defer ms.historyMu.RUnlock()

	history := make([]core.LookupRecord, len(ms.lookupHistory))
	copy(history, ms.lookupHistory)

	return core.LookupStats{
		TotalLookups:      ms.atomicStats.TotalLookups.Load(),
		SuccessfulLookups: ms.atomicStats.SuccessfulLookups.Load(),
		FailedLookups:     ms.atomicStats.FailedLookups.Load(),
		TotalResponseTime: ms.atomicStats.TotalResponseTime.Load(),
		LastLookupTime:    ms.lastLookupTime,
		CategoryCounts:    maps.Clone(ms.categoryCounts),
		SnapshotCounts:    maps.Clone(ms.snapshotCounts),
		LookupHistory:     history,
	}
}

// GetPeriodStats computes period statistics for multiple hour windows in a single pass.
func GetPeriodStats(history []core.LookupRecord, hourPeriods ...int) map[int]core.PeriodStats {
	if len(hourPeriods) == 0 {
		return nil
	}

	now := time.Now()
	cutoffs := make([]time.Time, len(hourPeriods))
	lookups := make([]int64, len(hourPeriods))
	successful := make([]int64, len(hourPeriods))
	responseTime := make([]int64, len(hourPeriods))

	for i, hours := range hourPeriods {
		cutoffs[i] = now.Add(-time.Duration(hours) * time.Hour)
	}

	for _, record := range history {
		for i, cutoff := range cutoffs {
			if record.Timestamp.After(cutoff) {
				lookups[i]++
				responseTime[i] += record.ResponseTime
				if record.Success {
					successful[i]++
				}
			}
		}
	}

	result := make(map[int]core.PeriodStats, len(hourPeriods))
	for i, hours := range hourPeriods {
		stats := core.PeriodStats{
			Lookups: lookups[i],
			QPS:     float64(lookups[i]) / (float64(hours) * 3600.0),
		}
		if lookups[i] > 0 {
			stats.SuccessRate = float64(successful[i]) / float64(lookups[i]) * 100
			stats.AvgResponseTime = responseTime[i] / lookups[i]
		}
		result[hours] = stats
	}
	return result
}

// LoadStats restores counters and history from storage.
func (ms *MetricsService) LoadStats() error {
	if ms.storage == nil {
		return nil
	}
	stats, err := ms.storage.LoadStats()
	if err != nil {
		return err
	}
	stats.Normalize()

	ms.atomicStats.TotalLookups.Store(stats.TotalLookups)
	ms.atomicStats.SuccessfulLookups.Store(stats.SuccessfulLookups)
	ms.atomicStats.FailedLookups.Store(stats.FailedLookups)
	ms.atomicStats.TotalResponseTime.Store(stats.TotalResponseTime)

	history := stats.LookupHistory
	if len(history) > ms.maxHistorySize {
		history = history[len(history)-ms.maxHistorySize:]
	}

	ms.historyMu.Lock()
	ms.lastLookupTime = stats.LastLookupTime
	ms.lookupHistory = history
	ms.categoryCounts = stats.CategoryCounts
	ms.snapshotCounts = stats.SnapshotCounts
	ms.historyMu.Unlock()

	return nil
}

// SaveStatsDebounced persists stats at most once per save interval.
func (ms *MetricsService) SaveStatsDebounced() {
	if ms.storage == nil {
		return
	}

	now := time.Now()
	ms.historyMu.Lock()
	if now.Sub(ms.lastSaveTime) < ms.minSaveInterval {
		ms.historyMu.Unlock()
		return
	}
	ms.lastSaveTime = now
	ms.historyMu.Unlock()

	stats := ms.GetLookupStats()
	if err := ms.storage.SaveStats(&stats); err != nil {
		ms.logger.Warn("Failed to save stats: %v", err)
	}
}

// Close flushes pending history and saves final stats. Later calls are no-ops.
func (ms *MetricsService) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.flushTicker.Stop()
		ms.flushBuffer()

		if ms.storage != nil {
			stats := ms.GetLookupStats()
			ms.closeErr = ms.storage.SaveStats(&stats)
		}
	})
	return ms.closeErr
}

// RecordSuccess records a successful lookup started at startTime.
func RecordSuccess(metrics core.MetricsCollector, startTime time.Time, snapshot, category string) {
	metrics.RecordLookup(true, time.Since(startTime).Milliseconds(), snapshot, category)
}

// RecordFailure records a failed lookup started at startTime.
func RecordFailure(metrics core.MetricsCollector, startTime time.Time, snapshot, category string) {
	metrics.RecordLookup(false, time.Since(startTime).Milliseconds(), snapshot, category)
}

var _ core.MetricsCollector = (*MetricsService)(nil)
