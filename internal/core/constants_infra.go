package core

import "time"

// HTTP client config constants
const (
	HTTPMaxIdleConns          = 20
	HTTPMaxIdleConnsPerHost   = 4
	HTTPMaxConnsPerHost       = 8
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 10 * time.Second
	HTTPResponseHeaderTimeout = 30 * time.Second
	HTTPExpectContinueTimeout = 5 * time.Second
	HTTPRequestTimeout        = 30 * time.Second
)

// HTTP server timeouts
const (
	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerShutdownTimeout   = 30 * time.Second
)

// Cache config constants
const (
	CacheDefaultCapacity = 1000
	CacheCleanupInterval = 5 * time.Minute
	SelectionCacheTTL    = 1 * time.Hour
	CatalogCacheTTL      = 1 * time.Hour
	CacheKeyVersion      = "v1"
)

// Stats and monitoring constants
const (
	StatsFilePath        = "stats.json"
	StatsRedisKey        = "modelpicker:stats"
	MinSaveInterval      = 5 * time.Second
	HistoryBufferSize    = 1000
	HistoryBatchSize     = 100
	HistoryFlushInterval = 100 * time.Millisecond
)

// Rate limiting constants
const (
	RateLimitWindow          = time.Minute
	RateLimitCleanupInterval = 5 * time.Minute
)

// Logging config constants
const (
	MaxDebugFilePathLength = 260
)

// File permission constants
const (
	FilePermissionReadWrite = 0644
)

// Time format constants
const (
	TimeFormatDateTime = "2006-01-02 15:04:05"
)
