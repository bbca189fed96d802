package core

// Default config constants
const (
	DefaultPort       = "7860"
	DefaultGinMode    = "release"
	DefaultRateLimit  = 120
	DefaultCORSOrigin = "*"
	CORSMaxAge        = "86400"
)

// Content type and header constants
const (
	ContentTypeJSON     = "application/json; charset=utf-8"
	HeaderAuthorization = "Authorization"
	HeaderCacheControl  = "Cache-Control"
	HeaderXAPIKey       = "x-api-key"
	HeaderXRequestID    = "X-Request-ID"
	AuthBearerPrefix    = "Bearer "
)

// Cache-Control policies
const (
	CacheControlLatest  = "public, s-maxage=3600, stale-while-revalidate=86400"
	CacheControlPinned  = "public, s-maxage=31536000, immutable"
	CacheControlListing = "public, s-maxage=86400"
	CacheControlNoStore = "no-store"
	CacheControlNoCache = "no-cache"
)

// Request context keys
const (
	GinContextRequestID   = "request_id"
	RequestIDHeaderMaxLen = 128
)
