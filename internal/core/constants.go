package core

// API version and snapshot alias constants
const (
	APIVersionV1         = "v1"
	LatestSnapshotAlias  = "latest"
	SnapshotDateLayout   = "2006-01-02"
	DefaultModelsDevURL  = "https://models.dev/api.json"
	SnapshotFileExt      = ".yaml"
	SnapshotSchemaName   = "snapshot.schema.json"
	SelectionCachePrefix = "selection"
	CatalogCacheKey      = "catalog:models.dev"
)

// SupportedVersions lists the API versions the service answers.
var SupportedVersions = []string{APIVersionV1}

// Fallback provider routing tags
const (
	FallbackProviderAWS    = "aws"
	FallbackProviderGoogle = "google"
	FallbackProviderAzure  = "azure"
)

// FallbackProviders is the fixed set of recognised fallback provider tags.
var FallbackProviders = []string{FallbackProviderAWS, FallbackProviderGoogle, FallbackProviderAzure}

// Error codes returned in API error bodies
const (
	ErrorCodeSnapshotNotFound     = "SNAPSHOT_NOT_FOUND"
	ErrorCodeCategoryNotSupported = "CATEGORY_NOT_SUPPORTED"
	ErrorCodeVersionNotSupported  = "VERSION_NOT_SUPPORTED"
	ErrorCodeNotFound             = "NOT_FOUND"
	ErrorCodeRateLimited          = "RATE_LIMITED"
	ErrorCodeUnauthorized         = "UNAUTHORIZED"
	ErrorCodeForbidden            = "FORBIDDEN"
	ErrorCodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	ErrorCodeUnknown              = "UNKNOWN_ERROR"
	ErrorMessageUnexpected        = "Unexpected error"
)
