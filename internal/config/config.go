package config

import (
	"net/http"
	"os"
	"time"

	"modelpicker/internal/core"
	"modelpicker/internal/registry"
	"modelpicker/internal/util"
)

// ServerConfig server configuration
type ServerConfig struct {
	Port            string
	GinMode         string
	CORSAllowOrigin string
	RateLimit       int
	AdminAPIKeys    []string
	// Registry defaults to the embedded dataset when nil.
	Registry *registry.Registry
	Storage  core.StorageInterface
	Logger   core.Logger
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// NewHTTPClient builds a pooled client for outbound calls such as the
// models.dev catalog fetch.
func NewHTTPClient(settings HTTPClientSettings) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          settings.MaxIdleConns,
		MaxIdleConnsPerHost:   settings.MaxIdleConnsPerHost,
		MaxConnsPerHost:       settings.MaxConnsPerHost,
		IdleConnTimeout:       settings.IdleConnTimeout,
		TLSHandshakeTimeout:   settings.TLSHandshakeTimeout,
		ExpectContinueTimeout: core.HTTPExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: core.HTTPResponseHeaderTimeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   settings.RequestTimeout,
	}
}

// LoadServerConfigFromEnv loads server config from environment variables
func LoadServerConfigFromEnv(logger core.Logger) ServerConfig {
	if logger == nil {
		logger = &core.NopLogger{}
	}

	adminKeys := util.ParseEnvList(os.Getenv("ADMIN_API_KEYS"))
	if len(adminKeys) == 0 {
		logger.Warn("ADMIN_API_KEYS is empty, /api/stats will be unavailable")
	} else {
		logger.Info("Loaded %d admin API keys", len(adminKeys))
	}

	rateLimit, ok := util.GetEnvInt("RATE_LIMIT", core.DefaultRateLimit)
	if !ok {
		logger.Warn("Invalid RATE_LIMIT value '%s', using default %d", os.Getenv("RATE_LIMIT"), core.DefaultRateLimit)
	}

	return ServerConfig{
		Port:            util.GetEnvWithDefault("PORT", core.DefaultPort),
		GinMode:         util.GetEnvWithDefault("GIN_MODE", core.DefaultGinMode),
		CORSAllowOrigin: util.GetEnvWithDefault("CORS_ALLOW_ORIGIN", core.DefaultCORSOrigin),
		RateLimit:       rateLimit,
		AdminAPIKeys:    adminKeys,
	}
}
