package parity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"modelpicker/internal/core"

	"github.com/bytedance/sonic"
)

// maxCatalogBytes bounds the catalog download.
const maxCatalogBytes = 64 << 20

// ClientConfig configures a catalog Client.
type ClientConfig struct {
	URL        string
	HTTPClient *http.Client
	// Cache keeps the decoded catalog for CacheTTL. Optional.
	Cache    core.Cache
	CacheTTL time.Duration
	Logger   core.Logger
}

// Client fetches the models.dev catalog.
type Client struct {
	url        string
	httpClient *http.Client
	cache      core.Cache
	cacheTTL   time.Duration
	logger     core.Logger
}

// NewClient creates a catalog client. Empty fields fall back to defaults.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		url:        cfg.URL,
		httpClient: cfg.HTTPClient,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		logger:     cfg.Logger,
	}
	if c.url == "" {
		c.url = core.DefaultModelsDevURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: core.HTTPRequestTimeout}
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = core.CatalogCacheTTL
	}
	if c.logger == nil {
		c.logger = &core.NopLogger{}
	}
	return c
}

func (c *Client) cacheKey() string {
	return core.CatalogCacheKey + ":" + c.url
}

// Fetch returns the catalog, from cache when a fresh copy is held.
func (c *Client) Fetch(ctx context.Context) (Catalog, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(c.cacheKey()); ok {
			if catalog, ok := cached.(Catalog); ok {
				c.logger.Debug("Using cached models.dev catalog (%d providers)", len(catalog))
				return catalog, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching models.dev catalog from %s", c.url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("failed to fetch models.dev registry: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(body) > maxCatalogBytes {
		return nil, errors.New("catalog exceeds size limit")
	}

	var catalog Catalog
	if err := sonic.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, errors.New("catalog is empty")
	}

	c.logger.Info("Fetched models.dev catalog: %d providers, %d models", len(catalog), catalog.ModelCount())
	if c.cache != nil {
		c.cache.Set(c.cacheKey(), catalog, c.cacheTTL)
	}
	return catalog, nil
}
