package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"modelpicker/internal/cache"
	"modelpicker/internal/config"
	"modelpicker/internal/core"
	"modelpicker/internal/metrics"
	"modelpicker/internal/registry"

	"github.com/gin-gonic/gin"
)

// Server serves the snapshot registry over HTTP.
type Server struct {
	port    string
	ginMode string

	registry *registry.Registry
	router   *gin.Engine

	cache          *cache.CacheService
	metricsService *metrics.MetricsService

	validAdminKeys map[string]bool

	config config.ServerConfig

	rateLimiter *rateLimiter

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	closeOnce      sync.Once
	closeErr       error
}

// NewServer creates a new server instance
func NewServer(cfg config.ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required in ServerConfig")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("storage is required in ServerConfig")
	}

	reg := cfg.Registry
	if reg == nil {
		var err error
		if reg, err = registry.Default(); err != nil {
			return nil, fmt.Errorf("failed to load snapshot registry: %w", err)
		}
	}
	cfg.Logger.Info("Loaded %d snapshots, latest %s", reg.Len(), reg.LatestSnapshotDate())

	metricsService := metrics.NewMetricsService(metrics.MetricsConfig{
		SaveInterval: core.MinSaveInterval,
		HistorySize:  core.HistoryBufferSize,
		Storage:      cfg.Storage,
		Logger:       cfg.Logger,
	})
	if err := metricsService.LoadStats(); err != nil {
		cfg.Logger.Warn("Failed to load historical stats: %v", err)
	}

	validAdminKeys := make(map[string]bool, len(cfg.AdminAPIKeys))
	for _, key := range cfg.AdminAPIKeys {
		validAdminKeys[key] = true
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = core.DefaultRateLimit
	}
	if cfg.CORSAllowOrigin == "" {
		cfg.CORSAllowOrigin = core.DefaultCORSOrigin
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	server := &Server{
		port:           cfg.Port,
		ginMode:        cfg.GinMode,
		registry:       reg,
		cache:          cache.NewCacheService(metricsService),
		metricsService: metricsService,
		validAdminKeys: validAdminKeys,
		config:         cfg,
		rateLimiter:    newRateLimiter(rateLimit),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	server.setupRoutes()

	return server, nil
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until SIGINT/SIGTERM or Close, then drains in-flight requests.
func (s *Server) Run() error {
	s.setupGracefulShutdown()

	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.router,
		ReadHeaderTimeout: core.ServerReadHeaderTimeout,
		ReadTimeout:       core.ServerReadTimeout,
		WriteTimeout:      core.ServerWriteTimeout,
	}

	go func() {
		<-s.shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), core.ServerShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.config.Logger.Error("Server shutdown error: %v", err)
		}
	}()

	s.config.Logger.Info("Server starting on port %s", s.port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) setupGracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			s.config.Logger.Info("Shutdown signal received, shutting down gracefully...")
			s.shutdownCancel()
		case <-s.shutdownCtx.Done():
		}
		signal.Stop(quit)
	}()
}

func (s *Server) healthCheck(c *gin.Context) {
	c.Header(core.HeaderCacheControl, core.CacheControlNoCache)
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"snapshots": s.registry.Len(),
		"latest":    s.registry.LatestSnapshotDate(),
	})
}

func (s *Server) getStatsData(c *gin.Context) {
	stats := s.metricsService.GetLookupStats()
	periodStats := metrics.GetPeriodStats(stats.LookupHistory, 24, 24*7, 24*30)
	hits, misses := s.metricsService.CacheCounters()

	c.Header(core.HeaderCacheControl, core.CacheControlNoStore)
	c.JSON(http.StatusOK, gin.H{
		"currentTime":       time.Now().Format(core.TimeFormatDateTime),
		"currentQPS":        fmt.Sprintf("%.3f", s.metricsService.GetQPS()),
		"totalLookups":      stats.TotalLookups,
		"successfulLookups": stats.SuccessfulLookups,
		"failedLookups":     stats.FailedLookups,
		"totalRecords":      len(stats.LookupHistory),
		"stats24h":          periodStats[24],
		"stats7d":           periodStats[24*7],
		"stats30d":          periodStats[24*30],
		"categories":        stats.CategoryCounts,
		"snapshots":         stats.SnapshotCounts,
		"cache":             gin.H{"hits": hits, "misses": misses},
	})
}

// Close stops background work and persists final stats. It is safe to call
// more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.shutdownCancel != nil {
			s.shutdownCancel()
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		if s.metricsService != nil {
			if err := s.metricsService.Close(); err != nil {
				s.closeErr = errors.Join(s.closeErr, fmt.Errorf("close metrics service: %w", err))
			}
		}

		if s.cache != nil {
			if err := s.cache.Close(); err != nil {
				s.closeErr = errors.Join(s.closeErr, fmt.Errorf("close cache service: %w", err))
			}
		}
	})
	return s.closeErr
}
