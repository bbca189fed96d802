package server

import (
	"net/http"
	"time"

	"modelpicker/internal/cache"
	"modelpicker/internal/core"
	"modelpicker/internal/metrics"
	"modelpicker/internal/registry"
	"modelpicker/internal/util"

	"github.com/gin-gonic/gin"
)

func (s *Server) listVersions(c *gin.Context) {
	c.Header(core.HeaderCacheControl, core.CacheControlListing)
	writeJSON(c, http.StatusOK, gin.H{"versions": registry.SupportedVersions()})
}

func (s *Server) listCategories(c *gin.Context) {
	c.Header(core.HeaderCacheControl, core.CacheControlListing)
	writeJSON(c, http.StatusOK, gin.H{"categories": registry.SupportedCategories()})
}

func (s *Server) listSnapshots(c *gin.Context) {
	c.Header(core.HeaderCacheControl, core.CacheControlListing)
	writeJSON(c, http.StatusOK, gin.H{"snapshots": s.registry.SnapshotDates()})
}

// getSelection serves /api/v1/:date/:category. The category is validated
// before the snapshot so that a request wrong on both counts gets the
// category error.
func (s *Server) getSelection(c *gin.Context) {
	startTime := time.Now()
	requested := c.Param("date")
	rawCategory := c.Param("category")

	category, err := registry.ValidateCategory(rawCategory)
	if err != nil {
		metrics.RecordFailure(s.metricsService, startTime, requested, rawCategory)
		s.respondWithRegistryError(c, err)
		return
	}

	resolved, err := s.registry.ResolveDate(requested)
	if err != nil {
		metrics.RecordFailure(s.metricsService, startTime, requested, rawCategory)
		s.respondWithRegistryError(c, err)
		return
	}

	key := cache.SelectionCacheKey(resolved, category)
	payload, found := s.cache.GetSelection(key)
	if !found {
		selection, err := s.registry.CategorySelection(resolved, string(category))
		if err != nil {
			metrics.RecordFailure(s.metricsService, startTime, resolved, rawCategory)
			s.respondWithRegistryError(c, err)
			return
		}
		payload, err = util.MarshalJSON(selection)
		if err != nil {
			metrics.RecordFailure(s.metricsService, startTime, resolved, rawCategory)
			s.respondWithRegistryError(c, err)
			return
		}
		s.cache.SetSelection(key, payload, core.SelectionCacheTTL)
	}

	s.config.Logger.Debug("Resolved %s/%s to snapshot %s", requested, category, resolved)
	c.Header(core.HeaderCacheControl, selectionCacheControl(requested))
	c.Data(http.StatusOK, core.ContentTypeJSON, payload)
	metrics.RecordSuccess(s.metricsService, startTime, resolved, string(category))
}

func (s *Server) notFound(c *gin.Context) {
	if version, ok := unsupportedVersion(c.Request.URL.Path); ok {
		respondWithError(c, http.StatusNotFound, core.ErrorCodeVersionNotSupported,
			"API version '"+version+"' is not supported.")
		return
	}
	respondWithError(c, http.StatusNotFound, core.ErrorCodeNotFound, "Route not found.")
}
