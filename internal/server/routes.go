package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	gin.SetMode(s.ginMode)
	s.router = gin.New()

	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.maxBodySizeMiddleware())
	s.router.Use(s.rateLimitMiddleware())

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/api/versions", s.listVersions)

	// Operator routes (admin key required)
	admin := s.router.Group("/api")
	admin.Use(s.authenticateAdmin)
	admin.GET("/stats", s.getStatsData)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/categories", s.listCategories)
		v1.GET("/snapshots", s.listSnapshots)
		v1.GET("/:date/:category", s.getSelection)
	}

	s.router.NoRoute(s.notFound)
}
