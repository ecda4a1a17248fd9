// Package server exposes the recommendation pipeline and the saved-build
// store over HTTP. Authentication proper is the host stack's job; this layer
// only consumes opaque identity headers.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pcbuilder-api/server/internal/recommender"
	"github.com/pcbuilder-api/server/internal/store"
)

// Deps carries everything the router needs.
type Deps struct {
	Recommender *recommender.Service
	Builds      store.BuildRepository
	RequestLog  store.RequestLog
	AdminAPIKey string
}

// New assembles the gin engine with all routes registered.
func New(deps Deps) *gin.Engine {
	h := &Handler{
		recommender: deps.Recommender,
		builds:      deps.Builds,
		requestLog:  deps.RequestLog,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/recommendations", h.Recommend)
		v1.POST("/explanations", h.Explain)

		builds := v1.Group("/builds")
		builds.Use(requireUser())
		{
			builds.POST("", h.SaveBuild)
			builds.GET("", h.ListBuilds)
			builds.GET("/:id", h.GetBuild)
			builds.DELETE("/:id", h.DeleteBuild)
		}

		admin := v1.Group("/admin")
		admin.Use(requireAPIKey(deps.AdminAPIKey))
		{
			admin.GET("/builds", h.AdminListBuilds)
			admin.DELETE("/builds/:id", h.AdminDeleteBuild)
			admin.GET("/stats", h.AdminStats)
		}
	}

	return r
}

const userHeader = "X-User-ID"

// requireUser rejects requests without an identity header. Who verified that
// identity is out of scope here.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(userHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Next()
	}
}

func requireAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
