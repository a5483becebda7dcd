package controllers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/omardr777/ai-dashboard/middlewares"
)

// RouterConfig carries the settings that shape the router itself.
type RouterConfig struct {
	CORSOrigins   []string
	AuthJWTSecret string
}

// NewRouter wires every route of the API onto a fresh gin engine.
func NewRouter(h *Handler, rc RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(h.log, h.metrics))
	r.Use(cors.New(corsConfig(rc.CORSOrigins)))

	auth := middlewares.AuthMiddleware(rc.AuthJWTSecret)

	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	trees := r.Group("/trees")
	trees.GET("", h.GetTrees)
	trees.PUT("/:id/species", auth, h.UpdateTreeSpecies)

	r.GET("/species", h.GetSpecies)

	versioning := r.Group("/versioning")
	versioning.POST("/sync-s3", auth, h.SyncS3)
	versioning.GET("/runs", h.ListRuns)
	versioning.GET("/runs/:id", h.GetRun)
	versioning.GET("/ws", auth, h.HandleWebSocket)

	training := r.Group("/api/training")
	training.POST("/start", auth, h.StartTraining)
	training.POST("/progress", h.TrainingProgress)
	training.POST("/logs", h.TrainingLogs)

	debug := r.Group("/debug")
	debug.GET("/predictions", h.DebugPredictions)
	debug.GET("/s3-structure", h.S3Structure)
	debug.GET("/test-s3-access", h.TestS3Access)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Netzero Trees API - Go Version"})
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
