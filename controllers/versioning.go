package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/reconcile"
)

// POST /versioning/sync-s3?bucket=&dryRun=
// The run is bound to the request: a client that goes away cancels it.
func (h *Handler) SyncS3(c *gin.Context) {
	start := time.Now()
	opts := reconcile.Options{
		Bucket:      c.Query("bucket"),
		DryRun:      c.Query("dryRun") == "true",
		Concurrency: h.syncConcurrency,
	}

	report, err := h.syncer.Run(c.Request.Context(), opts)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			h.abort(c, err)
			return
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "S3 sync error: " + apperr.Message(err),
			"duration":  time.Since(start).Milliseconds(),
			"timestamp": time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /versioning/runs?limit=
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list sync runs", zap.Error(err))
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GET /versioning/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
