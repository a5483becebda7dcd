package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/models"
)

// POST /api/training/start
func (h *Handler) StartTraining(c *gin.Context) {
	var req models.TrainingStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "epochs, imgsz and batch_size are required"})
		return
	}

	resp, err := h.trainer.Start(c.Request.Context(), req)
	if err != nil {
		h.trainingFailed(c, "Failed to start training", err)
		return
	}
	if resp.Message == "" {
		resp.Message = "Training started"
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/training/progress
func (h *Handler) TrainingProgress(c *gin.Context) {
	var req models.TrainingProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ExecutionArn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "executionArn is required"})
		return
	}

	progress, err := h.trainer.Progress(c.Request.Context(), req.ExecutionArn)
	if err != nil {
		h.trainingFailed(c, "Failed to get training progress", err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// POST /api/training/logs
func (h *Handler) TrainingLogs(c *gin.Context) {
	var req models.TrainingLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LogGroupName == "" || req.LogStreamName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logGroupName and logStreamName are required"})
		return
	}

	logs, err := h.trainer.Logs(c.Request.Context(), req)
	if err != nil {
		h.trainingFailed(c, "Failed to get training logs", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) trainingFailed(c *gin.Context, msg string, err error) {
	if apperr.KindOf(err) == apperr.KindValidation {
		h.abort(c, err)
		return
	}
	h.log.Error(msg, zap.Error(err))
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   msg,
		"details": apperr.Message(err),
	})
}
