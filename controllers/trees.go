package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/models"
)

// GET /trees
func (h *Handler) GetTrees(c *gin.Context) {
	rows, err := h.store.ListTrees(c.Request.Context())
	if err != nil {
		h.log.Error("Database error while fetching trees", zap.Error(err))
		h.abort(c, err)
		return
	}
	h.log.Debug("Fetched trees", zap.Int("count", len(rows)))
	c.JSON(http.StatusOK, rows)
}

// PUT /trees/:id/species
func (h *Handler) UpdateTreeSpecies(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tree id"})
		return
	}

	var req models.UpdateSpeciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	treeID := uint(id)
	predictionID, err := h.store.UpdateTreeSpecies(c.Request.Context(), treeID, req)
	if err != nil {
		h.log.Warn("Tree species update failed", zap.Uint("tree_id", treeID), zap.Error(err))
		h.abort(c, err)
		return
	}

	h.log.Info("Tree species updated",
		zap.Uint("tree_id", treeID),
		zap.Uint("prediction_id", predictionID),
		zap.Uint("labeled_specie_id", req.LabeledSpecieID))
	c.JSON(http.StatusOK, models.UpdateSpeciesResponse{
		TreeID:       treeID,
		PredictionID: predictionID,
		Message:      "Tree species updated successfully",
	})
}
