package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/models"
	"github.com/omardr777/ai-dashboard/storage"
	"github.com/omardr777/ai-dashboard/utils"
)

const (
	structurePageSize = 1000
	accessPageSize    = 10
	accessSampleSize  = 5
)

// GET /debug/predictions
func (h *Handler) DebugPredictions(c *gin.Context) {
	rows, err := h.store.ListTrees(c.Request.Context())
	if err != nil {
		h.abort(c, err)
		return
	}

	out := models.PredictionDebug{Predictions: make([]models.PredictionDebugRow, 0, len(rows))}
	for _, row := range rows {
		d := models.PredictionDebugRow{TreeRow: row, MatchStatus: utils.MatchStatus(row)}
		if name := utils.Deref(row.PredictedCommonName); name != "" {
			d.PredictedFolder = h.folder(name)
		}
		if name := utils.Deref(row.LabeledCommonName); name != "" {
			d.LabeledFolder = h.folder(name)
		}
		d.FolderSame = d.PredictedFolder != "" && d.PredictedFolder == d.LabeledFolder

		out.Stats.Total++
		switch d.MatchStatus {
		case models.MatchStatusMatch:
			out.Stats.Matches++
		case models.MatchStatusMismatch:
			out.Stats.Mismatches++
		default:
			out.Stats.Unknown++
		}
		out.Predictions = append(out.Predictions, d)
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) folder(name string) string {
	return strings.TrimSuffix(h.prefix, "/") + "/" + name
}

// GET /debug/s3-structure?bucket=&prefix=
func (h *Handler) S3Structure(c *gin.Context) {
	bucket := c.Query("bucket")
	if bucket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bucket name is required"})
		return
	}
	prefix := c.DefaultQuery("prefix", h.prefix)

	listing, err := h.objects.List(c.Request.Context(), bucket, prefix, structurePageSize)
	if err != nil {
		h.log.Error("Failed to list bucket", zap.String("bucket", bucket), zap.String("prefix", prefix), zap.Error(err))
		h.abort(c, apperr.Storage("list bucket", err))
		return
	}

	c.JSON(http.StatusOK, models.BucketStructure{
		Bucket:       bucket,
		Prefix:       prefix,
		Folders:      listing.Folders,
		Files:        listing.Objects,
		TotalFiles:   len(listing.Objects),
		TotalFolders: len(listing.Folders),
		IsTruncated:  listing.IsTruncated,
	})
}

// GET /debug/test-s3-access?bucket=
// Failures are reported in the body with a 200 so the UI can show the error code.
func (h *Handler) TestS3Access(c *gin.Context) {
	bucket := c.Query("bucket")
	if bucket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bucket name is required"})
		return
	}

	listing, err := h.objects.List(c.Request.Context(), bucket, "", accessPageSize)
	if err != nil {
		h.log.Warn("Bucket access test failed", zap.String("bucket", bucket), zap.Error(err))
		c.JSON(http.StatusOK, models.BucketAccess{
			Success:   false,
			Error:     err.Error(),
			ErrorCode: storage.ErrorCode(err),
			Test:      "listObjectsV2",
		})
		return
	}

	sample := listing.Objects
	if len(sample) > accessSampleSize {
		sample = sample[:accessSampleSize]
	}
	c.JSON(http.StatusOK, models.BucketAccess{
		Success:          true,
		BucketAccessible: true,
		TotalObjects:     len(listing.Objects),
		SampleObjects:    sample,
		Message:          "Successfully accessed bucket " + bucket,
	})
}
