// Package controllers holds the gin handlers of the review dashboard API.
package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/metrics"
	"github.com/omardr777/ai-dashboard/models"
	"github.com/omardr777/ai-dashboard/reconcile"
	"github.com/omardr777/ai-dashboard/storage"
	"github.com/omardr777/ai-dashboard/utils"
)

// TreeStore is the database access the tree and species routes need.
type TreeStore interface {
	ListTrees(ctx context.Context) ([]models.TreeRow, error)
	ListSpecies(ctx context.Context) ([]models.SpeciesRow, error)
	UpdateTreeSpecies(ctx context.Context, treeID uint, req models.UpdateSpeciesRequest) (uint, error)
}

// RunLog reads back journaled sync runs.
type RunLog interface {
	ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
	GetRun(ctx context.Context, id string) (*models.SyncRun, error)
}

// Syncer runs one reconciliation.
type Syncer interface {
	Run(ctx context.Context, opts reconcile.Options) (*models.SyncReport, error)
}

// Trainer proxies the training pipeline.
type Trainer interface {
	Start(ctx context.Context, req models.TrainingStartRequest) (*models.TrainingStartResponse, error)
	Progress(ctx context.Context, executionArn string) (*models.TrainingProgress, error)
	Logs(ctx context.Context, req models.TrainingLogsRequest) (*models.TrainingLogs, error)
}

// Deps are the process-wide collaborators built once in main.
type Deps struct {
	Store    TreeStore
	Runs     RunLog
	Syncer   Syncer
	Objects  storage.ObjectStore
	Trainer  Trainer
	Hub      *Hub
	Metrics  *metrics.Metrics
	Log      *zap.Logger
	Health   func(ctx context.Context) error
	Prefix   string
	CacheTTL time.Duration

	SyncConcurrency int
}

type Handler struct {
	store   TreeStore
	runs    RunLog
	syncer  Syncer
	objects storage.ObjectStore
	trainer Trainer
	hub     *Hub
	metrics *metrics.Metrics
	log     *zap.Logger
	health  func(ctx context.Context) error
	prefix  string

	syncConcurrency int

	// species is nil when caching is disabled.
	species *cache.Cache
}

const speciesCacheKey = "species"

func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:           d.Store,
		runs:            d.Runs,
		syncer:          d.Syncer,
		objects:         d.Objects,
		trainer:         d.Trainer,
		hub:             d.Hub,
		metrics:         d.Metrics,
		log:             d.Log,
		health:          d.Health,
		prefix:          d.Prefix,
		syncConcurrency: d.SyncConcurrency,
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.prefix == "" {
		h.prefix = utils.DefaultPrefix
	}
	if h.syncConcurrency < 1 {
		h.syncConcurrency = 1
	}
	if d.CacheTTL > 0 {
		// One key, so no janitor goroutine.
		h.species = cache.New(d.CacheTTL, 0)
	}
	return h
}

// abort writes the {"error": ...} body with the status matching err's kind.
func (h *Handler) abort(c *gin.Context, err error) {
	status := apperr.Status(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}
