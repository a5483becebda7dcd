package main

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/omardr777/ai-dashboard/config"
	"github.com/omardr777/ai-dashboard/controllers"
	"github.com/omardr777/ai-dashboard/metrics"
	"github.com/omardr777/ai-dashboard/reconcile"
	"github.com/omardr777/ai-dashboard/storage"
	"github.com/omardr777/ai-dashboard/store"
	"github.com/omardr777/ai-dashboard/training"
)

// app holds the long-lived handles shared by the serve and sync commands.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	db         *gorm.DB
	store      *store.Store
	journal    *store.SyncJournal
	objects    storage.ObjectStore
	aws        *config.AWSClients
	metrics    *metrics.Metrics
	hub        *controllers.Hub
	reconciler *reconcile.Reconciler
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := config.OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := config.MigrateAll(db); err != nil {
			return nil, err
		}
		log.Info("Database migrated")
	}

	clients, err := config.LoadAWS(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		store:   store.New(db),
		journal: store.NewSyncJournal(db),
		objects: storage.NewS3Store(clients.S3),
		aws:     clients,
		metrics: metrics.New(),
		hub:     controllers.NewHub(log),
	}
	a.reconciler = reconcile.New(a.store, a.objects, log,
		reconcile.WithJournal(a.journal),
		reconcile.WithNotifier(a.hub),
		reconcile.WithMetrics(a.metrics),
		reconcile.WithPrefix(cfg.S3Prefix),
	)
	return a, nil
}

func (a *app) handler() *controllers.Handler {
	trainer := training.NewService(a.aws.SFN, a.aws.Logs, a.cfg.TrainingTriggerURL, a.log,
		training.WithTotalSteps(a.cfg.TrainingTotalSteps))

	return controllers.NewHandler(controllers.Deps{
		Store:           a.store,
		Runs:            a.journal,
		Syncer:          a.reconciler,
		Objects:         a.objects,
		Trainer:         trainer,
		Hub:             a.hub,
		Metrics:         a.metrics,
		Log:             a.log,
		Health:          a.ping,
		Prefix:          a.cfg.S3Prefix,
		CacheTTL:        a.cfg.SpeciesCacheTTL,
		SyncConcurrency: a.cfg.SyncConcurrency,
	})
}

func (a *app) ping(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *app) close() {
	a.hub.Close()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
