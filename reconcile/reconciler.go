// Package reconcile moves tree images between species folders so the object store
// layout follows the reviewers' labels instead of the model's predictions.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/metrics"
	"github.com/omardr777/ai-dashboard/models"
	"github.com/omardr777/ai-dashboard/storage"
	"github.com/omardr777/ai-dashboard/utils"
)

// MismatchFinder lists predictions whose label disagrees with the prediction.
type MismatchFinder interface {
	FindMismatches(ctx context.Context) ([]models.Mismatch, error)
}

// Journal persists runs and per-image phases. Write failures never abort a run.
type Journal interface {
	StartRun(ctx context.Context, run *models.SyncRun) error
	RecordAction(ctx context.Context, rec *models.SyncActionRecord) error
	UpdatePhase(ctx context.Context, id uint, phase, detail string) error
	FinishRun(ctx context.Context, run *models.SyncRun) error
}

// Notifier receives progress events. Publish is called from worker goroutines.
type Notifier interface {
	Publish(event models.SyncEvent)
}

// Options control a single run.
type Options struct {
	Bucket      string
	DryRun      bool
	Concurrency int
}

type Reconciler struct {
	finder   MismatchFinder
	objects  storage.ObjectStore
	journal  Journal
	notifier Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
	prefix   string

	now   func() time.Time
	newID func() string
}

type Option func(*Reconciler)

func WithJournal(j Journal) Option { return func(r *Reconciler) { r.journal = j } }
func WithNotifier(n Notifier) Option { return func(r *Reconciler) { r.notifier = n } }
func WithMetrics(m *metrics.Metrics) Option { return func(r *Reconciler) { r.metrics = m } }

// WithPrefix sets the top-level folder; the default is "images2".
func WithPrefix(prefix string) Option { return func(r *Reconciler) { r.prefix = prefix } }

func New(finder MismatchFinder, objects storage.ObjectStore, log *zap.Logger, opts ...Option) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Reconciler{
		finder:  finder,
		objects: objects,
		log:     log.With(zap.String("component", "sync")),
		prefix:  utils.DefaultPrefix,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles every mismatched prediction. Per-image failures end up in the
// report; only a failed mismatch query or a cancelled context fail the run.
func (r *Reconciler) Run(ctx context.Context, opts Options) (*models.SyncReport, error) {
	if opts.Bucket == "" {
		return nil, apperr.Validation("sync", "Bucket name is required")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	start := r.now()
	run := &models.SyncRun{
		ID:        r.newID(),
		Bucket:    opts.Bucket,
		DryRun:    opts.DryRun,
		Status:    models.RunRunning,
		StartedAt: start.UTC(),
	}
	log := r.log.With(zap.String("run_id", run.ID), zap.String("bucket", opts.Bucket), zap.Bool("dry_run", opts.DryRun))
	log.Info("Starting S3 sync", zap.Int("concurrency", opts.Concurrency))
	r.journalStart(ctx, log, run)

	rows, err := r.finder.FindMismatches(ctx)
	if err != nil {
		r.fail(log, run, start, err)
		return nil, err
	}
	log.Info("Found predictions with mismatched species", zap.Int("count", len(rows)))

	results := make([]rowResult, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.processRow(gctx, log, run.ID, opts, rows[i])
			return nil
		})
	}
	waitErr := g.Wait()
	if waitErr == nil && !allProcessed(results) {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		err := fmt.Errorf("sync cancelled: %w", waitErr)
		r.fail(log, run, start, err)
		return nil, err
	}

	report := aggregate(results)
	report.RunID = run.ID
	report.Bucket = opts.Bucket
	report.DryRun = opts.DryRun
	report.Message = completionMessage(opts.DryRun)
	finished := r.now()
	report.Duration = finished.Sub(start).Milliseconds()
	report.Timestamp = finished.UTC()

	run.Status = models.RunCompleted
	run.Processed, run.Moved, run.Skipped, run.ErrorCount = report.Processed, report.Moved, report.Skipped, len(report.Errors)
	run.Message = report.Message
	r.journalFinish(log, run, finished)
	r.metrics.ObserveRun(opts.DryRun, models.RunCompleted, finished.Sub(start))
	r.publish(models.SyncEvent{RunID: run.ID, Report: report})

	log.Info(report.Message,
		zap.Int("processed", report.Processed),
		zap.Int("moved", report.Moved),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)),
		zap.Int64("duration_ms", report.Duration))
	return report, nil
}

// allProcessed reports whether every row ran to completion.
func allProcessed(results []rowResult) bool {
	for _, res := range results {
		if !res.processed {
			return false
		}
	}
	return true
}

func completionMessage(dryRun bool) string {
	if dryRun {
		return "Dry run completed"
	}
	return "S3 sync completed"
}

func (r *Reconciler) fail(log *zap.Logger, run *models.SyncRun, start time.Time, err error) {
	finished := r.now()
	log.Error("S3 sync failed", zap.Error(err), zap.Duration("after", finished.Sub(start)))
	run.Status = models.RunFailed
	run.Message = err.Error()
	r.journalFinish(log, run, finished)
	r.metrics.ObserveRun(run.DryRun, models.RunFailed, finished.Sub(start))
}

func (r *Reconciler) publish(event models.SyncEvent) {
	if r.notifier != nil {
		r.notifier.Publish(event)
	}
}

func (r *Reconciler) journalStart(ctx context.Context, log *zap.Logger, run *models.SyncRun) {
	if r.journal == nil {
		return
	}
	if err := r.journal.StartRun(ctx, run); err != nil {
		log.Warn("Failed to journal sync run start", zap.Error(err))
	}
}

// journalFinish uses a fresh context so a cancelled run is still closed out.
func (r *Reconciler) journalFinish(log *zap.Logger, run *models.SyncRun, finished time.Time) {
	if r.journal == nil {
		return
	}
	at := finished.UTC()
	run.FinishedAt = &at
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.journal.FinishRun(ctx, run); err != nil {
		log.Warn("Failed to journal sync run end", zap.Error(err))
	}
}
