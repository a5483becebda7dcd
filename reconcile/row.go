package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/models"
	"github.com/omardr777/ai-dashboard/utils"
)

// rowResult is what one mismatched row contributed to the report.
type rowResult struct {
	processed bool
	moved     int
	skipped   int
	actions   []models.SyncAction
	errors    []models.SyncError
}

func (r *Reconciler) processRow(ctx context.Context, log *zap.Logger, runID string, opts Options, m models.Mismatch) rowResult {
	res := rowResult{processed: true}
	predicted, labeled := utils.Deref(m.PredictedCommonName), utils.Deref(m.LabeledCommonName)
	log = log.With(zap.Uint("tree_id", m.TreeID), zap.String("image", m.ImageName))
	log.Debug("Processing tree",
		zap.String("predicted", predicted), zap.Uint("predicted_id", m.PredictedSpecieID),
		zap.String("labeled", labeled), zap.Uint("labeled_id", m.LabeledSpecieID))

	base := models.SyncAction{
		TreeID:           m.TreeID,
		ImageName:        m.ImageName,
		PredictedSpecies: predicted,
		LabeledSpecies:   labeled,
	}

	if predicted == "" || labeled == "" {
		log.Warn("Skipping tree with missing species names")
		res.skipped++
		r.addAction(runID, &res, base, models.ActionMissingSpeciesName)
		return res
	}

	base.From = utils.ObjectKey(r.prefix, predicted, m.ImageName)
	base.To = utils.ObjectKey(r.prefix, labeled, m.ImageName)
	if base.From == base.To {
		log.Debug("Folders are identical, no move needed")
		res.skipped++
		r.addAction(runID, &res, base, models.ActionSameFolder)
		return res
	}

	images := []string{m.ImageName}
	if c := utils.Deref(m.CompressedImageName); c != "" {
		images = append(images, c)
	}
	for _, name := range images {
		if ctx.Err() != nil {
			res.processed = false
			return res
		}
		action := base
		action.ImageName = name
		action.From = utils.ObjectKey(r.prefix, predicted, name)
		action.To = utils.ObjectKey(r.prefix, labeled, name)
		r.moveImage(ctx, log.With(zap.String("object", name)), runID, opts, action, &res)
	}
	return res
}

// moveImage copies then deletes one object. Only the copy decides success.
func (r *Reconciler) moveImage(ctx context.Context, log *zap.Logger, runID string, opts Options, action models.SyncAction, res *rowResult) {
	rec := r.journalAction(ctx, log, runID, action)

	if opts.DryRun {
		log.Debug("Dry run: would move", zap.String("from", action.From), zap.String("to", action.To))
		r.addAction(runID, res, action, models.ActionWouldMove)
		return
	}

	exists, err := r.objects.Exists(ctx, opts.Bucket, action.From)
	if err != nil {
		r.addError(runID, res, action, err)
		r.journalPhase(ctx, log, rec, models.PhaseFailed, "head failed: "+err.Error())
		return
	}
	if !exists {
		log.Debug("Source not found", zap.String("from", action.From))
		res.skipped++
		r.addAction(runID, res, action, models.ActionSourceNotFound)
		r.journalPhase(ctx, log, rec, models.PhaseSkipped, "source not found")
		return
	}

	if err := r.objects.Copy(ctx, opts.Bucket, action.From, action.To); err != nil {
		r.addError(runID, res, action, err)
		r.journalPhase(ctx, log, rec, models.PhaseFailed, "copy failed: "+err.Error())
		return
	}
	r.journalPhase(ctx, log, rec, models.PhaseCopied, "")

	if err := r.objects.Delete(ctx, opts.Bucket, action.From); err != nil {
		log.Warn("File was copied but not deleted from source", zap.String("from", action.From), zap.Error(err))
		r.journalPhase(ctx, log, rec, models.PhaseCopied, "delete failed: "+err.Error())
	} else {
		r.journalPhase(ctx, log, rec, models.PhaseDeleted, "")
	}

	res.moved++
	r.addAction(runID, res, action, models.ActionMoved)
	log.Debug("Moved image", zap.String("from", action.From), zap.String("to", action.To))
}

func (r *Reconciler) addAction(runID string, res *rowResult, action models.SyncAction, outcome string) {
	action.Action = outcome
	res.actions = append(res.actions, action)
	r.metrics.ObserveImage(outcome)
	r.publish(models.SyncEvent{RunID: runID, Action: &action})
}

func (r *Reconciler) addError(runID string, res *rowResult, action models.SyncAction, err error) {
	syncErr := models.SyncError{TreeID: action.TreeID, ImageName: action.ImageName, Error: err.Error()}
	res.errors = append(res.errors, syncErr)
	r.metrics.ObserveImage("error")
	r.publish(models.SyncEvent{RunID: runID, Error: &syncErr})
}

func (r *Reconciler) journalAction(ctx context.Context, log *zap.Logger, runID string, action models.SyncAction) *models.SyncActionRecord {
	if r.journal == nil {
		return nil
	}
	rec := &models.SyncActionRecord{
		RunID:          runID,
		TreeID:         action.TreeID,
		ImageName:      action.ImageName,
		SourceKey:      action.From,
		DestinationKey: action.To,
		Phase:          models.PhasePlanned,
	}
	if err := r.journal.RecordAction(ctx, rec); err != nil {
		log.Warn("Failed to journal sync action", zap.Error(err))
		return nil
	}
	return rec
}

func (r *Reconciler) journalPhase(ctx context.Context, log *zap.Logger, rec *models.SyncActionRecord, phase, detail string) {
	if r.journal == nil || rec == nil {
		return
	}
	if err := r.journal.UpdatePhase(ctx, rec.ID, phase, detail); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("Failed to journal sync phase", zap.String("phase", phase), zap.Error(err))
	}
}

// aggregate folds row results in row order.
func aggregate(results []rowResult) *models.SyncReport {
	report := &models.SyncReport{
		Errors:  []models.SyncError{},
		Actions: []models.SyncAction{},
	}
	for _, res := range results {
		if res.processed {
			report.Processed++
		}
		report.Moved += res.moved
		report.Skipped += res.skipped
		report.Actions = append(report.Actions, res.actions...)
		report.Errors = append(report.Errors, res.errors...)
	}
	return report
}
