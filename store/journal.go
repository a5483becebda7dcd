package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/models"
)

// SyncJournal persists sync runs and the phase each image move reached.
type SyncJournal struct {
	db *gorm.DB
}

func NewSyncJournal(db *gorm.DB) *SyncJournal {
	return &SyncJournal{db: db}
}

func (j *SyncJournal) StartRun(ctx context.Context, run *models.SyncRun) error {
	return j.db.WithContext(ctx).Create(run).Error
}

func (j *SyncJournal) RecordAction(ctx context.Context, rec *models.SyncActionRecord) error {
	return j.db.WithContext(ctx).Create(rec).Error
}

func (j *SyncJournal) UpdatePhase(ctx context.Context, id uint, phase, detail string) error {
	return j.db.WithContext(ctx).Model(&models.SyncActionRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{"phase": phase, "detail": detail, "updated_at": time.Now().UTC()}).Error
}

func (j *SyncJournal) FinishRun(ctx context.Context, run *models.SyncRun) error {
	return j.db.WithContext(ctx).Model(&models.SyncRun{}).Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":      run.Status,
			"processed":   run.Processed,
			"moved":       run.Moved,
			"skipped":     run.Skipped,
			"error_count": run.ErrorCount,
			"message":     run.Message,
			"finished_at": run.FinishedAt,
		}).Error
}

// ListRuns returns the most recent runs first, without their actions.
func (j *SyncJournal) ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []models.SyncRun
	if err := j.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, apperr.Store("list sync runs", err)
	}
	return runs, nil
}

// GetRun returns one run with its journaled actions.
func (j *SyncJournal) GetRun(ctx context.Context, id string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := j.db.WithContext(ctx).
		Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Take(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("get sync run", "Sync run not found")
		}
		return nil, apperr.Store("get sync run", err)
	}
	return &run, nil
}
