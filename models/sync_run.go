package models

import "time"

const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Phases of a journaled image move.
const (
	PhasePlanned = "planned"
	PhaseCopied  = "copied"
	PhaseDeleted = "deleted"
	PhaseSkipped = "skipped"
	PhaseFailed  = "failed"
)

// SyncRun is the persisted header of a reconciliation run.
type SyncRun struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	Bucket     string     `json:"bucket" gorm:"not null"`
	DryRun     bool       `json:"dry_run"`
	Status     string     `json:"status" gorm:"size:16;index"`
	Processed  int        `json:"processed"`
	Moved      int        `json:"moved"`
	Skipped    int        `json:"skipped"`
	ErrorCount int        `json:"error_count"`
	Message    string     `json:"message"`
	StartedAt  time.Time  `json:"started_at" gorm:"index"`
	FinishedAt *time.Time `json:"finished_at"`

	Actions []SyncActionRecord `json:"actions,omitempty" gorm:"foreignKey:RunID"`
}

func (SyncRun) TableName() string { return "sync_runs" }

// SyncActionRecord tracks how far a single image move got.
type SyncActionRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RunID          string    `json:"run_id" gorm:"size:36;index"`
	TreeID         uint      `json:"tree_id"`
	ImageName      string    `json:"image_name"`
	SourceKey      string    `json:"source_key"`
	DestinationKey string    `json:"destination_key"`
	Phase          string    `json:"phase" gorm:"size:16"`
	Detail         string    `json:"detail"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (SyncActionRecord) TableName() string { return "sync_actions" }
