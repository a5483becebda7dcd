package models

import "time"

// Mismatch is a prediction whose predicted and labeled species ids are both set and differ,
// joined with both common names and one of the tree's images.
type Mismatch struct {
	TreeID              uint    `json:"tree_id"`
	PredictedSpecieID   uint    `json:"predicted_specie_id"`
	LabeledSpecieID     uint    `json:"labeled_specie_id"`
	PredictedCommonName *string `json:"predicted_common_name"`
	LabeledCommonName   *string `json:"labeled_common_name"`
	ImageName           string  `json:"image_name"`
	CompressedImageName *string `json:"compressed_image_name"`
}

// Outcome tags reported for each sync action.
const (
	ActionMoved              = "moved"
	ActionWouldMove          = "would_move"
	ActionSourceNotFound     = "source_not_found"
	ActionSameFolder         = "no_move_needed_same_folder"
	ActionMissingSpeciesName = "missing_species_name"
)

type SyncAction struct {
	TreeID           uint   `json:"tree_id"`
	ImageName        string `json:"image_name"`
	From             string `json:"from"`
	To               string `json:"to"`
	PredictedSpecies string `json:"predicted_species"`
	LabeledSpecies   string `json:"labeled_species"`
	Action           string `json:"action"`
}

type SyncError struct {
	TreeID    uint   `json:"tree_id"`
	ImageName string `json:"image_name"`
	Error     string `json:"error"`
}

// SyncReport is returned once a sync run finishes.
type SyncReport struct {
	RunID     string       `json:"run_id"`
	Message   string       `json:"message"`
	Bucket    string       `json:"bucket"`
	DryRun    bool         `json:"dry_run"`
	Processed int          `json:"processed"`
	Moved     int          `json:"moved"`
	Skipped   int          `json:"skipped"`
	Errors    []SyncError  `json:"errors"`
	Actions   []SyncAction `json:"actions"`
	Duration  int64        `json:"duration"`
	Timestamp time.Time    `json:"timestamp"`
}

// SyncEvent is pushed to progress feed subscribers while a run is in flight.
type SyncEvent struct {
	RunID  string      `json:"run_id"`
	Action *SyncAction `json:"action,omitempty"`
	Error  *SyncError  `json:"error,omitempty"`
	Report *SyncReport `json:"report,omitempty"`
}
