package models

import "time"

// Match states of a prediction as shown by the debug view.
const (
	MatchStatusMatch    = "match"
	MatchStatusMismatch = "mismatch"
	MatchStatusUnknown  = "unknown"
)

type PredictionStats struct {
	Total      int `json:"total"`
	Matches    int `json:"matches"`
	Mismatches int `json:"mismatches"`
	Unknown    int `json:"unknown"`
}

type PredictionDebugRow struct {
	TreeRow
	MatchStatus     string `json:"match_status"`
	PredictedFolder string `json:"predicted_folder"`
	LabeledFolder   string `json:"labeled_folder"`
	FolderSame      bool   `json:"folder_same"`
}

type PredictionDebug struct {
	Stats       PredictionStats      `json:"stats"`
	Predictions []PredictionDebugRow `json:"predictions"`
}

type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

type BucketStructure struct {
	Bucket       string       `json:"bucket"`
	Prefix       string       `json:"prefix"`
	Folders      []string     `json:"folders"`
	Files        []ObjectInfo `json:"files"`
	TotalFiles   int          `json:"totalFiles"`
	TotalFolders int          `json:"totalFolders"`
	IsTruncated  bool         `json:"isTruncated"`
}

type BucketAccess struct {
	Success          bool         `json:"success"`
	BucketAccessible bool         `json:"bucketAccessible,omitempty"`
	TotalObjects     int          `json:"totalObjects,omitempty"`
	SampleObjects    []ObjectInfo `json:"sampleObjects,omitempty"`
	Message          string       `json:"message,omitempty"`
	Error            string       `json:"error,omitempty"`
	ErrorCode        string       `json:"errorCode,omitempty"`
	Test             string       `json:"test,omitempty"`
}
