package models

import "time"

type TrainingStartRequest struct {
	Epochs    int `json:"epochs" binding:"required"`
	ImgSize   int `json:"imgsz" binding:"required"`
	BatchSize int `json:"batch_size" binding:"required"`
}

// TrainingStartResponse is what the training trigger returns once the pipeline is started.
type TrainingStartResponse struct {
	ExecutionArn  string `json:"executionArn,omitempty"`
	LogStreamName string `json:"logStreamName,omitempty"`
	Message       string `json:"message,omitempty"`
}

type TrainingProgressRequest struct {
	ExecutionArn string `json:"executionArn"`
}

type TrainingProgress struct {
	Status      string     `json:"status"`
	CurrentStep *string    `json:"currentStep"`
	Progress    float64    `json:"progress"`
	StartDate   *time.Time `json:"startDate"`
	Logs        []string   `json:"logs"`
}

type TrainingLogsRequest struct {
	LogGroupName  string  `json:"logGroupName"`
	LogStreamName string  `json:"logStreamName"`
	NextToken     *string `json:"nextToken"`
}

type LogEvent struct {
	Message       string `json:"message"`
	Timestamp     int64  `json:"timestamp"`
	IngestionTime int64  `json:"ingestionTime"`
}

type TrainingLogs struct {
	Events            []LogEvent `json:"events"`
	NextForwardToken  *string    `json:"nextForwardToken"`
	NextBackwardToken *string    `json:"nextBackwardToken"`
}
