// Package training starts the model training pipeline and reports on its progress.
package training

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/models"
)

// historyPage is how many execution events are read to work out progress.
const historyPage = 100

// SFNAPI is the subset of the Step Functions client used here.
type SFNAPI interface {
	DescribeExecution(ctx context.Context, in *sfn.DescribeExecutionInput, optFns ...func(*sfn.Options)) (*sfn.DescribeExecutionOutput, error)
	GetExecutionHistory(ctx context.Context, in *sfn.GetExecutionHistoryInput, optFns ...func(*sfn.Options)) (*sfn.GetExecutionHistoryOutput, error)
}

// LogsAPI is the subset of the CloudWatch Logs client used here.
type LogsAPI interface {
	GetLogEvents(ctx context.Context, in *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

var (
	_ SFNAPI  = (*sfn.Client)(nil)
	_ LogsAPI = (*cloudwatchlogs.Client)(nil)
)

type Service struct {
	sfn        SFNAPI
	logs       LogsAPI
	client     *http.Client
	triggerURL string
	totalSteps int
	log        *zap.Logger
}

type Option func(*Service)

// WithHTTPClient replaces the client used to call the training trigger.
func WithHTTPClient(c *http.Client) Option { return func(s *Service) { s.client = c } }

// WithTotalSteps sets how many task states make up a full pipeline run.
func WithTotalSteps(n int) Option { return func(s *Service) { s.totalSteps = n } }

func NewService(sfnClient SFNAPI, logsClient LogsAPI, triggerURL string, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		sfn:        sfnClient,
		logs:       logsClient,
		client:     &http.Client{Timeout: 30 * time.Second},
		triggerURL: triggerURL,
		totalSteps: 5,
		log:        log.With(zap.String("component", "training")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start posts the hyperparameters to the training trigger, which starts the pipeline
// and answers with the execution it created.
func (s *Service) Start(ctx context.Context, req models.TrainingStartRequest) (*models.TrainingStartResponse, error) {
	if s.triggerURL == "" {
		return nil, apperr.Upstream("start training", errors.New("TRAINING_TRIGGER_URL is not configured"))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode training request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.triggerURL, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Upstream("start training", fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, apperr.Upstream("start training", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("start training", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream("start training", fmt.Errorf("training trigger returned %d: %s", resp.StatusCode, string(raw)))
	}

	var out models.TrainingStartResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Upstream("start training", fmt.Errorf("failed to parse response: %w", err))
	}
	s.log.Info("Training started",
		zap.String("execution_arn", out.ExecutionArn),
		zap.Int("epochs", req.Epochs), zap.Int("imgsz", req.ImgSize), zap.Int("batch_size", req.BatchSize))
	return &out, nil
}

// Progress reports the execution status, the most recently entered task and a
// percentage based on how many tasks have exited.
func (s *Service) Progress(ctx context.Context, executionArn string) (*models.TrainingProgress, error) {
	if executionArn == "" {
		return nil, apperr.Validation("training progress", "executionArn is required")
	}

	exec, err := s.sfn.DescribeExecution(ctx, &sfn.DescribeExecutionInput{ExecutionArn: aws.String(executionArn)})
	if err != nil {
		return nil, apperr.Upstream("describe execution", err)
	}
	history, err := s.sfn.GetExecutionHistory(ctx, &sfn.GetExecutionHistoryInput{
		ExecutionArn: aws.String(executionArn),
		MaxResults:   historyPage,
		ReverseOrder: true,
	})
	if err != nil {
		return nil, apperr.Upstream("get execution history", err)
	}

	out := &models.TrainingProgress{
		Status:    string(exec.Status),
		StartDate: exec.StartDate,
		Logs:      []string{},
	}
	exited := 0
	for _, ev := range history.Events {
		switch ev.Type {
		case sfntypes.HistoryEventTypeTaskStateEntered:
			// Events are newest first.
			if out.CurrentStep == nil && ev.StateEnteredEventDetails != nil {
				out.CurrentStep = ev.StateEnteredEventDetails.Name
			}
		case sfntypes.HistoryEventTypeTaskStateExited:
			exited++
		}
	}
	out.Progress = math.Min(float64(exited)/float64(s.totalSteps)*100, 100)
	return out, nil
}

// Logs returns one page of a training log stream, oldest first.
func (s *Service) Logs(ctx context.Context, req models.TrainingLogsRequest) (*models.TrainingLogs, error) {
	if req.LogGroupName == "" || req.LogStreamName == "" {
		return nil, apperr.Validation("training logs", "logGroupName and logStreamName are required")
	}

	in := &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(req.LogGroupName),
		LogStreamName: aws.String(req.LogStreamName),
		StartFromHead: aws.Bool(true),
	}
	if req.NextToken != nil && *req.NextToken != "" {
		in.NextToken = req.NextToken
	}
	resp, err := s.logs.GetLogEvents(ctx, in)
	if err != nil {
		return nil, apperr.Upstream("get log events", err)
	}

	out := &models.TrainingLogs{
		Events:            make([]models.LogEvent, 0, len(resp.Events)),
		NextForwardToken:  resp.NextForwardToken,
		NextBackwardToken: resp.NextBackwardToken,
	}
	for _, ev := range resp.Events {
		out.Events = append(out.Events, models.LogEvent{
			Message:       aws.ToString(ev.Message),
			Timestamp:     aws.ToInt64(ev.Timestamp),
			IngestionTime: aws.ToInt64(ev.IngestionTime),
		})
	}
	return out, nil
}
