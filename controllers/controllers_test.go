package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/omardr777/ai-dashboard/apperr"
	"github.com/omardr777/ai-dashboard/metrics"
	"github.com/omardr777/ai-dashboard/middlewares"
	"github.com/omardr777/ai-dashboard/models"
	"github.com/omardr777/ai-dashboard/reconcile"
	"github.com/omardr777/ai-dashboard/storage"
	"github.com/omardr777/ai-dashboard/store"
	"github.com/omardr777/ai-dashboard/testutil"
)

const bucket = "test-bucket"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTrainer struct {
	start    *models.TrainingStartResponse
	progress *models.TrainingProgress
	logs     *models.TrainingLogs
	err      error
}

func (f *fakeTrainer) Start(context.Context, models.TrainingStartRequest) (*models.TrainingStartResponse, error) {
	return f.start, f.err
}

func (f *fakeTrainer) Progress(context.Context, string) (*models.TrainingProgress, error) {
	return f.progress, f.err
}

func (f *fakeTrainer) Logs(context.Context, models.TrainingLogsRequest) (*models.TrainingLogs, error) {
	return f.logs, f.err
}

type env struct {
	db      *gorm.DB
	objects *storage.MemoryStore
	trainer *fakeTrainer
	hub     *Hub
	router  *gin.Engine
}

func newEnv(t *testing.T, secret string) *env {
	t.Helper()
	db := testutil.NewDB(t)
	s := store.New(db)
	journal := store.NewSyncJournal(db)
	objects := storage.NewMemoryStore()
	hub := NewHub(nil)
	t.Cleanup(hub.Close)
	m := metrics.New()
	trainer := &fakeTrainer{}

	r := reconcile.New(s, objects, nil,
		reconcile.WithJournal(journal), reconcile.WithNotifier(hub), reconcile.WithMetrics(m))
	h := NewHandler(Deps{
		Store:    s,
		Runs:     journal,
		Syncer:   r,
		Objects:  objects,
		Trainer:  trainer,
		Hub:      hub,
		Metrics:  m,
		CacheTTL: time.Minute,
	})
	return &env{
		db:      db,
		objects: objects,
		trainer: trainer,
		hub:     hub,
		router:  NewRouter(h, RouterConfig{AuthJWTSecret: secret}),
	}
}

func (e *env) do(method, target string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// seed creates tree 1 predicted Acacia and labeled Ficus religiosa.
func seed(t *testing.T, db *gorm.DB) {
	testutil.Species(t, db, 1, "Acacia")
	testutil.Species(t, db, 2, "Ficus religiosa")
	testutil.Tree(t, db, 1, "img1.jpg", "")
	testutil.Prediction(t, db, 1, 1, 2)
}

func TestRootAndHealth(t *testing.T) {
	e := newEnv(t, "")
	w := e.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Netzero Trees API")

	w = e.do(http.MethodGet, "/healthz", nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = e.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dashboard_http_requests_total")
}

func TestGetTreesAndSpecies(t *testing.T) {
	e := newEnv(t, "")
	seed(t, e.db)

	w := e.do(http.MethodGet, "/trees", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trees []models.TreeRow
	decode(t, w, &trees)
	require.Len(t, trees, 1)
	assert.Equal(t, "Ficus religiosa", *trees[0].LabeledCommonName)

	w = e.do(http.MethodGet, "/species", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var species []models.SpeciesRow
	decode(t, w, &species)
	require.Len(t, species, 2)
	assert.Equal(t, "Acacia", *species[0].CommonName)
}

func TestGetSpeciesIsCached(t *testing.T) {
	e := newEnv(t, "")
	testutil.Species(t, e.db, 1, "Acacia")

	first := e.do(http.MethodGet, "/species", nil)
	testutil.Species(t, e.db, 2, "Neem")
	second := e.do(http.MethodGet, "/species", nil)

	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestUpdateTreeSpecies(t *testing.T) {
	e := newEnv(t, "")
	seed(t, e.db)

	body := map[string]interface{}{
		"predicted_specie_id": 1, "labeled_specie_id": 2, "model_name": "yolo-cls", "model_version": "v2",
	}
	w := e.do(http.MethodPut, "/trees/1/species", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.UpdateSpeciesResponse
	decode(t, w, &resp)
	assert.Equal(t, uint(1), resp.TreeID)
	assert.NotZero(t, resp.PredictionID)
	assert.Equal(t, "Tree species updated successfully", resp.Message)

	var tree models.Tree
	require.NoError(t, e.db.First(&tree, 1).Error)
	assert.Equal(t, uint(2), *tree.RecognizedSpecieID)
}

func TestUpdateTreeSpeciesErrors(t *testing.T) {
	e := newEnv(t, "")
	seed(t, e.db)
	full := map[string]interface{}{
		"predicted_specie_id": 1, "labeled_specie_id": 2, "model_name": "m", "model_version": "1",
	}

	tests := []struct {
		name   string
		target string
		body   interface{}
		status int
		error  string
	}{
		{"missing_tree", "/trees/999/species", full, http.StatusNotFound, "Tree not found"},
		{"bad_id", "/trees/abc/species", full, http.StatusBadRequest, "Invalid tree id"},
		{"missing_field", "/trees/1/species", map[string]interface{}{"predicted_specie_id": 1}, http.StatusBadRequest, "Missing required fields"},
		{"zero_id", "/trees/1/species", map[string]interface{}{
			"predicted_specie_id": 0, "labeled_specie_id": 2, "model_name": "m", "model_version": "1",
		}, http.StatusBadRequest, "Missing required fields"},
		{"bad_json", "/trees/1/species", "{", http.StatusBadRequest, "Missing required fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPut, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			decode(t, w, &body)
			assert.Equal(t, tt.error, body["error"])
		})
	}

	var count int64
	e.db.Model(&models.Prediction{}).Where("tree_id = ?", 999).Count(&count)
	assert.Zero(t, count)
}

func TestSyncS3(t *testing.T) {
	e := newEnv(t, "")
	seed(t, e.db)
	e.objects.Put(bucket, "images2/Acacia/img1.jpg", 10)

	w := e.do(http.MethodPost, "/versioning/sync-s3?bucket="+bucket, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report models.SyncReport
	decode(t, w, &report)
	assert.Equal(t, "S3 sync completed", report.Message)
	assert.Equal(t, 1, report.Moved)
	require.Len(t, report.Actions, 1)
	assert.Equal(t, "images2/Ficus religiosa/img1.jpg", report.Actions[0].To)
	assert.True(t, e.objects.Has(bucket, "images2/Ficus religiosa/img1.jpg"))

	w = e.do(http.MethodGet, "/versioning/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs []models.SyncRun
	decode(t, w, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)

	w = e.do(http.MethodGet, "/versioning/runs/"+report.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run models.SyncRun
	decode(t, w, &run)
	require.Len(t, run.Actions, 1)
	assert.Equal(t, models.PhaseDeleted, run.Actions[0].Phase)
}

func TestSyncS3DryRun(t *testing.T) {
	e := newEnv(t, "")
	seed(t, e.db)
	e.objects.Put(bucket, "images2/Acacia/img1.jpg", 10)

	w := e.do(http.MethodPost, "/versioning/sync-s3?bucket="+bucket+"&dryRun=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report models.SyncReport
	decode(t, w, &report)
	assert.Equal(t, "Dry run completed", report.Message)
	assert.Equal(t, 0, report.Moved)
	require.Len(t, report.Actions, 1)
	assert.Equal(t, models.ActionWouldMove, report.Actions[0].Action)
	assert.Zero(t, e.objects.MutatingCalls())
}

func TestSyncS3Errors(t *testing.T) {
	e := newEnv(t, "")

	w := e.do(http.MethodPost, "/versioning/sync-s3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Bucket name is required"}`, w.Body.String())

	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = e.do(http.MethodPost, "/versioning/sync-s3?bucket="+bucket, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.True(t, strings.HasPrefix(body["error"].(string), "S3 sync error: "))
	assert.Contains(t, body, "duration")
	assert.Contains(t, body, "timestamp")
}

func TestGetRunNotFound(t *testing.T) {
	e := newEnv(t, "")
	w := e.do(http.MethodGet, "/versioning/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Sync run not found"}`, w.Body.String())

	w = e.do(http.MethodGet, "/versioning/runs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	const secret = "s3cret"
	e := newEnv(t, secret)
	seed(t, e.db)

	w := e.do(http.MethodPost, "/versioning/sync-s3?bucket="+bucket+"&dryRun=true", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(http.MethodPut, "/trees/1/species", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := middlewares.IssueToken(secret, "reviewer", time.Hour)
	require.NoError(t, err)
	w = e.do(http.MethodPost, "/versioning/sync-s3?bucket="+bucket+"&dryRun=true", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	// Reads stay open.
	w = e.do(http.MethodGet, "/trees", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTrainingRoutes(t *testing.T) {
	e := newEnv(t, "")
	step := "TrainModel"
	e.trainer.start = &models.TrainingStartResponse{ExecutionArn: "arn:exec:1", LogStreamName: "run-1"}
	e.trainer.progress = &models.TrainingProgress{Status: "RUNNING", CurrentStep: &step, Progress: 40, Logs: []string{}}
	e.trainer.logs = &models.TrainingLogs{Events: []models.LogEvent{{Message: "epoch 1", Timestamp: 1}}}

	w := e.do(http.MethodPost, "/api/training/start", map[string]int{"epochs": 10, "imgsz": 640, "batch_size": 16})
	require.Equal(t, http.StatusOK, w.Code)
	var started models.TrainingStartResponse
	decode(t, w, &started)
	assert.Equal(t, "arn:exec:1", started.ExecutionArn)
	assert.Equal(t, "Training started", started.Message)

	w = e.do(http.MethodPost, "/api/training/progress", map[string]string{"executionArn": "arn:exec:1"})
	require.Equal(t, http.StatusOK, w.Code)
	var progress models.TrainingProgress
	decode(t, w, &progress)
	assert.Equal(t, "TrainModel", *progress.CurrentStep)

	w = e.do(http.MethodPost, "/api/training/logs", map[string]string{"logGroupName": "/g", "logStreamName": "s"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "epoch 1")
}

func TestTrainingRouteErrors(t *testing.T) {
	e := newEnv(t, "")

	w := e.do(http.MethodPost, "/api/training/progress", map[string]string{})
	assert.JSONEq(t, `{"error":"executionArn is required"}`, w.Body.String())
	w = e.do(http.MethodPost, "/api/training/logs", map[string]string{"logGroupName": "/g"})
	assert.JSONEq(t, `{"error":"logGroupName and logStreamName are required"}`, w.Body.String())
	w = e.do(http.MethodPost, "/api/training/start", map[string]int{"epochs": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.trainer.err = apperr.Upstream("describe execution", errors.New("ExecutionDoesNotExist"))
	w = e.do(http.MethodPost, "/api/training/progress", map[string]string{"executionArn": "arn:missing"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "Failed to get training progress", body["error"])
	assert.Equal(t, "ExecutionDoesNotExist", body["details"])
}

func TestDebugPredictions(t *testing.T) {
	e := newEnv(t, "")
	seed(t, e.db)
	testutil.Tree(t, e.db, 2, "img2.jpg", "")
	testutil.Prediction(t, e.db, 2, 1, 1)
	testutil.Tree(t, e.db, 3, "img3.jpg", "")
	testutil.Prediction(t, e.db, 3, 1, 0)

	w := e.do(http.MethodGet, "/debug/predictions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out models.PredictionDebug
	decode(t, w, &out)
	assert.Equal(t, models.PredictionStats{Total: 3, Matches: 1, Mismatches: 1, Unknown: 1}, out.Stats)
	require.Len(t, out.Predictions, 3)

	first := out.Predictions[0]
	assert.Equal(t, models.MatchStatusMismatch, first.MatchStatus)
	assert.Equal(t, "images2/Acacia", first.PredictedFolder)
	assert.Equal(t, "images2/Ficus religiosa", first.LabeledFolder)
	assert.False(t, first.FolderSame)
	assert.True(t, out.Predictions[1].FolderSame)
	assert.Empty(t, out.Predictions[2].LabeledFolder)
}

func TestS3Structure(t *testing.T) {
	e := newEnv(t, "")
	e.objects.Put(bucket, "images2/Acacia/img1.jpg", 10)
	e.objects.Put(bucket, "images2/Neem/img2.jpg", 10)
	e.objects.Put(bucket, "images2/readme.txt", 3)

	w := e.do(http.MethodGet, "/debug/s3-structure?bucket="+bucket, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out models.BucketStructure
	decode(t, w, &out)
	assert.Equal(t, "images2", out.Prefix)
	assert.Equal(t, []string{"Acacia", "Neem"}, out.Folders)
	assert.Equal(t, 2, out.TotalFolders)
	require.Equal(t, 1, out.TotalFiles)
	assert.Equal(t, "images2/readme.txt", out.Files[0].Key)

	w = e.do(http.MethodGet, "/debug/s3-structure", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/debug/s3-structure?bucket=missing", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "S3 error")
}

func TestS3Access(t *testing.T) {
	e := newEnv(t, "")
	for _, k := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg"} {
		e.objects.Put(bucket, k, 1)
	}

	w := e.do(http.MethodGet, "/debug/test-s3-access?bucket="+bucket, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ok models.BucketAccess
	decode(t, w, &ok)
	assert.True(t, ok.Success)
	assert.True(t, ok.BucketAccessible)
	assert.Equal(t, 6, ok.TotalObjects)
	assert.Len(t, ok.SampleObjects, 5)

	w = e.do(http.MethodGet, "/debug/test-s3-access?bucket=missing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var failed models.BucketAccess
	decode(t, w, &failed)
	assert.False(t, failed.Success)
	assert.Equal(t, "NoSuchBucket", failed.ErrorCode)
	assert.Equal(t, "listObjectsV2", failed.Test)
}
