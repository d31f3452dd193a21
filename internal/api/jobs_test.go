// Copyright 2025 Video Insight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/core/services"
	"github.com/videolearn/video-insight/internal/storage"
)

type captureSubmitter struct {
	jobs []*model.Job
}

func (c *captureSubmitter) Submit(_ context.Context, job *model.Job) error {
	c.jobs = append(c.jobs, job)
	return nil
}

type fixedStats struct{}

func (fixedStats) Stats() model.QueueStats {
	return model.QueueStats{Running: 1, Queued: 2, Capacity: 2, RunningJobIDs: []string{"job-a"}}
}

func newTestRouter(t *testing.T) (*gin.Engine, *captureSubmitter, storage.StatusStore, *storage.LocalArtifactStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	status := storage.NewMemoryStatusStore()
	artifacts, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)

	submitter := &captureSubmitter{}
	router := &Router{
		Service: &services.AnalysisService{Status: status, Artifacts: artifacts, Engine: fixedStats{}},
		Engine:  submitter,
	}

	r := gin.New()
	apiV1 := r.Group("/api/v1")
	router.JobRouter(apiV1)
	router.StatsRouter(apiV1)
	return r, submitter, status, artifacts
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestSubmitJob verifies the accepted response carries a generated task id
// and the engine sees the full default capability set.
func TestSubmitJob(t *testing.T) {
	r, submitter, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/jobs", `{"video_path":"/videos/demo.mp4"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["task_id"])
	assert.Equal(t, "pending", resp["status"])

	require.Len(t, submitter.jobs, 1)
	assert.Equal(t, "/videos/demo.mp4", submitter.jobs[0].VideoPath)
	assert.Equal(t, model.DefaultCapabilities(), submitter.jobs[0].Capabilities)
}

// TestSubmitJobCustomCapabilities verifies an explicit capability block is
// honored as given, including the disabled stages.
func TestSubmitJobCustomCapabilities(t *testing.T) {
	r, submitter, _, _ := newTestRouter(t)

	body := `{"video_path":"/videos/demo.mp4","capabilities":{"video_segmentation":true,"transition_detection":false,"audio_transcription":false,"report_generation":false}}`
	w := doRequest(r, http.MethodPost, "/api/v1/jobs", body)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Len(t, submitter.jobs, 1)
	caps := submitter.jobs[0].Capabilities
	assert.True(t, caps.Segmentation)
	assert.False(t, caps.Transitions)
	assert.False(t, caps.Transcription)
	assert.False(t, caps.Report)
}

// TestSubmitJobRequiresPath verifies submissions without a video path are
// rejected before reaching the engine.
func TestSubmitJobRequiresPath(t *testing.T) {
	r, submitter, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/v1/jobs", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, submitter.jobs)
}

// TestGetJobStatus round-trips a record through the status endpoint.
func TestGetJobStatus(t *testing.T) {
	r, _, status, _ := newTestRouter(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, status.CreateJob(ctx, model.Job{ID: "job-1", VideoPath: "/videos/demo.mp4", SubmittedAt: now}))
	require.NoError(t, status.UpdateStatus(ctx, "job-1", model.StatusUpdate{
		Status:    model.JobStatusRunning,
		Progress:  40,
		Message:   "transcribing audio",
		UpdatedAt: now,
	}))

	w := doRequest(r, http.MethodGet, "/api/v1/jobs/job-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rec model.JobRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, model.JobStatusRunning, rec.Status)
	assert.Equal(t, 40, rec.Progress)
	assert.Equal(t, "transcribing audio", rec.Message)

	w = doRequest(r, http.MethodGet, "/api/v1/jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestGetResult serves the stored results document verbatim.
func TestGetResult(t *testing.T) {
	r, _, _, artifacts := newTestRouter(t)

	payload := []byte(`{"task_id":"job-1","segments":[]}`)
	_, err := artifacts.Put(context.Background(), "job-1_results.json", "application/json", payload)
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/v1/jobs/job-1/result", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, string(payload), w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/v1/jobs/missing/result", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestGetSegments serves the persisted segments for a job.
func TestGetSegments(t *testing.T) {
	r, _, status, _ := newTestRouter(t)

	segments := []*model.Segment{
		{ID: 1, StartTime: 0, EndTime: 5, SceneLabel: "Scene 1"},
		{ID: 2, StartTime: 5, EndTime: 9, SceneLabel: "Scene 2"},
	}
	require.NoError(t, status.SaveSegments(context.Background(), "job-1", segments))

	w := doRequest(r, http.MethodGet, "/api/v1/jobs/job-1/segments", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []*model.Segment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Scene 2", got[1].SceneLabel)
}

// TestSimilarSegmentsUnavailable maps the memory-store degradation to 501.
func TestSimilarSegmentsUnavailable(t *testing.T) {
	r, _, status, _ := newTestRouter(t)

	require.NoError(t, status.SaveSegments(context.Background(), "job-1", []*model.Segment{
		{ID: 1, Descriptor: []float64{0.5, 0.5}},
	}))

	w := doRequest(r, http.MethodGet, "/api/v1/jobs/job-1/segments/1/similar", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = doRequest(r, http.MethodGet, "/api/v1/jobs/job-1/segments/not-a-number/similar", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestQueueStatsEndpoint serves the engine occupancy snapshot.
func TestQueueStatsEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/stats/queue", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats model.QueueStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Running)
	assert.Equal(t, 2, stats.Queued)
	assert.Equal(t, []string{"job-a"}, stats.RunningJobIDs)
}
