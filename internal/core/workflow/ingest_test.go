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

package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/core/workflow"
	"github.com/videolearn/video-insight/internal/testutil"
)

type captureSubmitter struct {
	jobs []*model.Job
}

func (c *captureSubmitter) Submit(_ context.Context, job *model.Job) error {
	c.jobs = append(c.jobs, job)
	return nil
}

func runIngest(submitter workflow.JobSubmitter, payload string) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, payload)
	workflow.NewIngestNotification(submitter).Execute(chainCtx)
	return chainCtx
}

// TestIngestNotificationSubmitsJob verifies a video upload notification
// becomes a queued full-pipeline job addressed by its gs:// URI.
func TestIngestNotificationSubmitsJob(t *testing.T) {
	submitter := &captureSubmitter{}

	chainCtx := runIngest(submitter, testutil.VideoUploadNotification())
	assert.False(t, chainCtx.HasErrors())

	require.Len(t, submitter.jobs, 1)
	job := submitter.jobs[0]
	assert.Equal(t, "gs://insight-ingest/talks/demo-keynote.mp4", job.VideoPath)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, model.DefaultCapabilities(), job.Capabilities)
}

// TestIngestNotificationSkipsNonVideo verifies sidecar objects are dropped
// cleanly so the message is acknowledged instead of redelivered.
func TestIngestNotificationSkipsNonVideo(t *testing.T) {
	submitter := &captureSubmitter{}

	chainCtx := runIngest(submitter, testutil.SidecarUploadNotification())
	assert.False(t, chainCtx.HasErrors())
	assert.Empty(t, submitter.jobs)
}

// TestIngestNotificationRejectsMalformed verifies junk payloads surface an
// error so the listener leaves the message unacknowledged.
func TestIngestNotificationRejectsMalformed(t *testing.T) {
	submitter := &captureSubmitter{}

	chainCtx := runIngest(submitter, "{not json")
	assert.True(t, chainCtx.HasErrors())
	assert.Empty(t, submitter.jobs)

	chainCtx = runIngest(submitter, `{"contentType":"video/mp4"}`)
	assert.True(t, chainCtx.HasErrors())
	assert.Empty(t, submitter.jobs)
}
