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

package commands_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videolearn/video-insight/internal/core/commands"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

// TestResultsWriterMaterializesJob runs the terminal command and verifies
// the results artifact, the persisted segments and the assembled result.
func TestResultsWriterMaterializesJob(t *testing.T) {
	artifacts, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)
	status := storage.NewMemoryStatusStore()

	job := testJob("job-1")
	ctx := newChainContext(job)
	ctx.Add(commands.GetVideoInfoParameterName(), &model.VideoInfo{Duration: 10, FPS: 30, Width: 1280, Height: 720, HasAudio: true})
	ctx.Add(commands.GetSegmentsParameterName(), sampleSegments())
	ctx.Add(commands.GetTransitionsParameterName(), []*model.Transition{
		{ID: 1, Timestamp: 4.5, Strength: 0.8, Type: "hard cut"},
	})
	ctx.Add(commands.GetTranscriptionParameterName(), &model.Transcription{Text: "Welcome."})
	ctx.Add(commands.GetScriptParameterName(), "# Video Script Analysis Report")

	cmd := commands.NewResultsWriter("results-writer", artifacts, status)
	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)
	require.False(t, ctx.HasErrors())

	// The artifact parses back into the same document shape.
	payload, err := artifacts.Get(ctx.GetContext(), "job-1_results.json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(payload, &doc))
	assert.Equal(t, "job-1", doc["task_id"])
	assert.Len(t, doc["segments"], 2)
	assert.Len(t, doc["transitions"], 1)

	// Segments landed in the durable store.
	persisted, err := status.GetSegments(ctx.GetContext(), "job-1")
	require.NoError(t, err)
	assert.Len(t, persisted, 2)

	// The assembled result is available to the engine.
	result, ok := ctx.Get(commands.GetResultParameterName()).(*model.AnalysisResult)
	require.True(t, ok)
	assert.Equal(t, "job-1", result.JobID)
	assert.NotEmpty(t, commands.GetArtifactRefs(ctx).Results)
}

// TestResultsWriterFailedTranscriptionShape verifies a degraded
// transcription serializes as an error object, keeping "no audio" visible to
// results consumers.
func TestResultsWriterFailedTranscriptionShape(t *testing.T) {
	artifacts, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)
	status := storage.NewMemoryStatusStore()

	job := testJob("job-2")
	ctx := newChainContext(job)
	ctx.Add(commands.GetVideoInfoParameterName(), &model.VideoInfo{Duration: 3})
	ctx.Add(commands.GetTranscriptionParameterName(), &model.Transcription{Err: model.ErrNoAudioTrack})

	cmd := commands.NewResultsWriter("results-writer", artifacts, status)
	cmd.Execute(ctx)
	require.False(t, ctx.HasErrors())

	payload, err := artifacts.Get(ctx.GetContext(), "job-2_results.json")
	require.NoError(t, err)
	var doc struct {
		Transcription map[string]string `json:"transcription"`
	}
	require.NoError(t, json.Unmarshal(payload, &doc))
	assert.Equal(t, model.ErrNoAudioTrack, doc.Transcription["error"])
}
