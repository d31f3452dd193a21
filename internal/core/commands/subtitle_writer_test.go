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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videolearn/video-insight/internal/core/commands"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

// TestSubtitleWriterWritesArtifact verifies the SRT artifact is produced and
// its reference recorded on both the transcription and the artifact record.
func TestSubtitleWriterWritesArtifact(t *testing.T) {
	store, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)

	transcription := &model.Transcription{
		Text: "Hello world.",
		Segments: []model.TranscriptSegment{
			{Start: 0, End: 1.5, Text: "Hello world."},
		},
	}
	job := testJob("job-1")
	ctx := newChainContext(job)
	ctx.Add(commands.GetTranscriptionParameterName(), transcription)

	cmd := commands.NewSubtitleWriter("subtitle-writer", store)
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	stored, err := store.Get(ctx.GetContext(), "job-1_subtitles.srt")
	require.NoError(t, err)
	assert.Contains(t, string(stored), "00:00:00,000 --> 00:00:01,500")
	assert.Contains(t, string(stored), "Hello world.")
	assert.NotEmpty(t, transcription.SubtitleFile)
	assert.Equal(t, transcription.SubtitleFile, commands.GetArtifactRefs(ctx).Subtitle)
}

// TestSubtitleWriterSkipsDegradedTranscription verifies no artifact is
// written when transcription failed or produced no timed segments.
func TestSubtitleWriterSkipsDegradedTranscription(t *testing.T) {
	store, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)

	job := testJob("job-1")
	ctx := newChainContext(job)
	ctx.Add(commands.GetTranscriptionParameterName(), &model.Transcription{Err: model.ErrNoAudioTrack})

	cmd := commands.NewSubtitleWriter("subtitle-writer", store)
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	_, err = store.Get(ctx.GetContext(), "job-1_subtitles.srt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Same(t, job, ctx.Get(cmd.GetOutputParam()))
}
