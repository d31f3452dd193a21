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
)

// TestAlignTranscript verifies phrase-to-segment attribution, including the
// deliberate double-counting of a phrase that straddles a scene boundary.
func TestAlignTranscript(t *testing.T) {
	segments := []*model.Segment{
		{ID: 1, StartTime: 0, EndTime: 5},
		{ID: 2, StartTime: 5, EndTime: 10},
	}
	phrases := []model.TranscriptSegment{
		{Start: 0.5, End: 2.0, Text: " Welcome to the show. "},
		{Start: 4.5, End: 5.5, Text: "Across the cut."},
		{Start: 8.0, End: 9.0, Text: "Closing words."},
		{Start: 3.0, End: 3.5, Text: "   "}, // Whitespace-only phrases are dropped.
	}

	commands.AlignTranscript(segments, phrases)

	assert.Equal(t, "Welcome to the show. Across the cut.", segments[0].TranscriptText)
	assert.Equal(t, "Across the cut. Closing words.", segments[1].TranscriptText)
}

// TestAlignTranscriptNoOverlap verifies a silent segment gets empty text.
func TestAlignTranscriptNoOverlap(t *testing.T) {
	segments := []*model.Segment{{ID: 1, StartTime: 20, EndTime: 30}}
	phrases := []model.TranscriptSegment{{Start: 0, End: 5, Text: "Early speech."}}

	commands.AlignTranscript(segments, phrases)
	assert.Empty(t, segments[0].TranscriptText)
}

// TestTranscriptAlignerSkipsFailedTranscription verifies the command leaves
// segments untouched when the transcription degraded.
func TestTranscriptAlignerSkipsFailedTranscription(t *testing.T) {
	job := testJob("job-1")
	segments := []*model.Segment{{ID: 1, StartTime: 0, EndTime: 5, TranscriptText: ""}}

	ctx := newChainContext(job)
	ctx.Add(commands.GetSegmentsParameterName(), segments)
	ctx.Add(commands.GetTranscriptionParameterName(), &model.Transcription{Err: model.ErrNoAudioTrack})

	cmd := commands.NewTranscriptAligner("transcript-aligner")
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Empty(t, segments[0].TranscriptText)
	assert.Same(t, job, ctx.Get(cmd.GetOutputParam()))
}
