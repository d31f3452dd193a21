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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videolearn/video-insight/internal/core/commands"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

func sampleSegments() []*model.Segment {
	return []*model.Segment{
		{
			ID: 1, StartTime: 0, EndTime: 4.5, Duration: 4.5,
			SceneLabel:     "Scene 1",
			Composition:    "Balanced composition with even light distribution",
			CameraMovement: "Standard shot length with a steady narrative rhythm",
			Theme:          "Neutral theme with restrained color",
			Critique:       "A well balanced shot.",
			TranscriptText: "Welcome to the show.",
		},
		{
			ID: 2, StartTime: 4.5, EndTime: 10, Duration: 5.5,
			SceneLabel:     "Scene 2",
			Composition:    "Dark, low-key composition with a somber mood",
			CameraMovement: "Slow-paced shot that lingers on its subject",
			Theme:          "Calm theme, blue tones create a tranquil mood",
			Critique:       "A contemplative closing shot.",
		},
	}
}

// TestAssembleScript checks the overall document structure: header block,
// transcript section, one section per segment, overall assessment.
func TestAssembleScript(t *testing.T) {
	job := testJob("job-1")
	info := &model.VideoInfo{Duration: 10, FPS: 30, Width: 1920, Height: 1080, HasAudio: true}
	transcription := &model.Transcription{
		Text: "Welcome to the show. Today we look at composition.",
		Segments: []model.TranscriptSegment{
			{Start: 0, End: 3, Text: "Welcome to the show."},
		},
	}

	script := commands.AssembleScript(job, info, sampleSegments(), transcription, time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	assert.Contains(t, script, "# Video Script Analysis Report")
	assert.Contains(t, script, "**Video file:** job-1.mp4")
	assert.Contains(t, script, "**Total duration:** 10.00 seconds")
	assert.Contains(t, script, "**Analysis time:** 2026-08-28T12:00:00")
	assert.Contains(t, script, "**Segment count:** 2")
	assert.Contains(t, script, "## Full Transcript")
	assert.Contains(t, script, "### Segment 1 (0.0s - 4.5s)")
	assert.Contains(t, script, "### Segment 2 (4.5s - 10.0s)")
	assert.Contains(t, script, "**Transcript:**\nWelcome to the show.")
	assert.Contains(t, script, "## Overall Assessment")
	// 10s over 2 segments averages 5s: moderate pacing.
	assert.Contains(t, script, "Moderate pacing")
	// Two distinct compositions out of two segments: rich variety.
	assert.Contains(t, script, "Rich compositional variety")
}

// TestAssembleScriptWithoutTranscript verifies the transcript section is
// omitted when transcription degraded.
func TestAssembleScriptWithoutTranscript(t *testing.T) {
	job := testJob("job-1")
	info := &model.VideoInfo{Duration: 10}

	script := commands.AssembleScript(job, info, sampleSegments(), &model.Transcription{Err: model.ErrNoAudioTrack}, time.Now())
	assert.NotContains(t, script, "## Full Transcript")
	assert.Contains(t, script, "## Segment Analysis")
}

// TestAssembleScriptNoSegments verifies the empty-analysis fallback text.
func TestAssembleScriptNoSegments(t *testing.T) {
	script := commands.AssembleScript(testJob("job-1"), &model.VideoInfo{Duration: 1}, nil, nil, time.Now())
	assert.Contains(t, script, "Not enough analysis data")
}

// TestReflowTranscriptParagraphs verifies sentence accumulation: paragraphs
// flush past the length threshold and immediately on emphatic terminators.
func TestReflowTranscriptParagraphs(t *testing.T) {
	long := strings.Repeat("This sentence pads the paragraph towards the flush threshold. ", 4)
	paragraphs := commands.ReflowTranscript(long)
	require.Greater(t, len(paragraphs), 1)
	for _, p := range paragraphs {
		assert.NotEmpty(t, p)
	}

	emphatic := commands.ReflowTranscript("Really? Yes. Absolutely.")
	require.Len(t, emphatic, 2)
	assert.Equal(t, "Really?", emphatic[0])
	assert.Equal(t, "Yes. Absolutely.", emphatic[1])
}

// TestReflowTranscriptCJK verifies CJK sentence terminators are honored.
func TestReflowTranscriptCJK(t *testing.T) {
	paragraphs := commands.ReflowTranscript("你好。这是一个测试！还有更多。")
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "你好。这是一个测试！", paragraphs[0])
	assert.Equal(t, "还有更多。", paragraphs[1])
}

// TestReflowTranscriptTrailingFragment verifies text without a final
// terminator still lands in the last paragraph.
func TestReflowTranscriptTrailingFragment(t *testing.T) {
	paragraphs := commands.ReflowTranscript("First sentence. trailing words without a period")
	require.Len(t, paragraphs, 1)
	assert.Contains(t, paragraphs[0], "trailing words")
}

// TestScriptAssemblerExecute runs the command against a local artifact store
// and verifies the artifact and context wiring.
func TestScriptAssemblerExecute(t *testing.T) {
	store, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)

	job := testJob("job-1")
	ctx := newChainContext(job)
	ctx.Add(commands.GetVideoInfoParameterName(), &model.VideoInfo{Duration: 10})
	ctx.Add(commands.GetSegmentsParameterName(), sampleSegments())
	ctx.Add(commands.GetTranscriptionParameterName(), &model.Transcription{Text: "Welcome."})

	cmd := commands.NewScriptAssembler("script-assembler", store)
	require.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)

	require.False(t, ctx.HasErrors())
	script, ok := ctx.Get(commands.GetScriptParameterName()).(string)
	require.True(t, ok)
	assert.Contains(t, script, "# Video Script Analysis Report")

	stored, err := store.Get(ctx.GetContext(), "job-1_script.md")
	require.NoError(t, err)
	assert.Equal(t, script, string(stored))
	assert.NotEmpty(t, commands.GetArtifactRefs(ctx).Script)
}
