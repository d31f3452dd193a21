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

package transcribe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/transcribe"
)

// TestParseOutput verifies the whisper JSON document is mapped onto the
// transcript model with per-segment whitespace trimmed and empty segments
// dropped.
func TestParseOutput(t *testing.T) {
	raw := []byte(`{
		"text": " 大家好，欢迎来到本期视频。 ",
		"language": "zh",
		"segments": [
			{"start": 0.0, "end": 2.5, "text": " 大家好， ", "avg_logprob": -0.21},
			{"start": 2.5, "end": 5.0, "text": "欢迎来到本期视频。", "avg_logprob": -0.35},
			{"start": 5.0, "end": 6.0, "text": "   "}
		]
	}`)

	out, err := transcribe.ParseOutput(raw)
	require.NoError(t, err)

	assert.Equal(t, "大家好，欢迎来到本期视频。", out.Text)
	assert.Equal(t, "zh", out.Language)
	require.Len(t, out.Segments, 2) // whitespace-only cue dropped
	assert.Equal(t, "大家好，", out.Segments[0].Text)
	assert.Equal(t, 2.5, out.Segments[0].End)
	assert.Equal(t, -0.35, out.Segments[1].Confidence)
}

// TestParseOutputMalformed verifies a parse error surfaces instead of a
// half-filled transcription.
func TestParseOutputMalformed(t *testing.T) {
	_, err := transcribe.ParseOutput([]byte("not json"))
	assert.Error(t, err)
}

// TestSRTTimestamp verifies the HH:MM:SS,mmm rendering across hour/minute
// boundaries and the negative clamp.
func TestSRTTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00,000", transcribe.SRTTimestamp(0))
	assert.Equal(t, "00:00:01,500", transcribe.SRTTimestamp(1.5))
	assert.Equal(t, "00:01:05,250", transcribe.SRTTimestamp(65.25))
	assert.Equal(t, "01:01:01,001", transcribe.SRTTimestamp(3661.001))
	assert.Equal(t, "00:00:00,000", transcribe.SRTTimestamp(-3))
}

// TestFormatSRT verifies cue numbering, the arrow line, and the blank
// separator after every cue.
func TestFormatSRT(t *testing.T) {
	segments := []model.TranscriptSegment{
		{Start: 0, End: 2.5, Text: "first cue"},
		{Start: 2.5, End: 5, Text: "second cue"},
	}
	got := transcribe.FormatSRT(segments)
	want := "1\n00:00:00,000 --> 00:00:02,500\nfirst cue\n\n" +
		"2\n00:00:02,500 --> 00:00:05,000\nsecond cue\n\n"
	assert.Equal(t, want, got)
}

// TestFormatSRTEmpty verifies no stray output for an empty transcript.
func TestFormatSRTEmpty(t *testing.T) {
	assert.Empty(t, transcribe.FormatSRT(nil))
}
