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

package vision_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/videolearn/video-insight/internal/vision"
)

// TestClassifyCameraMovement verifies the four duration bands, including
// their boundary values.
func TestClassifyCameraMovement(t *testing.T) {
	rapid := vision.ClassifyCameraMovement(1.5)
	standard := vision.ClassifyCameraMovement(3.0)
	slow := vision.ClassifyCameraMovement(7.0)
	long := vision.ClassifyCameraMovement(15.0)

	assert.Contains(t, rapid, "Rapid cut")
	assert.Contains(t, standard, "Standard shot")
	assert.Contains(t, slow, "Slow-paced")
	assert.Contains(t, long, "Long take")

	// Band edges fall into the longer classification.
	assert.Equal(t, standard, vision.ClassifyCameraMovement(2.0))
	assert.Equal(t, slow, vision.ClassifyCameraMovement(5.0))
	assert.Equal(t, long, vision.ClassifyCameraMovement(10.0))
}

// TestAnalyzeFrameBrightDark verifies the brightness-driven composition
// labels on uniform frames, which have no edges or contrast.
func TestAnalyzeFrameBrightDark(t *testing.T) {
	bright := vision.AnalyzeFrame(solidFrame(16, 16, 250, 250, 250), 4.0)
	assert.Contains(t, bright.Composition, "high-key")

	dark := vision.AnalyzeFrame(solidFrame(16, 16, 20, 20, 20), 4.0)
	assert.Contains(t, dark.Composition, "low-key")

	mid := vision.AnalyzeFrame(solidFrame(16, 16, 128, 128, 128), 4.0)
	assert.Contains(t, mid.Composition, "Balanced")
}

// TestAnalyzeFrameTheme verifies hue-band theme classification on saturated
// solid-color frames.
func TestAnalyzeFrameTheme(t *testing.T) {
	red := vision.AnalyzeFrame(solidFrame(16, 16, 255, 0, 0), 4.0)
	assert.Contains(t, red.Theme, "Passionate")

	green := vision.AnalyzeFrame(solidFrame(16, 16, 0, 255, 0), 4.0)
	assert.Contains(t, green.Theme, "Natural")

	blue := vision.AnalyzeFrame(solidFrame(16, 16, 0, 0, 255), 4.0)
	assert.Contains(t, blue.Theme, "Calm")
}

// TestAnalyzeFrameInvalid verifies that a broken frame still yields a full
// set of labels, with the camera label still derived from duration.
func TestAnalyzeFrameInvalid(t *testing.T) {
	a := vision.AnalyzeFrame(nil, 1.0)
	assert.NotEmpty(t, a.Composition)
	assert.NotEmpty(t, a.Theme)
	assert.NotEmpty(t, a.Review)
	assert.Contains(t, a.CameraMovement, "Rapid cut")
}

// TestComposeReviewThreadsTraits verifies the critique sentence reflects its
// inputs: short durations mention pacing, long detailed shots mention the
// long-take technique.
func TestComposeReviewThreadsTraits(t *testing.T) {
	short := vision.AnalyzeFrame(solidFrame(16, 16, 128, 128, 128), 1.0)
	assert.Contains(t, short.Review, "fast-paced editing")
	assert.Contains(t, short.Review, "rhythmic energy")

	long := vision.AnalyzeFrame(solidFrame(16, 16, 128, 128, 128), 12.0)
	assert.Contains(t, long.Review, "narrative value")
	assert.True(t, strings.HasPrefix(long.Review, "This shot"))
}
