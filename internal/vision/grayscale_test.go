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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/videolearn/video-insight/internal/vision"
)

// TestIntensityHistogram verifies bin placement and total mass for a uniform
// gray frame.
func TestIntensityHistogram(t *testing.T) {
	frame := solidFrame(4, 4, 128, 128, 128)
	hist := vision.IntensityHistogram(frame)
	assert.Equal(t, vision.IntensityBins, len(hist))
	// All 16 pixels land in the bin for gray level 128.
	assert.Equal(t, 16.0, hist[128])
	var total float64
	for _, v := range hist {
		total += v
	}
	assert.Equal(t, 16.0, total)
}

// TestHistogramCorrelationIdentical verifies that a histogram correlates
// perfectly with itself.
func TestHistogramCorrelationIdentical(t *testing.T) {
	h := []float64{1, 5, 2, 8, 3, 0, 4}
	assert.InDelta(t, 1.0, vision.HistogramCorrelation(h, h), 1e-9)
}

// TestHistogramCorrelationDegenerate verifies that flat histograms and
// mismatched lengths score zero rather than dividing by zero.
func TestHistogramCorrelationDegenerate(t *testing.T) {
	flat := []float64{3, 3, 3, 3}
	varied := []float64{1, 2, 3, 4}
	assert.Zero(t, vision.HistogramCorrelation(flat, varied))
	assert.Zero(t, vision.HistogramCorrelation(varied, []float64{1, 2}))
	assert.Zero(t, vision.HistogramCorrelation(nil, nil))
}

// TestFrameDifferenceRange verifies the difference score is clamped to [0,1]
// and behaves monotonically: identical frames score 0, opposite frames score
// near the top of the range.
func TestFrameDifferenceRange(t *testing.T) {
	a := []float64{10, 0, 0, 0, 10, 0}
	b := []float64{0, 10, 0, 10, 0, 10}

	assert.InDelta(t, 0.0, vision.FrameDifference(a, a), 1e-9)

	d := vision.FrameDifference(a, b)
	assert.Greater(t, d, vision.TransitionThreshold)
	assert.LessOrEqual(t, d, 1.0)
}

// TestClassifyTransition verifies the strength-to-label bands.
func TestClassifyTransition(t *testing.T) {
	assert.Equal(t, vision.TransitionTypeHardCut, vision.ClassifyTransition(0.9))
	assert.Equal(t, vision.TransitionTypeGradual, vision.ClassifyTransition(0.6))
	assert.Equal(t, vision.TransitionTypeMinor, vision.ClassifyTransition(0.3))
	// Band edges belong to the weaker label.
	assert.Equal(t, vision.TransitionTypeGradual, vision.ClassifyTransition(0.7))
	assert.Equal(t, vision.TransitionTypeMinor, vision.ClassifyTransition(0.5))
}
