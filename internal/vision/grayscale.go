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

package vision

import (
	"math"

	"github.com/videolearn/video-insight/internal/media"
)

// IntensityBins is the resolution of the grayscale histogram used for
// frame-to-frame comparison.
const IntensityBins = 256

// IntensityHistogram returns the 256-bin grayscale histogram of a frame using
// the ITU-R BT.601 luma weights. An invalid frame yields the zero histogram.
func IntensityHistogram(f *media.Frame) []float64 {
	hist := make([]float64, IntensityBins)
	if !f.Valid() {
		return hist
	}
	for i := 0; i+2 < len(f.Pix); i += 3 {
		gray := 0.299*float64(f.Pix[i]) + 0.587*float64(f.Pix[i+1]) + 0.114*float64(f.Pix[i+2])
		idx := int(gray)
		if idx > IntensityBins-1 {
			idx = IntensityBins - 1
		}
		hist[idx]++
	}
	return hist
}

// HistogramCorrelation computes the Pearson correlation coefficient between
// two histograms of equal length. Identical histograms score 1.0; a flat
// (zero-variance) histogram on either side scores 0, which reads as maximal
// difference downstream and is the safe direction for a degenerate input.
func HistogramCorrelation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var num, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		num += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return num / math.Sqrt(varA*varB)
}

// FrameDifference turns a correlation score into a transition strength in
// [0,1]: identical frames score 0, uncorrelated frames score 1. Negative
// correlations (inverted content) clamp to 1 rather than exceeding it.
func FrameDifference(a, b []float64) float64 {
	d := 1 - HistogramCorrelation(a, b)
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// Transition detection parameters. A frame pair whose difference clears
// TransitionThreshold is a candidate transition; candidates closer together
// than MinTransitionGap seconds are thinned greedily in time order.
const (
	TransitionThreshold = 0.25
	TransitionHardCut   = 0.7
	TransitionGradual   = 0.5
	MinTransitionGap    = 1.0
)

// Transition type labels.
const (
	TransitionTypeHardCut = "hard cut"
	TransitionTypeGradual = "gradual"
	TransitionTypeMinor   = "minor change"
)

// ClassifyTransition maps a difference strength to its transition label.
func ClassifyTransition(strength float64) string {
	switch {
	case strength > TransitionHardCut:
		return TransitionTypeHardCut
	case strength > TransitionGradual:
		return TransitionTypeGradual
	default:
		return TransitionTypeMinor
	}
}
