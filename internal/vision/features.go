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

// Package vision holds the pure frame-analysis functions of the pipeline:
// color descriptors, grayscale histograms and their correlation, k-means
// clustering of descriptors, and the rule-based frame heuristics. Everything
// here is deterministic and side-effect free so the algorithms are testable
// on synthetic pixel buffers without video fixtures.
package vision

import (
	"math"

	"github.com/videolearn/video-insight/internal/media"
)

// Descriptor layout: three concatenated 50-bin histograms over hue,
// saturation and value. Hue uses the half-degree scale [0,180) so the bin
// edges line up across implementations; saturation and value use [0,256).
const (
	HistogramBins  = 50
	DescriptorSize = 3 * HistogramBins

	hueRange = 180.0
	svRange  = 256.0
)

// ExtractDescriptor converts a frame to HSV and returns its 150-length color
// descriptor. Each channel histogram is L1-normalized independently, with a
// zero-sum guard so a degenerate channel yields zeros instead of NaNs. An
// empty or corrupt frame yields the zero vector, keeping downstream
// clustering well-defined.
func ExtractDescriptor(f *media.Frame) []float64 {
	out := make([]float64, DescriptorSize)
	if !f.Valid() {
		return out
	}

	hueHist := out[0:HistogramBins]
	satHist := out[HistogramBins : 2*HistogramBins]
	valHist := out[2*HistogramBins : 3*HistogramBins]

	for i := 0; i+2 < len(f.Pix); i += 3 {
		h, s, v := rgbToHSV(f.Pix[i], f.Pix[i+1], f.Pix[i+2])
		hueHist[binIndex(h, hueRange)]++
		satHist[binIndex(s, svRange)]++
		valHist[binIndex(v, svRange)]++
	}

	normalizeL1(hueHist)
	normalizeL1(satHist)
	normalizeL1(valHist)
	return out
}

// binIndex maps a channel value in [0,max) onto one of HistogramBins bins,
// clamping the top edge.
func binIndex(v, max float64) int {
	idx := int(v / max * HistogramBins)
	if idx >= HistogramBins {
		idx = HistogramBins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// normalizeL1 divides the histogram by its sum in place. A zero-sum
// histogram is left as zeros.
func normalizeL1(hist []float64) {
	var sum float64
	for _, v := range hist {
		sum += v
	}
	if sum == 0 {
		return
	}
	for i := range hist {
		hist[i] /= sum
	}
}

// rgbToHSV converts one pixel to HSV with hue in [0,180) and saturation and
// value in [0,256).
func rgbToHSV(r8, g8, b8 byte) (h, s, v float64) {
	r := float64(r8) / 255.0
	g := float64(g8) / 255.0
	b := float64(b8) / 255.0

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max * 255.0
	if max > 0 {
		s = delta / max * 255.0
	}

	if delta > 0 {
		switch max {
		case r:
			h = 60 * math.Mod((g-b)/delta, 6)
		case g:
			h = 60 * ((b-r)/delta + 2)
		default:
			h = 60 * ((r-g)/delta + 4)
		}
		if h < 0 {
			h += 360
		}
	}
	// Half-degree hue scale.
	h = h / 2
	if h >= hueRange {
		h = hueRange - 1e-9
	}
	if s >= svRange {
		s = svRange - 1e-9
	}
	if v >= svRange {
		v = svRange - 1e-9
	}
	return h, s, v
}
