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

// Package vision_test exercises the pure analysis functions on synthetic
// pixel buffers, so no video fixtures are needed.
package vision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/vision"
)

// solidFrame builds a w x h frame filled with a single RGB color.
func solidFrame(w, h int, r, g, b byte) *media.Frame {
	pix := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		pix[3*i] = r
		pix[3*i+1] = g
		pix[3*i+2] = b
	}
	return &media.Frame{Width: w, Height: h, Pix: pix}
}

// TestExtractDescriptorShape verifies the descriptor is always 150 long and
// that each channel histogram of a real frame sums to one.
func TestExtractDescriptorShape(t *testing.T) {
	frame := solidFrame(16, 16, 200, 30, 30)
	desc := vision.ExtractDescriptor(frame)
	assert.Equal(t, vision.DescriptorSize, len(desc))

	// Each 50-bin channel histogram is L1-normalized independently.
	for ch := 0; ch < 3; ch++ {
		var sum float64
		for _, v := range desc[ch*vision.HistogramBins : (ch+1)*vision.HistogramBins] {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

// TestExtractDescriptorSolidColor verifies that a uniform frame concentrates
// all mass in exactly one bin per channel.
func TestExtractDescriptorSolidColor(t *testing.T) {
	desc := vision.ExtractDescriptor(solidFrame(8, 8, 0, 0, 255))
	for ch := 0; ch < 3; ch++ {
		nonZero := 0
		for _, v := range desc[ch*vision.HistogramBins : (ch+1)*vision.HistogramBins] {
			if v > 0 {
				assert.InDelta(t, 1.0, v, 1e-9)
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero)
	}
}

// TestExtractDescriptorInvalidFrame verifies that a corrupt or empty frame
// yields the zero vector instead of panicking, which keeps downstream
// clustering well-defined.
func TestExtractDescriptorInvalidFrame(t *testing.T) {
	cases := []*media.Frame{
		nil,
		{},
		{Width: 4, Height: 4, Pix: []byte{1, 2, 3}}, // truncated buffer
	}
	for _, frame := range cases {
		desc := vision.ExtractDescriptor(frame)
		assert.Equal(t, vision.DescriptorSize, len(desc))
		for _, v := range desc {
			assert.Zero(t, v)
		}
	}
}

// TestDescriptorDistinguishesColors is a sanity check that frames with very
// different dominant colors produce different descriptors while identical
// frames produce identical ones.
func TestDescriptorDistinguishesColors(t *testing.T) {
	red := vision.ExtractDescriptor(solidFrame(8, 8, 255, 0, 0))
	red2 := vision.ExtractDescriptor(solidFrame(8, 8, 255, 0, 0))
	blue := vision.ExtractDescriptor(solidFrame(8, 8, 0, 0, 255))

	assert.Equal(t, red, red2)
	assert.NotEqual(t, red, blue)
}
