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

// TestClusterCountBounds verifies the one-cluster-per-five-samples rule with
// its floor of 2 and cap of 10.
func TestClusterCountBounds(t *testing.T) {
	cases := []struct {
		samples int
		want    int
	}{
		{0, 2},
		{3, 2},   // 3/5 = 0, floored to 2
		{10, 2},  // 10/5 = 2
		{25, 5},  // 25/5 = 5
		{50, 10}, // exactly at the cap
		{500, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, vision.ClusterCount(tc.samples), "n=%d", tc.samples)
	}
}

// TestKMeansSeparatesClusters checks that two well-separated groups of points
// receive two distinct labels, with every member of a group sharing its
// group's label.
func TestKMeansSeparatesClusters(t *testing.T) {
	points := [][]float64{
		{0.0, 0.1}, {0.1, 0.0}, {0.05, 0.05},
		{10.0, 10.1}, {10.1, 10.0}, {9.95, 10.05},
	}
	labels := vision.KMeans(points, 2)
	assert.Equal(t, len(points), len(labels))

	// The first three points must agree among themselves, the last three
	// among themselves, and the two groups must differ.
	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[3], labels[4])
	assert.Equal(t, labels[3], labels[5])
	assert.NotEqual(t, labels[0], labels[3])
}

// TestKMeansDeterministic verifies that repeated runs over the same input
// produce identical labelings, which is what makes whole-video analysis
// reproducible.
func TestKMeansDeterministic(t *testing.T) {
	points := [][]float64{
		{1, 2}, {2, 1}, {8, 9}, {9, 8}, {4, 4}, {5, 5}, {0, 0}, {9, 9},
	}
	first := vision.KMeans(points, 3)
	second := vision.KMeans(points, 3)
	assert.Equal(t, first, second)
}

// TestKMeansClampsK verifies that asking for more clusters than points does
// not panic and still labels every point.
func TestKMeansClampsK(t *testing.T) {
	points := [][]float64{{1, 1}, {2, 2}}
	labels := vision.KMeans(points, 10)
	assert.Equal(t, 2, len(labels))
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 2)
	}
}

// TestKMeansEmptyInput verifies the nil result for zero points.
func TestKMeansEmptyInput(t *testing.T) {
	assert.Nil(t, vision.KMeans(nil, 2))
}
