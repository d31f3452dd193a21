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
	"math/rand"
)

// Clustering parameters. The seed is fixed so the same video always produces
// the same segmentation; restarts keep a single unlucky initialization from
// producing a bad local minimum.
const (
	KMeansSeed     = 42
	kmeansRestarts = 10
	kmeansMaxIters = 300
)

// ClusterCount returns the number of scene clusters for n samples:
// one cluster per five sampled frames, capped at 10 and floored at 2.
func ClusterCount(n int) int {
	k := n / 5
	if k > 10 {
		k = 10
	}
	if k < 2 {
		k = 2
	}
	return k
}

// KMeans runs Lloyd's algorithm with deterministic seeded restarts and
// returns one cluster label per input point. k is clamped to the number of
// points. The restart with the lowest total within-cluster distance wins.
func KMeans(points [][]float64, k int) []int {
	if len(points) == 0 {
		return nil
	}
	if k > len(points) {
		k = len(points)
	}
	if k < 1 {
		k = 1
	}

	rng := rand.New(rand.NewSource(KMeansSeed))
	bestLabels := make([]int, len(points))
	bestCost := math.Inf(1)

	for restart := 0; restart < kmeansRestarts; restart++ {
		labels, cost := kmeansOnce(points, k, rng)
		if cost < bestCost {
			bestCost = cost
			copy(bestLabels, labels)
		}
	}
	return bestLabels
}

func kmeansOnce(points [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	dim := len(points[0])

	// Forgy initialization: k distinct points as starting centroids.
	perm := rng.Perm(len(points))
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), points[perm[i]]...)
	}

	labels := make([]int, len(points))
	for iter := 0; iter < kmeansMaxIters; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for d, v := range p {
				sums[c][d] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an empty cluster from a random point so k
				// clusters survive to convergence.
				centroids[c] = append([]float64(nil), points[rng.Intn(len(points))]...)
				changed = true
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}

		if !changed && iter > 0 {
			break
		}
	}

	var cost float64
	for i, p := range points {
		cost += squaredDistance(p, centroids[labels[i]])
	}
	return labels, cost
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(p, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
