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

package commands

import (
	"fmt"
	"log/slog"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/vision"
)

// SceneSegmenter clusters the sampled frame descriptors and converts cluster
// label changes into scene boundaries. A boundary is declared only where the
// label changes between consecutive samples; descriptors that merely differ
// within one cluster do not split a scene, which keeps noisy per-frame
// variation from oversegmenting the video. The first and last sample indices
// are always boundaries, so the produced segments tile the sampled range.
type SceneSegmenter struct {
	cor.BaseCommand
}

// NewSceneSegmenter is the constructor for the SceneSegmenter command.
func NewSceneSegmenter(name string) *SceneSegmenter {
	return &SceneSegmenter{BaseCommand: *cor.NewBaseCommand(name)}
}

// IsExecutable additionally requires the sample set.
func (c *SceneSegmenter) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetFrameSamplesParameterName()) != nil
}

// Execute partitions the samples into scenes. Fewer than two samples means
// the video is too short to segment; that yields zero segments, not an error.
func (c *SceneSegmenter) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	set := context.Get(GetFrameSamplesParameterName()).(*SampleSet)

	segments := BuildSegments(set)

	slog.Info("scene segmentation complete", "job", job.ID, "segments", len(segments))
	context.ReportProgress(30, fmt.Sprintf("detected %d scenes", len(segments)))
	context.Add(GetSegmentsParameterName(), segments)
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

// BuildSegments runs the clustering and boundary synthesis over a sample set.
func BuildSegments(set *SampleSet) []*model.Segment {
	samples := set.Samples
	if len(samples) < 2 {
		return nil
	}

	points := make([][]float64, len(samples))
	for i, s := range samples {
		points[i] = s.Descriptor
	}
	labels := vision.KMeans(points, vision.ClusterCount(len(points)))

	// Boundary indices: the first sample, every label change, the last sample.
	boundaries := []int{0}
	for i := 1; i < len(labels); i++ {
		if labels[i] != labels[i-1] {
			boundaries = append(boundaries, i)
		}
	}
	last := len(labels) - 1
	if boundaries[len(boundaries)-1] != last {
		boundaries = append(boundaries, last)
	}

	segments := make([]*model.Segment, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		startIdx, endIdx := boundaries[i], boundaries[i+1]
		start := samples[startIdx].Timestamp
		end := samples[endIdx].Timestamp
		mid := (startIdx + endIdx) / 2
		segments = append(segments, &model.Segment{
			ID:         i + 1,
			StartTime:  start,
			EndTime:    end,
			Duration:   end - start,
			SceneLabel: fmt.Sprintf("Scene %d", i+1),
			FrameCount: (endIdx - startIdx) * set.IntervalFrames,
			Descriptor: samples[mid].Descriptor,
		})
	}
	return segments
}
