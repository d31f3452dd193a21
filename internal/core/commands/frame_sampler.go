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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/vision"
)

// SampleSet is the ordered sequence of frame samples produced by one pass
// over the video, together with the sampling cadence the segmenter needs to
// translate sample indices back into frame counts.
type SampleSet struct {
	Samples         []model.FrameSample
	IntervalFrames  int     // Source frames per sample.
	IntervalSeconds float64 // Seconds between consecutive samples.
}

// FrameSampler reads the video once at a one-sample-per-nominal-second
// cadence and computes the color descriptor for every sampled frame. The
// samples feed the scene segmenter; they are never persisted.
type FrameSampler struct {
	cor.BaseCommand
	media *media.Executor
}

// NewFrameSampler is the constructor for the FrameSampler command.
func NewFrameSampler(name string, executor *media.Executor) *FrameSampler {
	return &FrameSampler{BaseCommand: *cor.NewBaseCommand(name), media: executor}
}

// IsExecutable additionally requires the probed video info.
func (c *FrameSampler) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetVideoInfoParameterName()) != nil
}

// Execute decodes the sample stream and extracts one descriptor per sample.
// Progress advances from 10 to 25 as the pass moves through the video.
func (c *FrameSampler) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	info := context.Get(GetVideoInfoParameterName()).(*model.VideoInfo)

	intervalFrames := int(math.Round(info.FPS))
	if intervalFrames < 1 {
		intervalFrames = 1
	}
	intervalSeconds := 1.0
	if info.FPS > 0 {
		intervalSeconds = float64(intervalFrames) / info.FPS
	}

	stream, err := c.media.OpenSampleStream(context.GetContext(), job.VideoPath, info, intervalSeconds)
	if err != nil {
		c.CountError(context, fmt.Errorf("failed to open sample stream: %w", err))
		return
	}
	defer func() { _ = stream.Close() }()

	set := &SampleSet{IntervalFrames: intervalFrames, IntervalSeconds: intervalSeconds}
	for {
		frame, ts, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.CountError(context, fmt.Errorf("frame decode failed at sample %d: %w", len(set.Samples), err))
			return
		}
		set.Samples = append(set.Samples, model.FrameSample{
			Timestamp:  ts,
			Descriptor: vision.ExtractDescriptor(frame),
		})
		if info.Duration > 0 {
			context.ReportProgress(10+int(15*ts/info.Duration), "sampling frames")
		}
	}

	slog.Info("frame sampling complete", "job", job.ID, "samples", len(set.Samples))
	context.ReportProgress(25, "frame sampling complete")
	context.Add(GetFrameSamplesParameterName(), set)
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}
