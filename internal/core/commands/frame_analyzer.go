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
	goctx "context"
	"log/slog"
	"sync"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/vision"
)

// FrameAnalyzer reads each segment's representative frame (its temporal
// midpoint) and runs the rule-based heuristics over it, filling the
// composition, camera movement, theme and review fields. Segments are
// independent, so the work is spread over a small worker pool; a frame that
// cannot be decoded still gets the heuristic fallback labels rather than
// failing the job.
type FrameAnalyzer struct {
	cor.BaseCommand
	media           *media.Executor
	numberOfWorkers int
}

// NewFrameAnalyzer is the constructor for the FrameAnalyzer command.
func NewFrameAnalyzer(name string, executor *media.Executor, numberOfWorkers int) *FrameAnalyzer {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &FrameAnalyzer{BaseCommand: *cor.NewBaseCommand(name), media: executor, numberOfWorkers: numberOfWorkers}
}

// IsExecutable additionally requires video info and the segment slice.
func (c *FrameAnalyzer) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetVideoInfoParameterName()) != nil &&
		context.Get(GetSegmentsParameterName()) != nil
}

// frameJob is one segment handed to a worker.
type frameJob struct {
	segment *model.Segment
}

// Execute enriches every segment in place and passes the job forward.
func (c *FrameAnalyzer) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	info := context.Get(GetVideoInfoParameterName()).(*model.VideoInfo)
	segments := context.Get(GetSegmentsParameterName()).([]*model.Segment)

	var wg sync.WaitGroup
	jobs := make(chan *frameJob, len(segments))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go c.frameWorker(context.GetContext(), job.VideoPath, info, jobs, &wg)
	}
	for _, seg := range segments {
		jobs <- &frameJob{segment: seg}
	}
	close(jobs)
	wg.Wait()

	slog.Info("frame analysis complete", "job", job.ID, "segments", len(segments))
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

// frameWorker analyzes segments from the jobs channel until it is drained.
// Each worker mutates only the segment it holds, so no locking is needed.
func (c *FrameAnalyzer) frameWorker(ctx goctx.Context, videoPath string, info *model.VideoInfo, jobs <-chan *frameJob, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		seg := j.segment
		midpoint := (seg.StartTime + seg.EndTime) / 2

		frame, err := c.media.ReadFrameAt(ctx, videoPath, info, midpoint)
		if err != nil {
			slog.Warn("representative frame read failed, using fallback labels",
				"segment", seg.ID, "timestamp", midpoint, "error", err)
			frame = nil
		}

		analysis := vision.AnalyzeFrame(frame, seg.Duration)
		seg.Composition = analysis.Composition
		seg.CameraMovement = analysis.CameraMovement
		seg.Theme = analysis.Theme
		seg.Critique = analysis.Review
		if frame.Valid() {
			seg.Descriptor = vision.ExtractDescriptor(frame)
		}
	}
}
