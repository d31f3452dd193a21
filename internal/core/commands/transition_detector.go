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

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/vision"
)

// TransitionDetector scans every consecutive frame pair of the video (not
// just the sampled frames) and fires a transition event wherever the
// grayscale histogram correlation drops enough. Raw events are then thinned
// with a greedy left-to-right pass so no two accepted transitions sit within
// the minimum interval of each other.
type TransitionDetector struct {
	cor.BaseCommand
	media *media.Executor
}

// NewTransitionDetector is the constructor for the TransitionDetector command.
func NewTransitionDetector(name string, executor *media.Executor) *TransitionDetector {
	return &TransitionDetector{BaseCommand: *cor.NewBaseCommand(name), media: executor}
}

// IsExecutable additionally requires the probed video info.
func (c *TransitionDetector) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetVideoInfoParameterName()) != nil
}

// Execute runs the full-rate scan. Progress advances from 30 to 45 during
// the pass and lands on 50 once filtering is done.
func (c *TransitionDetector) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	info := context.Get(GetVideoInfoParameterName()).(*model.VideoInfo)

	stream, err := c.media.OpenFrameStream(context.GetContext(), job.VideoPath, info)
	if err != nil {
		c.CountError(context, fmt.Errorf("failed to open frame stream: %w", err))
		return
	}
	defer func() { _ = stream.Close() }()

	var raw []*model.Transition
	var prev []float64
	for {
		frame, ts, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.CountError(context, fmt.Errorf("frame decode failed at %.3fs: %w", ts, err))
			return
		}
		hist := vision.IntensityHistogram(frame)
		if prev != nil {
			strength := vision.FrameDifference(prev, hist)
			if strength > vision.TransitionThreshold {
				raw = append(raw, &model.Transition{
					Timestamp: ts,
					Strength:  strength,
					Type:      vision.ClassifyTransition(strength),
				})
			}
		}
		prev = hist
		if info.Duration > 0 {
			context.ReportProgress(30+int(15*ts/info.Duration), "scanning for transitions")
		}
	}

	transitions := FilterTransitions(raw, vision.MinTransitionGap)

	slog.Info("transition detection complete",
		"job", job.ID, "raw", len(raw), "accepted", len(transitions))
	context.ReportProgress(50, fmt.Sprintf("detected %d transitions", len(transitions)))
	context.Add(GetTransitionsParameterName(), transitions)
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

// FilterTransitions drops any transition within minGap seconds of the
// previously accepted one. The pass is greedy left-to-right over the
// time-ordered input, preserving temporal order, and renumbers the survivors
// into a dense 1..N id sequence.
func FilterTransitions(raw []*model.Transition, minGap float64) []*model.Transition {
	if len(raw) == 0 {
		return nil
	}
	accepted := []*model.Transition{raw[0]}
	for _, t := range raw[1:] {
		if t.Timestamp-accepted[len(accepted)-1].Timestamp >= minGap {
			accepted = append(accepted, t)
		}
	}
	for i, t := range accepted {
		t.ID = i + 1
	}
	return accepted
}
