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
	"github.com/videolearn/video-insight/internal/media"
)

// VideoProbe is the first command of every analysis chain. It probes the
// source file for its immutable metadata (duration, frame rate, dimensions,
// audio presence) and publishes the VideoInfo every later stage depends on.
// An unreadable source is a fatal job error, so a probe failure stops the
// chain.
type VideoProbe struct {
	cor.BaseCommand
	media *media.Executor
}

// NewVideoProbe is the constructor for the VideoProbe command.
func NewVideoProbe(name string, executor *media.Executor) *VideoProbe {
	return &VideoProbe{BaseCommand: *cor.NewBaseCommand(name), media: executor}
}

// Execute probes the job's video file and records the metadata.
func (c *VideoProbe) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)

	info, err := c.media.Probe(context.GetContext(), job.VideoPath)
	if err != nil {
		c.CountError(context, fmt.Errorf("failed to probe %s: %w", job.VideoPath, err))
		return
	}

	slog.Info("video probed",
		"job", job.ID,
		"duration", info.Duration,
		"fps", info.FPS,
		"resolution", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"has_audio", info.HasAudio)

	context.ReportProgress(10, "video metadata probed")
	context.Add(GetVideoInfoParameterName(), info)
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}
