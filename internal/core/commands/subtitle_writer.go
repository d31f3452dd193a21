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
	"github.com/videolearn/video-insight/internal/storage"
	"github.com/videolearn/video-insight/internal/transcribe"
)

// SubtitleWriter renders the timed transcript as an SRT artifact. It is a
// no-op when transcription failed or produced no timed segments; an upload
// failure is logged but does not fail the job, since the transcript itself
// still travels in the results document.
type SubtitleWriter struct {
	cor.BaseCommand
	artifacts storage.ArtifactStore
}

// NewSubtitleWriter is the constructor for the SubtitleWriter command.
func NewSubtitleWriter(name string, artifacts storage.ArtifactStore) *SubtitleWriter {
	return &SubtitleWriter{BaseCommand: *cor.NewBaseCommand(name), artifacts: artifacts}
}

// Execute writes the `{job}_subtitles.srt` artifact.
func (c *SubtitleWriter) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	transcription, _ := context.Get(GetTranscriptionParameterName()).(*model.Transcription)

	if transcription.Failed() || len(transcription.Segments) == 0 {
		context.Add(c.GetOutputParam(), job)
		c.CountSuccess(context)
		return
	}

	name := fmt.Sprintf("%s_subtitles.srt", job.ID)
	content := transcribe.FormatSRT(transcription.Segments)
	ref, err := c.artifacts.Put(context.GetContext(), name, "application/x-subrip", []byte(content))
	if err != nil {
		slog.Warn("subtitle upload failed", "job", job.ID, "error", err)
	} else {
		transcription.SubtitleFile = ref
		GetArtifactRefs(context).Subtitle = ref
	}

	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}
