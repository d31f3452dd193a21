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
	"path/filepath"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/transcribe"
)

// AudioTranscriber extracts the audio track to a temporary WAV and runs the
// speech-to-text engine over it. Transcription is a degradable stage: a
// missing audio track or an unavailable engine produces a Transcription whose
// Err field names the reason, and the chain continues. Only the rest of the
// pipeline decides how much that absence matters.
type AudioTranscriber struct {
	cor.BaseCommand
	media   *media.Executor
	runner  *transcribe.Runner
	workDir string
}

// NewAudioTranscriber is the constructor for the AudioTranscriber command.
func NewAudioTranscriber(name string, executor *media.Executor, runner *transcribe.Runner, workDir string) *AudioTranscriber {
	return &AudioTranscriber{BaseCommand: *cor.NewBaseCommand(name), media: executor, runner: runner, workDir: workDir}
}

// IsExecutable additionally requires the probed video info.
func (c *AudioTranscriber) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetVideoInfoParameterName()) != nil
}

// Execute produces the job's Transcription, degraded or not.
func (c *AudioTranscriber) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	info := context.Get(GetVideoInfoParameterName()).(*model.VideoInfo)

	transcription := c.transcribe(context, job, info)

	context.ReportProgress(70, "transcription complete")
	context.Add(GetTranscriptionParameterName(), transcription)
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

func (c *AudioTranscriber) transcribe(context cor.Context, job *model.Job, info *model.VideoInfo) *model.Transcription {
	if !info.HasAudio {
		slog.Info("source has no audio track, skipping transcription", "job", job.ID)
		return &model.Transcription{Err: model.ErrNoAudioTrack}
	}
	if c.runner == nil || !c.runner.Available() {
		slog.Warn("transcription engine unavailable", "job", job.ID)
		return &model.Transcription{Err: "transcription engine unavailable"}
	}

	audioPath := filepath.Join(c.workDir, fmt.Sprintf("%s_audio.wav", job.ID))
	if err := c.media.ExtractAudio(context.GetContext(), job.VideoPath, audioPath); err != nil {
		slog.Warn("audio extraction failed", "job", job.ID, "error", err)
		return &model.Transcription{Err: fmt.Sprintf("audio extraction failed: %v", err)}
	}
	context.AddTempFile(audioPath)
	context.ReportProgress(55, "audio track extracted")

	transcription, err := c.runner.Transcribe(context.GetContext(), audioPath)
	if err != nil {
		slog.Warn("transcription failed", "job", job.ID, "error", err)
		return &model.Transcription{Err: fmt.Sprintf("transcription failed: %v", err)}
	}
	slog.Info("transcription complete",
		"job", job.ID, "language", transcription.Language, "segments", len(transcription.Segments))
	return transcription
}
