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
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

// ResultsWriter is the terminal command of the analysis chain. It assembles
// the immutable AnalysisResult from everything the earlier stages put on the
// context, writes the `{job}_results.json` artifact, and persists the final
// segments (descriptor vectors included) to the status store. A write
// failure here is fatal: a job without a durable result did not complete.
type ResultsWriter struct {
	cor.BaseCommand
	artifacts storage.ArtifactStore
	status    storage.StatusStore
}

// NewResultsWriter is the constructor for the ResultsWriter command.
func NewResultsWriter(name string, artifacts storage.ArtifactStore, status storage.StatusStore) *ResultsWriter {
	return &ResultsWriter{BaseCommand: *cor.NewBaseCommand(name), artifacts: artifacts, status: status}
}

// IsExecutable additionally requires the probed video info.
func (c *ResultsWriter) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetVideoInfoParameterName()) != nil
}

// Execute materializes the job's durable outputs.
func (c *ResultsWriter) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	info := context.Get(GetVideoInfoParameterName()).(*model.VideoInfo)
	segments, _ := context.Get(GetSegmentsParameterName()).([]*model.Segment)
	transitions, _ := context.Get(GetTransitionsParameterName()).([]*model.Transition)
	transcription, _ := context.Get(GetTranscriptionParameterName()).(*model.Transcription)
	script, _ := context.Get(GetScriptParameterName()).(string)
	refs := GetArtifactRefs(context)

	originalPath, _ := context.Get(GetSourcePathParameterName()).(string)
	if originalPath == "" {
		originalPath = job.VideoPath
	}

	if segments == nil {
		segments = []*model.Segment{}
	}
	if transitions == nil {
		transitions = []*model.Transition{}
	}

	result := &model.AnalysisResult{
		JobID:             job.ID,
		VideoPath:         job.VideoPath,
		OriginalVideoPath: originalPath,
		AnalysisTime:      time.Now().Format(time.RFC3339),
		VideoInfo:         *info,
		Segments:          segments,
		Transitions:       transitions,
		Transcription:     transcription,
		ScriptContent:     script,
		ScriptFile:        refs.Script,
		ReportFile:        refs.Report,
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		c.CountError(context, fmt.Errorf("failed to marshal results: %w", err))
		return
	}

	name := fmt.Sprintf("%s_results.json", job.ID)
	ref, err := c.artifacts.Put(context.GetContext(), name, "application/json", payload)
	if err != nil {
		c.CountError(context, fmt.Errorf("failed to store results artifact: %w", err))
		return
	}
	refs.Results = ref

	if len(segments) > 0 {
		if err := c.status.SaveSegments(context.GetContext(), job.ID, segments); err != nil {
			c.CountError(context, fmt.Errorf("failed to persist segments: %w", err))
			return
		}
	}

	slog.Info("analysis results written",
		"job", job.ID, "segments", len(segments), "transitions", len(transitions), "artifact", ref)
	context.Add(GetResultParameterName(), result)
	context.Add(c.GetOutputParam(), result)
	c.CountSuccess(context)
}
