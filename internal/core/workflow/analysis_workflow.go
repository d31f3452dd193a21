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

// Package workflow composes the pipeline commands into the end-to-end video
// analysis chain. The workflow owns no analysis logic itself: it decides
// which stages run for a job's capability flags and wires their shared
// dependencies.
package workflow

import (
	"errors"

	"cloud.google.com/go/bigquery"
	gcs "cloud.google.com/go/storage"

	"github.com/videolearn/video-insight/internal/cloud"
	"github.com/videolearn/video-insight/internal/core/commands"
	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/storage"
	"github.com/videolearn/video-insight/internal/transcribe"
)

// errNoJobInput is recorded when the chain context was seeded incorrectly.
var errNoJobInput = errors.New("analysis workflow requires a *model.Job as primary input")

// AnalysisWorkflow runs one job through the full analysis pipeline. It is a
// cor.Command itself, so the engine executes it like any other command; the
// chain it builds varies with the job's capability flags, since a job that
// skips transcription should never pay for audio extraction.
type AnalysisWorkflow struct {
	cor.BaseCommand
	config         *cloud.Config
	media          *media.Executor
	runner         *transcribe.Runner
	artifacts      storage.ArtifactStore
	status         storage.StatusStore
	storageClient  *gcs.Client
	bigqueryClient *bigquery.Client
}

// NewAnalysisWorkflow is the constructor for the analysis workflow. The
// storage and BigQuery clients are optional: without the former only local
// source paths are accepted, without the latter the warehouse export stage
// is skipped.
func NewAnalysisWorkflow(
	config *cloud.Config,
	executor *media.Executor,
	runner *transcribe.Runner,
	artifacts storage.ArtifactStore,
	status storage.StatusStore,
	storageClient *gcs.Client,
	bigqueryClient *bigquery.Client) *AnalysisWorkflow {
	return &AnalysisWorkflow{
		BaseCommand:    *cor.NewBaseCommand("video-analysis-pipeline"),
		config:         config,
		media:          executor,
		runner:         runner,
		artifacts:      artifacts,
		status:         status,
		storageClient:  storageClient,
		bigqueryClient: bigqueryClient,
	}
}

// Execute builds the capability-appropriate chain and runs it. The context's
// primary input must carry the *model.Job.
func (w *AnalysisWorkflow) Execute(context cor.Context) {
	job, ok := context.Get(w.GetInputParam()).(*model.Job)
	if !ok {
		w.CountError(context, errNoJobInput)
		return
	}
	w.chainFor(job.Capabilities).Execute(context)
}

// chainFor assembles the command sequence for one job. Stage order matters:
// probing precedes everything, the aligner needs both segments and the
// transcript, and the results writer is terminal so every earlier stage's
// output lands in the artifact.
func (w *AnalysisWorkflow) chainFor(caps model.Capabilities) cor.Chain {
	chain := cor.NewBaseChain(w.GetName())

	chain.AddCommand(commands.NewSourceStager("stage-source", w.storageClient))
	chain.AddCommand(commands.NewVideoProbe("probe-video", w.media))

	if caps.Segmentation {
		chain.AddCommand(commands.NewFrameSampler("sample-frames", w.media))
		chain.AddCommand(commands.NewSceneSegmenter("segment-scenes"))
	}
	if caps.Transitions {
		chain.AddCommand(commands.NewTransitionDetector("detect-transitions", w.media))
	}
	if caps.Transcription {
		chain.AddCommand(commands.NewAudioTranscriber("transcribe-audio", w.media, w.runner, w.config.Media.WorkDir))
		chain.AddCommand(commands.NewSubtitleWriter("write-subtitles", w.artifacts))
	}
	if caps.Segmentation {
		if caps.Transcription {
			chain.AddCommand(commands.NewTranscriptAligner("align-transcript"))
		}
		chain.AddCommand(commands.NewFrameAnalyzer("analyze-frames", w.media, w.config.Application.ThreadPoolSize))
		chain.AddCommand(commands.NewSegmentPreview("render-previews", w.media, w.artifacts, w.config.Media.WorkDir))
	}
	if caps.Report {
		chain.AddCommand(commands.NewScriptAssembler("assemble-script", w.artifacts))
		chain.AddCommand(commands.NewReportRenderer("render-report", w.artifacts,
			w.config.Media.WorkDir, w.config.Report.FontPath, w.config.Report.FontName))
	}

	chain.AddCommand(commands.NewResultsWriter("write-results", w.artifacts, w.status))
	if w.bigqueryClient != nil {
		chain.AddCommand(commands.NewResultsToBigQuery("export-to-bigquery",
			w.bigqueryClient,
			w.config.BigQueryDataSource.DatasetName,
			w.config.BigQueryDataSource.JobsTable,
			w.config.BigQueryDataSource.SegmentsTable))
	}
	return chain
}
