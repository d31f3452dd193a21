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

// Package main is the insight command line tool: a local, single-shot
// front end to the analysis pipeline. It runs one video through the same
// chain the server uses, with in-memory status tracking and artifacts
// written to a local directory. No cloud services are required.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/videolearn/video-insight/internal/cloud"
	"github.com/videolearn/video-insight/internal/core/commands"
	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/core/workflow"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/storage"
	"github.com/videolearn/video-insight/internal/telemetry"
	"github.com/videolearn/video-insight/internal/transcribe"
)

type analyzeOptions struct {
	outDir        string
	ffmpegPath    string
	ffprobePath   string
	whisperPath   string
	whisperModel  string
	language      string
	fontPath      string
	fontName      string
	transitions   bool
	transcription bool
	report        bool
}

func main() {
	telemetry.SetupLogging(true)

	root := &cobra.Command{
		Use:           "insight",
		Short:         "Analyze video structure, scenes and dialogue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newQueueCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Run the full analysis pipeline on one local video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.outDir, "out", "o", "insight-out", "directory for analysis artifacts")
	flags.StringVar(&opts.ffmpegPath, "ffmpeg", "", "ffmpeg binary (default: look up on PATH)")
	flags.StringVar(&opts.ffprobePath, "ffprobe", "", "ffprobe binary (default: look up on PATH)")
	flags.StringVar(&opts.whisperPath, "whisper", "", "whisper binary (default: look up on PATH)")
	flags.StringVar(&opts.whisperModel, "whisper-model", "base", "whisper model name")
	flags.StringVar(&opts.language, "language", "", "transcription language hint (default: auto-detect)")
	flags.StringVar(&opts.fontPath, "font", "", "TTF font file for the PDF report")
	flags.StringVar(&opts.fontName, "font-name", "", "family name for the report font")
	flags.BoolVar(&opts.transitions, "transitions", true, "detect hard cuts and transitions")
	flags.BoolVar(&opts.transcription, "transcription", true, "transcribe the audio track")
	flags.BoolVar(&opts.report, "report", true, "generate the script and PDF report")
	return cmd
}

func newQueueCommand() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the queue occupancy of a running analysis server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQueue(cmd.Context(), server)
		},
	}
	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:8080", "base URL of the analysis server")
	return cmd
}

func runQueue(ctx context.Context, server string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server+"/api/v1/stats/queue", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var stats model.QueueStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("malformed stats response: %w", err)
	}

	fmt.Printf("running  %d / %d\n", stats.Running, stats.Capacity)
	fmt.Printf("queued   %d\n", stats.Queued)
	for _, id := range stats.RunningJobIDs {
		fmt.Printf("  job %s\n", id)
	}
	return nil
}

func runAnalyze(ctx context.Context, videoPath string, opts *analyzeOptions) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("cannot read video file: %w", err)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	config := cloud.NewConfig()
	config.Media.WorkDir = opts.outDir
	config.Report.FontPath = opts.fontPath
	config.Report.FontName = opts.fontName

	executor, err := media.NewExecutor(opts.ffmpegPath, opts.ffprobePath)
	if err != nil {
		return err
	}
	runner := transcribe.NewRunner(opts.whisperPath, opts.whisperModel, opts.language)

	artifacts, err := storage.NewLocalArtifactStore(opts.outDir)
	if err != nil {
		return err
	}
	status := storage.NewMemoryStatusStore()

	pipeline := workflow.NewAnalysisWorkflow(config, executor, runner, artifacts, status, nil, nil)

	job := &model.Job{
		ID:        "local",
		VideoPath: videoPath,
		Capabilities: model.Capabilities{
			Segmentation:  true,
			Transitions:   opts.transitions,
			Transcription: opts.transcription,
			Report:        opts.report,
		},
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.SetReporter(&consoleReporter{})
	chainCtx.Add(cor.CtxIn, job)

	pipeline.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for name, err := range chainCtx.GetErrors() {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", name, err)
		}
		return fmt.Errorf("analysis failed")
	}

	refs := commands.GetArtifactRefs(chainCtx)
	fmt.Println("analysis complete")
	printRef("results", refs.Results)
	printRef("subtitles", refs.Subtitle)
	printRef("script", refs.Script)
	printRef("report", refs.Report)
	return nil
}

func printRef(label, ref string) {
	if ref != "" {
		fmt.Printf("  %-9s %s\n", label, ref)
	}
}

// consoleReporter prints pipeline checkpoints to stderr as they happen.
type consoleReporter struct{}

func (consoleReporter) Report(progress int, message string) {
	fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", progress, message)
}
