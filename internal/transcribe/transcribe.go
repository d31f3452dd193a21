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

// Package transcribe runs a whisper-compatible speech-to-text CLI over an
// extracted audio track and parses its JSON output into the pipeline's
// transcript model. The engine is optional infrastructure: when the binary is
// missing the runner reports unavailability and the pipeline degrades to an
// analysis without transcript fields instead of failing the job.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/videolearn/video-insight/internal/core/model"
)

// Runner shells out to a whisper-style CLI. The binary must accept an audio
// file plus `--model`, `--language`, `--output_format json` and
// `--output_dir` flags, which both openai-whisper and whisper-ctranslate2
// do.
type Runner struct {
	binaryPath string
	modelName  string
	language   string
}

// NewRunner resolves the transcription binary. An empty binaryPath defaults
// to "whisper" on PATH. A lookup failure is not an error here: availability
// is checked per call so a binary installed after process start is picked up.
func NewRunner(binaryPath, modelName, language string) *Runner {
	if binaryPath == "" {
		binaryPath = "whisper"
	}
	if modelName == "" {
		modelName = "base"
	}
	return &Runner{binaryPath: binaryPath, modelName: modelName, language: language}
}

// Available reports whether the transcription binary can be resolved.
func (r *Runner) Available() bool {
	if filepath.IsAbs(r.binaryPath) {
		_, err := os.Stat(r.binaryPath)
		return err == nil
	}
	_, err := exec.LookPath(r.binaryPath)
	return err == nil
}

// whisperOutput matches the JSON document whisper writes next to the audio
// file when invoked with --output_format json.
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogProb float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// Transcribe runs the engine over the given audio file and returns the full
// transcription. The JSON sidecar the engine writes is removed before
// returning; the audio file itself belongs to the caller.
func (r *Runner) Transcribe(ctx context.Context, audioPath string) (*model.Transcription, error) {
	outDir := filepath.Dir(audioPath)
	args := []string{
		audioPath,
		"--model", r.modelName,
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	}
	if r.language != "" {
		args = append(args, "--language", r.language)
	}

	cmd := exec.CommandContext(ctx, r.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("transcription engine failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("transcription engine failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outDir, base+".json")
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("transcription output not found: %w", err)
	}
	defer func() {
		if err := os.Remove(jsonPath); err != nil {
			slog.Warn("failed to remove transcription sidecar", "path", jsonPath, "error", err)
		}
	}()

	return ParseOutput(raw)
}

// ParseOutput converts the engine's JSON document into the transcript model,
// trimming per-segment whitespace the way the subtitle writer expects.
func ParseOutput(raw []byte) (*model.Transcription, error) {
	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse transcription output: %w", err)
	}

	t := &model.Transcription{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Segments: make([]model.TranscriptSegment, 0, len(out.Segments)),
	}
	for _, seg := range out.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		t.Segments = append(t.Segments, model.TranscriptSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       text,
			Confidence: seg.AvgLogProb,
		})
	}
	return t, nil
}
