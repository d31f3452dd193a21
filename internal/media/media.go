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

// Package media gives the analysis pipeline access to video content through
// the FFmpeg tool family. It covers the narrow "video access" contract the
// pipeline needs: probe a file for basic metadata, read decoded frames
// sequentially (optionally downsampled to a fixed cadence), seek to a single
// frame, extract the audio track, and render the per-segment preview
// artifacts (thumbnail JPEG and looping GIF).
//
// All operations shell out to ffmpeg/ffprobe; nothing in this package keeps
// state between calls beyond the resolved executable paths.
package media

import (
	"fmt"
	"os/exec"
)

// Frame is one decoded video frame as packed 8-bit RGB. Pix holds
// Width*Height*3 bytes in row-major order.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Valid reports whether the frame carries a complete pixel buffer. Corrupt
// or truncated decodes fail this check and are treated as empty frames by
// the feature extractor.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pix) == f.Width*f.Height*3
}

// Executor resolves and holds the paths to the ffmpeg and ffprobe binaries.
type Executor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewExecutor locates ffmpeg and ffprobe on PATH. Explicit non-empty paths
// override the lookup, which keeps the binaries configurable for containers
// that install them outside the default PATH.
func NewExecutor(ffmpegPath, ffprobePath string) (*Executor, error) {
	var err error
	if ffmpegPath == "" {
		ffmpegPath, err = exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
	}
	if ffprobePath == "" {
		ffprobePath, err = exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
		}
	}
	return &Executor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}
