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

package media

import (
	"context"
	"fmt"
)

// Preview rendering constants. Thumbnails are scaled to a fixed width with
// the aspect ratio preserved; GIF previews are capped in length so a long
// segment cannot produce an unbounded artifact.
const (
	ThumbnailWidth    = 200
	PreviewGifWidth   = 320
	PreviewGifFPS     = 10
	PreviewGifMaxSecs = 5.0
)

// WriteThumbnail decodes one frame at the given timestamp and writes it as a
// JPEG scaled to ThumbnailWidth.
func (e *Executor) WriteThumbnail(ctx context.Context, input string, timestamp float64, output string) error {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", input,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", ThumbnailWidth),
		output,
	}
	if _, err := e.run(ctx, e.ffmpegPath, args, nil); err != nil {
		return fmt.Errorf("thumbnail render failed: %w", err)
	}
	return nil
}

// WritePreviewGif renders a short looping GIF covering [start, start+d] where
// d is the segment duration capped at PreviewGifMaxSecs.
func (e *Executor) WritePreviewGif(ctx context.Context, input string, start, end float64, output string) error {
	duration := end - start
	if duration > PreviewGifMaxSecs {
		duration = PreviewGifMaxSecs
	}
	if duration <= 0 {
		return fmt.Errorf("non-positive preview duration for [%f,%f]", start, end)
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", input,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", fmt.Sprintf("scale=%d:-1:flags=lanczos,fps=%d", PreviewGifWidth, PreviewGifFPS),
		"-loop", "0",
		output,
	}
	if _, err := e.run(ctx, e.ffmpegPath, args, nil); err != nil {
		return fmt.Errorf("preview gif render failed: %w", err)
	}
	return nil
}
