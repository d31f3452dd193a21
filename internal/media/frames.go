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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/videolearn/video-insight/internal/core/model"
)

// FrameStream reads decoded frames sequentially from one ffmpeg process that
// writes packed RGB24 to a pipe. The caller owns the stream and must Close it
// to reap the child process.
type FrameStream struct {
	cmd    *exec.Cmd
	stdout *bufio.Reader
	width  int
	height int
	step   float64 // Seconds between consecutive frames in this stream.
	index  int
}

// OpenFrameStream starts decoding the video at its native frame rate. Used by
// the transition detector, which needs every consecutive frame pair.
func (e *Executor) OpenFrameStream(ctx context.Context, path string, info *model.VideoInfo) (*FrameStream, error) {
	step := 0.0
	if info.FPS > 0 {
		step = 1.0 / info.FPS
	}
	return e.openStream(ctx, path, info, nil, step)
}

// OpenSampleStream starts decoding with an fps filter so ffmpeg emits one
// frame per sampling interval. Used by the scene segmenter, which samples at
// most one frame per nominal second.
func (e *Executor) OpenSampleStream(ctx context.Context, path string, info *model.VideoInfo, interval float64) (*FrameStream, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid sample interval %f", interval)
	}
	filter := []string{"-vf", fmt.Sprintf("fps=1/%g", interval)}
	return e.openStream(ctx, path, info, filter, interval)
}

func (e *Executor) openStream(ctx context.Context, path string, info *model.VideoInfo, filter []string, step float64) (*FrameStream, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
	}
	args = append(args, filter...)
	args = append(args,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg decode: %w", err)
	}

	return &FrameStream{
		cmd:    cmd,
		stdout: bufio.NewReaderSize(stdout, 1<<20),
		width:  info.Width,
		height: info.Height,
		step:   step,
	}, nil
}

// Next returns the next decoded frame and its timestamp. It returns io.EOF
// once the stream is exhausted. A truncated trailing frame is dropped rather
// than surfaced as a partial buffer.
func (s *FrameStream) Next() (*Frame, float64, error) {
	size := s.width * s.height * 3
	buf := make([]byte, size)
	if _, err := io.ReadFull(s.stdout, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, err
	}
	ts := float64(s.index) * s.step
	s.index++
	return &Frame{Width: s.width, Height: s.height, Pix: buf}, ts, nil
}

// Close drains and reaps the underlying ffmpeg process. Safe to call after a
// partial read; decode errors at this point are not interesting to callers
// that already have their frames.
func (s *FrameStream) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return s.cmd.Wait()
}

// ReadFrameAt seeks to the given timestamp and decodes exactly one frame.
// This is the random-access half of the video access contract, used to fetch
// each segment's representative frame.
func (e *Executor) ReadFrameAt(ctx context.Context, path string, info *model.VideoInfo, timestamp float64) (*Frame, error) {
	if timestamp < 0 {
		timestamp = 0
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	}
	out, err := e.run(ctx, e.ffmpegPath, args, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame at %.3fs: %w", timestamp, err)
	}
	size := info.Width * info.Height * 3
	if len(out) < size {
		return nil, fmt.Errorf("short frame read at %.3fs: got %d of %d bytes", timestamp, len(out), size)
	}
	return &Frame{Width: info.Width, Height: info.Height, Pix: out[:size]}, nil
}

// run executes a command to completion and returns its stdout. stderr is kept
// for the error message; the callers here never need to stream it.
func (e *Executor) run(ctx context.Context, bin string, args []string, stdin io.Reader) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = stdin
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
