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

// Audio extraction parameters tuned for speech-to-text input: 16 kHz mono
// PCM is what whisper-family models expect.
const (
	audioCodec      = "pcm_s16le"
	audioSampleRate = 16000
	audioChannels   = 1
)

// ExtractAudio writes the file's audio track to output as a mono 16 kHz WAV.
// The caller is responsible for deleting the file; the pipeline tracks it as
// a temp file on the chain context so cleanup survives mid-chain failures.
func (e *Executor) ExtractAudio(ctx context.Context, input, output string) error {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", input,
		"-vn",
		"-acodec", audioCodec,
		"-ar", fmt.Sprintf("%d", audioSampleRate),
		"-ac", fmt.Sprintf("%d", audioChannels),
		output,
	}
	if _, err := e.run(ctx, e.ffmpegPath, args, nil); err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}
