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

package transcribe

import (
	"fmt"
	"math"
	"strings"

	"github.com/videolearn/video-insight/internal/core/model"
)

// FormatSRT renders the timed transcript segments as a SubRip document: a
// 1-based cue index, an HH:MM:SS,mmm --> HH:MM:SS,mmm time line, the cue
// text, and a blank separator line.
func FormatSRT(segments []model.TranscriptSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", SRTTimestamp(seg.Start), SRTTimestamp(seg.End))
		fmt.Fprintf(&b, "%s\n\n", seg.Text)
	}
	return b.String()
}

// SRTTimestamp converts seconds to the SubRip HH:MM:SS,mmm form. The value is
// rounded to whole milliseconds; negative inputs clamp to zero.
func SRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int(math.Round(seconds * 1000))
	millis := totalMillis % 1000
	total := totalMillis / 1000
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
