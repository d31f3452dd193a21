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
	"strings"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
)

// TranscriptAligner copies each scene segment's share of the transcript onto
// the segment. Overlap is inclusive on both ends, so a transcript phrase that
// straddles a scene boundary is attributed to both neighboring segments; that
// duplication is deliberate, since a sentence spoken across a cut belongs to
// both shots when the script is read per segment.
type TranscriptAligner struct {
	cor.BaseCommand
}

// NewTranscriptAligner is the constructor for the TranscriptAligner command.
func NewTranscriptAligner(name string) *TranscriptAligner {
	return &TranscriptAligner{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute fills Segment.TranscriptText for every segment in the context.
func (c *TranscriptAligner) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	segments, _ := context.Get(GetSegmentsParameterName()).([]*model.Segment)
	transcription, _ := context.Get(GetTranscriptionParameterName()).(*model.Transcription)

	if !transcription.Failed() {
		AlignTranscript(segments, transcription.Segments)
	}

	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

// AlignTranscript assigns overlapping transcript phrases to each segment,
// joined in time order with single spaces.
func AlignTranscript(segments []*model.Segment, phrases []model.TranscriptSegment) {
	for _, seg := range segments {
		var texts []string
		for _, p := range phrases {
			if p.End >= seg.StartTime && p.Start <= seg.EndTime {
				if text := strings.TrimSpace(p.Text); text != "" {
					texts = append(texts, text)
				}
			}
		}
		seg.TranscriptText = strings.Join(texts, " ")
	}
}
