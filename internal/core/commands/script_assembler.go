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
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

// Paragraph reflow and pacing thresholds for the assembled script.
const (
	paragraphMaxChars = 150 // Flush a transcript paragraph past this length.
	pacingFastSecs    = 3.0 // Average segment duration below this is fast-paced.
	pacingMediumSecs  = 8.0 // Below this is medium-paced; above is slow.
)

// ScriptAssembler turns the enriched segments and transcript into the
// human-readable Markdown script and uploads it as the `{job}_script.md`
// artifact. The script text also travels in the results document, so an
// upload failure here degrades rather than fails the job.
type ScriptAssembler struct {
	cor.BaseCommand
	artifacts storage.ArtifactStore
}

// NewScriptAssembler is the constructor for the ScriptAssembler command.
func NewScriptAssembler(name string, artifacts storage.ArtifactStore) *ScriptAssembler {
	return &ScriptAssembler{BaseCommand: *cor.NewBaseCommand(name), artifacts: artifacts}
}

// IsExecutable additionally requires the probed video info.
func (c *ScriptAssembler) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetVideoInfoParameterName()) != nil
}

// Execute assembles the script and stores it.
func (c *ScriptAssembler) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	info := context.Get(GetVideoInfoParameterName()).(*model.VideoInfo)
	segments, _ := context.Get(GetSegmentsParameterName()).([]*model.Segment)
	transcription, _ := context.Get(GetTranscriptionParameterName()).(*model.Transcription)

	script := AssembleScript(job, info, segments, transcription, time.Now())

	name := fmt.Sprintf("%s_script.md", job.ID)
	ref, err := c.artifacts.Put(context.GetContext(), name, "text/markdown", []byte(script))
	if err != nil {
		slog.Warn("script upload failed", "job", job.ID, "error", err)
	} else {
		GetArtifactRefs(context).Script = ref
	}

	context.ReportProgress(80, "script assembled")
	context.Add(GetScriptParameterName(), script)
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

// AssembleScript renders the full Markdown analysis script: a header block,
// the reflowed transcript, one section per segment, and an overall summary.
func AssembleScript(job *model.Job, info *model.VideoInfo, segments []*model.Segment, transcription *model.Transcription, now time.Time) string {
	var content []string

	content = append(content, "# Video Script Analysis Report")
	content = append(content, fmt.Sprintf("\n**Video file:** %s", filepath.Base(job.VideoPath)))
	content = append(content, fmt.Sprintf("**Total duration:** %.2f seconds", info.Duration))
	content = append(content, fmt.Sprintf("**Analysis time:** %s", now.Format("2006-01-02T15:04:05")))
	content = append(content, fmt.Sprintf("**Segment count:** %d", len(segments)))
	content = append(content, "\n---\n")

	if !transcription.Failed() && strings.TrimSpace(transcription.Text) != "" {
		content = append(content, "## Full Transcript\n")
		for _, para := range ReflowTranscript(transcription.Text) {
			content = append(content, para+"\n")
		}
		content = append(content, "\n---\n")
	}

	content = append(content, "## Segment Analysis\n")
	for _, seg := range segments {
		content = append(content, fmt.Sprintf("### Segment %d (%.1fs - %.1fs)", seg.ID, seg.StartTime, seg.EndTime))
		content = append(content, fmt.Sprintf("**Duration:** %.1f seconds\n", seg.Duration))
		if seg.TranscriptText != "" {
			content = append(content, "**Transcript:**")
			content = append(content, seg.TranscriptText+"\n")
		}
		content = append(content, "**Composition:**")
		content = append(content, seg.Composition+"\n")
		content = append(content, "**Camera work:**")
		content = append(content, seg.CameraMovement+"\n")
		content = append(content, "**Theme:**")
		content = append(content, seg.Theme+"\n")
		content = append(content, "**Review:**")
		content = append(content, seg.Critique+"\n")
		content = append(content, "---\n")
	}

	content = append(content, "## Overall Assessment\n")
	content = append(content, overallSummary(segments, info))

	return strings.Join(content, "\n")
}

// ReflowTranscript breaks the raw transcript into readable paragraphs. Text
// accumulates sentence by sentence; a paragraph flushes once it grows past
// paragraphMaxChars or the sentence ends on an exclamation or question mark.
// Both ASCII and CJK sentence terminators are honored, since the speech
// engine emits whichever the audio's language uses.
func ReflowTranscript(text string) []string {
	var paragraphs []string
	var current strings.Builder
	var sentence strings.Builder

	flush := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
	}

	for _, r := range strings.TrimSpace(text) {
		sentence.WriteRune(r)
		if !isSentenceEnd(r) {
			continue
		}
		current.WriteString(sentence.String())
		sentence.Reset()
		if current.Len() > paragraphMaxChars || isEmphaticEnd(r) {
			flush()
		}
	}
	if s := strings.TrimSpace(sentence.String()); s != "" {
		current.WriteString(s)
	}
	flush()
	return paragraphs
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func isEmphaticEnd(r rune) bool {
	switch r {
	case '!', '?', '！', '？':
		return true
	}
	return false
}

// overallSummary characterizes the whole video from its segment statistics:
// pacing from the average segment duration, visual style from how many
// distinct composition labels appear.
func overallSummary(segments []*model.Segment, info *model.VideoInfo) string {
	count := len(segments)
	if count == 0 {
		return "Not enough analysis data to produce an overall assessment."
	}
	avg := info.Duration / float64(count)

	var pacing string
	switch {
	case avg < pacingFastSecs:
		pacing = "Fast-paced editing with frequent cuts, well suited to dynamic content"
	case avg < pacingMediumSecs:
		pacing = "Moderate pacing with comfortable cut rhythm that matches viewer habits"
	default:
		pacing = "Slow-paced style focused on deep narrative and emotional buildup"
	}

	unique := map[string]bool{}
	for _, seg := range segments {
		unique[seg.Composition] = true
	}
	var variety string
	switch {
	case float64(len(unique)) > float64(count)*0.8:
		variety = "Rich compositional variety with strong visual expressiveness"
	case float64(len(unique)) > float64(count)*0.5:
		variety = "Some compositional variation with good visual layering"
	default:
		variety = "Relatively uniform composition with strong stylistic consistency"
	}

	craft := "solid fundamentals"
	if count > 20 {
		craft = "excellent command"
	}
	fit := "in-depth content presentation"
	if avg < 5 {
		fit = "short-form distribution"
	}
	skill := "basic production ability"
	if float64(len(unique)) > float64(count)*0.6 {
		skill = "a high level of professional skill"
	}

	var advice string
	switch {
	case avg < 4:
		advice = "Keep the current fast pace, and consider holding key shots slightly longer to strengthen their impact."
	case avg < pacingMediumSecs:
		advice = "The pacing is comfortable; refine the shot language further around emotional peaks."
	default:
		advice = "Long takes are used well; a few quick cuts in the right places would add visual variety."
	}

	return strings.TrimSpace(fmt.Sprintf(`
The video runs %.1f seconds across %d segments, averaging %.1f seconds per segment.

**Pacing:** %s

**Visual style:** %s

**Overall:** The shot language shows %s of the medium, and the cut rhythm makes it a good fit for %s. The editing and composition choices reflect %s.

**Suggestions:** %s
`, info.Duration, count, avg, pacing, variety, craft, fit, skill, advice))
}
