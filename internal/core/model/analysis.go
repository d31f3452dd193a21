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

// Package model defines the core data structures of the analysis pipeline.
// This file holds the types that describe one completed analysis: the probed
// video metadata, the scene segments and transition events derived from the
// frames, the speech transcription, and the aggregate AnalysisResult that is
// serialized to the `{job_id}_results.json` artifact.
//
// An AnalysisResult is written exactly once per job and never mutated after
// the job reaches a terminal state; re-running a video produces a new result
// under a new job identity.
package model

import "encoding/json"

// VideoInfo holds the basic properties probed from the source file before any
// analysis begins. It is derived once per job and treated as immutable.
type VideoInfo struct {
	Duration float64 `json:"duration"`  // Total duration in seconds.
	FPS      float64 `json:"fps"`       // Nominal frame rate.
	Width    int     `json:"width"`     // Pixel width of the video stream.
	Height   int     `json:"height"`    // Pixel height of the video stream.
	HasAudio bool    `json:"has_audio"` // Whether the container carries an audio track.
}

// FrameSample pairs a sampled timestamp with the frame's color descriptor.
// The ordered sample sequence exists only for the duration of one analysis
// run; it is never persisted.
type FrameSample struct {
	Timestamp  float64   // Seconds from the start of the video.
	Descriptor []float64 // 150-length normalized HSV histogram vector.
}

// Segment is one contiguous time span classified as a single visual scene.
// Segments tile the sampled range [first sample, last sample] without gaps or
// overlaps, and their ids form a dense 1..N sequence in time order.
type Segment struct {
	ID             int     `json:"segment_id"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Duration       float64 `json:"duration"`
	SceneLabel     string  `json:"scene_type"`
	FrameCount     int     `json:"frame_count"`
	Composition    string  `json:"composition_analysis"`
	CameraMovement string  `json:"camera_movement"`
	Theme          string  `json:"theme_analysis"`
	Critique       string  `json:"critical_review"`
	TranscriptText string  `json:"transcript_text"`
	ThumbnailURL   string  `json:"thumbnail_url,omitempty"`
	PreviewURL     string  `json:"gif_url,omitempty"`

	// Descriptor is the representative frame's color descriptor. It is kept
	// out of the results document but persisted to the durable store as a
	// vector column for similarity lookups.
	Descriptor []float64 `json:"-"`
}

// Transition is a detected abrupt visual change between two consecutive
// frames, distinct from a segment boundary. Accepted transitions are strictly
// increasing in timestamp and at least MinTransitionInterval apart.
type Transition struct {
	ID        int     `json:"transition_id"`
	Timestamp float64 `json:"timestamp"`
	Strength  float64 `json:"strength"` // 1 - grayscale histogram correlation, in [0,1].
	Type      string  `json:"type"`     // "hard cut", "gradual", or "minor change".
}

// TranscriptSegment is one timed phrase from the speech-to-text engine.
// Transcript segments are produced independently of scene segments and may
// overlap any number of them.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Transcription is the full speech-to-text output for one video. A missing
// audio track and an unavailable transcription engine are explicit,
// distinguishable outcomes carried in Err rather than silent empty results.
type Transcription struct {
	Text         string              `json:"text"`
	Language     string              `json:"language,omitempty"`
	Segments     []TranscriptSegment `json:"segments"`
	SubtitleFile string              `json:"subtitle_file,omitempty"`
	Err          string              `json:"-"`
}

// ErrNoAudioTrack is the sentinel carried by Transcription.Err when the
// source has no audio stream and transcription was requested.
const ErrNoAudioTrack = "no audio track"

// Failed reports whether the transcription stage produced no usable output.
func (t *Transcription) Failed() bool {
	return t == nil || t.Err != ""
}

// MarshalJSON renders a failed transcription as {"error": "..."} so consumers
// can tell "no audio" and "engine unavailable" apart from an empty transcript.
func (t Transcription) MarshalJSON() ([]byte, error) {
	if t.Err != "" {
		return json.Marshal(map[string]string{"error": t.Err})
	}
	type plain Transcription
	return json.Marshal(plain(t))
}

// AnalysisResult is the aggregate root produced by one analysis job. It is
// the exact shape of the results JSON artifact, provenance fields included.
type AnalysisResult struct {
	JobID             string         `json:"task_id"`
	VideoPath         string         `json:"video_path"`
	OriginalVideoPath string         `json:"original_video_path"`
	AnalysisTime      string         `json:"analysis_time"` // RFC 3339.
	VideoInfo         VideoInfo      `json:"video_info"`
	Segments          []*Segment     `json:"segments"`
	Transitions       []*Transition  `json:"transitions"`
	Transcription     *Transcription `json:"transcription"`
	ScriptContent     string         `json:"script_content,omitempty"`
	ScriptFile        string         `json:"script_file,omitempty"`
	ReportFile        string         `json:"report_file,omitempty"`
}
