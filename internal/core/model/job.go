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
// This file holds the job lifecycle types owned by the task engine: the
// submitted request, its capability flags, and the status record that the
// engine publishes to the status store as the job progresses.
package model

import "time"

// JobStatus is the lifecycle state of one analysis job. Transitions are
// strictly pending -> running -> (completed | failed); both completed and
// failed are terminal.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Capabilities selects which pipeline stages a job runs. The zero value runs
// nothing useful; callers normally start from DefaultCapabilities.
type Capabilities struct {
	Segmentation  bool `json:"video_segmentation" toml:"video_segmentation"`
	Transitions   bool `json:"transition_detection" toml:"transition_detection"`
	Transcription bool `json:"audio_transcription" toml:"audio_transcription"`
	Report        bool `json:"report_generation" toml:"report_generation"`
}

// DefaultCapabilities enables the full pipeline.
func DefaultCapabilities() Capabilities {
	return Capabilities{Segmentation: true, Transitions: true, Transcription: true, Report: true}
}

// Job is one end-to-end analysis request for a single video. The task engine
// owns the record exclusively while the job runs; on completion, ownership of
// the final state transfers to the status store.
type Job struct {
	ID           string       `json:"id"`
	VideoPath    string       `json:"video_path"`
	Capabilities Capabilities `json:"capabilities"`
	SubmittedAt  time.Time    `json:"submitted_at"`
}

// StatusUpdate is one publish to the status store. Every update carries a
// fresh UpdatedAt so the store can apply last-writer-wins per job id; optional
// fields only ever add information, they never reset unrelated ones.
type StatusUpdate struct {
	Status       JobStatus  `json:"status"`
	Progress     int        `json:"progress"` // 0..100, non-decreasing until terminal.
	Message      string     `json:"message,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	// Artifact references, filled in as the job materializes outputs.
	ResultsURL  string `json:"results_url,omitempty"`
	SubtitleURL string `json:"subtitle_srt_url,omitempty"`
	ScriptURL   string `json:"script_md_url,omitempty"`
	ReportURL   string `json:"report_pdf_url,omitempty"`
}

// JobRecord is the merged view of a job as read back from the status store.
type JobRecord struct {
	Job          Job        `json:"job"`
	Status       JobStatus  `json:"status"`
	Progress     int        `json:"progress"`
	Message      string     `json:"message,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ResultsURL   string     `json:"results_url,omitempty"`
	SubtitleURL  string     `json:"subtitle_srt_url,omitempty"`
	ScriptURL    string     `json:"script_md_url,omitempty"`
	ReportURL    string     `json:"report_pdf_url,omitempty"`
}

// QueueStats is the point-in-time view of engine occupancy returned by the
// queue stats surface.
type QueueStats struct {
	Running       int      `json:"running_count"`
	Queued        int      `json:"queued_count"`
	Capacity      int      `json:"capacity"`
	RunningJobIDs []string `json:"running_task_ids"`
}
