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
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
)

// ResultsToBigQuery streams the completed analysis into the warehouse tables
// for cross-job querying. The streaming inserter batches rows per table, and
// the client maps struct fields to columns through the bigquery tags.
//
// The warehouse is an analytical copy, not the system of record; the results
// artifact and the status store already hold the durable outputs, so an
// insert failure is logged and the job continues.
type ResultsToBigQuery struct {
	cor.BaseCommand
	client        *bigquery.Client
	dataset       string
	jobsTable     string
	segmentsTable string
}

// jobRow is the per-job summary row written to the jobs table.
type jobRow struct {
	JobID           string    `bigquery:"job_id"`
	VideoPath       string    `bigquery:"video_path"`
	Duration        float64   `bigquery:"duration"`
	SegmentCount    int       `bigquery:"segment_count"`
	TransitionCount int       `bigquery:"transition_count"`
	Language        string    `bigquery:"language"`
	AnalyzedAt      time.Time `bigquery:"analyzed_at"`
}

// segmentRow is one scene segment row written to the segments table.
type segmentRow struct {
	JobID          string  `bigquery:"job_id"`
	SegmentID      int     `bigquery:"segment_id"`
	StartTime      float64 `bigquery:"start_time"`
	EndTime        float64 `bigquery:"end_time"`
	Duration       float64 `bigquery:"duration"`
	SceneLabel     string  `bigquery:"scene_type"`
	Composition    string  `bigquery:"composition_analysis"`
	CameraMovement string  `bigquery:"camera_movement"`
	Theme          string  `bigquery:"theme_analysis"`
	TranscriptText string  `bigquery:"transcript_text"`
}

// NewResultsToBigQuery is the constructor for the ResultsToBigQuery command.
func NewResultsToBigQuery(name string, client *bigquery.Client, dataset, jobsTable, segmentsTable string) *ResultsToBigQuery {
	return &ResultsToBigQuery{
		BaseCommand:   *cor.NewBaseCommand(name),
		client:        client,
		dataset:       dataset,
		jobsTable:     jobsTable,
		segmentsTable: segmentsTable,
	}
}

// IsExecutable requires the assembled result and a configured client.
func (c *ResultsToBigQuery) IsExecutable(context cor.Context) bool {
	return context != nil && c.client != nil &&
		context.Get(GetResultParameterName()) != nil
}

// Execute streams the job and segment rows.
func (c *ResultsToBigQuery) Execute(context cor.Context) {
	result := context.Get(GetResultParameterName()).(*model.AnalysisResult)

	analyzedAt, err := time.Parse(time.RFC3339, result.AnalysisTime)
	if err != nil {
		analyzedAt = time.Now()
	}
	language := ""
	if !result.Transcription.Failed() {
		language = result.Transcription.Language
	}

	job := &jobRow{
		JobID:           result.JobID,
		VideoPath:       result.VideoPath,
		Duration:        result.VideoInfo.Duration,
		SegmentCount:    len(result.Segments),
		TransitionCount: len(result.Transitions),
		Language:        language,
		AnalyzedAt:      analyzedAt,
	}
	if err := c.client.Dataset(c.dataset).Table(c.jobsTable).Inserter().Put(context.GetContext(), job); err != nil {
		slog.Warn("bigquery job insert failed", "job", result.JobID, "error", err)
		context.Add(c.GetOutputParam(), result)
		c.CountSuccess(context)
		return
	}

	rows := make([]*segmentRow, 0, len(result.Segments))
	for _, seg := range result.Segments {
		rows = append(rows, &segmentRow{
			JobID:          result.JobID,
			SegmentID:      seg.ID,
			StartTime:      seg.StartTime,
			EndTime:        seg.EndTime,
			Duration:       seg.Duration,
			SceneLabel:     seg.SceneLabel,
			Composition:    seg.Composition,
			CameraMovement: seg.CameraMovement,
			Theme:          seg.Theme,
			TranscriptText: seg.TranscriptText,
		})
	}
	if len(rows) > 0 {
		if err := c.client.Dataset(c.dataset).Table(c.segmentsTable).Inserter().Put(context.GetContext(), rows); err != nil {
			slog.Warn("bigquery segment insert failed", "job", result.JobID, "error", err)
		}
	}

	context.Add(c.GetOutputParam(), result)
	c.CountSuccess(context)
}
