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

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/videolearn/video-insight/internal/core/model"
)

// descriptorDims is the vector width of the segment descriptor column. Must
// match the feature extractor's output size.
const descriptorDims = 150

// PostgresStatusStore is the durable StatusStore backed by Postgres with the
// pgvector extension. Segment descriptors are stored as vector columns so
// similar scenes can be looked up with a distance query later.
type PostgresStatusStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStatusStore wraps an existing connection pool. The pool is owned
// by the caller (the server's ServiceClients container).
func NewPostgresStatusStore(pool *pgxpool.Pool) *PostgresStatusStore {
	return &PostgresStatusStore{pool: pool}
}

// InitSchema creates the extension, tables and indexes when they do not
// already exist. Called once at server startup in database mode.
func (s *PostgresStatusStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS jobs (
            id TEXT PRIMARY KEY,
            video_path TEXT NOT NULL,
            capabilities JSONB NOT NULL,
            submitted_at TIMESTAMPTZ NOT NULL,
            status TEXT NOT NULL,
            progress INTEGER NOT NULL DEFAULT 0,
            message TEXT NOT NULL DEFAULT '',
            error_message TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ NOT NULL,
            started_at TIMESTAMPTZ,
            completed_at TIMESTAMPTZ,
            results_url TEXT NOT NULL DEFAULT '',
            subtitle_url TEXT NOT NULL DEFAULT '',
            script_url TEXT NOT NULL DEFAULT '',
            report_url TEXT NOT NULL DEFAULT ''
        );

        CREATE TABLE IF NOT EXISTS segments (
            id SERIAL PRIMARY KEY,
            job_id TEXT REFERENCES jobs(id) ON DELETE CASCADE,
            segment_id INTEGER NOT NULL,
            start_time DOUBLE PRECISION NOT NULL,
            end_time DOUBLE PRECISION NOT NULL,
            scene_type TEXT NOT NULL,
            frame_count INTEGER NOT NULL,
            composition TEXT NOT NULL,
            camera_movement TEXT NOT NULL,
            theme TEXT NOT NULL,
            critique TEXT NOT NULL,
            transcript_text TEXT NOT NULL,
            thumbnail_url TEXT NOT NULL DEFAULT '',
            preview_url TEXT NOT NULL DEFAULT '',
            descriptor vector(%d),
            UNIQUE(job_id, segment_id)
        );

        CREATE INDEX IF NOT EXISTS idx_segments_job_id ON segments(job_id);
        CREATE INDEX IF NOT EXISTS idx_jobs_submitted_at ON jobs(submitted_at DESC);
    `, descriptorDims))
	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}
	return nil
}

// CreateJob registers a submitted job in pending state. Resubmitting an id
// resets the lifecycle columns, matching upsert semantics.
func (s *PostgresStatusStore) CreateJob(ctx context.Context, job model.Job) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO jobs (id, video_path, capabilities, submitted_at, status, updated_at)
        VALUES ($1, $2, $3, $4, $5, $4)
        ON CONFLICT (id) DO UPDATE SET
            video_path = EXCLUDED.video_path,
            capabilities = EXCLUDED.capabilities,
            submitted_at = EXCLUDED.submitted_at,
            status = EXCLUDED.status,
            progress = 0,
            message = '',
            error_message = '',
            updated_at = EXCLUDED.updated_at`,
		job.ID, job.VideoPath, job.Capabilities, job.SubmittedAt, model.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to create job record: %w", err)
	}
	return nil
}

// UpdateStatus applies one status publish. The WHERE guards implement
// last-writer-wins and terminal-state protection: a stale update, or a late
// running update against a finished job, is silently dropped. NULLIF keeps
// empty optional fields from resetting stored values.
func (s *PostgresStatusStore) UpdateStatus(ctx context.Context, jobID string, update model.StatusUpdate) error {
	tag, err := s.pool.Exec(ctx, `
        UPDATE jobs SET
            status = $2,
            progress = $3,
            message = COALESCE(NULLIF($4, ''), message),
            error_message = COALESCE(NULLIF($5, ''), error_message),
            updated_at = $6,
            started_at = COALESCE($7, started_at),
            completed_at = COALESCE($8, completed_at),
            results_url = COALESCE(NULLIF($9, ''), results_url),
            subtitle_url = COALESCE(NULLIF($10, ''), subtitle_url),
            script_url = COALESCE(NULLIF($11, ''), script_url),
            report_url = COALESCE(NULLIF($12, ''), report_url)
        WHERE id = $1 AND updated_at <= $6
          AND NOT (status IN ('completed', 'failed') AND $2 NOT IN ('completed', 'failed'))`,
		jobID, update.Status, update.Progress, update.Message, update.ErrorMessage,
		update.UpdatedAt, update.StartedAt, update.CompletedAt,
		update.ResultsURL, update.SubtitleURL, update.ScriptURL, update.ReportURL)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the job is unknown or the update was stale. Distinguish so
		// callers can surface a real miss.
		var exists bool
		if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)", jobID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// GetJob returns the merged record for one job.
func (s *PostgresStatusStore) GetJob(ctx context.Context, jobID string) (*model.JobRecord, error) {
	rec := &model.JobRecord{}
	err := s.pool.QueryRow(ctx, `
        SELECT id, video_path, capabilities, submitted_at, status, progress,
               message, error_message, updated_at, started_at, completed_at,
               results_url, subtitle_url, script_url, report_url
        FROM jobs WHERE id = $1`, jobID).Scan(
		&rec.Job.ID, &rec.Job.VideoPath, &rec.Job.Capabilities, &rec.Job.SubmittedAt,
		&rec.Status, &rec.Progress, &rec.Message, &rec.ErrorMessage,
		&rec.UpdatedAt, &rec.StartedAt, &rec.CompletedAt,
		&rec.ResultsURL, &rec.SubtitleURL, &rec.ScriptURL, &rec.ReportURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job record: %w", err)
	}
	return rec, nil
}

// ListJobs returns all records, newest submission first.
func (s *PostgresStatusStore) ListJobs(ctx context.Context) ([]*model.JobRecord, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, video_path, capabilities, submitted_at, status, progress,
               message, error_message, updated_at, started_at, completed_at,
               results_url, subtitle_url, script_url, report_url
        FROM jobs ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list job records: %w", err)
	}
	defer rows.Close()

	var out []*model.JobRecord
	for rows.Next() {
		rec := &model.JobRecord{}
		if err := rows.Scan(
			&rec.Job.ID, &rec.Job.VideoPath, &rec.Job.Capabilities, &rec.Job.SubmittedAt,
			&rec.Status, &rec.Progress, &rec.Message, &rec.ErrorMessage,
			&rec.UpdatedAt, &rec.StartedAt, &rec.CompletedAt,
			&rec.ResultsURL, &rec.SubtitleURL, &rec.ScriptURL, &rec.ReportURL); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveSegments persists the final segments with their descriptor vectors.
// Existing rows for the job are replaced, so a re-run of the same job id
// leaves no stale segments behind.
func (s *PostgresStatusStore) SaveSegments(ctx context.Context, jobID string, segments []*model.Segment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM segments WHERE job_id = $1", jobID); err != nil {
		return fmt.Errorf("failed to clear previous segments: %w", err)
	}

	for _, seg := range segments {
		var descriptor interface{}
		if len(seg.Descriptor) == descriptorDims {
			vec := make([]float32, descriptorDims)
			for i, v := range seg.Descriptor {
				vec[i] = float32(v)
			}
			descriptor = pgvector.NewVector(vec)
		}
		_, err := tx.Exec(ctx, `
            INSERT INTO segments
                (job_id, segment_id, start_time, end_time, scene_type, frame_count,
                 composition, camera_movement, theme, critique, transcript_text,
                 thumbnail_url, preview_url, descriptor)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			jobID, seg.ID, seg.StartTime, seg.EndTime, seg.SceneLabel, seg.FrameCount,
			seg.Composition, seg.CameraMovement, seg.Theme, seg.Critique, seg.TranscriptText,
			seg.ThumbnailURL, seg.PreviewURL, descriptor)
		if err != nil {
			return fmt.Errorf("failed to insert segment %d: %w", seg.ID, err)
		}
	}
	return tx.Commit(ctx)
}

// GetSegments returns a job's stored segments in time order.
func (s *PostgresStatusStore) GetSegments(ctx context.Context, jobID string) ([]*model.Segment, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT segment_id, start_time, end_time, scene_type, frame_count,
               composition, camera_movement, theme, critique, transcript_text,
               thumbnail_url, preview_url
        FROM segments WHERE job_id = $1 ORDER BY segment_id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to read segments: %w", err)
	}
	defer rows.Close()

	var out []*model.Segment
	for rows.Next() {
		seg := &model.Segment{}
		if err := rows.Scan(
			&seg.ID, &seg.StartTime, &seg.EndTime, &seg.SceneLabel, &seg.FrameCount,
			&seg.Composition, &seg.CameraMovement, &seg.Theme, &seg.Critique,
			&seg.TranscriptText, &seg.ThumbnailURL, &seg.PreviewURL); err != nil {
			return nil, err
		}
		seg.Duration = seg.EndTime - seg.StartTime
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// SimilarSegments returns the stored segments closest to the given
// descriptor by cosine distance, across all jobs.
func (s *PostgresStatusStore) SimilarSegments(ctx context.Context, descriptor []float64, limit int) ([]*model.Segment, error) {
	if len(descriptor) != descriptorDims {
		return nil, fmt.Errorf("descriptor must have %d dimensions, got %d", descriptorDims, len(descriptor))
	}
	vec := make([]float32, descriptorDims)
	for i, v := range descriptor {
		vec[i] = float32(v)
	}

	rows, err := s.pool.Query(ctx, `
        SELECT segment_id, start_time, end_time, scene_type, transcript_text, thumbnail_url
        FROM segments
        WHERE descriptor IS NOT NULL
        ORDER BY descriptor <=> $1
        LIMIT $2`, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar segments: %w", err)
	}
	defer rows.Close()

	var out []*model.Segment
	for rows.Next() {
		seg := &model.Segment{}
		if err := rows.Scan(&seg.ID, &seg.StartTime, &seg.EndTime,
			&seg.SceneLabel, &seg.TranscriptText, &seg.ThumbnailURL); err != nil {
			return nil, err
		}
		seg.Duration = seg.EndTime - seg.StartTime
		out = append(out, seg)
	}
	return out, rows.Err()
}
