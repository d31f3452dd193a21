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

// Package storage defines the persistence contracts of the system and their
// implementations. The pipeline and engine never talk to a concrete backend:
// they hold a StatusStore for job lifecycle records and an ArtifactStore for
// durable output blobs, and the server decides at startup which
// implementations to inject (Postgres or in-memory status; GCS or local-disk
// artifacts).
package storage

import (
	"context"
	"errors"

	"github.com/videolearn/video-insight/internal/core/model"
)

// ErrNotFound is returned when a job or artifact does not exist.
var ErrNotFound = errors.New("not found")

// StatusStore persists job lifecycle records. Upserts are idempotent and
// last-writer-wins per job id, decided by the update's UpdatedAt timestamp:
// a stale update must never overwrite a newer record. Optional fields in an
// update only ever add information to the stored record.
type StatusStore interface {
	// CreateJob registers a submitted job in pending state.
	CreateJob(ctx context.Context, job model.Job) error

	// UpdateStatus applies one status publish for the given job.
	UpdateStatus(ctx context.Context, jobID string, update model.StatusUpdate) error

	// GetJob returns the merged record for one job, or ErrNotFound.
	GetJob(ctx context.Context, jobID string) (*model.JobRecord, error)

	// ListJobs returns all known records, newest submission first.
	ListJobs(ctx context.Context) ([]*model.JobRecord, error)

	// SaveSegments persists the final segments of a completed job, including
	// their descriptor vectors for similarity lookups.
	SaveSegments(ctx context.Context, jobID string, segments []*model.Segment) error

	// GetSegments returns a completed job's segments in time order.
	GetSegments(ctx context.Context, jobID string) ([]*model.Segment, error)
}

// ArtifactStore accepts named byte blobs keyed by job id + suffix and
// returns retrievable references. Implementations must keep names exactly as
// given; the job-id prefix in every name is what keeps concurrent jobs from
// colliding.
type ArtifactStore interface {
	// Put stores a blob under the given name and returns its reference
	// (a URL or path a client can retrieve it by).
	Put(ctx context.Context, name string, contentType string, data []byte) (string, error)

	// PutFile stores an existing local file under the given name.
	PutFile(ctx context.Context, name string, contentType string, localPath string) (string, error)

	// Get retrieves a stored blob by name, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
}
