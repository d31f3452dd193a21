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
	"sort"
	"sync"

	"github.com/videolearn/video-insight/internal/core/model"
)

// MemoryStatusStore is the in-process StatusStore used when no database DSN
// is configured, and by the test suite. Records do not survive a restart.
type MemoryStatusStore struct {
	mu       sync.RWMutex
	records  map[string]*model.JobRecord
	segments map[string][]*model.Segment
}

// NewMemoryStatusStore returns an empty in-memory store.
func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{
		records:  make(map[string]*model.JobRecord),
		segments: make(map[string][]*model.Segment),
	}
}

// CreateJob registers a submitted job in pending state. Re-creating an
// existing job id resets its record, matching upsert semantics.
func (s *MemoryStatusStore) CreateJob(_ context.Context, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[job.ID] = &model.JobRecord{
		Job:       job,
		Status:    model.JobStatusPending,
		UpdatedAt: job.SubmittedAt,
	}
	return nil
}

// UpdateStatus merges one status publish into the stored record. Updates
// older than the stored record are dropped (last-writer-wins); optional
// fields only overwrite when set.
func (s *MemoryStatusStore) UpdateStatus(_ context.Context, jobID string, update model.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[jobID]
	if !ok {
		return ErrNotFound
	}
	if update.UpdatedAt.Before(rec.UpdatedAt) {
		return nil
	}
	// Terminal states permit no further transitions; a late running update
	// must not resurrect a finished job.
	if rec.Status.Terminal() && !update.Status.Terminal() {
		return nil
	}

	rec.Status = update.Status
	rec.Progress = update.Progress
	rec.UpdatedAt = update.UpdatedAt
	if update.Message != "" {
		rec.Message = update.Message
	}
	if update.ErrorMessage != "" {
		rec.ErrorMessage = update.ErrorMessage
	}
	if update.StartedAt != nil {
		rec.StartedAt = update.StartedAt
	}
	if update.CompletedAt != nil {
		rec.CompletedAt = update.CompletedAt
	}
	if update.ResultsURL != "" {
		rec.ResultsURL = update.ResultsURL
	}
	if update.SubtitleURL != "" {
		rec.SubtitleURL = update.SubtitleURL
	}
	if update.ScriptURL != "" {
		rec.ScriptURL = update.ScriptURL
	}
	if update.ReportURL != "" {
		rec.ReportURL = update.ReportURL
	}
	return nil
}

// GetJob returns a copy of the merged record for one job.
func (s *MemoryStatusStore) GetJob(_ context.Context, jobID string) (*model.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	return &out, nil
}

// ListJobs returns all records, newest submission first.
func (s *MemoryStatusStore) ListJobs(_ context.Context) ([]*model.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.JobRecord, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Job.SubmittedAt.After(out[j].Job.SubmittedAt)
	})
	return out, nil
}

// SaveSegments stores the final segments for a completed job.
func (s *MemoryStatusStore) SaveSegments(_ context.Context, jobID string, segments []*model.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments[jobID] = segments
	return nil
}

// GetSegments returns a job's stored segments in time order.
func (s *MemoryStatusStore) GetSegments(_ context.Context, jobID string) ([]*model.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	segs, ok := s.segments[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return segs, nil
}
