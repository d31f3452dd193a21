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

// Package services contains the read-side business logic that sits between
// the HTTP surface and the stores. The AnalysisService answers status and
// result lookups, exposes queue occupancy, runs descriptor similarity
// searches, and exchanges private gs:// artifact references for time-limited
// signed URLs before they reach a client.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	gcs "cloud.google.com/go/storage"

	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/storage"
)

// SignedURLExpiry is how long exchanged artifact URLs stay valid.
const SignedURLExpiry = 15 * time.Minute

// QueueStatsProvider is the slice of the engine the read side needs.
type QueueStatsProvider interface {
	Stats() model.QueueStats
}

// SimilaritySearcher is implemented by status stores that can rank segments
// by descriptor distance. The in-memory store does not; similarity search is
// simply unavailable without the database.
type SimilaritySearcher interface {
	SimilarSegments(ctx context.Context, descriptor []float64, limit int) ([]*model.Segment, error)
}

// ErrSimilarityUnavailable is returned when the configured status store
// cannot run vector searches.
var ErrSimilarityUnavailable = fmt.Errorf("similarity search requires the database-backed store")

// AnalysisService bundles the read-side collaborators.
type AnalysisService struct {
	Status        storage.StatusStore
	Artifacts     storage.ArtifactStore
	Engine        QueueStatsProvider
	StorageClient *gcs.Client
	IAMClient     *credentials.IamCredentialsClient
	SignerEmail   string
}

// GetStatus returns one job's merged record with artifact references
// resolved for client consumption.
func (s *AnalysisService) GetStatus(ctx context.Context, jobID string) (*model.JobRecord, error) {
	rec, err := s.Status.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	s.resolveRecordURLs(ctx, rec)
	return rec, nil
}

// ListJobs returns all job records, newest submission first.
func (s *AnalysisService) ListJobs(ctx context.Context) ([]*model.JobRecord, error) {
	records, err := s.Status.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		s.resolveRecordURLs(ctx, rec)
	}
	return records, nil
}

// GetResult fetches a completed job's results document.
func (s *AnalysisService) GetResult(ctx context.Context, jobID string) ([]byte, error) {
	return s.Artifacts.Get(ctx, fmt.Sprintf("%s_results.json", jobID))
}

// GetSegments returns a completed job's segments with preview references
// resolved.
func (s *AnalysisService) GetSegments(ctx context.Context, jobID string) ([]*model.Segment, error) {
	segments, err := s.Status.GetSegments(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for _, seg := range segments {
		seg.ThumbnailURL = s.resolveRef(ctx, seg.ThumbnailURL)
		seg.PreviewURL = s.resolveRef(ctx, seg.PreviewURL)
	}
	return segments, nil
}

// SimilarSegments finds the stored segments visually closest to the given
// job segment's descriptor.
func (s *AnalysisService) SimilarSegments(ctx context.Context, jobID string, segmentID int, limit int) ([]*model.Segment, error) {
	searcher, ok := s.Status.(SimilaritySearcher)
	if !ok {
		return nil, ErrSimilarityUnavailable
	}
	segments, err := s.Status.GetSegments(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for _, seg := range segments {
		if seg.ID == segmentID {
			if len(seg.Descriptor) == 0 {
				return nil, fmt.Errorf("segment %d of job %s has no stored descriptor", segmentID, jobID)
			}
			return searcher.SimilarSegments(ctx, seg.Descriptor, limit)
		}
	}
	return nil, storage.ErrNotFound
}

// QueueStats reports engine occupancy.
func (s *AnalysisService) QueueStats() model.QueueStats {
	return s.Engine.Stats()
}

// resolveRecordURLs exchanges every artifact reference on a record.
func (s *AnalysisService) resolveRecordURLs(ctx context.Context, rec *model.JobRecord) {
	rec.ResultsURL = s.resolveRef(ctx, rec.ResultsURL)
	rec.SubtitleURL = s.resolveRef(ctx, rec.SubtitleURL)
	rec.ScriptURL = s.resolveRef(ctx, rec.ScriptURL)
	rec.ReportURL = s.resolveRef(ctx, rec.ReportURL)
}

// resolveRef turns a gs:// reference into a signed URL when signing is
// configured. Local file paths and already-public URLs pass through, and a
// signing failure falls back to the raw reference rather than hiding the
// artifact entirely.
func (s *AnalysisService) resolveRef(ctx context.Context, ref string) string {
	if ref == "" || !strings.HasPrefix(ref, "gs://") {
		return ref
	}
	signed, err := s.GenerateSignedURL(ctx, ref, SignedURLExpiry)
	if err != nil {
		return ref
	}
	return signed
}

// GenerateSignedURL creates a time-limited GET URL for one private object.
// Signing goes through the IAM Credentials API rather than a local key file,
// so the only requirement on the host is that its identity can impersonate
// the signer service account.
func (s *AnalysisService) GenerateSignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error) {
	if s.StorageClient == nil || s.IAMClient == nil || s.SignerEmail == "" {
		return "", fmt.Errorf("signed URLs are not configured")
	}
	path, found := strings.CutPrefix(gcsURI, "gs://")
	if !found {
		return "", fmt.Errorf("invalid GCS URI format: %s", gcsURI)
	}
	bucketName, objectName, found := strings.Cut(path, "/")
	if !found {
		return "", fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", gcsURI)
	}

	opts := &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			resp, err := s.IAMClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}

	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucketName, objectName, err)
	}
	return u, nil
}
