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
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
)

// GCSArtifactStore keeps artifacts in a Cloud Storage bucket. References are
// gs:// URIs; the read-side service exchanges them for signed URLs before
// handing them to clients.
type GCSArtifactStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSArtifactStore wraps an existing storage client for one bucket.
func NewGCSArtifactStore(client *gcs.Client, bucket string) *GCSArtifactStore {
	return &GCSArtifactStore{client: client, bucket: bucket}
}

func (s *GCSArtifactStore) uri(name string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, name)
}

// Put streams the blob to the bucket. The writer must be closed for the
// object to materialize, so close errors are upload errors.
func (s *GCSArtifactStore) Put(ctx context.Context, name string, contentType string, data []byte) (string, error) {
	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize artifact %s: %w", name, err)
	}
	return s.uri(name), nil
}

// PutFile streams a local file to the bucket without loading it into memory.
func (s *GCSArtifactStore) PutFile(ctx context.Context, name string, contentType string, localPath string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact source %s: %w", localPath, err)
	}
	defer src.Close()

	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := io.Copy(writer, src); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to upload artifact %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize artifact %s: %w", name, err)
	}
	return s.uri(name), nil
}

// Get reads a stored blob by name.
func (s *GCSArtifactStore) Get(ctx context.Context, name string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", name, err)
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
