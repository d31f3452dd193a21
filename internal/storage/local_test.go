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

package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videolearn/video-insight/internal/storage"
)

// TestLocalArtifactRoundTrip writes a blob and reads it back through the
// store and directly from disk.
func TestLocalArtifactRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Put(ctx, "job-1_results.json", "application/json", []byte(`{"ok":true}`))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ref))

	data, err := store.Get(ctx, "job-1_results.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}

// TestLocalArtifactPutFile copies an externally rendered file into the store.
func TestLocalArtifactPutFile(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := storage.NewLocalArtifactStore(root)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.7"), 0o644))

	ref, err := store.PutFile(ctx, "job-1_report.pdf", "application/pdf", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "job-1_report.pdf"), ref)

	data, err := store.Get(ctx, "job-1_report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
}

// TestLocalArtifactMissing verifies ErrNotFound for unknown names.
func TestLocalArtifactMissing(t *testing.T) {
	store, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// TestLocalArtifactRejectsEscapes verifies path traversal names are refused.
func TestLocalArtifactRejectsEscapes(t *testing.T) {
	store, err := storage.NewLocalArtifactStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../evil.txt", "text/plain", []byte("x"))
	assert.Error(t, err)

	_, err = store.Put(context.Background(), "/etc/passwd", "text/plain", []byte("x"))
	assert.Error(t, err)
}
