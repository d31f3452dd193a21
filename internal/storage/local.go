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
	"path/filepath"
	"strings"
)

// LocalArtifactStore keeps artifacts on the local filesystem under a single
// root directory. It is the single-node deployment mode and the mode the
// test suite uses. References are absolute file paths.
type LocalArtifactStore struct {
	root string
}

// NewLocalArtifactStore creates the root directory when needed.
func NewLocalArtifactStore(root string) (*LocalArtifactStore, error) {
	if root == "" {
		return nil, errors.New("artifact root directory not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &LocalArtifactStore{root: root}, nil
}

// safePath rejects names that would escape the artifact root.
func (s *LocalArtifactStore) safePath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid artifact name: %s", name)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Put writes the blob and returns its absolute path as the reference.
func (s *LocalArtifactStore) Put(_ context.Context, name string, _ string, data []byte) (string, error) {
	path, err := s.safePath(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return path, nil
}

// PutFile copies an existing local file into the store. A file already at
// its destination path is accepted as-is, which lets pipeline commands
// render directly into the artifact directory.
func (s *LocalArtifactStore) PutFile(_ context.Context, name string, _ string, localPath string) (string, error) {
	path, err := s.safePath(name)
	if err != nil {
		return "", err
	}
	if sameFile(path, localPath) {
		return path, nil
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact source %s: %w", localPath, err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy artifact %s: %w", name, err)
	}
	return path, nil
}

// Get reads a stored blob by name.
func (s *LocalArtifactStore) Get(_ context.Context, name string) ([]byte, error) {
	path, err := s.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func sameFile(a, b string) bool {
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(ai, bi)
}
