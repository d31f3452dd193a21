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
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
)

// stagedFilePrefix names the temp files this command downloads.
const stagedFilePrefix = "video-insight-source-"

// GetSourcePathParameterName is the context key for the originally submitted
// source path, recorded before any staging rewrites the job's video path.
func GetSourcePathParameterName() string {
	return "__SOURCE_PATH__"
}

// SourceStager makes the job's video available as a local file and admits it
// into the pipeline. A gs:// source is streamed down to a tracked temp file;
// a local source is used in place. Either way the file's magic bytes must
// identify a video container, so a mislabeled upload fails here with a clear
// error instead of as an opaque decoder failure three stages later.
type SourceStager struct {
	cor.BaseCommand
	client *storage.Client
}

// NewSourceStager is the constructor for the SourceStager command. The
// storage client may be nil when the deployment only accepts local paths.
func NewSourceStager(name string, client *storage.Client) *SourceStager {
	return &SourceStager{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// Execute stages and admits the source file, then rewrites the job's video
// path to the local copy.
func (c *SourceStager) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	context.Add(GetSourcePathParameterName(), job.VideoPath)

	localPath := job.VideoPath
	if bucket, object, ok := splitGCSPath(job.VideoPath); ok {
		if c.client == nil {
			c.CountError(context, fmt.Errorf("gs:// source %s submitted but no storage client configured", job.VideoPath))
			return
		}
		staged, err := c.download(context, bucket, object)
		if err != nil {
			c.CountError(context, err)
			return
		}
		context.AddTempFile(staged)
		localPath = staged
	}

	if err := admitVideo(localPath); err != nil {
		c.CountError(context, err)
		return
	}

	job.VideoPath = localPath
	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

// download streams one GCS object into a local temp file.
func (c *SourceStager) download(context cor.Context, bucket, object string) (string, error) {
	reader, err := c.client.Bucket(bucket).Object(object).NewReader(context.GetContext())
	if err != nil {
		return "", fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close storage reader", "error", err)
		}
	}()

	tempFile, err := os.CreateTemp("", stagedFilePrefix)
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w", err)
	}
	written, err := io.Copy(tempFile, reader)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to stage gs://%s/%s after %d bytes: %w", bucket, object, written, err)
	}

	slog.Info("source staged", "bucket", bucket, "object", object, "bytes", written, "path", tempFile.Name())
	return tempFile.Name(), nil
}

// admitVideo sniffs the file's magic bytes and rejects anything that is not
// a recognized video container.
func admitVideo(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", path, err)
	}
	defer file.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(file, head)
	if err != nil && n == 0 {
		return fmt.Errorf("failed to read source %s: %w", path, err)
	}
	if !filetype.IsVideo(head[:n]) {
		kind, _ := filetype.Match(head[:n])
		return fmt.Errorf("source %s is not a video file (detected %q)", path, kind.MIME.Value)
	}
	return nil
}

// splitGCSPath parses a gs://bucket/object path.
func splitGCSPath(path string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(path, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
