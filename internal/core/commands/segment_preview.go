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
	"log/slog"
	"path/filepath"

	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/storage"
)

// SegmentPreview renders the per-segment browse artifacts: a thumbnail JPEG
// of the representative frame and a short looping GIF of the segment's
// opening seconds. Previews are best-effort: a render or upload failure is
// logged and the segment simply ships without that artifact, never failing
// the job.
type SegmentPreview struct {
	cor.BaseCommand
	media     *media.Executor
	artifacts storage.ArtifactStore
	workDir   string
}

// NewSegmentPreview is the constructor for the SegmentPreview command.
func NewSegmentPreview(name string, executor *media.Executor, artifacts storage.ArtifactStore, workDir string) *SegmentPreview {
	return &SegmentPreview{BaseCommand: *cor.NewBaseCommand(name), media: executor, artifacts: artifacts, workDir: workDir}
}

// IsExecutable additionally requires the segment slice.
func (c *SegmentPreview) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(GetSegmentsParameterName()) != nil
}

// Execute renders and uploads both previews for every segment.
func (c *SegmentPreview) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.Job)
	segments := context.Get(GetSegmentsParameterName()).([]*model.Segment)

	for _, seg := range segments {
		c.renderThumbnail(context, job, seg)
		c.renderGif(context, job, seg)
	}

	context.Add(c.GetOutputParam(), job)
	c.CountSuccess(context)
}

func (c *SegmentPreview) renderThumbnail(context cor.Context, job *model.Job, seg *model.Segment) {
	name := fmt.Sprintf("%s_segment_%d_thumbnail.jpg", job.ID, seg.ID)
	local := filepath.Join(c.workDir, name)
	midpoint := (seg.StartTime + seg.EndTime) / 2

	if err := c.media.WriteThumbnail(context.GetContext(), job.VideoPath, midpoint, local); err != nil {
		slog.Warn("thumbnail render failed", "job", job.ID, "segment", seg.ID, "error", err)
		return
	}
	context.AddTempFile(local)

	ref, err := c.artifacts.PutFile(context.GetContext(), name, "image/jpeg", local)
	if err != nil {
		slog.Warn("thumbnail upload failed", "job", job.ID, "segment", seg.ID, "error", err)
		return
	}
	seg.ThumbnailURL = ref
}

func (c *SegmentPreview) renderGif(context cor.Context, job *model.Job, seg *model.Segment) {
	name := fmt.Sprintf("%s_segment_%d.gif", job.ID, seg.ID)
	local := filepath.Join(c.workDir, name)

	if err := c.media.WritePreviewGif(context.GetContext(), job.VideoPath, seg.StartTime, seg.EndTime, local); err != nil {
		slog.Warn("preview gif render failed", "job", job.ID, "segment", seg.ID, "error", err)
		return
	}
	context.AddTempFile(local)

	ref, err := c.artifacts.PutFile(context.GetContext(), name, "image/gif", local)
	if err != nil {
		slog.Warn("preview gif upload failed", "job", job.ID, "segment", seg.ID, "error", err)
		return
	}
	seg.PreviewURL = ref
}
