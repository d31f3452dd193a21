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

package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/videolearn/video-insight/internal/cloud"
	"github.com/videolearn/video-insight/internal/core/cor"
	"github.com/videolearn/video-insight/internal/core/model"
)

// JobSubmitter is the slice of the engine the ingestion path needs.
type JobSubmitter interface {
	Submit(ctx context.Context, job *model.Job) error
}

// IngestNotification turns a Cloud Storage upload notification into an
// analysis job submission. It is the command attached to the Pub/Sub
// listener: a video landing in the watched bucket becomes a queued job with
// the full default pipeline. Non-video objects are acknowledged and skipped
// so sidecar files in the bucket do not poison the subscription.
type IngestNotification struct {
	cor.BaseCommand
	engine JobSubmitter
}

// NewIngestNotification is the constructor for the notification handler.
func NewIngestNotification(engine JobSubmitter) *IngestNotification {
	return &IngestNotification{
		BaseCommand: *cor.NewBaseCommand("ingest-notification"),
		engine:      engine,
	}
}

func (c *IngestNotification) IsExecutable(context cor.Context) bool {
	_, ok := context.Get(cor.CtxIn).(string)
	return ok
}

func (c *IngestNotification) Execute(context cor.Context) {
	payload := context.Get(cor.CtxIn).(string)

	var notification cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(payload), &notification); err != nil {
		context.AddError(c.GetName(), fmt.Errorf("malformed storage notification: %w", err))
		c.CountError(context, err)
		return
	}
	if notification.Bucket == "" || notification.Name == "" {
		context.AddError(c.GetName(), fmt.Errorf("storage notification missing bucket or object name"))
		c.CountError(context, fmt.Errorf("incomplete notification"))
		return
	}
	if !strings.HasPrefix(notification.ContentType, "video/") {
		slog.Info("ignoring non-video object", "bucket", notification.Bucket, "object", notification.Name, "content_type", notification.ContentType)
		c.CountSuccess(context)
		return
	}

	job := &model.Job{
		ID:           uuid.NewString(),
		VideoPath:    fmt.Sprintf("gs://%s/%s", notification.Bucket, notification.Name),
		Capabilities: model.DefaultCapabilities(),
	}
	if err := c.engine.Submit(context.GetContext(), job); err != nil {
		context.AddError(c.GetName(), fmt.Errorf("failed to submit job for %s: %w", job.VideoPath, err))
		c.CountError(context, err)
		return
	}

	slog.Info("uploaded video queued for analysis", "job", job.ID, "video", job.VideoPath)
	context.Add(cor.CtxOut, job)
	c.CountSuccess(context)
}
