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

package main

import (
	"context"
	"log/slog"

	"github.com/videolearn/video-insight/internal/cloud"
	"github.com/videolearn/video-insight/internal/core/workflow"
)

// SetupListeners attaches the ingestion command to every configured Pub/Sub
// subscription and starts receiving. Each watched bucket delivers upload
// notifications to its own subscription; they all feed the same engine.
func SetupListeners(ctx context.Context, cloudClients *cloud.ServiceClients) {
	ingest := workflow.NewIngestNotification(state.engine)
	for name, listener := range cloudClients.PubSubListeners {
		slog.Info("starting ingestion listener", "subscription", name)
		listener.SetCommand(ingest)
		listener.Listen(ctx)
	}
}
