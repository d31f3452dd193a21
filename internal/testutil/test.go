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

// Package testutil provides shared helpers and fixtures for the test suite:
// test configuration loading and canned Pub/Sub notification payloads for
// the ingestion path.
package testutil

import (
	"log"
	"os"

	"github.com/videolearn/video-insight/internal/cloud"
)

var cachedConfig *cloud.Config

// SetupOS points the configuration loader at the test overlay, so tests pick
// up ".env.test.toml" without further setup.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig loads the test configuration once and caches it for the rest of
// the test run.
func GetConfig() *cloud.Config {
	if cachedConfig == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to set up test environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		cachedConfig = config
	}
	return cachedConfig
}

// VideoUploadNotification returns the JSON payload of a Cloud Storage
// notification for a video landing in the ingest bucket, as Pub/Sub
// delivers it.
func VideoUploadNotification() string {
	return `{
  "kind": "storage#object",
  "id": "insight-ingest/talks/demo-keynote.mp4/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/insight-ingest/o/talks%2Fdemo-keynote.mp4",
  "name": "talks/demo-keynote.mp4",
  "bucket": "insight-ingest",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2026-08-20T03:04:08.672Z",
  "updated": "2026-08-20T03:04:08.672Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2026-08-20T03:04:08.672Z",
  "size": "259348037",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/insight-ingest/o/talks%2Fdemo-keynote.mp4?generation=1728615848664286&alt=media",
  "metadata": {},
  "crc32c": "IYeSTw==",
  "etag": "CN658+yrhYkDEAE="
}`
}

// SidecarUploadNotification returns a notification for a non-video object,
// used to exercise the ingestion filter.
func SidecarUploadNotification() string {
	return `{
  "kind": "storage#object",
  "id": "insight-ingest/talks/demo-keynote.srt/1728615848664287",
  "name": "talks/demo-keynote.srt",
  "bucket": "insight-ingest",
  "contentType": "application/x-subrip",
  "size": "20481"
}`
}
