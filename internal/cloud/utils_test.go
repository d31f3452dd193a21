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

package cloud_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/assert"

	"github.com/videolearn/video-insight/internal/cloud"
)

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// TestLoadConfigHierarchy verifies the overlay file wins over the base file
// while untouched base values survive.
func TestLoadConfigHierarchy(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".env.toml", `
[application]
name = "base-name"
thread_pool_size = 8

[engine]
max_concurrent_jobs = 4
`)
	writeConfigFile(t, dir, ".env.test.toml", `
[application]
name = "overlay-name"
`)

	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "test")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	assert.Equal(t, "overlay-name", config.Application.Name)
	assert.Equal(t, 8, config.Application.ThreadPoolSize)
	assert.Equal(t, 4, config.Engine.MaxConcurrentJobs)
}

// TestLoadConfigDefaults verifies missing files leave the constructor
// defaults intact.
func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "test")

	config := cloud.NewConfig()
	cloud.LoadConfig(&config)

	assert.Equal(t, cloud.DefaultMaxConcurrentJobs, config.Engine.MaxConcurrentJobs)
	assert.Equal(t, cloud.DefaultPollIntervalMillis, config.Engine.PollIntervalMillis)
	assert.Equal(t, cloud.DefaultThreadPoolSize, config.Application.ThreadPoolSize)
}
