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

// Package cloud holds the application configuration model and the clients for
// the managed services the server talks to: Cloud Storage for artifacts,
// Pub/Sub for ingestion notifications, BigQuery for the analytics sink, IAM
// credentials for URL signing, and Postgres for the durable status store.
//
// Configuration is loaded from TOML files hierarchically: a base file plus an
// environment-specific override selected by environment variables.
package cloud

// Engine configures the bounded-concurrency analysis engine.
type Engine struct {
	MaxConcurrentJobs  int `toml:"max_concurrent_jobs"`  // Slots for simultaneously running jobs.
	PollIntervalMillis int `toml:"poll_interval_millis"` // Supervisor scheduling/poll tick.
}

// Media configures the external media binaries and the analysis working area.
type Media struct {
	FFmpegPath  string `toml:"ffmpeg_path"`  // Explicit ffmpeg path; empty means look up on PATH.
	FFprobePath string `toml:"ffprobe_path"` // Explicit ffprobe path; empty means look up on PATH.
	WorkDir     string `toml:"work_dir"`     // Directory for temp audio and staged artifacts.
}

// Transcription configures the optional speech-to-text engine.
type Transcription struct {
	BinaryPath string `toml:"binary_path"` // whisper-compatible CLI; empty means "whisper" on PATH.
	Model      string `toml:"model"`       // Model name passed to the CLI (e.g. "base").
	Language   string `toml:"language"`    // Optional language hint; empty lets the engine detect.
}

// Report configures the PDF renderer. The font must cover the scripts the
// transcripts are expected to contain; the renderer refuses to fall back to a
// Latin-only core font when a font file is configured but unreadable.
type Report struct {
	FontPath string `toml:"font_path"` // Path to a Unicode-capable TTF file.
	FontName string `toml:"font_name"` // Family name to register the font under.
}

// Storage configures where durable artifacts live. When Bucket is set the
// GCS artifact store is used and LocalDir only stages files during a run;
// with an empty Bucket artifacts stay on the local disk under LocalDir.
type Storage struct {
	Bucket   string `toml:"artifact_bucket"` // GCS bucket for durable artifacts.
	LocalDir string `toml:"local_dir"`       // Local artifact directory (and staging area).
}

// Database configures the durable status store. An empty DSN selects the
// in-memory store, which is the mode the test suite runs in.
type Database struct {
	DSN string `toml:"dsn"` // Postgres connection string.
}

// BigQueryDataSource configures the analytics sink for completed results.
type BigQueryDataSource struct {
	DatasetName   string `toml:"dataset"`        // BigQuery dataset name.
	SegmentsTable string `toml:"segments_table"` // Table receiving one row per analyzed segment.
	JobsTable     string `toml:"jobs_table"`     // Table receiving one row per completed job.
}

// TopicSubscription configures one Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // Subscription name.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // Dead-letter topic for poisoned messages.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Ack deadline extension window.
}

// Config is the root configuration for the application, loaded from TOML.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Workers for per-segment frame analysis.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account for signing artifact URLs.
	} `toml:"application"`
	Engine             Engine                       `toml:"engine"`
	Media              Media                        `toml:"media"`
	Transcription      Transcription                `toml:"transcription"`
	Report             Report                       `toml:"report"`
	Storage            Storage                      `toml:"storage"`
	Database           Database                     `toml:"database"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
}

// Defaults applied when the TOML files leave a knob unset.
const (
	DefaultMaxConcurrentJobs  = 2
	DefaultPollIntervalMillis = 500
	DefaultThreadPoolSize     = 4
)

// NewConfig creates an initialized Config. Map fields must be non-nil before
// the TOML decoder populates them.
func NewConfig() *Config {
	cfg := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	cfg.Engine.MaxConcurrentJobs = DefaultMaxConcurrentJobs
	cfg.Engine.PollIntervalMillis = DefaultPollIntervalMillis
	cfg.Application.ThreadPoolSize = DefaultThreadPoolSize
	return cfg
}
