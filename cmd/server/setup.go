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
	"log"
	"os"

	"github.com/videolearn/video-insight/internal/cloud"
	"github.com/videolearn/video-insight/internal/core/services"
	"github.com/videolearn/video-insight/internal/core/workflow"
	"github.com/videolearn/video-insight/internal/engine"
	"github.com/videolearn/video-insight/internal/media"
	"github.com/videolearn/video-insight/internal/storage"
	"github.com/videolearn/video-insight/internal/transcribe"
)

// StateManager holds the shared dependencies of the server process: the
// configuration, the external service clients, the stores, the task engine
// and the read-side service. Building it once at startup keeps dependency
// management in one place instead of scattered globals.
type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	status    storage.StatusStore
	artifacts storage.ArtifactStore
	engine    *engine.Engine
	analysis  *services.AnalysisService
}

var state = &StateManager{}

// SetupOS points the configuration loader at the configs directory and the
// local runtime overlay.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig loads the TOML configuration once and caches it on the state.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to set up configuration environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState builds the full server dependency graph: cloud clients, the
// status and artifact stores, the analysis pipeline, the task engine and the
// Pub/Sub ingestion listeners. The engine is started here; the caller owns
// stopping it on shutdown.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		log.Fatalf("failed to initialize cloud clients: %v\n", err)
	}
	state.cloud = cloudClients

	// Durable status store when a DSN is configured, in-memory otherwise.
	if cloudClients.DBPool != nil {
		pgStore := storage.NewPostgresStatusStore(cloudClients.DBPool)
		if err := pgStore.InitSchema(ctx); err != nil {
			log.Fatalf("failed to initialize database schema: %v\n", err)
		}
		state.status = pgStore
	} else {
		state.status = storage.NewMemoryStatusStore()
	}

	if config.Storage.Bucket != "" {
		state.artifacts = storage.NewGCSArtifactStore(cloudClients.StorageClient, config.Storage.Bucket)
	} else {
		local, err := storage.NewLocalArtifactStore(config.Storage.LocalDir)
		if err != nil {
			log.Fatalf("failed to initialize local artifact store: %v\n", err)
		}
		state.artifacts = local
	}

	executor, err := media.NewExecutor(config.Media.FFmpegPath, config.Media.FFprobePath)
	if err != nil {
		log.Fatalf("failed to locate media binaries: %v\n", err)
	}
	runner := transcribe.NewRunner(
		config.Transcription.BinaryPath,
		config.Transcription.Model,
		config.Transcription.Language,
	)

	pipeline := workflow.NewAnalysisWorkflow(
		config,
		executor,
		runner,
		state.artifacts,
		state.status,
		cloudClients.StorageClient,
		cloudClients.BigQueryClient,
	)

	state.engine = engine.NewEngine(config, pipeline, state.status)
	state.engine.Start(ctx)

	state.analysis = &services.AnalysisService{
		Status:        state.status,
		Artifacts:     state.artifacts,
		Engine:        state.engine,
		StorageClient: cloudClients.StorageClient,
		IAMClient:     cloudClients.IAMClient,
		SignerEmail:   config.Application.SignerServiceAccountEmail,
	}

	SetupListeners(ctx, cloudClients)
}
