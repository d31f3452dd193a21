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

package cloud

import (
	"context"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ServiceClients is the container for every client that talks to an external
// service. It is built once at startup and passed where needed, which keeps
// connection management in one place and makes the handlers and workflows
// trivially testable with a partially filled struct.
type ServiceClients struct {
	StorageClient   *storage.Client                   // Cloud Storage, for durable artifacts.
	PubsubClient    *pubsub.Client                    // Pub/Sub, for ingestion notifications.
	BigQueryClient  *bigquery.Client                  // BigQuery, for the analytics sink.
	IAMClient       *credentials.IamCredentialsClient // IAM credentials, for signing artifact URLs.
	DBPool          *pgxpool.Pool                     // Postgres pool for the durable status store; nil in memory mode.
	PubSubListeners map[string]*PubSubListener        // Active listeners keyed by the logical name from config.
}

// Close releases all client connections. Useful for tests and controlled
// shutdowns; in the server the root context teardown covers the same ground.
func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
	if c.DBPool != nil {
		c.DBPool.Close()
	}
}

// NewCloudServiceClients initializes every external client the server needs,
// based on the loaded configuration. Listener commands are attached later,
// once the workflows exist.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	ic, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return nil, err
	}

	// The Postgres pool is optional: an empty DSN selects the in-memory
	// status store and is the normal mode for tests and single-node runs.
	var pool *pgxpool.Pool
	if config.Database.DSN != "" {
		pool, err = pgxpool.New(ctx, config.Database.DSN)
		if err != nil {
			return nil, err
		}
	}

	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}

	return &ServiceClients{
		StorageClient:   sc,
		PubsubClient:    pc,
		BigQueryClient:  bc,
		IAMClient:       ic,
		DBPool:          pool,
		PubSubListeners: subscriptions,
	}, nil
}
