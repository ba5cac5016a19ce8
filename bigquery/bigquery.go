// Copyright 2026 Google LLC
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

package bigquery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chingor13/bqjob/internal"
	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"
)

const (
	// Scope is the Oauth2 scope for the service.
	// For relevant BigQuery scopes, see:
	// https://developers.google.com/identity/protocols/googlescopes#bigqueryv2
	Scope           = "https://www.googleapis.com/auth/bigquery"
	userAgentPrefix = "bqjob-go"
)

// Client may be used to inspect BigQuery jobs and read their results.
type Client struct {
	// Location, if set, is used as the default location of jobs obtained
	// with JobFromID. A location given to JobFromIDLocation overrides it.
	Location string

	projectID string
	service   service
	logger    *slog.Logger

	// ctx bounds background polling for every job of the client.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient constructs a new Client for jobs that belong to projectID.
// In addition to the options of google.golang.org/api/option, it accepts
// WithLogger, WithRetryBackoff and WithMaxRetries.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("bigquery: project ID is required")
	}
	o := []option.ClientOption{
		option.WithScopes(Scope),
		option.WithUserAgent(fmt.Sprintf("%s/%s", userAgentPrefix, internal.Version)),
	}
	o = append(o, opts...)
	bqs, err := bq.NewService(ctx, o...)
	if err != nil {
		return nil, fmt.Errorf("bigquery: constructing client: %w", err)
	}

	cc := newCustomClientConfig(opts...)
	rc := defaultRetryConfig()
	if cc.backoff != nil {
		rc.backoff = *cc.backoff
	}
	rc.maxRetries = cc.maxRetries

	return newClient(projectID, &bigqueryService{s: bqs, retry: rc}, cc.logger), nil
}

func newClient(projectID string, s service, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		projectID: projectID,
		service:   s,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Project returns the project ID for this instance of the client.
func (c *Client) Project() string {
	return c.projectID
}

// Close stops background polling for all jobs of the client. Pending
// subscriptions complete with a context.Canceled error. Close should be
// called when the client is no longer needed.
func (c *Client) Close() error {
	c.cancel()
	return nil
}

// JobFromID creates a Job which refers to an existing BigQuery job. The job
// need not have been created by this package. No API call is made.
//
// The job is assumed to be in the client's default location, if any.
func (c *Client) JobFromID(id string) *Job {
	return c.JobFromIDLocation(id, c.Location)
}

// JobFromIDLocation is like JobFromID but for a job in the given location.
func (c *Client) JobFromIDLocation(id, location string) *Job {
	return newJob(c, c.projectID, id, location)
}

// JobFromProject is like JobFromIDLocation but for a job that belongs to
// another project than the client's.
func (c *Client) JobFromProject(projectID, id, location string) *Job {
	if projectID == "" {
		projectID = c.projectID
	}
	return newJob(c, projectID, id, location)
}
