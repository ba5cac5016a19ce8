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
	"log/slog"

	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/option/internaloption"
)

type customClientConfig struct {
	logger *slog.Logger

	backoff *gax.Backoff

	// maxRetries limits consecutive retryable failures of a single API
	// call. Zero retries until the context is done.
	maxRetries int
}

type customClientOption interface {
	option.ClientOption
	ApplyCustomClientOpt(*customClientConfig)
}

func newCustomClientConfig(opts ...option.ClientOption) *customClientConfig {
	conf := &customClientConfig{}
	for _, opt := range opts {
		if cOpt, ok := opt.(customClientOption); ok {
			cOpt.ApplyCustomClientOpt(conf)
		}
	}
	return conf
}

// WithLogger sets the logger used for job polling and result paging. Records
// are emitted at debug level. By default nothing is logged.
func WithLogger(l *slog.Logger) option.ClientOption {
	return &applierLogger{logger: l}
}

type applierLogger struct {
	internaloption.EmbeddableAdapter
	logger *slog.Logger
}

func (s *applierLogger) ApplyCustomClientOpt(c *customClientConfig) {
	c.logger = s.logger
}

// WithRetryBackoff overrides the backoff used when an individual API call
// fails with a retryable error.
func WithRetryBackoff(bo gax.Backoff) option.ClientOption {
	return &applierBackoff{backoff: bo}
}

type applierBackoff struct {
	internaloption.EmbeddableAdapter
	backoff gax.Backoff
}

func (s *applierBackoff) ApplyCustomClientOpt(c *customClientConfig) {
	c.backoff = &s.backoff
}

// WithMaxRetries caps the number of consecutive retryable failures of a
// single API call. When set to 0 (default), retries continue until the
// context is done.
func WithMaxRetries(maxRetries int) option.ClientOption {
	return &applierMaxRetries{maxRetries: maxRetries}
}

type applierMaxRetries struct {
	internaloption.EmbeddableAdapter
	maxRetries int
}

func (s *applierMaxRetries) ApplyCustomClientOpt(c *customClientConfig) {
	c.maxRetries = s.maxRetries
}
