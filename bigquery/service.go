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
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/chingor13/bqjob/internal"
	"github.com/chingor13/bqjob/internal/trace"
	bq "google.golang.org/api/bigquery/v2"
)

// service isolates the generated BigQuery API: it is the metadata, results
// and cancel collaborator of the job lifecycle. The single implementation,
// *bigqueryService, owns transport concerns such as retries.
type service interface {
	getJob(ctx context.Context, projectID, jobID, location string) (*bq.Job, error)
	getQueryResults(ctx context.Context, projectID, jobID string, req *QueryResultsRequest) (*bq.GetQueryResultsResponse, error)
	cancelJob(ctx context.Context, projectID, jobID, location string) error
}

var xGoogHeader = fmt.Sprintf("gl-go/%s gccl/%s", strings.TrimPrefix(runtime.Version(), "go"), internal.Version)

func setClientHeader(headers http.Header) {
	headers.Set("x-goog-api-client", xGoogHeader)
}

type bigqueryService struct {
	s     *bq.Service
	retry *retryConfig
}

func (s *bigqueryService) getJob(ctx context.Context, projectID, jobID, location string) (job *bq.Job, err error) {
	ctx = trace.StartSpan(ctx, "bigquery.jobs.get", projectID, jobID)
	defer func() { trace.EndSpan(ctx, err) }()

	call := s.s.Jobs.Get(projectID, jobID).Context(ctx)
	if location != "" {
		call = call.Location(location)
	}
	setClientHeader(call.Header())
	err = runWithRetry(ctx, s.retry, func() (err error) {
		job, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *bigqueryService) getQueryResults(ctx context.Context, projectID, jobID string, req *QueryResultsRequest) (res *bq.GetQueryResultsResponse, err error) {
	ctx = trace.StartSpan(ctx, "bigquery.jobs.getQueryResults", projectID, jobID)
	defer func() { trace.EndSpan(ctx, err) }()

	call := s.s.Jobs.GetQueryResults(projectID, jobID).
		Context(ctx).
		FormatOptionsUseInt64Timestamp(true)
	if req.Location != "" {
		call = call.Location(req.Location)
	}
	// startIndex only positions the first page; later pages are addressed
	// by token.
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	} else if req.StartIndex > 0 {
		call = call.StartIndex(req.StartIndex)
	}
	if req.MaxResults > 0 {
		call = call.MaxResults(req.MaxResults)
	}
	if req.Timeout > 0 {
		call = call.TimeoutMs(int64(req.Timeout / time.Millisecond))
	}
	setClientHeader(call.Header())
	err = runWithRetry(ctx, s.retry, func() (err error) {
		res, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *bigqueryService) cancelJob(ctx context.Context, projectID, jobID, location string) (err error) {
	ctx = trace.StartSpan(ctx, "bigquery.jobs.cancel", projectID, jobID)
	defer func() { trace.EndSpan(ctx, err) }()

	// The returned job only reflects that cancellation was requested; the
	// outcome is observed by polling.
	call := s.s.Jobs.Cancel(projectID, jobID).
		Fields(). // We don't need any of the response data.
		Context(ctx)
	if location != "" {
		call = call.Location(location)
	}
	setClientHeader(call.Header())
	return runWithRetry(ctx, s.retry, func() error {
		_, err := call.Do()
		return err
	})
}
