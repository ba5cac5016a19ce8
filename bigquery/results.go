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
	"time"

	bq "google.golang.org/api/bigquery/v2"
)

// QueryResultsRequest describes which rows of a job's results to read.
type QueryResultsRequest struct {
	// Location of the job. If empty, the job's location is used.
	Location string

	// PageToken resumes reading at a page returned by a previous call. Leave
	// it empty when starting to read; it is set on the NextQuery cursors
	// returned in QueryResults.
	PageToken string

	// MaxResults is the page size requested from the server. With
	// automatic pagination it also caps the total number of rows returned.
	MaxResults int64

	// StartIndex is the zero-based index of the first row to read. It is
	// ignored once PageToken is set.
	StartIndex uint64

	// Timeout is how long the server may wait for the job to complete
	// before answering. It is not enforced locally.
	Timeout time.Duration

	// AutoPaginate controls whether QueryResults follows page cursors until
	// the results are exhausted. A nil value means true.
	AutoPaginate *bool

	// MaxAPICalls limits the number of pages fetched with automatic
	// pagination. Zero means no limit.
	MaxAPICalls int
}

func (r *QueryResultsRequest) autoPaginate() bool {
	return r.AutoPaginate == nil || *r.AutoPaginate
}

func (r *QueryResultsRequest) clone() *QueryResultsRequest {
	c := *r
	return &c
}

// QueryResults holds rows read from a job.
type QueryResults struct {
	// Rows in the order the server returned them.
	Rows []*Row

	// Schema of the rows, if the server has reported it.
	Schema Schema

	// NextQuery is the request to issue to continue reading, or nil when
	// there is nothing left to read. It is only set when AutoPaginate is
	// false. If the job was not complete, NextQuery repeats the request
	// that produced these results.
	NextQuery *QueryResultsRequest

	// Response is the last raw response received from the server.
	Response *bq.GetQueryResultsResponse
}

type resultPage struct {
	rows     []*Row
	schema   Schema
	next     *QueryResultsRequest
	response *bq.GetQueryResultsResponse
}

// fetchPage issues exactly one results request and decodes its rows. Errors
// from the service are returned unchanged.
func (j *Job) fetchPage(ctx context.Context, req *QueryResultsRequest) (*resultPage, error) {
	call := req.clone()
	if call.Location == "" {
		call.Location = j.location
	}
	res, err := j.c.service.getQueryResults(ctx, j.projectID, j.jobID, call)
	if err != nil {
		return nil, err
	}

	p := &resultPage{response: res}
	if res.Schema != nil {
		p.schema = bqToSchema(res.Schema)
		if len(res.Rows) > 0 {
			if p.rows, err = convertRows(res.Rows, p.schema); err != nil {
				return nil, err
			}
		}
	}
	switch {
	case !res.JobComplete:
		p.next = req.clone()
	case res.PageToken != "":
		p.next = req.clone()
		p.next.PageToken = res.PageToken
	}
	j.c.logger.DebugContext(ctx, "fetched result page",
		"job_id", j.jobID,
		"job_complete", res.JobComplete,
		"rows", len(p.rows),
		"has_next", p.next != nil)
	return p, nil
}

// QueryResults reads rows of the job's results. The job need not be
// complete.
//
// By default pages are fetched until the results are exhausted, until
// req.MaxAPICalls pages have been fetched, or until req.MaxResults rows have
// been read. If any page fails, only the error is returned.
//
// With req.AutoPaginate set to false, exactly one page is fetched and
// QueryResults.NextQuery tells how to continue.
func (j *Job) QueryResults(ctx context.Context, req *QueryResultsRequest) (*QueryResults, error) {
	if req == nil {
		req = &QueryResultsRequest{}
	}
	if !req.autoPaginate() {
		p, err := j.fetchPage(ctx, req)
		if err != nil {
			return nil, err
		}
		return &QueryResults{
			Rows:      p.rows,
			Schema:    p.schema,
			NextQuery: p.next,
			Response:  p.response,
		}, nil
	}

	out := &QueryResults{}
	next := req
	for calls := 0; next != nil; {
		if req.MaxAPICalls > 0 && calls >= req.MaxAPICalls {
			break
		}
		p, err := j.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		calls++
		out.Rows = append(out.Rows, p.rows...)
		if p.schema != nil {
			out.Schema = p.schema
		}
		out.Response = p.response
		next = p.next
		if req.MaxResults > 0 && int64(len(out.Rows)) >= req.MaxResults {
			out.Rows = out.Rows[:req.MaxResults]
			break
		}
	}
	return out, nil
}
