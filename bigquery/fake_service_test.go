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
	"sync"
	"testing"
	"time"

	bq "google.golang.org/api/bigquery/v2"
)

// jobsFake serves job metadata and result pages from memory.
type jobsFake struct {
	service

	mu sync.Mutex

	// statuses are returned by successive getJob calls; the last one
	// repeats.
	statuses []*bq.Job
	getErr   error
	getCalls int

	// pages are returned by successive getQueryResults calls. A non-nil
	// entry in pageErrs at the same index fails that call instead.
	pages       []*bq.GetQueryResultsResponse
	pageErrs    map[int]error
	resultsReqs []QueryResultsRequest

	canceled []string
}

func (f *jobsFake) getJob(_ context.Context, projectID, jobID, location string) (*bq.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if len(f.statuses) == 0 {
		return nil, fmt.Errorf("no status for job %s", jobID)
	}
	i := f.getCalls - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func (f *jobsFake) getQueryResults(_ context.Context, projectID, jobID string, req *QueryResultsRequest) (*bq.GetQueryResultsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.resultsReqs)
	f.resultsReqs = append(f.resultsReqs, *req)
	if err := f.pageErrs[i]; err != nil {
		return nil, err
	}
	if i >= len(f.pages) {
		return nil, fmt.Errorf("unexpected results call %d", i)
	}
	return f.pages[i], nil
}

func (f *jobsFake) cancelJob(_ context.Context, projectID, jobID, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, fmt.Sprintf("%s/%s/%s", projectID, jobID, location))
	return nil
}

func (f *jobsFake) numGetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

func (f *jobsFake) requests() []QueryResultsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]QueryResultsRequest(nil), f.resultsReqs...)
}

func newTestClient(t *testing.T, s service) *Client {
	t.Helper()
	c := newClient("p", s, nil)
	t.Cleanup(func() { c.Close() })
	return c
}

func setPollInterval(t *testing.T, d time.Duration) {
	t.Helper()
	old := pollInterval
	pollInterval = d
	t.Cleanup(func() { pollInterval = old })
}

func jobWithState(state string) *bq.Job {
	return &bq.Job{Status: &bq.JobStatus{State: state}}
}

var intSchema = &bq.TableSchema{
	Fields: []*bq.TableFieldSchema{{Name: "n", Type: "INTEGER"}},
}

// intPage returns a complete page of count rows numbered from start.
func intPage(start, count int, token string) *bq.GetQueryResultsResponse {
	res := &bq.GetQueryResultsResponse{
		JobComplete: true,
		Schema:      intSchema,
		PageToken:   token,
	}
	for i := start; i < start+count; i++ {
		res.Rows = append(res.Rows, &bq.TableRow{F: []*bq.TableCell{{V: fmt.Sprint(i)}}})
	}
	return res
}

func rowInts(t *testing.T, rows []*Row) []int64 {
	t.Helper()
	var out []int64
	for _, r := range rows {
		v, ok := r.Get("n")
		if !ok {
			t.Fatalf("row %v has no column n", r.Values())
		}
		out = append(out, v.(int64))
	}
	return out
}
