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
	"iter"

	gaxIterator "github.com/googleapis/gax-go/v2/iterator"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// RowIterator is an iterator over the results of a job. Pages are fetched
// only when the rows already read are used up. A RowIterator cannot be
// restarted; call Job.Read again to read from the start.
type RowIterator struct {
	ctx  context.Context
	j    *Job
	next *QueryResultsRequest

	rows   []*Row
	schema Schema
	err    error

	// TotalRows is the total number of rows in the results, as reported
	// by the most recently fetched page.
	TotalRows uint64
}

// Read returns an iterator over the rows of the job's results. It makes no
// API call until Next is called. req may be nil; its AutoPaginate and
// MaxAPICalls fields are ignored.
//
// While the job is incomplete, Next re-issues the request without pausing;
// set req.Timeout so the server holds each call open instead of returning
// immediately.
func (j *Job) Read(ctx context.Context, req *QueryResultsRequest) *RowIterator {
	next := &QueryResultsRequest{}
	if req != nil {
		next = req.clone()
	}
	next.AutoPaginate = googleapi.Bool(false)
	next.MaxAPICalls = 0
	return &RowIterator{ctx: ctx, j: j, next: next}
}

// All returns an iterator. If an error is returned by the iterator, the
// iterator will stop after that iteration.
func (it *RowIterator) All() iter.Seq2[*Row, error] {
	return gaxIterator.RangeAdapter(it.Next)
}

// Next returns the next row. Its second return value is iterator.Done if
// there are no more rows. Once Next returns an error, every later call
// returns the same error.
func (it *RowIterator) Next() (*Row, error) {
	for len(it.rows) == 0 {
		if it.err != nil {
			return nil, it.err
		}
		if it.next == nil {
			it.err = iterator.Done
			return nil, it.err
		}
		if err := it.fetch(); err != nil {
			it.err = err
			return nil, err
		}
	}
	r := it.rows[0]
	it.rows = it.rows[1:]
	return r, nil
}

// fetch reads the page addressed by the current cursor. A cursor that
// repeats the request because the job was incomplete is simply issued
// again on the next call.
func (it *RowIterator) fetch() error {
	p, err := it.j.fetchPage(it.ctx, it.next)
	if err != nil {
		return err
	}
	it.next = p.next
	it.rows = p.rows
	if p.schema != nil {
		it.schema = p.schema
	}
	it.TotalRows = p.response.TotalRows
	return nil
}

// Schema returns the schema of the rows, as reported by the most recently
// fetched page. It is nil before the first call to Next.
func (it *RowIterator) Schema() Schema {
	return it.schema
}
