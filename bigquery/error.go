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
	"fmt"
	"strings"

	bq "google.golang.org/api/bigquery/v2"
)

// An Error contains detailed information about a failed bigquery operation.
// Detailed description of possible Reasons can be found here:
// https://cloud.google.com/bigquery/troubleshooting-errors.
type Error struct {
	// Mirrors bq.ErrorProto, but drops DebugInfo
	Location, Message, Reason string
}

func (e Error) Error() string {
	return fmt.Sprintf("{Location: %q; Message: %q; Reason: %q}", e.Location, e.Message, e.Reason)
}

func bqToError(ep *bq.ErrorProto) *Error {
	if ep == nil {
		return nil
	}
	return &Error{
		Location: ep.Location,
		Message:  ep.Message,
		Reason:   ep.Reason,
	}
}

// JobExecutionError reports that the server observed errors while running a
// job. It is the failure outcome of Job.Wait and Job.Subscribe, and the
// value of JobStatus.Err.
type JobExecutionError struct {
	ProjectID, JobID, Location string

	// ErrorResult is the error that ended the job, if the server reported one.
	ErrorResult *Error

	// Errors holds every error the server reported for the job.
	Errors []*Error
}

func (e *JobExecutionError) Error() string {
	first := e.ErrorResult
	if first == nil && len(e.Errors) > 0 {
		first = e.Errors[0]
	}
	msg := fmt.Sprintf("bigquery: job %s failed", e.JobID)
	if first != nil {
		msg += ": " + first.Message
	}
	if n := len(e.Errors); n > 1 {
		msg += fmt.Sprintf(" (and %d more errors)", n-1)
	}
	return msg
}

// jobExecutionError builds the failure carried by status, or returns nil
// if the status reports no errors.
func jobExecutionError(projectID, jobID, location string, status *bq.JobStatus) *JobExecutionError {
	if status == nil || (status.ErrorResult == nil && len(status.Errors) == 0) {
		return nil
	}
	e := &JobExecutionError{
		ProjectID:   projectID,
		JobID:       jobID,
		Location:    location,
		ErrorResult: bqToError(status.ErrorResult),
	}
	for _, ep := range status.Errors {
		e.Errors = append(e.Errors, bqToError(ep))
	}
	return e
}

// DecodeError reports a row whose shape or values do not match the result
// schema.
type DecodeError struct {
	// Row is the index of the offending row within its page.
	Row int
	// Path is the dotted path of the record or field that failed; it is
	// empty for a top-level row.
	Path string
	// Want and Got are the schema field count and the cell count when the
	// two disagree.
	Want, Got int
	// Err is set when a cell value could not be converted.
	Err error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bigquery: decoding row %d", e.Row)
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		fmt.Fprintf(&b, ": row has %d cells, schema has %d fields", e.Got, e.Want)
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }
