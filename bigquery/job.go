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
	"time"

	"github.com/chingor13/bqjob/bigquery/internal/job"
	bq "google.golang.org/api/bigquery/v2"
)

// pollInterval is the fixed delay between status checks while a job is
// being waited on.
var pollInterval = 500 * time.Millisecond

// A Job is a handle to an operation which has been submitted to BigQuery
// for processing. A Job is safe for concurrent use.
type Job struct {
	c         *Client
	projectID string
	jobID     string
	location  string

	mu   sync.RWMutex
	last *bq.Job

	handler *job.Handler[*bq.Job]
}

// A Subscription is one consumer's interest in the completion of a Job.
// Callers must call Unsubscribe when they are no longer interested.
type Subscription = job.Subscription[*bq.Job]

func newJob(c *Client, projectID, jobID, location string) *Job {
	j := &Job{
		c:         c,
		projectID: projectID,
		jobID:     jobID,
		location:  location,
	}
	j.handler = job.NewHandler(c.ctx, &job.Poller[*bq.Job]{
		Fetch:    j.Metadata,
		Evaluate: j.evaluate,
		Interval: pollInterval,
		Logger:   c.logger.With("job_id", jobID),
	})
	return j
}

// ID returns the job's ID.
func (j *Job) ID() string {
	return j.jobID
}

// ProjectID returns the ID of the project the job belongs to.
func (j *Job) ProjectID() string {
	return j.projectID
}

// Location returns the job's location, which may be empty.
func (j *Job) Location() string {
	return j.location
}

// evaluate classifies a status response. Any reported error ends the job
// with a failure, even if the server has not marked it DONE yet.
func (j *Job) evaluate(md *bq.Job) (done bool, err error) {
	if md.Status == nil {
		return false, nil
	}
	if e := jobExecutionError(j.projectID, j.jobID, j.location, md.Status); e != nil {
		return true, e
	}
	return md.Status.State == "DONE", nil
}

// Metadata fetches the current metadata of the job and remembers it as
// the job's last known metadata.
func (j *Job) Metadata(ctx context.Context) (*bq.Job, error) {
	md, err := j.c.service.getJob(ctx, j.projectID, j.jobID, j.location)
	if err != nil {
		return nil, err
	}
	j.mu.Lock()
	j.last = md
	j.mu.Unlock()
	return md, nil
}

// LastMetadata returns the most recently fetched metadata of the job, or
// nil if none has been fetched yet. It makes no API call.
func (j *Job) LastMetadata() *bq.Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}

// Subscribe registers interest in the completion of the job. The job's
// status is polled in the background while at least one subscription is
// outstanding. Subscribing after the job has completed replays the
// outcome without further API calls.
//
// The result of a successful subscription is the final job metadata. A
// job that reported errors completes with a *JobExecutionError.
func (j *Job) Subscribe() *Subscription {
	return j.handler.Subscribe()
}

// Wait blocks until the job completes or ctx is done, and returns the
// final job metadata. Canceling ctx abandons the wait but does not cancel
// the job; use Cancel for that.
func (j *Job) Wait(ctx context.Context) (*bq.Job, error) {
	return j.handler.Wait(ctx)
}

// State is one of a sequence of states that a Job progresses through as it is processed.
type State int

const (
	// StateUnspecified is the zero State, reported before a job has one.
	StateUnspecified State = iota
	// Pending is a state that describes that the job is pending.
	Pending
	// Running is a state that describes that the job is running.
	Running
	// Done is a state that describes that the job is done.
	Done
)

var stateMap = map[string]State{"PENDING": Pending, "RUNNING": Running, "DONE": Done}

func (s State) String() string {
	for k, v := range stateMap {
		if v == s {
			return k
		}
	}
	return "STATE_UNSPECIFIED"
}

// JobStatus contains the current State of a job, and errors encountered while processing that job.
type JobStatus struct {
	State State

	err error

	// All errors encountered during the running of the job.
	Errors []*Error
}

// Done reports whether the job has completed.
// After Done returns true, the Err method will return an error if the job completed unsuccessfully.
func (s *JobStatus) Done() bool {
	return s.State == Done
}

// Err returns the error that caused the job to complete unsuccessfully (if any).
func (s *JobStatus) Err() error {
	return s.err
}

func (j *Job) jobStatusFromProto(status *bq.JobStatus) (*JobStatus, error) {
	if status == nil {
		return nil, fmt.Errorf("bigquery: job %s has no status", j.jobID)
	}
	state, ok := stateMap[status.State]
	if !ok {
		return nil, fmt.Errorf("bigquery: unexpected job state: %v", status.State)
	}
	st := &JobStatus{State: state}
	if e := jobExecutionError(j.projectID, j.jobID, j.location, status); e != nil {
		st.err = e
		st.Errors = e.Errors
	}
	return st, nil
}

// Status fetches the current status of the job. It fails if the status
// could not be determined.
func (j *Job) Status(ctx context.Context) (*JobStatus, error) {
	md, err := j.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return j.jobStatusFromProto(md.Status)
}

// Cancel requests that a job be cancelled. This method returns without waiting for
// cancellation to take effect. To check whether the job has terminated, use Job.Status
// or Job.Wait.
// Cancelled jobs may still incur costs.
func (j *Job) Cancel(ctx context.Context) error {
	return j.c.service.cancelJob(ctx, j.projectID, j.jobID, j.location)
}
