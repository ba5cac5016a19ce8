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

/*
Package bigquery provides a handle to BigQuery jobs that already exist: it
reports when a job finishes and reads the rows the job produced.

# Creating a Client

To start working with this package, create a client:

	ctx := context.Background()
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		// TODO: Handle error.
	}
	defer client.Close()

# Waiting for a Job

A Job is obtained from its ID. No API call is made until the job is used:

	job := client.JobFromIDLocation("my-job-id", "US")
	md, err := job.Wait(ctx)
	if err != nil {
		// TODO: Handle error.
	}

Wait and Subscribe share a single background poller per Job. Polling runs
only while some subscription is outstanding, and a job that reports errors
completes with a *JobExecutionError:

	sub := job.Subscribe()
	defer sub.Unsubscribe()
	select {
	case <-sub.Done():
		md, err := sub.Result()
		// ...
	case <-time.After(time.Minute):
	}

# Reading Results

Results can be read before the job completes. QueryResults reads every
page by default:

	res, err := job.QueryResults(ctx, &bigquery.QueryResultsRequest{MaxResults: 1000})
	if err != nil {
		// TODO: Handle error.
	}
	for _, row := range res.Rows {
		fmt.Println(row.AsMap())
	}

To drive pagination yourself, turn off AutoPaginate and follow NextQuery:

	req := &bigquery.QueryResultsRequest{AutoPaginate: googleapi.Bool(false)}
	for req != nil {
		res, err := job.QueryResults(ctx, req)
		if err != nil {
			// TODO: Handle error.
		}
		// Use res.Rows.
		req = res.NextQuery
	}

Read streams rows, fetching pages as they are needed:

	it := job.Read(ctx, nil)
	for row, err := range it.All() {
		if err != nil {
			// TODO: Handle error.
		}
		fmt.Println(row.Values())
	}

# Errors

Errors returned by the service are *googleapi.Error values. Row decoding
failures are reported as *DecodeError.
*/
package bigquery // import "github.com/chingor13/bqjob/bigquery"
