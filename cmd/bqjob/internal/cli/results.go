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

package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chingor13/bqjob/bigquery"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

type resultsFlags struct {
	maxResults  int64
	startIndex  uint64
	pageToken   string
	timeout     time.Duration
	manual      bool
	maxAPICalls int
	stream      bool
	format      string
	output      string
}

func (f *resultsFlags) request() *bigquery.QueryResultsRequest {
	req := &bigquery.QueryResultsRequest{
		MaxResults:  f.maxResults,
		StartIndex:  f.startIndex,
		PageToken:   f.pageToken,
		Timeout:     f.timeout,
		MaxAPICalls: f.maxAPICalls,
	}
	if f.manual {
		req.AutoPaginate = googleapi.Bool(false)
	}
	return req
}

func (a *app) newResultsCmd() *cobra.Command {
	f := &resultsFlags{}
	cmd := &cobra.Command{
		Use:   "results <job_id>",
		Short: "Read the rows produced by a job",
		Long: `Results reads the rows of a job's output. The job need not be finished.

By default every page is read before anything is printed; --max-results and
--max-api-calls bound how much is read. With --manual a single page is read and
the token of the next page is reported, to be passed back with --page-token.
With --stream rows are printed as pages arrive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.manual && f.stream {
				return errors.New("--manual and --stream cannot be combined")
			}
			ctx := cmd.Context()
			c, j, err := a.job(ctx, args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := openOutput(ctx, a.out, f.output, clientOptions(a.cfg)...)
			if err != nil {
				return err
			}
			rw, err := newRowWriter(out, f.format)
			if err != nil {
				out.Abort()
				return err
			}

			if f.stream {
				err = a.streamResults(cmd, j, f, rw)
			} else {
				err = a.readResults(cmd, j, f, rw)
			}
			if ferr := rw.Flush(); err == nil {
				err = ferr
			}
			if err != nil {
				out.Abort()
				return err
			}
			return out.Close()
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&f.maxResults, "max-results", 0, "Page size; also caps the rows read unless --manual or --stream")
	flags.Uint64Var(&f.startIndex, "start-index", 0, "Zero-based index of the first row to read")
	flags.StringVar(&f.pageToken, "page-token", "", "Resume at the page returned by a previous --manual call")
	flags.DurationVar(&f.timeout, "timeout", 0, "How long the server may wait for the job to finish per request")
	flags.BoolVar(&f.manual, "manual", false, "Read a single page and report the next page token")
	flags.IntVar(&f.maxAPICalls, "max-api-calls", 0, "Maximum number of pages to read (0 = no limit)")
	flags.BoolVar(&f.stream, "stream", false, "Print rows as pages are read")
	flags.StringVar(&f.format, "format", "table", "Output format: table, json or yaml")
	flags.StringVarP(&f.output, "output", "o", "", "Write rows to a file or gs://bucket/object instead of stdout")
	return cmd
}

func (a *app) readResults(cmd *cobra.Command, j *bigquery.Job, f *resultsFlags, rw rowWriter) error {
	res, err := j.QueryResults(cmd.Context(), f.request())
	if err != nil {
		a.logger.Error("Failed to read results", zap.String("job_id", j.ID()), zap.Error(err))
		return err
	}
	for _, r := range res.Rows {
		if err := rw.Write(r); err != nil {
			return err
		}
	}
	a.logger.Debug("Read results",
		zap.Int("rows", len(res.Rows)),
		zap.Uint64("total_rows", res.Response.TotalRows))
	if !f.manual {
		return nil
	}
	return reportCursor(a.errOut, res)
}

// reportCursor tells the user how to continue a manual read.
func reportCursor(w io.Writer, res *bigquery.QueryResults) error {
	var err error
	switch {
	case res.NextQuery == nil:
		_, err = fmt.Fprintln(w, "No more pages.")
	case !res.Response.JobComplete:
		_, err = fmt.Fprintln(w, "Job is not complete yet; repeat the same command to retry.")
	default:
		_, err = fmt.Fprintf(w, "Next page token: %s\n", res.NextQuery.PageToken)
	}
	return err
}

func (a *app) streamResults(cmd *cobra.Command, j *bigquery.Job, f *resultsFlags, rw rowWriter) error {
	it := j.Read(cmd.Context(), f.request())
	var n int
	for r, err := range it.All() {
		if err != nil {
			a.logger.Error("Failed to read results", zap.String("job_id", j.ID()), zap.Int("rows_read", n), zap.Error(err))
			return err
		}
		if err := rw.Write(r); err != nil {
			return err
		}
		n++
	}
	a.logger.Debug("Streamed results", zap.Int("rows", n), zap.Uint64("total_rows", it.TotalRows))
	return nil
}
