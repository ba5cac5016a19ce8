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

// Package cli implements the bqjob command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chingor13/bqjob/bigquery"
	"github.com/chingor13/bqjob/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer

	cfg    settings
	logger *zap.Logger

	// newClient builds the BigQuery client from the resolved settings.
	newClient func(ctx context.Context, s settings) (*bigquery.Client, error)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	a := &app{
		v:         viper.New(),
		out:       os.Stdout,
		errOut:    os.Stderr,
		newClient: newBigQueryClient,
	}
	return a.execute(context.Background(), os.Args[1:])
}

func (a *app) execute(ctx context.Context, args []string) int {
	rootCmd := a.newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	err := rootCmd.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		var jerr *bigquery.JobExecutionError
		if errors.As(err, &jerr) {
			fmt.Fprintf(a.errOut, "Job failed: %v\n", jerr)
			for _, e := range jerr.Errors {
				fmt.Fprintf(a.errOut, "  - %v\n", e)
			}
			return 2
		}
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "bqjob",
		Short: "Inspect BigQuery jobs and read their results",
		Long: `bqjob works with BigQuery jobs that already exist.

It can report a job's status, wait for a job to finish, read the rows a job
produced (all at once, page by page, or streamed) and cancel a job.

Job IDs may be given as JOB_ID or in the console form PROJECT:LOCATION.JOB_ID.`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(a.v, configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(a.errOut, cfg.Verbose)
			a.logger.Debug("Resolved settings",
				zap.String("project", cfg.Project),
				zap.String("location", cfg.Location),
				zap.String("endpoint", cfg.Endpoint),
				zap.Bool("credentials_file", cfg.Credentials != ""),
				zap.Bool("access_token", cfg.AccessToken != ""))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/bqjob/bqjob.yaml)")
	flags.String("project", "", "Project that owns the jobs (env BQJOB_PROJECT)")
	flags.String("location", "", "Default job location, e.g. US or asia-northeast1 (env BQJOB_LOCATION)")
	flags.String("credentials", "", "Service account key file (env BQJOB_CREDENTIALS)")
	flags.String("access-token", "", "OAuth2 access token to use instead of credentials")
	flags.String("endpoint", "", "Override the BigQuery API endpoint")
	flags.BoolP("verbose", "v", false, "Log debug output, including API paging and polling")
	bindFlags(a.v, flags)

	rootCmd.AddCommand(
		a.newStatusCmd(),
		a.newWaitCmd(),
		a.newResultsCmd(),
		a.newCancelCmd(),
	)
	return rootCmd
}

// job resolves a job reference against the settings and returns a handle
// with the client that owns it. Callers must close the client.
func (a *app) job(ctx context.Context, ref string) (*bigquery.Client, *bigquery.Job, error) {
	project, location, id, err := parseJobRef(ref)
	if err != nil {
		return nil, nil, err
	}
	if project == "" {
		project = a.cfg.Project
	}
	if project == "" {
		return nil, nil, errors.New("no project: pass --project, set BQJOB_PROJECT or use PROJECT:LOCATION.JOB_ID")
	}
	if location == "" {
		location = a.cfg.Location
	}
	s := a.cfg
	s.Project = project
	c, err := a.newClient(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("Using job",
		zap.String("project", project),
		zap.String("location", location),
		zap.String("job_id", id))
	return c, c.JobFromIDLocation(id, location), nil
}
