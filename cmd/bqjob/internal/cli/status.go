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
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newStatusCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status <job_id>",
		Short: "Show the current status of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, j, err := a.job(ctx, args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := j.Status(ctx)
			if err != nil {
				a.logger.Error("Failed to get job status", zap.String("job_id", j.ID()), zap.Error(err))
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(j.LastMetadata())
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()
			location := j.Location()
			if md := j.LastMetadata(); md.JobReference != nil && md.JobReference.Location != "" {
				location = md.JobReference.Location
			}
			if location == "" {
				location = "-"
			}
			_, _ = fmt.Fprintln(w, "JOB ID\tLOCATION\tSTATE\tERRORS")
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", j.ID(), location, st.State, len(st.Errors))
			if err := st.Err(); err != nil {
				_, _ = fmt.Fprintf(w, "\nError: %v\n", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the job metadata as JSON")
	return cmd
}
