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
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job_id>",
		Short: "Request cancellation of a job",
		Long: `Cancel asks BigQuery to cancel the job and returns immediately. Use
'bqjob wait' to observe the outcome. Cancelled jobs may still incur costs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, j, err := a.job(ctx, args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			if err := j.Cancel(ctx); err != nil {
				a.logger.Error("Failed to cancel job", zap.String("job_id", j.ID()), zap.Error(err))
				return err
			}
			_, err = fmt.Fprintf(a.out, "Cancel requested for job %s\n", j.ID())
			return err
		},
	}
}
