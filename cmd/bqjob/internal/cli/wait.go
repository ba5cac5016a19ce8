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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newWaitCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "wait <job_id>",
		Short: "Wait for a job to finish",
		Long: `Wait polls the job until it finishes. It exits with status 2 if the job
failed and 1 if the job could not be polled or --timeout elapsed. A timeout
does not cancel the job.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, j, err := a.job(ctx, args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			start := time.Now()
			a.logger.Info("Waiting for job", zap.String("job_id", j.ID()))
			if _, err := j.Wait(ctx); err != nil {
				return err
			}
			a.logger.Debug("Job finished", zap.Duration("elapsed", time.Since(start)))
			_, err = fmt.Fprintf(a.out, "Job %s completed successfully\n", j.ID())
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up waiting after this long (0 = no limit)")
	return cmd
}
