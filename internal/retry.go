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

// Package internal holds helpers shared by the packages of this module.
package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gax "github.com/googleapis/gax-go/v2"
)

// Retry calls f repeatedly, pausing between calls according to bo, until f
// reports stop or ctx is done. When ctx ends first, the returned error wraps
// the last error reported by f so callers can still inspect it.
func Retry(ctx context.Context, bo gax.Backoff, f func() (stop bool, err error)) error {
	return RetryN(ctx, bo, 0, f)
}

// RetryN is like Retry but gives up after maxRetries consecutive failures,
// returning a *RetryExhaustedError. A maxRetries of zero or less means no
// limit.
func RetryN(ctx context.Context, bo gax.Backoff, maxRetries int, f func() (stop bool, err error)) error {
	return retryN(ctx, bo, maxRetries, f, gax.Sleep)
}

func retryN(ctx context.Context, bo gax.Backoff, maxRetries int, f func() (stop bool, err error),
	sleep func(context.Context, time.Duration) error) error {
	var errs []error
	for {
		stop, err := f()
		if stop {
			return err
		}
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			errs = append(errs, err)
		}
		if maxRetries > 0 && len(errs) >= maxRetries {
			return &RetryExhaustedError{MaxRetries: maxRetries, Errors: errs}
		}
		if ctxErr := sleep(ctx, bo.Pause()); ctxErr != nil {
			if len(errs) > 0 {
				return wrappedCallErr{ctxErr: ctxErr, wrappedErr: errs[len(errs)-1]}
			}
			return ctxErr
		}
	}
}

// RetryExhaustedError reports that RetryN hit its retry limit. Errors holds
// every failure in the order it happened.
type RetryExhaustedError struct {
	MaxRetries int
	Errors     []error
}

func (e *RetryExhaustedError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("retry exhausted after %d attempts with no errors recorded", e.MaxRetries)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "retry exhausted after %d attempts; errors:\n", e.MaxRetries)
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  [%d]: %v\n", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the most recent failure.
func (e *RetryExhaustedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// wrappedCallErr carries both the context error and the last error from the
// service, so errors.Is matches either.
type wrappedCallErr struct {
	ctxErr     error
	wrappedErr error
}

func (e wrappedCallErr) Error() string {
	return fmt.Sprintf("retry failed with %v; last error: %v", e.ctxErr, e.wrappedErr)
}

func (e wrappedCallErr) Unwrap() error {
	return e.wrappedErr
}

func (e wrappedCallErr) Is(err error) bool {
	return e.ctxErr == err || e.wrappedErr == err
}
