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

// Package trace wraps OpenTelemetry spans around calls to the BigQuery API.
package trace

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
)

const tracerName = "github.com/chingor13/bqjob"

// StartSpan starts a span named name, tagged with the job it concerns.
// The tracer is looked up on every call so a provider installed after
// package init (as tests do) is honored.
func StartSpan(ctx context.Context, name, projectID, jobID string) context.Context {
	ctx, _ = otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(
		attribute.String("bigquery.project_id", projectID),
		attribute.String("bigquery.job_id", jobID),
	))
	return ctx
}

// EndSpan ends the span in ctx, recording err if it is non-nil.
func EndSpan(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(toStatus(err))
	}
	span.End()
}

// toStatus prefers the server-provided message of a *googleapi.Error.
func toStatus(err error) (codes.Code, string) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return codes.Error, apiErr.Message
	}
	return codes.Error, err.Error()
}
