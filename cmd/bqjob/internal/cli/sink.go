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
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// sink is a destination for command output. Close commits what was written;
// Abort discards it.
type sink interface {
	io.WriteCloser
	Abort()
}

// openOutput returns the destination for command output: w when path is
// empty, a Cloud Storage object for gs://bucket/object paths, and a local
// file otherwise.
func openOutput(ctx context.Context, w io.Writer, path string, opts ...option.ClientOption) (sink, error) {
	switch {
	case path == "" || path == "-":
		return writerSink{w}, nil
	case strings.HasPrefix(path, "gs://"):
		bucket, object, err := parseGCSPath(path)
		if err != nil {
			return nil, err
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create GCS client: %w", err)
		}
		// The object is only created if the writer's context is still live
		// when it is closed.
		wctx, cancel := context.WithCancel(ctx)
		return &gcsWriter{
			Writer: client.Bucket(bucket).Object(object).NewWriter(wctx),
			client: client,
			cancel: cancel,
		}, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return fileSink{f}, nil
	}
}

// parseGCSPath splits gs://bucket/path/to/object.
func parseGCSPath(path string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(path, "gs://")
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS path %q: want gs://bucket/object", path)
	}
	return bucket, object, nil
}

type writerSink struct {
	io.Writer
}

func (writerSink) Close() error { return nil }
func (writerSink) Abort() {}

type fileSink struct {
	*os.File
}

func (f fileSink) Abort() {
	f.File.Close()
	os.Remove(f.Name())
}

type gcsWriter struct {
	*storage.Writer
	client *storage.Client
	cancel context.CancelFunc
}

func (g *gcsWriter) Close() error {
	err := g.Writer.Close()
	g.cancel()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func (g *gcsWriter) Abort() {
	g.cancel()
	g.Writer.Close()
	g.client.Close()
}
