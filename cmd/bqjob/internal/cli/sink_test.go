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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestGCSWriter(t *testing.T) {
	for _, tc := range []struct {
		name       string
		abort      bool
		wantUpload bool
	}{
		{name: "close uploads", wantUpload: true},
		{name: "abort discards", abort: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"bucket":"b","name":"rows.json"}`))
			}))
			defer srv.Close()

			out, err := openOutput(context.Background(), nil, "gs://b/rows.json",
				option.WithEndpoint(srv.URL+"/storage/v1/"),
				option.WithoutAuthentication())
			require.NoError(t, err)
			_, err = out.Write([]byte(`{"n":1}` + "\n"))
			require.NoError(t, err)

			if tc.abort {
				out.Abort()
			} else {
				_ = out.Close()
			}
			assert.Equal(t, tc.wantUpload, calls.Load() > 0)
		})
	}
}

func TestFileSinkAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.txt")
	out, err := openOutput(context.Background(), nil, path)
	require.NoError(t, err)
	_, err = out.Write([]byte("partial"))
	require.NoError(t, err)
	out.Abort()

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
