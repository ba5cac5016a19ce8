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

package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeStatus struct {
	State  string
	Errors []string
}

func evaluateFake(s *fakeStatus) (bool, error) {
	if len(s.Errors) > 0 {
		return false, fmt.Errorf("job failed: %v", s.Errors)
	}
	return s.State == "DONE", nil
}

// fakeService returns statuses in order and repeats the last one forever.
type fakeService struct {
	mu       sync.Mutex
	statuses []*fakeStatus
	errs     []error
	calls    int
}

func (f *fakeService) fetch(ctx context.Context) (*fakeStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], err
}

func (f *fakeService) numCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestPoller(f *fakeService) *Poller[*fakeStatus] {
	return &Poller[*fakeStatus]{
		Fetch:    f.fetch,
		Evaluate: evaluateFake,
		Interval: time.Millisecond,
	}
}

func TestPollerRun(t *testing.T) {
	transportErr := errors.New("connection reset")
	for _, tc := range []struct {
		desc      string
		statuses  []*fakeStatus
		errs      []error
		wantCalls int
		wantMD    *fakeStatus
		wantErr   bool
	}{
		{
			desc:      "pending running done",
			statuses:  []*fakeStatus{{State: "PENDING"}, {State: "RUNNING"}, {State: "DONE"}},
			wantCalls: 3,
			wantMD:    &fakeStatus{State: "DONE"},
		},
		{
			desc:      "done immediately",
			statuses:  []*fakeStatus{{State: "DONE"}},
			wantCalls: 1,
			wantMD:    &fakeStatus{State: "DONE"},
		},
		{
			desc:      "errors while running",
			statuses:  []*fakeStatus{{State: "RUNNING"}, {State: "RUNNING", Errors: []string{"quota"}}},
			wantCalls: 2,
			wantMD:    &fakeStatus{State: "RUNNING", Errors: []string{"quota"}},
			wantErr:   true,
		},
		{
			desc:      "errors when done",
			statuses:  []*fakeStatus{{State: "DONE", Errors: []string{"invalid"}}},
			wantCalls: 1,
			wantMD:    &fakeStatus{State: "DONE", Errors: []string{"invalid"}},
			wantErr:   true,
		},
		{
			desc:      "transport error",
			statuses:  []*fakeStatus{{State: "RUNNING"}, nil},
			errs:      []error{nil, transportErr},
			wantCalls: 2,
			wantErr:   true,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			f := &fakeService{statuses: tc.statuses, errs: tc.errs}
			out, ok := newTestPoller(f).Run(context.Background(), make(chan struct{}))
			if !ok {
				t.Fatal("Run: got ok=false, want a terminal outcome")
			}
			if got := f.numCalls(); got != tc.wantCalls {
				t.Errorf("fetch calls: got %d, want %d", got, tc.wantCalls)
			}
			if (out.Err != nil) != tc.wantErr {
				t.Errorf("err: got %v, want error %t", out.Err, tc.wantErr)
			}
			if diff := cmp.Diff(tc.wantMD, out.Metadata); diff != "" {
				t.Errorf("metadata mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPollerTransportErrorVerbatim(t *testing.T) {
	transportErr := errors.New("connection reset")
	f := &fakeService{statuses: []*fakeStatus{nil}, errs: []error{transportErr}}
	out, _ := newTestPoller(f).Run(context.Background(), make(chan struct{}))
	if out.Err != transportErr {
		t.Errorf("got %v, want %v", out.Err, transportErr)
	}
}

func TestPollerStoppedBeforeStart(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "DONE"}}}
	stop := make(chan struct{})
	close(stop)
	if _, ok := newTestPoller(f).Run(context.Background(), stop); ok {
		t.Error("Run: got ok=true after stop, want false")
	}
	if got := f.numCalls(); got != 0 {
		t.Errorf("fetch calls: got %d, want 0", got)
	}
}

func TestPollerDiscardsInFlightResult(t *testing.T) {
	stop := make(chan struct{})
	p := &Poller[*fakeStatus]{
		Fetch: func(ctx context.Context) (*fakeStatus, error) {
			close(stop) // torn down while the fetch is in flight
			return &fakeStatus{State: "DONE"}, nil
		},
		Evaluate: evaluateFake,
		Interval: time.Millisecond,
	}
	if out, ok := p.Run(context.Background(), stop); ok {
		t.Errorf("Run: got outcome %+v, want it discarded", out)
	}
}

func TestPollerContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller[*fakeStatus]{
		Fetch: func(context.Context) (*fakeStatus, error) {
			cancel()
			return &fakeStatus{State: "RUNNING"}, nil
		},
		Evaluate: evaluateFake,
		Interval: time.Hour,
	}
	out, ok := p.Run(ctx, make(chan struct{}))
	if !ok || !errors.Is(out.Err, context.Canceled) {
		t.Errorf("Run: got (%v, %t), want context.Canceled", out.Err, ok)
	}
}
