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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", desc)
		}
		time.Sleep(time.Millisecond)
	}
}

func waitDone(t *testing.T, s *Subscription[*fakeStatus]) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the terminal outcome")
	}
}

func TestHandlerLazyStart(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "DONE"}}}
	h := NewHandler(context.Background(), newTestPoller(f))

	time.Sleep(10 * time.Millisecond)
	if got := f.numCalls(); got != 0 {
		t.Fatalf("fetch calls before any subscriber: got %d, want 0", got)
	}
	if h.Polling() {
		t.Fatal("Polling() = true before any subscriber")
	}

	s := h.Subscribe()
	defer s.Unsubscribe()
	waitDone(t, s)
	if got := f.numCalls(); got != 1 {
		t.Errorf("fetch calls: got %d, want 1", got)
	}
}

func TestHandlerSuccess(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "RUNNING"}, {State: "RUNNING"}, {State: "DONE"}}}
	h := NewHandler(context.Background(), newTestPoller(f))

	s := h.Subscribe()
	defer s.Unsubscribe()
	waitDone(t, s)

	md, err := s.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if diff := cmp.Diff(&fakeStatus{State: "DONE"}, md); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	if got := f.numCalls(); got != 3 {
		t.Errorf("fetch calls: got %d, want 3", got)
	}
	if h.Polling() {
		t.Error("Polling() = true after the terminal outcome")
	}
}

func TestHandlerFailureReplay(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "RUNNING"}, {State: "DONE", Errors: []string{"boom"}}}}
	h := NewHandler(context.Background(), newTestPoller(f))

	first := h.Subscribe()
	waitDone(t, first)
	_, err1 := first.Result()
	if err1 == nil {
		t.Fatal("Result: got nil error, want failure")
	}
	first.Unsubscribe()

	// A late subscriber sees the same outcome without polling again.
	second := h.Subscribe()
	defer second.Unsubscribe()
	waitDone(t, second)
	_, err2 := second.Result()
	if err2 != err1 {
		t.Errorf("replayed error: got %v, want %v", err2, err1)
	}
	if got := f.numCalls(); got != 2 {
		t.Errorf("fetch calls: got %d, want 2", got)
	}
	if h.Polling() {
		t.Error("Polling() = true after replaying the outcome")
	}
}

func TestHandlerUnsubscribeHaltsPolling(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "RUNNING"}}}
	h := NewHandler(context.Background(), newTestPoller(f))

	s := h.Subscribe()
	waitFor(t, "a few poll ticks", func() bool { return f.numCalls() >= 3 })
	before := f.numCalls()
	s.Unsubscribe()
	if h.Polling() {
		t.Fatal("Polling() = true after the last subscriber left")
	}

	time.Sleep(20 * time.Millisecond)
	settled := f.numCalls()
	if settled > before+1 {
		t.Errorf("fetch calls after unsubscribe: got %d, want at most %d", settled, before+1)
	}
	time.Sleep(20 * time.Millisecond)
	if got := f.numCalls(); got != settled {
		t.Errorf("polling continued without subscribers: %d calls, then %d", settled, got)
	}
	select {
	case <-h.Done():
		t.Error("handler reached a terminal state without subscribers")
	default:
	}
}

func TestHandlerKeepsPollingWhileAnySubscriberRemains(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "RUNNING"}}}
	h := NewHandler(context.Background(), newTestPoller(f))

	a := h.Subscribe()
	b := h.Subscribe()
	a.Unsubscribe()
	a.Unsubscribe() // no-op

	before := f.numCalls()
	waitFor(t, "polling to continue", func() bool { return f.numCalls() > before+2 })
	if !h.Polling() {
		t.Error("Polling() = false with one subscriber left")
	}
	b.Unsubscribe()
	if h.Polling() {
		t.Error("Polling() = true after all subscribers left")
	}
}

func TestHandlerSuppressesStaleResult(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	p := &Poller[*fakeStatus]{
		Fetch: func(ctx context.Context) (*fakeStatus, error) {
			select {
			case started <- struct{}{}:
			default:
			}
			<-gate
			return &fakeStatus{State: "DONE"}, nil
		},
		Evaluate: evaluateFake,
		Interval: time.Millisecond,
	}
	h := NewHandler(context.Background(), p)

	s := h.Subscribe()
	<-started
	s.Unsubscribe()
	close(gate)

	time.Sleep(20 * time.Millisecond)
	select {
	case <-h.Done():
		t.Fatal("result of a torn-down poll loop was published")
	default:
	}

	// Subscribing again starts a fresh loop.
	s2 := h.Subscribe()
	defer s2.Unsubscribe()
	waitDone(t, s2)
	if _, err := s2.Result(); err != nil {
		t.Errorf("Result: %v", err)
	}
}

func TestHandlerWait(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "PENDING"}, {State: "DONE"}}}
	h := NewHandler(context.Background(), newTestPoller(f))

	md, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if md.State != "DONE" {
		t.Errorf("state: got %q, want DONE", md.State)
	}
}

func TestHandlerWaitCanceled(t *testing.T) {
	f := &fakeService{statuses: []*fakeStatus{{State: "RUNNING"}}}
	h := NewHandler(context.Background(), newTestPoller(f))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := h.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait: got %v, want DeadlineExceeded", err)
	}
	if h.Polling() {
		t.Error("Polling() = true after the only waiter gave up")
	}
}
