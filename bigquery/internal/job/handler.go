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

// Package job manages the lifecycle of a BigQuery job: it polls the job's
// status while somebody is waiting for it and records the single terminal
// outcome.
package job

import (
	"context"
	"sync"
)

// Handler delivers at most one terminal outcome for a job. Polling starts
// when the first subscriber arrives and stops when the last one leaves or
// the outcome is known, so the job is never polled without an audience.
type Handler[M any] struct {
	poller *Poller[M]

	// context for background polling
	ctx context.Context

	mu          sync.Mutex
	subscribers int
	stop        chan struct{} // non-nil while a poll loop is running
	ready       chan struct{}
	outcome     Outcome[M]
}

// NewHandler creates a handler that polls with p. Fetches issued by the
// background loop use ctx.
func NewHandler[M any](ctx context.Context, p *Poller[M]) *Handler[M] {
	return &Handler[M]{
		poller: p,
		ctx:    ctx,
		ready:  make(chan struct{}),
	}
}

// Subscription is one consumer's interest in a job's completion.
type Subscription[M any] struct {
	h        *Handler[M]
	counted  bool
	released bool
}

// Subscribe registers interest in the job's completion. Once the outcome
// is known, new subscriptions replay it without polling again.
func (h *Handler[M]) Subscribe() *Subscription[M] {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Subscription[M]{h: h}
	if h.isDone() {
		return s
	}
	s.counted = true
	h.subscribers++
	if h.stop == nil {
		h.stop = make(chan struct{})
		go h.poll(h.stop)
	}
	return s
}

func (h *Handler[M]) poll(stop chan struct{}) {
	out, ok := h.poller.Run(h.ctx, stop)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// A loop that was torn down while its last fetch was in flight must not
	// publish; a newer loop may own the job by now.
	if h.stop != stop || h.isDone() {
		return
	}
	h.stop = nil
	h.outcome = out
	close(h.ready)
}

func (h *Handler[M]) isDone() bool {
	select {
	case <-h.ready:
		return true
	default:
		return false
	}
}

// Polling reports whether a poll loop is currently running.
func (h *Handler[M]) Polling() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stop != nil
}

// Done returns a channel that is closed once the terminal outcome is known.
func (h *Handler[M]) Done() <-chan struct{} {
	return h.ready
}

// Outcome returns the terminal outcome. It is only valid after the channel
// returned by Done has been closed.
func (h *Handler[M]) Outcome() Outcome[M] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

// Wait subscribes, blocks until the outcome is known or ctx is done, and
// unsubscribes. Canceling ctx only abandons this wait.
func (h *Handler[M]) Wait(ctx context.Context) (M, error) {
	s := h.Subscribe()
	defer s.Unsubscribe()

	select {
	case <-s.Done():
		return s.Result()
	case <-ctx.Done():
		var zero M
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed when the job reaches a terminal
// state. It can be used in a select statement:
//
//	select {
//	case <-sub.Done():
//		md, err := sub.Result()
//		// ...
//	case <-time.After(30 * time.Second):
//		sub.Unsubscribe()
//	}
func (s *Subscription[M]) Done() <-chan struct{} {
	return s.h.ready
}

// Result returns the terminal metadata and error. It is only valid after
// the channel returned by Done has been closed.
func (s *Subscription[M]) Result() (M, error) {
	out := s.h.Outcome()
	return out.Metadata, out.Err
}

// Unsubscribe withdraws interest. When no subscribers remain before the
// outcome is known, polling halts before its next tick. Calling it more
// than once is a no-op.
func (s *Subscription[M]) Unsubscribe() {
	h := s.h
	h.mu.Lock()
	defer h.mu.Unlock()

	if !s.counted || s.released {
		return
	}
	s.released = true
	h.subscribers--
	if h.subscribers == 0 && h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
}
