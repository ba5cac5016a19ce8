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
	"io"
	"log/slog"
	"time"
)

// pollState names the steps of a single polling attempt. It only feeds
// debug logging; the control flow in Run is the state machine itself.
type pollState int

const (
	stateIdle pollState = iota
	stateFetching
	stateEvaluating
	stateSucceeded
	stateFailed
)

var pollStateNames = [...]string{"idle", "fetching", "evaluating", "succeeded", "failed"}

func (s pollState) String() string { return pollStateNames[s] }

// Outcome is the terminal result of polling a job. Err is nil on success.
type Outcome[M any] struct {
	Metadata M
	Err      error
}

// FetchFunc fetches the current metadata of a job. It is usually jobs.get.
type FetchFunc[M any] = func(ctx context.Context) (M, error)

// EvaluateFunc classifies fetched metadata. A non-nil error is a terminal
// failure; done reports a terminal success when err is nil.
type EvaluateFunc[M any] = func(m M) (done bool, err error)

// Poller repeatedly fetches job metadata on a fixed interval until the job
// reaches a terminal state.
type Poller[M any] struct {
	Fetch    FetchFunc[M]
	Evaluate EvaluateFunc[M]
	Interval time.Duration
	Logger   *slog.Logger
}

func (p *Poller[M]) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}

// Run polls until a terminal state is reached and returns it with ok set.
// If stop is closed first, Run returns with ok false and no further fetches
// are issued. A fetch already in flight when stop closes is allowed to
// finish but its result is dropped.
func (p *Poller[M]) Run(ctx context.Context, stop <-chan struct{}) (out Outcome[M], ok bool) {
	log := p.logger()
	state := stateIdle
	transition := func(next pollState, tick int) {
		log.DebugContext(ctx, "job poll transition", "tick", tick, "from", state, "to", next)
		state = next
	}
	for tick := 1; ; tick++ {
		if stopped(stop) {
			return out, false
		}
		transition(stateFetching, tick)
		m, err := p.Fetch(ctx)
		transition(stateEvaluating, tick)
		if stopped(stop) {
			log.DebugContext(ctx, "job poll result discarded", "tick", tick)
			return out, false
		}
		if err != nil {
			transition(stateFailed, tick)
			return Outcome[M]{Metadata: m, Err: err}, true
		}
		done, err := p.Evaluate(m)
		switch {
		case err != nil:
			transition(stateFailed, tick)
			return Outcome[M]{Metadata: m, Err: err}, true
		case done:
			transition(stateSucceeded, tick)
			return Outcome[M]{Metadata: m}, true
		}
		transition(stateIdle, tick)

		t := time.NewTimer(p.Interval)
		select {
		case <-t.C:
		case <-stop:
			t.Stop()
			return out, false
		case <-ctx.Done():
			t.Stop()
			transition(stateFailed, tick)
			return Outcome[M]{Metadata: m, Err: ctx.Err()}, true
		}
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
