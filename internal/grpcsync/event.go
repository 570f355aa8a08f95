/*
 *
 * Copyright 2018 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package grpcsync provides the one-shot, edge-triggered synchronization
// primitive the cancellation token abstraction (§4.9, §9 "Context
// cancellation") is built on, replacing the ad-hoc booleans the source uses.
package grpcsync

import (
	"sync"
	"sync/atomic"
)

// Event represents a one-time event that may occur at most once. Observers
// are edge-triggered: once Fire returns true, HasFired and Done report the
// fired state forever after.
type Event struct {
	fired int32
	c     chan struct{}
	o     sync.Once
}

// NewEvent returns a new, ready to use Event.
func NewEvent() *Event {
	return &Event{c: make(chan struct{})}
}

// Fire causes e to complete. It is safe to call multiple times, and
// concurrently. It returns true iff this call to Fire caused the signal.
func (e *Event) Fire() bool {
	ret := false
	e.o.Do(func() {
		atomic.StoreInt32(&e.fired, 1)
		close(e.c)
		ret = true
	})
	return ret
}

// Done returns a channel that is closed once Fire is called.
func (e *Event) Done() <-chan struct{} {
	return e.c
}

// HasFired reports whether Fire has been called.
func (e *Event) HasFired() bool {
	return atomic.LoadInt32(&e.fired) == 1
}
