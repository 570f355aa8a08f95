/*
 *
 * Copyright 2024 gRPC authors.
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

package grpcsync

// CancelToken is the cancellation token abstraction called for in §9: it
// exposes IsCancelled, Cancel and an awaitable Cancelled in place of the
// source's ad-hoc booleans. A token derived from a parent observes the
// parent's cancellation as well as its own.
type CancelToken struct {
	self   *Event
	parent *CancelToken
}

// NewCancelToken returns a root token, not yet cancelled.
func NewCancelToken() *CancelToken {
	return &CancelToken{self: NewEvent()}
}

// Derive returns a child token. Cancelling the parent is observable through
// the child (propagation, §5 "Cancellation … fires the context's
// cancellation observers"); cancelling the child has no effect on the
// parent.
func (t *CancelToken) Derive() *CancelToken {
	return &CancelToken{self: NewEvent(), parent: t}
}

// Cancel fires this token. It returns true iff this call caused the token to
// transition to cancelled (Fire is idempotent, matching the Stream.cancel
// contract in §4.1).
func (t *CancelToken) Cancel() bool {
	return t.self.Fire()
}

// IsCancelled reports whether this token or any ancestor has been cancelled.
func (t *CancelToken) IsCancelled() bool {
	if t.self.HasFired() {
		return true
	}
	return t.parent != nil && t.parent.IsCancelled()
}

// Cancelled returns a channel closed once this token or any ancestor is
// cancelled. It fans in to the root synchronously: each call builds a fresh
// merged channel, so callers should hold the returned value rather than
// calling Cancelled repeatedly on a hot path.
func (t *CancelToken) Cancelled() <-chan struct{} {
	if t.parent == nil {
		return t.self.Done()
	}
	out := make(chan struct{})
	go func() {
		select {
		case <-t.self.Done():
		case <-t.parent.Cancelled():
		}
		close(out)
	}()
	return out
}
