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

package interceptor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/status"
)

// BreakerState is one of the three circuit breaker states (§4.8).
type BreakerState int

const (
	Closed BreakerState = iota
	Open
	HalfOpen
)

// String implements fmt.Stringer.
func (s BreakerState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig parameterizes a CircuitBreaker (§4.8).
type BreakerConfig struct {
	FailureThreshold    int
	SuccessThreshold    int
	Timeout             time.Duration
	MaxHalfOpenRequests int
}

// BreakerStats are the observable counters of a CircuitBreaker.
type BreakerStats struct {
	State          BreakerState
	Failures       int
	Successes      int
	TotalRequests  int64
	TotalRejects   int64
	LastFailure    time.Time
	LastTransition time.Time
}

// CircuitBreaker is a per-endpoint stateful reliability filter with
// closed/open/half-open phases (§4.8). All state reads and transitions are
// linearizable with respect to concurrent callers sharing one instance,
// guarded by a single mutex (the teacher's convention for small hot-path
// state machines over fine-grained atomics, see transport/controlbuf.go).
type CircuitBreaker struct {
	cfg BreakerConfig

	mu             sync.Mutex
	state          BreakerState
	failures       int
	successes      int
	halfOpenInUse  int
	totalRequests  int64
	totalRejects   int64
	lastFailure    time.Time
	lastTransition time.Time
}

// NewCircuitBreaker returns a breaker in the Closed state.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, state: Closed}
}

// Stats returns a point-in-time snapshot.
func (b *CircuitBreaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:          b.state,
		Failures:       b.failures,
		Successes:      b.successes,
		TotalRequests:  b.totalRequests,
		TotalRejects:   b.totalRejects,
		LastFailure:    b.lastFailure,
		LastTransition: b.lastTransition,
	}
}

// Reset forces the breaker to Closed, clearing the failure, success and
// half-open counters. TotalRequests and TotalRejects are kept.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionLocked(Closed)
	b.failures, b.successes, b.halfOpenInUse = 0, 0, 0
}

func (b *CircuitBreaker) transitionLocked(s BreakerState) {
	b.state = s
	b.lastTransition = time.Now()
}

// retryAfterLocked computes the remaining time, in whole seconds rounded up, until
// the breaker's timeout elapses from its last transition.
func (b *CircuitBreaker) retryAfterLocked() int64 {
	remaining := b.cfg.Timeout - time.Since(b.lastTransition)
	if remaining <= 0 {
		return 0
	}
	secs := int64(remaining / time.Second)
	if remaining%time.Second != 0 {
		secs++
	}
	return secs
}

// admit decides, under lock, whether a new request may proceed, performing
// the Open->HalfOpen transition as a side effect when the timeout has
// elapsed, and claiming a half-open slot if one is granted.
func (b *CircuitBreaker) admit() (bool, BreakerState, int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalRequests++

	if b.state == Open && time.Since(b.lastTransition) >= b.cfg.Timeout {
		b.transitionLocked(HalfOpen)
		b.failures, b.successes, b.halfOpenInUse = 0, 0, 0
	}

	switch b.state {
	case Open:
		b.totalRejects++
		return false, Open, b.retryAfterLocked()
	case HalfOpen:
		if b.halfOpenInUse >= b.cfg.MaxHalfOpenRequests {
			b.totalRejects++
			return false, HalfOpen, b.retryAfterLocked()
		}
		b.halfOpenInUse++
		return true, HalfOpen, 0
	default:
		return true, Closed, 0
	}
}

func (b *CircuitBreaker) report(admittedInHalfOpen bool, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if admittedInHalfOpen && b.state == HalfOpen {
		b.halfOpenInUse--
	}

	switch b.state {
	case HalfOpen:
		if success {
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.transitionLocked(Closed)
				b.failures, b.successes, b.halfOpenInUse = 0, 0, 0
			}
		} else {
			b.lastFailure = time.Now()
			b.transitionLocked(Open)
			b.failures, b.successes, b.halfOpenInUse = 0, 0, 0
		}
	case Closed:
		if success {
			b.failures = 0
		} else {
			b.failures++
			b.lastFailure = time.Now()
			if b.failures >= b.cfg.FailureThreshold {
				b.transitionLocked(Open)
			}
		}
	case Open:
		// A response arriving after the breaker already tripped open for an
		// unrelated reason; nothing to update.
	}
}

// cbAdmittedKey records, per call, whether CircuitBreaker.OnRequest admitted
// this attempt in HalfOpen, so OnResponse knows whether to release the slot.
type cbAdmittedKey struct{}

// CircuitBreaker as an Interceptor.

// OnRequest implements Interceptor.
func (b *CircuitBreaker) OnRequest(_ context.Context, ic *Context) error {
	ok, state, retryAfter := b.admit()
	if !ok {
		ic.Metadata.Set("x-circuit-breaker-state", state.String())
		ic.Metadata.Set("x-retry-after-seconds", fmt.Sprintf("%d", retryAfter))
		return status.New(codes.Unavailable, "circuit breaker open").Err()
	}
	if state == HalfOpen {
		ic.Values[cbAdmittedKey{}] = true
	}
	return nil
}

// OnResponse implements Interceptor.
func (b *CircuitBreaker) OnResponse(_ context.Context, ic *Context) error {
	admitted, _ := ic.Values[cbAdmittedKey{}].(bool)
	success := ic.Status != nil && ic.Status.Code() == codes.OK
	b.report(admitted, success)
	return nil
}
