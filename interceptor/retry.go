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
	"sync/atomic"

	"github.com/coreproto/grpccore/codes"
)

// retryAttemptKey is where Retry records, in ic.Values, whether the call
// engine should re-issue the call. The source's retry interceptor only logs
// retry intent and never actually re-issues (§9 open question); this engine
// drives the loop explicitly from that signal, with the attempt counter
// living on the call Context (ic.Attempt), not reset across attempts.
type retryAttemptKey struct{}

// retryableCodes is the policy-defined subset from §4.7/§7.2.
var retryableCodes = map[codes.Code]bool{
	codes.Unavailable:       true,
	codes.DeadlineExceeded:  true,
	codes.ResourceExhausted: true,
}

// Retry is the built-in retry interceptor. It is passive on request; on
// response it consults the status and, for a retryable code, signals the
// engine to re-issue the call until MaxAttempts attempts, counting the
// first, have been made. It never resets the original
// deadline (§4.7 "Retries MUST propagate the original context's deadline").
type Retry struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// MaxAttempts<=1 behaves as if the interceptor were absent (§8 boundary).
	MaxAttempts int

	attempts atomic.Int64
}

// OnRequest implements Interceptor; Retry is passive on the request path.
func (r *Retry) OnRequest(context.Context, *Context) error { return nil }

// OnResponse implements Interceptor.
func (r *Retry) OnResponse(_ context.Context, ic *Context) error {
	if ic.Status == nil || ic.Status.Code() == codes.OK {
		return nil
	}
	if r.MaxAttempts <= 1 {
		return nil
	}
	if !retryableCodes[ic.Status.Code()] {
		return nil
	}
	if ic.Attempt >= r.MaxAttempts {
		return nil
	}
	r.attempts.Add(1)
	ic.Values[retryAttemptKey{}] = true
	return nil
}

// ShouldRetry reports whether Retry asked the engine to re-issue the call
// represented by ic, clearing the signal so a subsequent attempt starts
// clean.
func ShouldRetry(ic *Context) bool {
	v, ok := ic.Values[retryAttemptKey{}]
	if !ok {
		return false
	}
	delete(ic.Values, retryAttemptKey{})
	return v == true
}

// Attempts returns the number of retries Retry has signaled so far, for
// metrics/observability.
func (r *Retry) Attempts() int64 { return r.attempts.Load() }
