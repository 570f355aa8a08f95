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

// Package interceptor implements the ordered middleware chain (§4.7): ideal
// ordered request execution, reverse response execution, and the built-in
// interceptors (logging, auth, retry, metrics, circuit breaker,
// health/keepalive).
package interceptor

import (
	"context"
	"time"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/metadata"
	"github.com/coreproto/grpccore/status"
)

// Context is the mutable, per-call state threaded through the interceptor
// chain (§4.3 step 2). Interceptors must not retain borrowed views of the
// request/response bodies past OnResponse (§5 memory discipline).
type Context struct {
	// Method is the full wire path, "/<service>/<method>".
	Method string
	// Metadata is the outgoing metadata for this attempt; interceptors may
	// mutate it freely (e.g. to inject a credential).
	Metadata metadata.MD
	// RequestSize and ResponseSize, once known, in bytes.
	RequestSize, ResponseSize int
	// Attempt is the 1-based retry attempt number for this call.
	Attempt int
	// Status holds the outcome once the transport step (or a short-circuit)
	// has run. It starts nil (unset).
	Status *status.Status
	// StartTime records when the chain began, for latency interceptors.
	StartTime time.Time

	// Values carries arbitrary interceptor-to-interceptor state keyed by
	// caller-defined types, analogous to context.Value but scoped to the
	// call rather than to the ambient context.
	Values map[any]any
}

// NewContext returns a Context ready to drive a call to method.
func NewContext(method string, md metadata.MD) *Context {
	return &Context{Method: method, Metadata: md, StartTime: time.Time{}, Values: map[any]any{}}
}

// Interceptor is middleware with a request hook and a response hook, both
// fallible (§4.7). Implementations must be reference-equal-independent: the
// same instance registered twice in a Chain yields two invocations (§9).
type Interceptor interface {
	OnRequest(ctx context.Context, ic *Context) error
	OnResponse(ctx context.Context, ic *Context) error
}

// Chain is an ordered sequence of interceptors.
type Chain []Interceptor

// Do runs the chain around transport, the function that performs the actual
// RPC work (encode/send/receive/decode). On_request interceptors run in
// order; the first failure short-circuits transport and skips straight to
// reverse processing. On_response interceptors then run, in reverse order,
// for every interceptor whose OnRequest was invoked (§8 invariant).
func (c Chain) Do(ctx context.Context, ic *Context, transport func(context.Context, *Context) error) error {
	ran := 0
	for _, it := range c {
		ran++
		if err := it.OnRequest(ctx, ic); err != nil {
			ic.Status = status.Convert(err)
			break
		}
	}

	if ic.Status == nil {
		if err := transport(ctx, ic); err != nil {
			ic.Status = status.Convert(err)
		} else if ic.Status == nil {
			ic.Status = status.New(codes.OK, "")
		}
	}

	for i := ran - 1; i >= 0; i-- {
		// A response-hook error does not override a prior status; it is
		// swallowed after being observed, since a failing on_response must
		// never resurrect a call the transport already completed (§4.7:
		// on_response is passive with respect to the already-decided
		// outcome except where an interceptor — e.g. retry — explicitly
		// asks the engine to re-issue).
		_ = c[i].OnResponse(ctx, ic)
	}

	return ic.Status.Err()
}
