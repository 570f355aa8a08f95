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

package callengine

import (
	"time"

	"github.com/coreproto/grpccore/encoding"
)

// callOptions collects the per-call settings a CallOption mutates.
type callOptions struct {
	codec           encoding.Codec
	hasDeadline     bool
	deadline        time.Time
	hasTimeout      bool
	timeout         time.Duration
	maxRecvSize     int
	maxSendSize     int
	producerBufSize int
}

// CallOption configures a single call, following the teacher's functional
// option pattern (dial_options.go / call_option.go).
type CallOption func(*callOptions)

// WithDeadline pins the call's absolute deadline, taking priority over any
// WithTimeout option and over the ambient context deadline (§4.3 step 1).
func WithDeadline(d time.Time) CallOption {
	return func(o *callOptions) {
		o.hasDeadline = true
		o.deadline = d
	}
}

// WithTimeout sets a relative deadline measured from when the call begins.
// It is overridden by WithDeadline but takes priority over the context's
// own deadline.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.hasTimeout = true
		o.timeout = d
	}
}

// WithCodec overrides the ClientConn's default codec for this call.
func WithCodec(c encoding.Codec) CallOption {
	return func(o *callOptions) { o.codec = c }
}

// WithMaxRecvMessageSize bounds the largest message this call will accept.
func WithMaxRecvMessageSize(n int) CallOption {
	return func(o *callOptions) { o.maxRecvSize = n }
}

// WithMaxSendMessageSize records a send-size limit in the call options. No
// send path reads it: messages of any size are sent.
func WithMaxSendMessageSize(n int) CallOption {
	return func(o *callOptions) { o.maxSendSize = n }
}

// WithProducerBufferSize overrides the default 100-message bounded send
// buffer used by client-streaming and bidirectional calls (§4.4).
func WithProducerBufferSize(n int) CallOption {
	return func(o *callOptions) { o.producerBufSize = n }
}

func defaultCallOptions() callOptions {
	return callOptions{
		maxRecvSize:     defaultMaxMessageSize,
		maxSendSize:     defaultMaxMessageSize,
		producerBufSize: defaultProducerBufferSize,
	}
}

// resolveDeadline implements the §4.3 step-1 priority: explicit option >
// explicit timeout > parent context deadline > none. started is the instant
// the call began, used as the base for a relative timeout.
func (o callOptions) resolveDeadline(ctxDeadline time.Time, ctxHasDeadline bool, started time.Time) (time.Time, bool) {
	if o.hasDeadline {
		return o.deadline, true
	}
	if o.hasTimeout {
		return started.Add(o.timeout), true
	}
	if ctxHasDeadline {
		return ctxDeadline, true
	}
	return time.Time{}, false
}
