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

// Package callengine implements the per-call state machines (§4.3-§4.6):
// the engine drives frames through the transport SPI while enforcing
// deadlines, metadata propagation, interceptor composition and
// cancellation.
package callengine

import (
	"context"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/encoding"
	"github.com/coreproto/grpccore/interceptor"
	"github.com/coreproto/grpccore/internal/grpclog"
	"github.com/coreproto/grpccore/status"
	"github.com/coreproto/grpccore/transport"
)

const (
	defaultMaxMessageSize     = 4 * 1024 * 1024
	defaultProducerBufferSize = 100
)

var ccLogger = grpclog.Component("callengine")

// ClientConn is a logical connection to one endpoint: a transport
// Connection plus the codec and interceptor chain applied to every call
// issued through it, mirroring the teacher's ClientConn (clientconn.go).
type ClientConn struct {
	conn       transport.Connection
	codec      encoding.Codec
	chain      interceptor.Chain
	authority  string
	defaultOpt callOptions
}

// NewClientConn wraps an already-established transport.Connection. codec is
// the default codec for calls that don't override it with WithCodec.
func NewClientConn(conn transport.Connection, codec encoding.Codec, chain interceptor.Chain, authority string) *ClientConn {
	return &ClientConn{
		conn:       conn,
		codec:      codec,
		chain:      chain,
		authority:  authority,
		defaultOpt: defaultCallOptions(),
	}
}

// Close releases the underlying transport connection.
func (cc *ClientConn) Close() error { return cc.conn.Close() }

func (cc *ClientConn) resolveCodec(o callOptions) encoding.Codec {
	if o.codec != nil {
		return o.codec
	}
	return cc.codec
}

// mapTransportErr converts an error returned by the transport SPI into a
// Status error, using the fixed table in §7.1 (status/transport.go).
func mapTransportErr(err error) error {
	if err == nil {
		return nil
	}
	return status.FromTransportError(err).Err()
}

func encodeRequest(codec encoding.Codec, req any) ([]byte, error) {
	b, err := codec.Marshal(req)
	if err != nil {
		return nil, status.Newf(codes.Internal, "callengine: marshal request: %v", err).Err()
	}
	return b, nil
}

func decodeResponse(codec encoding.Codec, body []byte, reply any) error {
	if err := codec.Unmarshal(body, reply); err != nil {
		return status.Newf(codes.Internal, "callengine: unmarshal response: %v", err).Err()
	}
	return nil
}

// watchCancellation spawns a goroutine that calls s.Cancel() as soon as ctx
// is done, so a deadline expiry or explicit cancellation always reaches the
// transport (§5 "the call engine MUST NOT leak the stream"). It returns a
// stop function the caller must invoke once the call completes normally, to
// avoid cancelling a stream that has already finished successfully.
func watchCancellation(ctx context.Context, s transport.Stream) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if err := s.Cancel(); err != nil {
				ccLogger.Warningf("stream cancel after context done: %v", err)
			}
		case <-done:
		}
	}()
	return func() { close(done) }
}

// errNoResponse is returned when a stream ends without ever producing a
// response body. §7.3 mandates that a fatal condition preventing even a
// trailer from reaching the client surfaces as unavailable, not unknown.
var errNoResponse = status.New(codes.Unavailable, "callengine: stream ended before a response was received").Err()
