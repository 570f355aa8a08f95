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

package server

import (
	"github.com/coreproto/grpccore/encoding"
	"github.com/coreproto/grpccore/encoding/proto"
	"github.com/coreproto/grpccore/interceptor"
	"github.com/coreproto/grpccore/keepalive"
)

const (
	defaultMaxConnections    = 1000
	defaultMaxStreamsPerConn = 100
	defaultMaxMessageSize    = 4 * 1024 * 1024
)

type serverOptions struct {
	codec             encoding.Codec
	chain             interceptor.Chain
	maxConnections    int
	maxStreamsPerConn int
	maxRecvSize       int
	keepalive         keepalive.ServerParameters
	enforcement       keepalive.EnforcementPolicy
}

func defaultServerOptions() serverOptions {
	return serverOptions{
		codec:             mustCodec(proto.Name),
		maxConnections:    defaultMaxConnections,
		maxStreamsPerConn: defaultMaxStreamsPerConn,
		maxRecvSize:       defaultMaxMessageSize,
		keepalive:         keepalive.DefaultServerParameters,
		enforcement:       keepalive.DefaultEnforcementPolicy,
	}
}

func mustCodec(name string) encoding.Codec {
	c := encoding.GetCodec(name)
	if c == nil {
		panic("server: codec " + name + " is not registered")
	}
	return c
}

// ServerOption configures a Server, following the teacher's functional
// option idiom (server_option.go).
type ServerOption func(*serverOptions)

// WithCodec sets the default codec for all registered services.
func WithCodec(c encoding.Codec) ServerOption {
	return func(o *serverOptions) { o.codec = c }
}

// WithChain sets the interceptor chain applied to every inbound call.
func WithChain(chain interceptor.Chain) ServerOption {
	return func(o *serverOptions) { o.chain = chain }
}

// WithMaxConnections bounds concurrently accepted connections (§4.10,
// default 1000); beyond this, Accept stops being drained until a
// connection closes.
func WithMaxConnections(n int) ServerOption {
	return func(o *serverOptions) { o.maxConnections = n }
}

// WithMaxStreamsPerConnection bounds concurrent streams per connection
// (§4.10, default 100); a stream opened past the cap is rejected with
// resource_exhausted.
func WithMaxStreamsPerConnection(n int) ServerOption {
	return func(o *serverOptions) { o.maxStreamsPerConn = n }
}

// WithMaxRecvMessageSize bounds the largest inbound message (§4.2, default
// 4 MiB).
func WithMaxRecvMessageSize(n int) ServerOption {
	return func(o *serverOptions) { o.maxRecvSize = n }
}

// WithKeepaliveParams stores p in the server options. The server does not
// act on it: no keepalive ping or connection max-age is enforced.
func WithKeepaliveParams(p keepalive.ServerParameters) ServerOption {
	return func(o *serverOptions) { o.keepalive = p }
}

// WithKeepaliveEnforcementPolicy stores p in the server options. The server
// does not act on it: client pings are not checked against the policy.
func WithKeepaliveEnforcementPolicy(p keepalive.EnforcementPolicy) ServerOption {
	return func(o *serverOptions) { o.enforcement = p }
}
