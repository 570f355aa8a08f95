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

// Package peer defines the per-call accessor for the remote party's address
// and auth state, mirroring the Connection SPI's addressing surface (§4.1).
package peer

import (
	"context"

	"github.com/coreproto/grpccore/credentials"
)

// Peer describes the remote side of a call.
type Peer struct {
	// Addr is the remote address, as reported by the transport Connection.
	Addr string
	// LocalAddr is the local address of the Connection carrying the call.
	LocalAddr string
	// AuthInfo is set when the transport established an authenticated
	// session (e.g. TLS); nil otherwise.
	AuthInfo credentials.AuthInfo
}

type peerKey struct{}

// NewContext returns a context carrying p, retrievable with FromContext.
func NewContext(ctx context.Context, p *Peer) context.Context {
	return context.WithValue(ctx, peerKey{}, p)
}

// FromContext returns the Peer stored in ctx, if any.
func FromContext(ctx context.Context) (*Peer, bool) {
	p, ok := ctx.Value(peerKey{}).(*Peer)
	return p, ok
}
