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

package transport

import "context"

// TLSConfig is the transport-agnostic TLS configuration the core passes
// through to an adapter unexamined (§4.1). The core never looks inside it.
type TLSConfig struct {
	CertFile      string
	KeyFile       string
	CAFile        string
	ServerName    string
	ALPNProtocols []string
	VerifyPeer    bool
}

// DefaultTLSConfig returns the documented defaults: ALPN advertising h2 and
// h3, and peer verification on.
func DefaultTLSConfig() *TLSConfig {
	return &TLSConfig{
		ALPNProtocols: []string{"h2", "h3"},
		VerifyPeer:    true,
	}
}

// Transport is the adapter factory: the sealed boundary (§9 "Dynamic
// dispatch for transports") through which the core ever reaches a wire
// protocol.
type Transport interface {
	// Connect dials endpoint, an adapter-opaque string, and returns an
	// established Connection.
	Connect(ctx context.Context, endpoint string, tlsConfig *TLSConfig) (Connection, error)
	// Listen binds to bind, an adapter-opaque string, and returns a Listener.
	Listen(ctx context.Context, bind string, tlsConfig *TLSConfig) (Listener, error)
}

// Listener accepts inbound Connections.
type Listener interface {
	// Accept blocks until a Connection is established or the listener is
	// closed, in which case it returns a *Error of kind ErrClosed (§4.1.5).
	Accept(ctx context.Context) (Connection, error)
	// Addr returns the address the listener is bound to.
	Addr() string
	Close() error
}

// Connection is a transport session multiplexing streams against a single
// remote endpoint (§3 Connection).
type Connection interface {
	// OpenStream opens a new logical stream on this connection.
	OpenStream(ctx context.Context) (Stream, error)
	// Ping performs a liveness round trip used by the health/keepalive
	// interceptor (§4.7).
	Ping(ctx context.Context) error
	IsConnected() bool
	// RemoteAddr and LocalAddr surface peer info for the peer accessor
	// (SPEC_FULL "Peer-equivalent accessor").
	RemoteAddr() string
	LocalAddr() string
	Close() error
}

// Stream is a logical bidirectional channel owned by a Connection (§3 Stream).
type Stream interface {
	WriteFrame(ctx context.Context, f Frame) error
	ReadFrame(ctx context.Context) (Frame, error)
	// Cancel is idempotent and asynchronous; subsequent ReadFrame calls
	// return a *Error of kind ErrCanceled (§4.1.3).
	Cancel() error
	Close() error
}
