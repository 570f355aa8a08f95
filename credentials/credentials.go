/*
 *
 * Copyright 2014 gRPC authors.
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

// Package credentials defines the per-RPC credential surface the auth
// interceptor (§4.7) consumes. Wire security itself is delegated to the
// transport adapter (§1 Non-goals); this package only carries the
// credential material an adapter-independent interceptor attaches to
// outgoing metadata.
package credentials

import "context"

// PerRPCCredentials is implemented by anything that can attach security
// metadata to an individual call: static API keys, and the oauth2 adapter in
// credentials/oauth.
type PerRPCCredentials interface {
	// GetRequestMetadata returns the metadata entries to attach to the
	// outgoing call to uri.
	GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error)
	// RequireTransportSecurity reports whether these credentials must only
	// be sent over a secured transport.
	RequireTransportSecurity() bool
}

// AuthInfo is the security information about a Connection's peer, obtained
// from the transport's handshake and exposed read-only to the core.
type AuthInfo interface {
	AuthType() string
}

// staticCredentials attaches a fixed key/value to every call. It is the
// simplest PerRPCCredentials implementation, returned by NewStatic for use
// as the auth interceptor's credentials.
type staticCredentials struct {
	key, value               string
	requireTransportSecurity bool
}

// NewStatic returns PerRPCCredentials that always attach key: value.
func NewStatic(key, value string, requireTransportSecurity bool) PerRPCCredentials {
	return staticCredentials{key: key, value: value, requireTransportSecurity: requireTransportSecurity}
}

func (c staticCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{c.key: c.value}, nil
}

func (c staticCredentials) RequireTransportSecurity() bool { return c.requireTransportSecurity }
