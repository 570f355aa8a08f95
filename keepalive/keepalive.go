/*
 *
 * Copyright 2017 gRPC authors.
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

// Package keepalive defines the configuration consumed by the
// health/keepalive built-in interceptor (§4.7): periodic pings, pending-ping
// tracking with per-ping RTT, and connection-unhealthy detection on timeout.
package keepalive

import "time"

// ClientParameters configures how a client actively probes a Connection to
// notice a broken transport.
type ClientParameters struct {
	// Time is the interval between pings, sent whether or not the
	// connection is active. The default is infinity (no active probing).
	Time time.Duration
	// Timeout is how long the client waits for a ping ack before marking the
	// connection unhealthy. The default is 20 seconds.
	Timeout time.Duration
	// PermitWithoutStream is not read by the Health interceptor, which pings
	// whether or not calls are active.
	PermitWithoutStream bool
}

// ServerParameters describes keepalive and max-age behavior on the server.
// The server stores these (server.WithKeepaliveParams) but does not act on
// them.
type ServerParameters struct {
	// MaxConnectionIdle is the idle duration, since the connection had zero
	// outstanding calls, after which it is closed. Default is infinity.
	MaxConnectionIdle time.Duration
	// MaxConnectionAge is the maximum lifetime of a connection before it is
	// closed. Default is infinity.
	MaxConnectionAge time.Duration
	// MaxConnectionAgeGrace is an additional grace period after
	// MaxConnectionAge after which the connection is forcibly closed.
	MaxConnectionAgeGrace time.Duration
	// Time is how long the server waits with no activity before pinging the
	// client. Default is 2 hours.
	Time time.Duration
	// Timeout is how long the server waits for a ping ack before closing the
	// connection. Default is 20 seconds.
	Timeout time.Duration
}

// EnforcementPolicy describes a server-side policy for rejecting overly
// frequent client pings. The server stores it
// (server.WithKeepaliveEnforcementPolicy) but does not enforce it.
type EnforcementPolicy struct {
	// MinTime is the minimum interval a client should wait between pings.
	// Default is 5 minutes.
	MinTime time.Duration
	// PermitWithoutStream, if true, allows pings even with no active calls.
	PermitWithoutStream bool
}

// DefaultClientParameters are the documented defaults.
var DefaultClientParameters = ClientParameters{
	Timeout: 20 * time.Second,
}

// DefaultServerParameters are the documented defaults.
var DefaultServerParameters = ServerParameters{
	Time:    2 * time.Hour,
	Timeout: 20 * time.Second,
}

// DefaultEnforcementPolicy is the documented default.
var DefaultEnforcementPolicy = EnforcementPolicy{
	MinTime: 5 * time.Minute,
}
