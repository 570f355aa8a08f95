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
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreproto/grpccore/internal/grpclog"
	"github.com/coreproto/grpccore/keepalive"
	"github.com/coreproto/grpccore/transport"
)

var keepaliveLogger = grpclog.Component("interceptor/keepalive")

// Health is the built-in health/keepalive interceptor (§4.7): it drives
// periodic pings on a Connection, tracks the in-flight ping's RTT, and marks
// the connection unhealthy when a ping goes unacknowledged past Timeout. It
// has no per-call role; OnRequest/OnResponse are no-ops so it can still sit
// in a Chain alongside the call-scoped interceptors without special-casing.
type Health struct {
	conn   transport.Connection
	params keepalive.ClientParameters

	mu        sync.Mutex
	lastRTT   time.Duration
	unhealthy atomic.Bool

	stop chan struct{}
	once sync.Once
}

// NewHealth returns a Health monitor for conn, not yet started.
func NewHealth(conn transport.Connection, params keepalive.ClientParameters) *Health {
	return &Health{conn: conn, params: params, stop: make(chan struct{})}
}

// Start launches the periodic-ping goroutine; it returns immediately. ctx
// cancellation or Stop terminates the loop.
func (h *Health) Start(ctx context.Context) {
	if h.params.Time <= 0 {
		return
	}
	go h.run(ctx)
}

func (h *Health) run(ctx context.Context) {
	ticker := time.NewTicker(h.params.Time)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		case <-ticker.C:
			h.ping(ctx)
		}
	}
}

func (h *Health) ping(ctx context.Context) {
	pingCtx := ctx
	if h.params.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, h.params.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := h.conn.Ping(pingCtx)
	rtt := time.Since(start)

	if err != nil {
		h.unhealthy.Store(true)
		keepaliveLogger.Warningf("keepalive ping to %s failed after %s: %v", h.conn.RemoteAddr(), rtt, err)
		return
	}

	h.mu.Lock()
	h.lastRTT = rtt
	h.mu.Unlock()
	h.unhealthy.Store(false)
}

// LastRTT returns the most recently observed ping round-trip time.
func (h *Health) LastRTT() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRTT
}

// Unhealthy reports whether the most recent ping timed out or errored.
func (h *Health) Unhealthy() bool { return h.unhealthy.Load() }

// Stop terminates the ping loop; safe to call more than once.
func (h *Health) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// OnRequest implements Interceptor; Health has no per-call behavior.
func (h *Health) OnRequest(context.Context, *Context) error { return nil }

// OnResponse implements Interceptor; Health has no per-call behavior.
func (h *Health) OnResponse(context.Context, *Context) error { return nil }
