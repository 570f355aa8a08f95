/*
 *
 * Copyright 2020 gRPC authors.
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

// Package transporttest implements a transport.Connection/Stream for
// testing purposes, built the way the teacher builds its stub balancer
// (internal/balancer/stub): a Funcs struct of overridable hooks over a
// working default, so a test only sets the one or two hooks it cares about.
package transporttest

import (
	"context"
	"sync"

	"github.com/coreproto/grpccore/internal/grpcsync"
	"github.com/coreproto/grpccore/transport"
)

// StreamFuncs overrides a StubStream's behavior. Any nil function falls
// back to the default in-memory pipe behavior.
type StreamFuncs struct {
	WriteFrame func(*StubStream, context.Context, transport.Frame) error
	ReadFrame  func(*StubStream, context.Context) (transport.Frame, error)
	Cancel     func(*StubStream) error
}

// StubStream is an in-memory transport.Stream backed by a pair of frame
// channels, wired to a peer StubStream to form a pipe.
type StubStream struct {
	fn StreamFuncs

	out chan transport.Frame
	in  chan transport.Frame

	cancel *grpcsync.CancelToken

	mu     sync.Mutex
	closed bool
}

// NewStubStreamPair returns two StubStreams wired so that frames written on
// one are read from the other. Each carries its own cancellation token
// rather than an ad-hoc cancelled bool (§9 redesign: cancellation token
// abstraction), so a test can assert Cancelled() and, if it wants to
// propagate cancellation to a derived scope, call CancelToken().Derive().
func NewStubStreamPair(fnA, fnB StreamFuncs) (a, b *StubStream) {
	c1 := make(chan transport.Frame, 16)
	c2 := make(chan transport.Frame, 16)
	a = &StubStream{fn: fnA, out: c1, in: c2, cancel: grpcsync.NewCancelToken()}
	b = &StubStream{fn: fnB, out: c2, in: c1, cancel: grpcsync.NewCancelToken()}
	return a, b
}

// WriteFrame implements transport.Stream.
func (s *StubStream) WriteFrame(ctx context.Context, f transport.Frame) error {
	if s.fn.WriteFrame != nil {
		return s.fn.WriteFrame(s, ctx, f)
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return transport.NewError(transport.ErrClosed, "stream closed")
	}
	select {
	case s.out <- f:
		return nil
	case <-ctx.Done():
		return transport.NewError(transport.ErrTimeout, ctx.Err().Error())
	}
}

// ReadFrame implements transport.Stream.
func (s *StubStream) ReadFrame(ctx context.Context) (transport.Frame, error) {
	if s.fn.ReadFrame != nil {
		return s.fn.ReadFrame(s, ctx)
	}
	if s.cancel.IsCancelled() {
		return transport.Frame{}, transport.NewError(transport.ErrCanceled, "stream canceled")
	}
	select {
	case f, ok := <-s.in:
		if !ok {
			return transport.Frame{}, transport.NewError(transport.ErrClosed, "stream closed")
		}
		return f, nil
	case <-s.cancel.Cancelled():
		return transport.Frame{}, transport.NewError(transport.ErrCanceled, "stream canceled")
	case <-ctx.Done():
		return transport.Frame{}, transport.NewError(transport.ErrTimeout, ctx.Err().Error())
	}
}

// Cancel implements transport.Stream; idempotent per the §4.1 SPI contract,
// backed by CancelToken.Cancel rather than a hand-rolled bool-plus-mutex.
func (s *StubStream) Cancel() error {
	if s.fn.Cancel != nil {
		return s.fn.Cancel(s)
	}
	s.cancel.Cancel()
	return nil
}

// Close implements transport.Stream.
func (s *StubStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	close(s.out)
	return nil
}

// Cancelled reports whether Cancel has been called, for test assertions.
func (s *StubStream) Cancelled() bool {
	return s.cancel.IsCancelled()
}

// CancelToken exposes the underlying token, for a test that wants to wait
// on Cancelled() rather than poll.
func (s *StubStream) CancelToken() *grpcsync.CancelToken {
	return s.cancel
}

// ConnFuncs overrides a StubConnection's behavior.
type ConnFuncs struct {
	OpenStream func(*StubConnection, context.Context) (transport.Stream, error)
	Ping       func(*StubConnection, context.Context) error
}

// StubConnection is an in-memory transport.Connection that hands out
// StubStream pairs, with the peer side delivered to newStream.
type StubConnection struct {
	fn ConnFuncs

	Local, Remote string
	newStream     func() (transport.Stream, transport.Stream)

	mu     sync.Mutex
	closed bool
}

// NewStubConnection returns a StubConnection whose OpenStream calls
// newStream to build a fresh pipe, keeping the first (client-side) half for
// itself and discarding the second (a test typically hands the second half
// to a StubConnection representing the server side via a shared newStream
// closure).
func NewStubConnection(local, remote string, newStream func() (transport.Stream, transport.Stream), fn ConnFuncs) *StubConnection {
	return &StubConnection{fn: fn, Local: local, Remote: remote, newStream: newStream}
}

// OpenStream implements transport.Connection.
func (c *StubConnection) OpenStream(ctx context.Context) (transport.Stream, error) {
	if c.fn.OpenStream != nil {
		return c.fn.OpenStream(c, ctx)
	}
	s, _ := c.newStream()
	return s, nil
}

// Ping implements transport.Connection.
func (c *StubConnection) Ping(ctx context.Context) error {
	if c.fn.Ping != nil {
		return c.fn.Ping(c, ctx)
	}
	return nil
}

// IsConnected implements transport.Connection.
func (c *StubConnection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// RemoteAddr implements transport.Connection.
func (c *StubConnection) RemoteAddr() string { return c.Remote }

// LocalAddr implements transport.Connection.
func (c *StubConnection) LocalAddr() string { return c.Local }

// Close implements transport.Connection.
func (c *StubConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
