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
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/framing"
	"github.com/coreproto/grpccore/interceptor"
	"github.com/coreproto/grpccore/internal/grpclog"
	"github.com/coreproto/grpccore/internal/headerframe"
	"github.com/coreproto/grpccore/internal/timeout"
	"github.com/coreproto/grpccore/metadata"
	"github.com/coreproto/grpccore/peer"
	"github.com/coreproto/grpccore/status"
	"github.com/coreproto/grpccore/transport"
)

var srvLogger = grpclog.Component("server")

// Server dispatches inbound connections and streams to registered handlers
// (§4.10). One Server may listen on multiple transport.Listener instances
// concurrently via Serve.
type Server struct {
	opts serverOptions
	reg  *Registry

	mu       sync.Mutex
	serving  bool
	quit     chan struct{}
	quitOnce sync.Once

	connSem chan struct{} // bounds concurrent connections (§4.10 default 1000)
}

// NewServer returns a Server with opts applied over the documented
// defaults.
func NewServer(opts ...ServerOption) *Server {
	o := defaultServerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		opts:    o,
		reg:     NewRegistry(),
		quit:    make(chan struct{}),
		connSem: make(chan struct{}, o.maxConnections),
	}
}

// RegisterService registers every method of desc against impl. It must be
// called before Serve (§4.10 "registration takes ownership of the path
// string").
func (s *Server) RegisterService(desc *ServiceDesc, impl any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serving {
		panic("server: RegisterService called after Serve")
	}
	for name, md := range desc.Methods {
		path := "/" + desc.ServiceName + "/" + name
		s.reg.Register(path, impl, md)
	}
}

// Stop signals every in-flight Serve loop to stop accepting and every
// connection loop to stop opening new streams. Serve returns at its next
// check of the signal without waiting for connections already being served;
// each connection loop waits for its in-flight streams before returning.
func (s *Server) Stop() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// Serve accepts connections from lis until Stop is called or lis.Accept
// returns Closed (§4.1 contract obligation 5). It freezes the registry on
// first entry (§5 "after serve() is entered, it is read-only").
func (s *Server) Serve(ctx context.Context, lis transport.Listener) error {
	s.mu.Lock()
	if !s.serving {
		s.serving = true
		s.reg.Freeze()
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for {
		select {
		case <-s.quit:
			return lis.Close()
		default:
		}

		conn, err := lis.Accept(gctx)
		if err != nil {
			if transport.IsKind(err, transport.ErrClosed) {
				return g.Wait()
			}
			srvLogger.Warningf("accept failed: %v", err)
			continue
		}

		select {
		case s.connSem <- struct{}{}:
		case <-s.quit:
			conn.Close()
			return lis.Close()
		}

		connID := uuid.NewString()
		g.Go(func() error {
			defer func() { <-s.connSem }()
			s.serveConnection(gctx, connID, conn)
			return nil
		})
	}
}

// ServeConn drives a single already-accepted connection to completion,
// without requiring a transport.Listener. It freezes the registry on first
// entry, same as Serve, so a server that only ever owns one connection (a
// test harness, or an adapter with its own accept loop) does not need to
// wrap it in a trivial Listener.
func (s *Server) ServeConn(ctx context.Context, conn transport.Connection) {
	s.mu.Lock()
	if !s.serving {
		s.serving = true
		s.reg.Freeze()
	}
	s.mu.Unlock()
	s.serveConnection(ctx, uuid.NewString(), conn)
}

// serveConnection drives one connection: one goroutine per accepted stream,
// bounded by maxStreamsPerConn (§4.10 steps 1-2).
func (s *Server) serveConnection(ctx context.Context, connID string, conn transport.Connection) {
	defer conn.Close()
	streamSem := make(chan struct{}, s.opts.maxStreamsPerConn)
	var wg sync.WaitGroup

	for {
		stream, err := conn.OpenStream(ctx)
		if err != nil {
			return
		}

		select {
		case streamSem <- struct{}{}:
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-streamSem }()
				s.serveStream(ctx, connID, conn, stream)
			}()
		default:
			s.rejectOverCapacity(ctx, stream)
		}

		select {
		case <-s.quit:
			wg.Wait()
			return
		case <-ctx.Done():
			wg.Wait()
			return
		default:
		}
	}
}

func (s *Server) rejectOverCapacity(ctx context.Context, stream transport.Stream) {
	defer stream.Close()
	st := status.New(codes.ResourceExhausted, "server: stream concurrency cap exceeded")
	md := metadata.New(nil)
	md.Set("grpc-status", strconv.Itoa(int(st.Code())))
	md.Set("grpc-message", st.Message())
	stream.WriteFrame(ctx, transport.Frame{
		Type: transport.FrameStatus, Flags: transport.FlagEndStream,
		Payload: headerframe.Encode(headerframe.HeaderBlock{Metadata: md}),
	})
}

// serveStream awaits the headers frame, looks up the handler, and invokes
// it (§4.10 steps 3-5). Every call kind is invoked the same way: the
// handler reads and writes its messages through the ServerStream.
func (s *Server) serveStream(ctx context.Context, connID string, conn transport.Connection, stream transport.Stream) {
	defer stream.Close()
	streamID := uuid.NewString()

	f, err := stream.ReadFrame(ctx)
	if err != nil || f.Type != transport.FrameHeaders {
		return
	}
	hb, err := headerframe.Decode(f.Payload)
	if err != nil {
		return
	}

	callCtx, cancel := s.requestContext(ctx, hb)
	defer cancel()
	callCtx = peer.NewContext(callCtx, &peer.Peer{Addr: conn.RemoteAddr(), LocalAddr: conn.LocalAddr()})
	callCtx = metadata.NewIncomingContext(callCtx, hb.Metadata)

	svc, md, ok := s.reg.Lookup(hb.Path)
	if !ok {
		srvLogger.Infof("conn=%s stream=%s unimplemented method %s", connID, streamID, hb.Path)
		sendUnimplemented(ctx, stream)
		return
	}

	ss := &ServerStream{
		ctx: callCtx, stream: stream, codec: s.opts.codec, method: hb.Path,
		reasm: framing.NewReassembler(s.opts.maxRecvSize),
	}

	// The chain runs once around the whole handler invocation, on the
	// server's side of the call, so logging/metrics interceptors observe
	// inbound calls symmetrically with the client engine (§4.7).
	ic := interceptor.NewContext(hb.Path, hb.Metadata.Copy())
	ic.StartTime = time.Now()
	err = s.opts.chain.Do(callCtx, ic, func(hctx context.Context, _ *interceptor.Context) error {
		ss.ctx = hctx
		return md.Handler(svc, ss)
	})
	ss.SendStatus(status.Convert(err))
}

func (s *Server) requestContext(ctx context.Context, hb headerframe.HeaderBlock) (context.Context, context.CancelFunc) {
	if v, ok := hb.Metadata.GetFirst("grpc-timeout"); ok {
		if d, err := timeout.Parse(v); err == nil {
			return context.WithTimeout(ctx, d)
		}
	}
	return context.WithCancel(ctx)
}

func sendUnimplemented(ctx context.Context, stream transport.Stream) {
	md := metadata.New(nil)
	md.Set("grpc-status", strconv.Itoa(int(codes.Unimplemented)))
	md.Set("grpc-message", "unimplemented method")
	stream.WriteFrame(ctx, transport.Frame{
		Type: transport.FrameStatus, Flags: transport.FlagEndStream,
		Payload: headerframe.Encode(headerframe.HeaderBlock{Metadata: md}),
	})
}
