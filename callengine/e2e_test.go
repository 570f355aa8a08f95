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

package callengine_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/coreproto/grpccore/callengine"
	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/encoding"
	"github.com/coreproto/grpccore/encoding/jsoncodec"
	"github.com/coreproto/grpccore/interceptor"
	"github.com/coreproto/grpccore/internal/transporttest"
	"github.com/coreproto/grpccore/server"
	"github.com/coreproto/grpccore/status"
	"github.com/coreproto/grpccore/transport"
)

// echoRequest/echoResponse stand in for generated message types: the JSON
// codec (§4.2) marshals them like any other struct, without requiring a
// proto.Message.
type echoRequest struct {
	Payload []byte
}

type echoResponse struct {
	Payload []byte
}

// wireUp builds a connected client/server StubConnection pair: every
// OpenStream call on the client side hands the peer half of a fresh
// StubStream pipe to the server's accept loop, the way an adapter would
// demultiplex inbound streams off one real connection.
func wireUp() (client, srv *transporttest.StubConnection) {
	pending := make(chan transport.Stream, 16)
	client = transporttest.NewStubConnection("client", "server", func() (transport.Stream, transport.Stream) {
		a, b := transporttest.NewStubStreamPair(transporttest.StreamFuncs{}, transporttest.StreamFuncs{})
		pending <- b
		return a, b
	}, transporttest.ConnFuncs{})

	srv = transporttest.NewStubConnection("server", "client", nil, transporttest.ConnFuncs{
		OpenStream: func(c *transporttest.StubConnection, ctx context.Context) (transport.Stream, error) {
			select {
			case s := <-pending:
				return s, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	})
	return client, srv
}

func echoServiceDesc() *server.ServiceDesc {
	return &server.ServiceDesc{
		ServiceName: "echo.Echo",
		Methods: map[string]server.MethodDesc{
			"Say": {
				Kind: server.Unary,
				Handler: func(_ any, ss *server.ServerStream) error {
					req := &echoRequest{}
					if err := ss.RecvMsg(req); err != nil {
						return err
					}
					return ss.SendMsg(&echoResponse{Payload: req.Payload})
				},
			},
		},
	}
}

// TestUnaryHappyPath exercises the "unary happy path" scenario: a 2-byte
// request round-trips through an echo handler with grpc-status 0.
func TestUnaryHappyPath(t *testing.T) {
	clientConn, serverConn := wireUp()

	srv := server.NewServer(server.WithCodec(mustCodec(t)))
	srv.RegisterService(echoServiceDesc(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.ServeConn(ctx, serverConn)

	cc := callengine.NewClientConn(clientConn, mustCodec(t), interceptor.Chain{}, "client")
	defer cc.Close()

	req := &echoRequest{Payload: []byte{0x48, 0x69}}
	resp := &echoResponse{}
	if err := cc.Invoke(context.Background(), "/echo.Echo/Say", req, resp); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !bytes.Equal(resp.Payload, []byte{0x48, 0x69}) {
		t.Fatalf("Invoke response = %v, want [0x48 0x69]", resp.Payload)
	}
}

// TestUnaryDeadlineExceeded exercises the deadline-already-passed short
// circuit: the call engine never opens a stream once the resolved deadline
// has already elapsed.
func TestUnaryDeadlineExceeded(t *testing.T) {
	clientConn, serverConn := wireUp()

	srv := server.NewServer(server.WithCodec(mustCodec(t)))
	srv.RegisterService(echoServiceDesc(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.ServeConn(ctx, serverConn)

	cc := callengine.NewClientConn(clientConn, mustCodec(t), interceptor.Chain{}, "client")
	defer cc.Close()

	past := time.Now().Add(-time.Second)
	req := &echoRequest{Payload: []byte{0x01}}
	resp := &echoResponse{}
	err := cc.Invoke(context.Background(), "/echo.Echo/Say", req, resp, callengine.WithDeadline(past))
	if status.Code(err) != codes.DeadlineExceeded {
		t.Fatalf("Invoke with expired deadline = %v, want DeadlineExceeded", err)
	}
}

// TestUnimplementedMethod exercises the server's unimplemented-method path:
// a call against an unregistered method returns codes.Unimplemented.
func TestUnimplementedMethod(t *testing.T) {
	clientConn, serverConn := wireUp()

	srv := server.NewServer(server.WithCodec(mustCodec(t)))
	srv.RegisterService(echoServiceDesc(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.ServeConn(ctx, serverConn)

	cc := callengine.NewClientConn(clientConn, mustCodec(t), interceptor.Chain{}, "client")
	defer cc.Close()

	req := &echoRequest{Payload: []byte{0x01}}
	resp := &echoResponse{}
	err := cc.Invoke(context.Background(), "/echo.Echo/Missing", req, resp)
	if status.Code(err) != codes.Unimplemented {
		t.Fatalf("Invoke unregistered method = %v, want Unimplemented", err)
	}
}

func mustCodec(t *testing.T) encoding.Codec {
	t.Helper()
	c := encoding.GetCodec(jsoncodec.Name)
	if c == nil {
		t.Fatal("jsoncodec not registered")
	}
	return c
}
