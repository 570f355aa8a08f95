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
	"io"
	"strconv"
	"sync"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/encoding"
	"github.com/coreproto/grpccore/framing"
	"github.com/coreproto/grpccore/internal/headerframe"
	"github.com/coreproto/grpccore/metadata"
	"github.com/coreproto/grpccore/status"
	"github.com/coreproto/grpccore/transport"
)

// ServerStream is the handler-facing view of one in-progress call (§4.10
// step 5): request context, inbound message reassembly, and outbound
// message/trailer writes.
type ServerStream struct {
	ctx    context.Context
	stream transport.Stream
	codec  encoding.Codec
	method string

	reasm       *framing.Reassembler
	recvMu      sync.Mutex
	recvEOF     bool
	sendMu      sync.Mutex
	trailerSent bool
}

// Context returns the request context, carrying the deadline derived from
// grpc-timeout (if any) and the request metadata.
func (ss *ServerStream) Context() context.Context { return ss.ctx }

// Method returns the full wire path for this call.
func (ss *ServerStream) Method() string { return ss.method }

// RecvMsg decodes the next request message into msg, returning io.EOF once
// the client has half-closed its send direction (END_STREAM observed).
func (ss *ServerStream) RecvMsg(msg any) error {
	ss.recvMu.Lock()
	defer ss.recvMu.Unlock()

	if ss.recvEOF {
		return io.EOF
	}
	for {
		m, ok, err := ss.reasm.Next()
		if err != nil {
			return err
		}
		if ok {
			return unmarshalInto(ss.codec, m.Body, msg)
		}

		f, err := ss.stream.ReadFrame(ss.ctx)
		if err != nil {
			return status.FromTransportError(err).Err()
		}
		if f.Type == transport.FrameData {
			ss.reasm.Write(f.Payload)
		}
		if f.Flags.Has(transport.FlagEndStream) {
			// A final frame may still carry the last message's bytes.
			if f.Type == transport.FrameData {
				if m, ok, err := ss.reasm.Next(); err != nil {
					return err
				} else if ok {
					ss.recvEOF = true
					return unmarshalInto(ss.codec, m.Body, msg)
				}
			}
			ss.recvEOF = true
			return io.EOF
		}
	}
}

// SendMsg encodes and writes one response data frame without END_STREAM.
func (ss *ServerStream) SendMsg(msg any) error {
	ss.sendMu.Lock()
	defer ss.sendMu.Unlock()

	body, err := ss.codec.Marshal(msg)
	if err != nil {
		return status.Newf(codes.Internal, "server: marshal response: %v", err).Err()
	}
	return status.FromTransportError(ss.stream.WriteFrame(ss.ctx, transport.Frame{
		Type:    transport.FrameData,
		Payload: framing.Encode(framing.Message{Body: body}),
	})).Err()
}

// SendHeader writes the headers frame. SendMsg never sends one on its own:
// a handler that never calls SendHeader sends its responses with no
// headers frame.
func (ss *ServerStream) SendHeader(md metadata.MD) error {
	hb := headerframe.HeaderBlock{Metadata: md}
	hb.Metadata.Set("content-type", "application/grpc")
	return status.FromTransportError(ss.stream.WriteFrame(ss.ctx, transport.Frame{
		Type: transport.FrameHeaders, Flags: transport.FlagEndHeaders, Payload: headerframe.Encode(hb),
	})).Err()
}

// SendStatus writes the terminal trailer for this call (§4.10 step 4/5).
// It is idempotent; subsequent calls are no-ops, since only one terminal
// status may be observed per stream.
func (ss *ServerStream) SendStatus(st *status.Status) error {
	ss.sendMu.Lock()
	defer ss.sendMu.Unlock()
	if ss.trailerSent {
		return nil
	}
	ss.trailerSent = true

	md := metadata.New(nil)
	md.Set("grpc-status", strconv.Itoa(int(st.Code())))
	if st.Message() != "" {
		md.Set("grpc-message", st.Message())
	}
	return status.FromTransportError(ss.stream.WriteFrame(ss.ctx, transport.Frame{
		Type:  transport.FrameStatus,
		Flags: transport.FlagEndStream,
		Payload: headerframe.Encode(headerframe.HeaderBlock{Metadata: md}),
	})).Err()
}

func unmarshalInto(codec encoding.Codec, body []byte, msg any) error {
	if err := codec.Unmarshal(body, msg); err != nil {
		return status.Newf(codes.Internal, "server: unmarshal request: %v", err).Err()
	}
	return nil
}
