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

package callengine

import (
	"context"
	"strconv"
	"time"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/encoding"
	"github.com/coreproto/grpccore/framing"
	"github.com/coreproto/grpccore/interceptor"
	"github.com/coreproto/grpccore/internal/headerframe"
	"github.com/coreproto/grpccore/internal/timeout"
	"github.com/coreproto/grpccore/metadata"
	"github.com/coreproto/grpccore/status"
	"github.com/coreproto/grpccore/transport"
)

// Invoke performs a unary call (§4.3): it resolves the deadline, runs the
// interceptor chain around the wire exchange, and retries as directed by
// the chain's retry interceptor (§9 "the retry loop... engine-driven, with
// attempt counter in the call context").
func (cc *ClientConn) Invoke(ctx context.Context, method string, req, reply any, opts ...CallOption) error {
	o := cc.defaultOpt
	for _, opt := range opts {
		opt(&o)
	}
	codec := cc.resolveCodec(o)

	outMD, _ := metadata.FromOutgoingContext(ctx)
	started := time.Now()

	for attempt := 1; ; attempt++ {
		ic := interceptor.NewContext(method, outMD.Copy())
		ic.Attempt = attempt
		ic.StartTime = time.Now()

		err := cc.chain.Do(ctx, ic, func(callCtx context.Context, cic *interceptor.Context) error {
			return cc.doUnary(callCtx, cic, codec, req, reply, o, started)
		})

		if interceptor.ShouldRetry(ic) {
			continue
		}
		return err
	}
}

// doUnary performs one attempt's wire exchange: open a stream, send headers
// and one data frame with END_STREAM, then await the response (§4.3 steps
// 3-4).
func (cc *ClientConn) doUnary(ctx context.Context, ic *interceptor.Context, codec encoding.Codec, req, reply any, o callOptions, started time.Time) error {
	callCtx := ctx
	ctxDeadline, ctxHasDeadline := ctx.Deadline()
	deadline, hasDeadline := o.resolveDeadline(ctxDeadline, ctxHasDeadline, started)
	if hasDeadline {
		if !time.Now().Before(deadline) {
			return status.New(codes.DeadlineExceeded, "callengine: deadline already passed").Err()
		}
		var cancel context.CancelFunc
		callCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
		ic.Metadata.Set("grpc-timeout", timeout.Format(time.Until(deadline)))
	}

	stream, err := cc.conn.OpenStream(callCtx)
	if err != nil {
		return mapTransportErr(err)
	}
	stop := watchCancellation(callCtx, stream)
	defer stop()
	defer stream.Close()

	hb := headerframe.HeaderBlock{
		Method:    "POST",
		Path:      ic.Method,
		Authority: cc.authority,
		Metadata:  ic.Metadata,
	}
	hb.Metadata.Set("content-type", "application/grpc")
	if err := stream.WriteFrame(callCtx, transport.Frame{
		Type:    transport.FrameHeaders,
		Flags:   transport.FlagEndHeaders,
		Payload: headerframe.Encode(hb),
	}); err != nil {
		return mapTransportErr(err)
	}

	body, err := encodeRequest(codec, req)
	if err != nil {
		return err
	}
	ic.RequestSize = len(body)
	if err := stream.WriteFrame(callCtx, transport.Frame{
		Type:    transport.FrameData,
		Flags:   transport.FlagEndStream,
		Payload: framing.Encode(framing.Message{Body: body}),
	}); err != nil {
		return mapTransportErr(err)
	}

	return cc.awaitUnaryResponse(callCtx, ic, stream, codec, reply, o)
}

func (cc *ClientConn) awaitUnaryResponse(ctx context.Context, ic *interceptor.Context, stream transport.Stream, codec encoding.Codec, reply any, o callOptions) error {
	reasm := framing.NewReassembler(o.maxRecvSize)
	var respBody []byte
	haveBody := false

	for {
		f, err := stream.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return status.FromContextError(ctx.Err()).Err()
			}
			return mapTransportErr(err)
		}

		switch f.Type {
		case transport.FrameData:
			reasm.Write(f.Payload)
			for {
				msg, ok, rerr := reasm.Next()
				if rerr != nil {
					return rerr
				}
				if !ok {
					break
				}
				respBody = msg.Body
				haveBody = true
			}
		case transport.FrameStatus:
			hb, err := headerframe.Decode(f.Payload)
			if err != nil {
				return status.Newf(codes.Internal, "callengine: decode trailers: %v", err).Err()
			}
			st := statusFromTrailers(hb.Metadata)
			if st.Code() != codes.OK {
				return st.Err()
			}
			if !haveBody {
				return errNoResponse
			}
			ic.ResponseSize = len(respBody)
			return decodeResponse(codec, respBody, reply)
		}

		if f.Flags.Has(transport.FlagEndStream) {
			return errNoResponse
		}
	}
}

// statusFromTrailers extracts grpc-status/grpc-message from trailer
// metadata (§6 "trailers carry grpc-status... and optional grpc-message").
func statusFromTrailers(md metadata.MD) *status.Status {
	codeStr, ok := md.GetFirst("grpc-status")
	if !ok {
		return status.New(codes.Internal, "callengine: missing grpc-status trailer")
	}
	n, err := strconv.Atoi(codeStr)
	if err != nil {
		return status.New(codes.Internal, "callengine: malformed grpc-status")
	}
	msg, _ := md.GetFirst("grpc-message")
	return status.New(codes.Code(n), msg)
}
