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
	"io"
	"sync"
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

// ClientStream is the handle returned to callers of the three streaming
// call kinds (§4.4-§4.6). Which of Send/Recv are valid depends on the call
// kind that created it; CloseSend and a final Recv end client-streaming and
// bidirectional calls.
type ClientStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	stop   func()

	cc       *ClientConn
	ic       *interceptor.Context
	chainRan int
	codec    encoding.Codec
	stream   transport.Stream
	o        callOptions

	sendCh chan sendReq
	sendWG sync.WaitGroup

	recvMu sync.Mutex
	reasm  *framing.Reassembler
	status *status.Status // set once trailers are observed
}

type sendReq struct {
	body []byte
	done chan error
}

// NewClientStream opens a stream for a streaming call (§4.4-§4.6 "the
// engine opens the stream, sends one headers frame, then exposes a send
// channel to the caller"). No request message is sent at open; server
// streaming, which sends one request up front, goes through
// NewServerStreamCall.
func (cc *ClientConn) NewClientStream(ctx context.Context, method string, opts ...CallOption) (*ClientStream, error) {
	o := cc.defaultOpt
	for _, opt := range opts {
		opt(&o)
	}
	codec := cc.resolveCodec(o)
	outMD, _ := metadata.FromOutgoingContext(ctx)
	ic := interceptor.NewContext(method, outMD.Copy())
	ic.Attempt = 1
	ic.StartTime = time.Now()

	// Streaming calls span many messages, so the chain's on_request runs
	// once at open and on_response once at close (§4.7 applies per "call",
	// not per message, for the streaming kinds).
	ran := 0
	for _, it := range cc.chain {
		ran++
		if err := it.OnRequest(ctx, ic); err != nil {
			runChainReverse(ctx, cc.chain, ran, ic, status.Convert(err))
			return nil, err
		}
	}

	callCtx := ctx
	var cancel context.CancelFunc
	ctxDeadline, ctxHasDeadline := ctx.Deadline()
	if d, ok := o.resolveDeadline(ctxDeadline, ctxHasDeadline, ic.StartTime); ok {
		callCtx, cancel = context.WithDeadline(ctx, d)
		ic.Metadata.Set("grpc-timeout", timeout.Format(time.Until(d)))
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}

	stream, err := cc.conn.OpenStream(callCtx)
	if err != nil {
		cancel()
		return nil, mapTransportErr(err)
	}
	stop := watchCancellation(callCtx, stream)

	hb := headerframe.HeaderBlock{Method: "POST", Path: method, Authority: cc.authority, Metadata: ic.Metadata}
	hb.Metadata.Set("content-type", "application/grpc")
	if err := stream.WriteFrame(callCtx, transport.Frame{
		Type: transport.FrameHeaders, Flags: transport.FlagEndHeaders, Payload: headerframe.Encode(hb),
	}); err != nil {
		stop()
		cancel()
		return nil, mapTransportErr(err)
	}

	bufSize := o.producerBufSize
	if bufSize <= 0 {
		bufSize = defaultProducerBufferSize
	}

	cs := &ClientStream{
		ctx: callCtx, cancel: cancel, stop: stop,
		cc: cc, ic: ic, chainRan: ran, codec: codec, stream: stream, o: o,
		sendCh: make(chan sendReq, bufSize),
		reasm:  framing.NewReassembler(o.maxRecvSize),
	}
	cs.sendWG.Add(1)
	go cs.sendLoop()
	return cs, nil
}

// sendLoop serializes writes onto the stream; it is the sole writer so that
// bounded buffering (the "bounded producer buffer" of §4.4) happens on
// sendCh without requiring the transport.Stream itself to be goroutine-safe
// for concurrent writers.
func (cs *ClientStream) sendLoop() {
	defer cs.sendWG.Done()
	for req := range cs.sendCh {
		err := cs.stream.WriteFrame(cs.ctx, transport.Frame{
			Type:    transport.FrameData,
			Payload: framing.Encode(framing.Message{Body: req.body}),
		})
		req.done <- mapTransportErr(err)
	}
}

// SendMsg encodes and writes one message as a data frame without
// END_STREAM (§4.4). It blocks if the bounded send buffer is full
// (backpressure per §4.4).
func (cs *ClientStream) SendMsg(msg any) error {
	body, err := encodeRequest(cs.codec, msg)
	if err != nil {
		return err
	}
	cs.ic.RequestSize += len(body)
	done := make(chan error, 1)
	select {
	case cs.sendCh <- sendReq{body: body, done: done}:
	case <-cs.ctx.Done():
		return status.FromContextError(cs.ctx.Err()).Err()
	}
	select {
	case err := <-done:
		return err
	case <-cs.ctx.Done():
		return status.FromContextError(cs.ctx.Err()).Err()
	}
}

// CloseSend writes a final empty data frame with END_STREAM and stops
// accepting further sends (§4.4 "finish() writes a final empty data frame").
func (cs *ClientStream) CloseSend() error {
	close(cs.sendCh)
	cs.sendWG.Wait()
	return mapTransportErr(cs.stream.WriteFrame(cs.ctx, transport.Frame{
		Type: transport.FrameData, Flags: transport.FlagEndStream,
	}))
}

// RecvMsg reads and decodes the next response message. Once the trailer
// arrives it returns io.EOF for an ok status (the stream ended normally,
// §4.5 "terminates when a trailers frame with grpc-status arrives") or the
// mapped status error otherwise.
func (cs *ClientStream) RecvMsg(reply any) error {
	cs.recvMu.Lock()
	defer cs.recvMu.Unlock()

	if cs.status != nil {
		if cs.status.Code() == codes.OK {
			return io.EOF
		}
		return cs.status.Err()
	}

	for {
		if msg, ok, err := cs.reasm.Next(); err != nil {
			return err
		} else if ok {
			cs.ic.ResponseSize += len(msg.Body)
			return decodeResponse(cs.codec, msg.Body, reply)
		}

		f, err := cs.stream.ReadFrame(cs.ctx)
		if err != nil {
			if cs.ctx.Err() != nil {
				return status.FromContextError(cs.ctx.Err()).Err()
			}
			return mapTransportErr(err)
		}
		switch f.Type {
		case transport.FrameData:
			cs.reasm.Write(f.Payload)
		case transport.FrameStatus:
			hb, derr := headerframe.Decode(f.Payload)
			if derr != nil {
				return status.Newf(codes.Internal, "callengine: decode trailers: %v", derr).Err()
			}
			cs.status = statusFromTrailers(hb.Metadata)
			if cs.status.Code() == codes.OK {
				return io.EOF
			}
			return cs.status.Err()
		}
	}
}

// CloseAndRecv is the client-streaming terminal operation (§4.4): it closes
// the send direction and returns the single response message.
func (cs *ClientStream) CloseAndRecv(reply any) error {
	if err := cs.CloseSend(); err != nil {
		return err
	}
	err := cs.RecvMsg(reply)
	if err == io.EOF {
		return status.New(codes.Internal, "callengine: server closed stream ok without a response message").Err()
	}
	return err
}

// Close releases the stream and cancels its context, running the
// interceptor chain's on_response in reverse order (§4.7, §8 invariant:
// "invokes on_response for every interceptor whose on_request was
// invoked"). Safe to call after the stream has already completed normally.
func (cs *ClientStream) Close() error {
	finalStatus := cs.status
	if finalStatus == nil {
		finalStatus = status.New(codes.OK, "")
	}
	runChainReverse(cs.ctx, cs.cc.chain, cs.chainRan, cs.ic, finalStatus)

	cs.stop()
	cs.cancel()
	return cs.stream.Close()
}

// runChainReverse runs OnResponse on the first n interceptors of chain, in
// reverse order, mirroring interceptor.Chain.Do's reverse pass.
func runChainReverse(ctx context.Context, chain interceptor.Chain, n int, ic *interceptor.Context, final *status.Status) {
	ic.Status = final
	for i := n - 1; i >= 0; i-- {
		_ = chain[i].OnResponse(ctx, ic)
	}
}
