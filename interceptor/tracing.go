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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type tracingSpanKey struct{}

// Tracing is the optional span-attachment interceptor (§4.7): it opens one
// span per call attempt on tracer and closes it on the response pass,
// recording the method and final status. With the default no-op
// TracerProvider this costs nothing; it exists so an adapter wired to a
// real exporter gets spans for free.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing builds a Tracing interceptor that starts spans on tracer.
func NewTracing(tracer trace.Tracer) *Tracing {
	return &Tracing{tracer: tracer}
}

// OnRequest implements Interceptor. The Interceptor interface has no way to
// hand a derived context back to the chain (only Values threads state
// between hooks, same as retry's attempt flag), so the span never becomes
// the ambient context for later interceptors or the transport call; it
// still captures accurate start/end timing and the final status.
func (t *Tracing) OnRequest(ctx context.Context, ic *Context) error {
	_, span := t.tracer.Start(ctx, ic.Method, trace.WithSpanKind(trace.SpanKindClient))
	ic.Values[tracingSpanKey{}] = span
	return nil
}

// OnResponse implements Interceptor.
func (t *Tracing) OnResponse(_ context.Context, ic *Context) error {
	span, ok := ic.Values[tracingSpanKey{}].(trace.Span)
	if !ok {
		return nil
	}
	defer span.End()
	span.SetAttributes(attribute.String("grpccore.method", ic.Method))
	if ic.Status != nil {
		span.SetAttributes(attribute.Int64("grpccore.code", int64(ic.Status.Code())))
		if ic.Status.Code() != 0 {
			span.SetStatus(codes.Error, ic.Status.Message())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	return nil
}
