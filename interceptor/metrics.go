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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func secondsSince(ic *Context) float64 {
	return time.Since(ic.StartTime).Seconds()
}

// Metrics is the built-in metrics interceptor (§4.7): it records a call
// counter and a latency histogram per method/status via OpenTelemetry. It
// never fails a call; instrument errors are ignored, matching the teacher's
// stance that telemetry must not perturb the call outcome.
type Metrics struct {
	calls    metric.Int64Counter
	latency  metric.Float64Histogram
	reqSize  metric.Int64Histogram
	respSize metric.Int64Histogram
}

// NewMetrics builds a Metrics interceptor recording instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	calls, err := meter.Int64Counter("grpccore.call.count",
		metric.WithDescription("Number of RPCs completed."))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("grpccore.call.duration",
		metric.WithDescription("RPC latency in seconds."), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	reqSize, err := meter.Int64Histogram("grpccore.call.request_size",
		metric.WithDescription("RPC request size in bytes."), metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	respSize, err := meter.Int64Histogram("grpccore.call.response_size",
		metric.WithDescription("RPC response size in bytes."), metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	return &Metrics{calls: calls, latency: latency, reqSize: reqSize, respSize: respSize}, nil
}

// OnRequest implements Interceptor; Metrics is passive on the request path
// (StartTime is stamped by Logging, or by the engine, before this runs).
func (m *Metrics) OnRequest(context.Context, *Context) error { return nil }

// OnResponse implements Interceptor.
func (m *Metrics) OnResponse(ctx context.Context, ic *Context) error {
	attrs := metric.WithAttributes(
		attribute.String("method", ic.Method),
		attribute.String("code", ic.Status.Code().String()),
	)
	m.calls.Add(ctx, 1, attrs)
	if !ic.StartTime.IsZero() {
		m.latency.Record(ctx, secondsSince(ic), attrs)
	}
	if ic.RequestSize > 0 {
		m.reqSize.Record(ctx, int64(ic.RequestSize), attrs)
	}
	if ic.ResponseSize > 0 {
		m.respSize.Record(ctx, int64(ic.ResponseSize), attrs)
	}
	return nil
}
