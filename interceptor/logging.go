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

	"github.com/coreproto/grpccore/internal/grpclog"
)

var loggingLogger = grpclog.Component("interceptor/logging")

// Logging is the built-in logging interceptor (§4.7): it records method,
// request/response sizes, status code and latency. It never fails a call.
type Logging struct{}

// OnRequest implements Interceptor.
func (Logging) OnRequest(_ context.Context, ic *Context) error {
	ic.StartTime = time.Now()
	return nil
}

// OnResponse implements Interceptor.
func (Logging) OnResponse(_ context.Context, ic *Context) error {
	latency := time.Since(ic.StartTime)
	loggingLogger.Infof("method=%s code=%s reqBytes=%d respBytes=%d latency=%s",
		ic.Method, ic.Status.Code(), ic.RequestSize, ic.ResponseSize, latency)
	return nil
}
