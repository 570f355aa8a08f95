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

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/credentials"
	"github.com/coreproto/grpccore/status"
)

// Auth is the built-in auth interceptor (§4.7): on request it injects a
// configured credential into a configured metadata key; it is passive on
// response. A credential refresh failure is mapped to codes.Unauthenticated
// (§7 table: "Auth interceptor reject").
type Auth struct {
	// Credentials supplies the metadata to attach; required.
	Credentials credentials.PerRPCCredentials
}

// OnRequest implements Interceptor.
func (a Auth) OnRequest(ctx context.Context, ic *Context) error {
	md, err := a.Credentials.GetRequestMetadata(ctx, ic.Method)
	if err != nil {
		return status.Newf(codes.Unauthenticated, "auth: %v", err).Err()
	}
	for k, v := range md {
		ic.Metadata.Set(k, v)
	}
	return nil
}

// OnResponse implements Interceptor; the auth interceptor is passive on the
// response path.
func (Auth) OnResponse(context.Context, *Context) error { return nil }
