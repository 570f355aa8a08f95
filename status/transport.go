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

package status

import (
	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/transport"
)

// FromTransportError maps a transport.Error to a Status per the fixed table
// in §7.1. Any other error is mapped to codes.Unavailable, since a
// non-transport.Error crossing this boundary means the connection itself is
// no longer trustworthy.
func FromTransportError(err error) *Status {
	if err == nil {
		return New(codes.OK, "")
	}
	te, ok := err.(*transport.Error)
	if !ok {
		return New(codes.Unavailable, err.Error())
	}
	switch te.Kind {
	case transport.ErrTimeout:
		return New(codes.DeadlineExceeded, te.Error())
	case transport.ErrCanceled:
		return New(codes.Canceled, te.Error())
	case transport.ErrClosed, transport.ErrConnectionReset, transport.ErrNotConnected:
		return New(codes.Unavailable, te.Error())
	case transport.ErrProtocol:
		return New(codes.Internal, te.Error())
	case transport.ErrResourceExhausted, transport.ErrOutOfMemory:
		return New(codes.ResourceExhausted, te.Error())
	case transport.ErrInvalidArgument:
		return New(codes.InvalidArgument, te.Error())
	case transport.ErrInvalidState:
		return New(codes.Internal, te.Error())
	case transport.ErrTemporary:
		return New(codes.Unavailable, te.Error())
	default:
		return New(codes.Unknown, te.Error())
	}
}
