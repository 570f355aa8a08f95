/*
 *
 * Copyright 2014 gRPC authors.
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

// Package status implements errors returned by the core. Every error
// surfaced across an RPC boundary is backed by a Status (§7).
package status

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/anypb"

	"github.com/coreproto/grpccore/codes"
	istatus "github.com/coreproto/grpccore/internal/status"

	spb "google.golang.org/genproto/googleapis/rpc/status"
)

// Status is an alias for the internal representation so that any package
// constructing one via istatus interoperates transparently with this one.
type Status = istatus.Status

// New returns a Status representing c and msg.
func New(c codes.Code, msg string) *Status { return istatus.New(c, msg) }

// Newf returns New(c, fmt.Sprintf(format, a...)).
func Newf(c codes.Code, format string, a ...any) *Status { return istatus.Newf(c, format, a...) }

// Error returns an error representing c and msg. If c is OK, returns nil.
func Error(c codes.Code, msg string) error { return New(c, msg).Err() }

// Errorf returns Error(c, fmt.Sprintf(format, a...)).
func Errorf(c codes.Code, format string, a ...any) error {
	return Error(c, fmt.Sprintf(format, a...))
}

// ErrorProto returns an error representing s. If s.Code is OK, returns nil.
func ErrorProto(s *spb.Status) error { return FromProto(s).Err() }

// FromProto returns a Status representing s.
func FromProto(s *spb.Status) *Status { return istatus.FromProto(s) }

// FromError returns a Status representation of err.
//
//   - if err was produced by this package or wraps one (via errors.As against
//     the GRPCStatus() interface), its Status is returned and ok is true.
//   - if err is nil, an OK Status is returned and ok is true.
//   - otherwise a Status with codes.Unknown and err.Error() is returned and
//     ok is false.
func FromError(err error) (s *Status, ok bool) {
	if err == nil {
		return nil, true
	}
	type grpcstatus interface{ GRPCStatus() *Status }
	var gs grpcstatus
	if errors.As(err, &gs) {
		if gs == nil {
			return nil, false
		}
		p := gs.GRPCStatus()
		if p == nil {
			return nil, true
		}
		return p, true
	}
	return New(codes.Unknown, err.Error()), false
}

// Convert is a convenience function that calls FromError and discards ok.
func Convert(err error) *Status {
	s, _ := FromError(err)
	return s
}

// Code returns the Code of err if it is a Status error or wraps one,
// codes.OK if err is nil, or codes.Unknown otherwise.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return Convert(err).Code()
}

// FromContextError converts a context error into a Status, per the deadline
// and cancellation mapping table in §7.
func FromContextError(err error) *Status {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return New(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return New(codes.Canceled, err.Error())
	default:
		s, ok := FromError(err)
		if ok {
			return s
		}
		return New(codes.Unknown, err.Error())
	}
}

// WithDetails returns a new status with d appended, or an error if s is OK.
func WithDetails(s *Status, details ...*anypb.Any) (*Status, error) {
	return s.WithDetails(details...)
}
