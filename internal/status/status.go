/*
 *
 * Copyright 2017 gRPC authors.
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

// Package status implements the canonical Status type carried between the
// call engine, the interceptor pipeline and callers. It mirrors the shape of
// google.golang.org/genproto/googleapis/rpc/status.Status on the wire and is
// the single representation of "did this call succeed" in the core.
package status

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/coreproto/grpccore/codes"

	spb "google.golang.org/genproto/googleapis/rpc/status"
)

// Status holds a canonical gRPC status code, a message and optional binary
// details (§3 Status). A nil *Status is treated as codes.OK.
type Status struct {
	s *spb.Status
}

// New returns a Status representing c and msg.
func New(c codes.Code, msg string) *Status {
	return &Status{s: &spb.Status{Code: int32(c), Message: msg}}
}

// Newf returns New(c, fmt.Sprintf(format, a...)).
func Newf(c codes.Code, format string, a ...any) *Status {
	return New(c, fmt.Sprintf(format, a...))
}

// FromProto returns a Status wrapping s. A nil s is treated as an OK status
// with a nil proto, matching the teacher's "s.Proto() == nil on OK" contract.
func FromProto(s *spb.Status) *Status {
	if s == nil {
		return nil
	}
	return &Status{s: s}
}

// Code returns the canonical code, or codes.OK if s is nil.
func (s *Status) Code() codes.Code {
	if s == nil || s.s == nil {
		return codes.OK
	}
	return codes.Code(s.s.GetCode())
}

// Message returns the message, or "" if s is nil.
func (s *Status) Message() string {
	if s == nil || s.s == nil {
		return ""
	}
	return s.s.GetMessage()
}

// Proto returns the underlying wire representation, or nil if s is nil.
func (s *Status) Proto() *spb.Status {
	if s == nil {
		return nil
	}
	return proto.Clone(s.s).(*spb.Status)
}

// Details returns the details packed in the status, decoded opaquely as Any.
func (s *Status) Details() []*anypb.Any {
	if s == nil || s.s == nil {
		return nil
	}
	return s.s.GetDetails()
}

// WithDetails returns a new status with d appended as packed Any details.
// It returns an error if s's code is OK, since an OK status is never allowed
// to carry caller-observable detail (§3 invariant).
func (s *Status) WithDetails(details ...*anypb.Any) (*Status, error) {
	if s.Code() == codes.OK {
		return nil, errors.New("status: cannot add details to a status with code OK")
	}
	p := s.Proto()
	p.Details = append(p.Details, details...)
	return &Status{s: p}, nil
}

// Err returns an immutable error representing s; if s.Code() is OK, returns
// nil.
func (s *Status) Err() error {
	if s.Code() == codes.OK {
		return nil
	}
	return &Error{s: s}
}

// Error wraps a Status to implement the error interface while exposing the
// GRPCStatus() accessor other packages use for interop (§7.1).
type Error struct {
	s *Status
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error: code = %s desc = %s", e.s.Code(), e.s.Message())
}

// GRPCStatus returns the Status represented by e.
func (e *Error) GRPCStatus() *Status {
	return e.s
}

// Is implements the errors.Is contract for two status errors with the same
// code, message and details.
func (e *Error) Is(target error) bool {
	o, ok := target.(*Error)
	if !ok {
		return false
	}
	return proto.Equal(e.s.Proto(), o.s.Proto())
}
