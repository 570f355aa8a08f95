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

package status

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/internal/grpctest"

	spb "google.golang.org/genproto/googleapis/rpc/status"
)

type s struct {
	grpctest.Tester
}

func Test(t *testing.T) {
	grpctest.RunSubTests(t, s{})
}

func errEqual(err1, err2 error) bool {
	s1, ok := FromError(err1)
	if !ok {
		return false
	}
	s2, ok := FromError(err2)
	if !ok {
		return false
	}
	return proto.Equal(s1.Proto(), s2.Proto())
}

func (s) TestErrorsWithSameParameters(t *testing.T) {
	const description = "some description"
	e1 := Errorf(codes.AlreadyExists, description)
	e2 := Errorf(codes.AlreadyExists, description)
	if e1 == e2 || !errEqual(e1, e2) {
		t.Fatalf("Errors should be equivalent but unique - e1: %v  e2: %v", e1, e2)
	}
}

func (s) TestFromToProto(t *testing.T) {
	want := &spb.Status{
		Code:    int32(codes.Internal),
		Message: "test test test",
		Details: []*anypb.Any{{TypeUrl: "foo", Value: []byte{3, 2, 1}}},
	}
	got := FromProto(want).Proto()
	if !proto.Equal(want, got) {
		t.Fatalf("FromProto(%v).Proto() = %v; want identical", want, got)
	}
}

func (s) TestFromNilProto(t *testing.T) {
	for _, st := range []*Status{nil, FromProto(nil)} {
		if c := st.Code(); c != codes.OK {
			t.Errorf("st: %v - Code() = %v; want OK", st, c)
		}
		if m := st.Message(); m != "" {
			t.Errorf("st: %v - Message() = %q; want \"\"", st, m)
		}
		if p := st.Proto(); p != nil {
			t.Errorf("st: %v - Proto() = %v; want nil", st, p)
		}
		if e := st.Err(); e != nil {
			t.Errorf("st: %v - Err() = %v; want nil", st, e)
		}
	}
}

func (s) TestError(t *testing.T) {
	err := Error(codes.Internal, "test description")
	if got, want := err.Error(), "rpc error: code = Internal desc = test description"; got != want {
		t.Fatalf("err.Error() = %q; want %q", got, want)
	}
	st, _ := FromError(err)
	if got, want := st.Code(), codes.Internal; got != want {
		t.Fatalf("Code() = %s; want %s", got, want)
	}
}

func (s) TestErrorOK(t *testing.T) {
	if err := Error(codes.OK, "foo"); err != nil {
		t.Fatalf("Error(OK, _) = %v; want nil", err)
	}
}

func (s) TestFromError(t *testing.T) {
	code, message := codes.Internal, "test description"
	err := Error(code, message)
	st, ok := FromError(err)
	if !ok || st.Code() != code || st.Message() != message {
		t.Fatalf("FromError(%v) = %v, %v; want code=%s message=%q, true", err, st, ok, code, message)
	}
}

func (s) TestFromErrorOK(t *testing.T) {
	st, ok := FromError(nil)
	if !ok || st.Code() != codes.OK {
		t.Fatalf("FromError(nil) = %v, %v; want OK, true", st, ok)
	}
}

type customError struct {
	Code    codes.Code
	Message string
}

func (c customError) Error() string {
	return fmt.Sprintf("rpc error: code = %s desc = %s", c.Code, c.Message)
}

func (c customError) GRPCStatus() *Status {
	return New(c.Code, c.Message)
}

func (s) TestFromErrorImplementsInterface(t *testing.T) {
	code, message := codes.Internal, "test description"
	err := customError{Code: code, Message: message}
	st, ok := FromError(err)
	if !ok || st.Code() != code || st.Message() != message {
		t.Fatalf("FromError(%v) = %v, %v; want code=%s message=%q, true", err, st, ok, code, message)
	}
}

func (s) TestFromErrorUnknownError(t *testing.T) {
	err := errors.New("unknown error")
	st, ok := FromError(err)
	if ok || st.Code() != codes.Unknown || st.Message() != err.Error() {
		t.Fatalf("FromError(%v) = %v, %v; want Unknown, false", err, st, ok)
	}
}

func (s) TestFromErrorWrapped(t *testing.T) {
	const code, message = codes.Internal, "test description"
	err := fmt.Errorf("wrapped error: %w", Error(code, message))
	st, ok := FromError(err)
	if !ok || st.Code() != code || st.Message() != message {
		t.Fatalf("FromError(%v) = %v, %v; want code=%s message=%q, true", err, st, ok, code, message)
	}
}

func (s) TestCode(t *testing.T) {
	const code = codes.Internal
	if got := Code(Error(code, "test")); got != code {
		t.Fatalf("Code() = %v; want %v", got, code)
	}
	if got := Code(nil); got != codes.OK {
		t.Fatalf("Code(nil) = %v; want OK", got)
	}
}

func (s) TestWithDetails(t *testing.T) {
	st := New(codes.NotFound, "missing")
	d := &anypb.Any{TypeUrl: "foo", Value: []byte{1}}
	st2, err := st.WithDetails(d)
	if err != nil {
		t.Fatalf("WithDetails() = %v; want nil error", err)
	}
	if len(st2.Details()) != 1 {
		t.Fatalf("len(Details()) = %d; want 1", len(st2.Details()))
	}
}

func (s) TestWithDetailsFailsOnOK(t *testing.T) {
	if _, err := New(codes.OK, "").WithDetails(&anypb.Any{}); err == nil {
		t.Fatal("WithDetails() on an OK status = nil error; want non-nil")
	}
}
