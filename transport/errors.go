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

package transport

import "fmt"

// ErrorKind is the closed set of failure kinds an adapter may surface.
// Adapters MUST NOT surface implementation-specific error kinds (§4.1): any
// transport-internal error must be mapped into one of these before crossing
// the SPI boundary.
type ErrorKind uint8

const (
	ErrTimeout ErrorKind = iota
	ErrCanceled
	ErrClosed
	ErrConnectionReset
	ErrTemporary
	ErrResourceExhausted
	ErrProtocol
	ErrInvalidArgument
	ErrNotConnected
	ErrInvalidState
	ErrOutOfMemory
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "Timeout"
	case ErrCanceled:
		return "Canceled"
	case ErrClosed:
		return "Closed"
	case ErrConnectionReset:
		return "ConnectionReset"
	case ErrTemporary:
		return "Temporary"
	case ErrResourceExhausted:
		return "ResourceExhausted"
	case ErrProtocol:
		return "Protocol"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrNotConnected:
		return "NotConnected"
	case ErrInvalidState:
		return "InvalidState"
	case ErrOutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// Error is the error type every SPI operation fails with. The core maps Kind
// to a Status code via the fixed table in §7.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "transport: " + e.Kind.String()
	}
	return fmt.Sprintf("transport: %s: %s", e.Kind, e.Msg)
}

// NewError builds a transport Error of the given kind.
func NewError(k ErrorKind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

// IsKind reports whether err is a *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	te, ok := err.(*Error)
	return ok && te.Kind == k
}
