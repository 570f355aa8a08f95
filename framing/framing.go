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

// Package framing implements the RPC message envelope (§3 RPC Message, §6):
// one byte compression flag, a 4-byte big-endian length, then the
// codec-produced body. It sits directly on top of the transport SPI's data
// frames and tolerates message fragmentation across frames (§4.2).
package framing

import (
	"encoding/binary"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/status"
)

// DefaultMaxMessageSize is the default cap on a single RPC message body,
// enforced by the Reassembler (§4.2, §8 boundary behavior).
const DefaultMaxMessageSize = 4 * 1024 * 1024 // 4 MiB

const headerLen = 5 // 1 byte compression flag + 4 byte big-endian length

// Message is a single length-prefixed RPC message, ready to be split across
// one or more transport data frames.
type Message struct {
	Compressed bool
	Body       []byte
}

// Encode renders m as the wire bytes described in §3/§6, in one contiguous
// buffer. The client engine and the server each write that buffer as the
// payload of a single data frame.
func Encode(m Message) []byte {
	out := make([]byte, headerLen+len(m.Body))
	if m.Compressed {
		out[0] = 1
	}
	binary.BigEndian.PutUint32(out[1:5], uint32(len(m.Body)))
	copy(out[5:], m.Body)
	return out
}

// Reassembler accumulates bytes from successive data frames and yields
// complete Messages as soon as enough bytes have arrived. It rejects a
// message whose declared length exceeds maxSize with codes.ResourceExhausted
// (§4.2, §8 boundary behavior).
type Reassembler struct {
	maxSize int
	buf     []byte
}

// NewReassembler returns a Reassembler enforcing maxSize. A maxSize of 0
// selects DefaultMaxMessageSize.
func NewReassembler(maxSize int) *Reassembler {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &Reassembler{maxSize: maxSize}
}

// Write feeds newly-received bytes into the reassembler.
func (r *Reassembler) Write(p []byte) {
	r.buf = append(r.buf, p...)
}

// Next extracts the next complete Message, if enough bytes have arrived.
// ok is false when more bytes are needed; err is non-nil (wrapping
// codes.ResourceExhausted) when the declared length exceeds the cap.
func (r *Reassembler) Next() (m Message, ok bool, err error) {
	if len(r.buf) < headerLen {
		return Message{}, false, nil
	}
	length := int(binary.BigEndian.Uint32(r.buf[1:5]))
	if length > r.maxSize {
		return Message{}, false, status.Newf(codes.ResourceExhausted,
			"framing: received message larger than max (%d > %d)", length, r.maxSize).Err()
	}
	if len(r.buf) < headerLen+length {
		return Message{}, false, nil
	}
	m = Message{
		Compressed: r.buf[0] != 0,
		Body:       append([]byte(nil), r.buf[headerLen:headerLen+length]...),
	}
	r.buf = r.buf[headerLen+length:]
	return m, true, nil
}
