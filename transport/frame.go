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

// Package transport defines the Service Provider Interface (§4.1): the only
// boundary between the core and any specific wire protocol. A concrete
// transport (QUIC, HTTP/2, an in-memory mock) implements Transport,
// Listener, Connection and Stream; the core never imports a transport
// implementation directly.
package transport

// FrameType identifies the kind of payload a Frame carries. This is the SPI
// frame set; the richer HTTP/2-style set (settings, ping, ...) is a
// transport-internal concern and is not part of the SPI (§9).
type FrameType uint8

const (
	// FrameData carries a chunk of a length-prefixed RPC message (§3 RPC Message).
	FrameData FrameType = iota
	// FrameHeaders carries pseudo-headers and user metadata.
	FrameHeaders
	// FrameStatus carries trailers: grpc-status and grpc-message.
	FrameStatus
	// FrameCancel signals that the sender is abandoning the stream.
	FrameCancel
	// FrameKeepalive is a transport-level liveness probe (ping/pong).
	FrameKeepalive
	// FrameMetadata carries metadata-only updates outside of headers/trailers.
	FrameMetadata
)

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "DATA"
	case FrameHeaders:
		return "HEADERS"
	case FrameStatus:
		return "STATUS"
	case FrameCancel:
		return "CANCEL"
	case FrameKeepalive:
		return "KEEPALIVE"
	case FrameMetadata:
		return "METADATA"
	default:
		return "UNKNOWN"
	}
}

// Flags carries the bit flags attached to a Frame.
type Flags uint8

const (
	// FlagEndStream marks the final frame the sender will write on this
	// stream in this direction.
	FlagEndStream Flags = 1 << iota
	// FlagEndHeaders marks the final frame of a (possibly split) headers
	// block.
	FlagEndHeaders
)

// Has reports whether f is set in flags.
func (fl Flags) Has(f Flags) bool { return fl&f != 0 }

// Frame is the minimal transport envelope (§3 Frame). Frames belong to a
// single Stream.
type Frame struct {
	Type    FrameType
	Flags   Flags
	Payload []byte
}
