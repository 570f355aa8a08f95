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

// Package headerframe encodes and decodes the payload of headers and
// trailer frames (§4.2): pseudo-headers, content-type, grpc-timeout, and
// user metadata. Compression of the header block is out of scope for the
// core (§4.2 "Compression is out of scope for the core"), so the encoding
// here is a plain repeated length-prefixed key/value list rather than
// HPACK; an HTTP/2 transport adapter is free to re-encode this list with
// HPACK on the wire without the core knowing the difference.
package headerframe

import (
	"encoding/binary"
	"fmt"

	"github.com/coreproto/grpccore/metadata"
)

// HeaderBlock is the decoded content of a headers or trailers frame.
type HeaderBlock struct {
	Method    string // :method, e.g. "POST"
	Path      string // :path, e.g. "/echo.Echo/Say"
	Authority string // :authority
	Metadata  metadata.MD
}

const (
	pseudoMethod    = ":method"
	pseudoPath      = ":path"
	pseudoAuthority = ":authority"
)

// Encode serializes hb as a sequence of [keylen u32][key][vallen u32][val]
// entries, pseudo-headers first in a fixed order, then one entry per
// metadata value (multi-valued keys repeat the key).
func Encode(hb HeaderBlock) []byte {
	var out []byte
	put := func(k, v string) {
		out = appendField(out, k, v)
	}
	if hb.Method != "" {
		put(pseudoMethod, hb.Method)
	}
	if hb.Path != "" {
		put(pseudoPath, hb.Path)
	}
	if hb.Authority != "" {
		put(pseudoAuthority, hb.Authority)
	}
	for k, vals := range hb.Metadata {
		for _, v := range vals {
			put(k, v)
		}
	}
	return out
}

func appendField(buf []byte, k, v string) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(k)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, k...)
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, v...)
	return buf
}

// Decode parses a byte slice produced by Encode.
func Decode(data []byte) (HeaderBlock, error) {
	hb := HeaderBlock{Metadata: metadata.New(nil)}
	for len(data) > 0 {
		k, rest, err := readField(data)
		if err != nil {
			return HeaderBlock{}, err
		}
		v, rest2, err := readField(rest)
		if err != nil {
			return HeaderBlock{}, err
		}
		data = rest2

		switch k {
		case pseudoMethod:
			hb.Method = v
		case pseudoPath:
			hb.Path = v
		case pseudoAuthority:
			hb.Authority = v
		default:
			hb.Metadata.Append(k, v)
		}
	}
	return hb, nil
}

func readField(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("headerframe: truncated length prefix")
	}
	n := binary.BigEndian.Uint32(data)
	data = data[4:]
	if uint64(len(data)) < uint64(n) {
		return "", nil, fmt.Errorf("headerframe: truncated field, want %d bytes", n)
	}
	return string(data[:n]), data[n:], nil
}
