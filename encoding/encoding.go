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

// Package encoding defines the codec façade (§4.2) and a registry for
// looking codecs up by name. Compression is out of scope for the core
// (Non-goals, §1); only the on-wire compression-flag byte is preserved by
// the framing layer, so no Compressor interface lives here.
package encoding

import "strings"

// Codec defines the interface the core uses to encode and decode message
// bodies. Implementations must be safe for concurrent use.
type Codec interface {
	// Marshal returns the wire format of v.
	Marshal(v any) ([]byte, error)
	// Unmarshal parses the wire format into v.
	Unmarshal(data []byte, v any) error
	// Name returns the codec's name, used as the grpc content-subtype.
	Name() string
}

var registeredCodecs = make(map[string]Codec)

// RegisterCodec registers c for lookup by its lowercased Name(). Call only
// during initialization (e.g. from an init func); not safe for concurrent
// registration.
func RegisterCodec(c Codec) {
	if c == nil {
		panic("encoding: cannot register a nil Codec")
	}
	name := strings.ToLower(c.Name())
	if name == "" {
		panic("encoding: cannot register a Codec with an empty Name()")
	}
	registeredCodecs[name] = c
}

// GetCodec returns the Codec registered under contentSubtype (expected
// lowercase), or nil if none is registered.
func GetCodec(contentSubtype string) Codec {
	return registeredCodecs[contentSubtype]
}
