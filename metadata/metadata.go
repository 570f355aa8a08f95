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

// Package metadata defines the ordered header set (§3 Metadata) exchanged
// alongside an RPC and the context helpers used to carry it.
//
// Keys are case-insensitive and stored lowercase. A key ending in "-bin"
// marks a binary value (see IsBinary); values are carried as given, and no
// layer of this module base64-encodes or validates them. The map value
// is a slice because the gRPC wire format allows repeated headers for the
// same key (§9 "Metadata multi-value" — a strict ordered-sequence
// implementation, not the source's last-write-wins simplification).
package metadata

import (
	"context"
	"strings"
)

// BinHeaderSuffix is the suffix that marks a metadata key as carrying raw
// binary data rather than printable ASCII (§3 invariant a).
const BinHeaderSuffix = "-bin"

// MD is a mapping from a lowercase header key to its ordered values.
type MD map[string][]string

// New creates an MD from a map, lowercasing all keys.
func New(m map[string]string) MD {
	md := MD{}
	for k, v := range m {
		key := toLower(k)
		md[key] = append(md[key], v)
	}
	return md
}

// Pairs returns an MD formed by joining successive key-value pairs. It
// panics if the number of arguments is not even.
func Pairs(kv ...string) MD {
	if len(kv)%2 == 1 {
		panic("metadata: Pairs got the odd number of input pairs for metadata")
	}
	md := MD{}
	for i := 0; i < len(kv); i += 2 {
		key := toLower(kv[i])
		md[key] = append(md[key], kv[i+1])
	}
	return md
}

// Len returns the number of items in md.
func (md MD) Len() int {
	return len(md)
}

// Copy returns a deep copy of md.
func (md MD) Copy() MD {
	return Join(md)
}

// Get obtains the values for a given key, which is case-insensitive.
func (md MD) Get(k string) []string {
	return md[toLower(k)]
}

// GetFirst returns the first value for k, and false if k is absent. This is
// the API the spec's design notes ask for alongside GetAll (here: Get).
func (md MD) GetFirst(k string) (string, bool) {
	v := md.Get(k)
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Set sets the value of a given key, overwriting any existing values.
// If no values are given, the key is deleted.
func (md MD) Set(k string, vals ...string) {
	if len(vals) == 0 {
		delete(md, toLower(k))
		return
	}
	key := toLower(k)
	md[key] = vals
}

// Append adds the values to key k, not overwriting what was already there.
func (md MD) Append(k string, vals ...string) {
	if len(vals) == 0 {
		return
	}
	key := toLower(k)
	md[key] = append(md[key], vals...)
}

// Delete removes the values for a given key k which is case-insensitive.
func (md MD) Delete(k string) {
	key := toLower(k)
	delete(md, key)
}

// Join joins any number of MDs into a single MD, order preserved across
// arguments. The order of values for each key is determined by the order in
// which the MDs containing those values are presented to Join.
func Join(mds ...MD) MD {
	out := MD{}
	for _, md := range mds {
		for k, v := range md {
			out[k] = append(out[k], v...)
		}
	}
	return out
}

// IsBinary reports whether k, case-insensitively, names a binary header.
func IsBinary(k string) bool {
	key := toLower(k)
	return len(key) >= len(BinHeaderSuffix) && key[len(key)-len(BinHeaderSuffix):] == BinHeaderSuffix
}

func toLower(k string) string {
	return strings.ToLower(k)
}

type mdIncomingKey struct{}
type mdOutgoingKey struct{}

// NewIncomingContext creates a new context with incoming md attached.
func NewIncomingContext(ctx context.Context, md MD) context.Context {
	return context.WithValue(ctx, mdIncomingKey{}, md)
}

// NewOutgoingContext creates a new context with outgoing md attached. Outside
// of tests, the core itself attaches outgoing metadata as it builds headers
// for a call; user code calls this to set metadata for the next call.
func NewOutgoingContext(ctx context.Context, md MD) context.Context {
	return context.WithValue(ctx, mdOutgoingKey{}, md.Copy())
}

// FromIncomingContext returns the incoming metadata in ctx, if it exists. The
// returned MD is an independent copy: mutating it does not affect ctx.
func FromIncomingContext(ctx context.Context) (MD, bool) {
	md, ok := ctx.Value(mdIncomingKey{}).(MD)
	if !ok {
		return nil, false
	}
	out := MD{}
	for k, v := range md {
		out[toLower(k)] = append([]string(nil), v...)
	}
	return out, true
}

// ValueFromIncomingContext returns the metadata value(s) for key from ctx.
func ValueFromIncomingContext(ctx context.Context, key string) []string {
	md, ok := ctx.Value(mdIncomingKey{}).(MD)
	if !ok {
		return nil
	}
	if v, ok := md[toLower(key)]; ok {
		return copyStrs(v)
	}
	// Callers may have inserted keys into md directly without lowercasing.
	for k, v := range md {
		if strings.EqualFold(k, key) {
			return copyStrs(v)
		}
	}
	return nil
}

func copyStrs(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v...)
}

// FromOutgoingContext returns the outgoing metadata in ctx, if it exists.
// The returned MD must not be modified; use AppendToOutgoingContext or
// NewOutgoingContext to add to it.
func FromOutgoingContext(ctx context.Context) (MD, bool) {
	md, ok := ctx.Value(mdOutgoingKey{}).(rawMD)
	if ok {
		mdCopy := Join(md.md, MD(md.added.toMD()))
		return mdCopy, ok
	}
	mdv, ok := ctx.Value(mdOutgoingKey{}).(MD)
	return mdv, ok
}

// rawMD supports the cheap-append path used by AppendToOutgoingContext: the
// base MD from a parent context plus any keys appended at this level, without
// recopying the whole map at every append (mirrors the teacher's amortized
// append strategy for hot interceptor chains).
type rawMD struct {
	md    MD
	added addedMD
}

type addedMD [][]string

func (a addedMD) toMD() MD {
	out := MD{}
	for _, kv := range a {
		for i := 0; i < len(kv); i += 2 {
			k := toLower(kv[i])
			out[k] = append(out[k], kv[i+1])
		}
	}
	return out
}

// AppendToOutgoingContext returns a new context with the given kv appended
// to any outgoing metadata already on ctx, without mutating the original.
func AppendToOutgoingContext(ctx context.Context, kv ...string) context.Context {
	if len(kv)%2 == 1 {
		panic("metadata: AppendToOutgoingContext got an odd number of input pairs for metadata")
	}
	var raw rawMD
	switch v := ctx.Value(mdOutgoingKey{}).(type) {
	case rawMD:
		raw = v
	case MD:
		raw = rawMD{md: v}
	}
	added := make(addedMD, len(raw.added), len(raw.added)+1)
	copy(added, raw.added)
	added = append(added, append([]string(nil), kv...))
	return context.WithValue(ctx, mdOutgoingKey{}, rawMD{md: raw.md, added: added})
}
