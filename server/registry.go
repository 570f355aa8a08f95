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

// Package server implements the service registry and dispatch loop (§4.10):
// method registration, per-connection and per-stream task spawning, and the
// server-side concurrency caps.
package server

import (
	"github.com/cespare/xxhash/v2"
)

// CallKind identifies which of the four call patterns a handler implements.
type CallKind int

const (
	Unary CallKind = iota
	ClientStreaming
	ServerStreaming
	Bidirectional
)

// HandlerFunc is the server-side entry point for a registered method. For
// every call kind, the handler reads request messages itself from
// ServerStream.
type HandlerFunc func(srv any, ss *ServerStream) error

// MethodDesc is the handler descriptor the registry stores per path (§4.10
// "{call_kind, handler_fn}").
type MethodDesc struct {
	Kind    CallKind
	Handler HandlerFunc
}

// ServiceDesc groups a set of methods under one implementation, following
// the teacher's generated-code shape (grpc.ServiceDesc) without requiring a
// code generator: callers build one by hand or from a thin adapter.
type ServiceDesc struct {
	ServiceName string
	HandlerType any
	Methods     map[string]MethodDesc // method name (no leading service path)
	Metadata    string
}

const registryShards = 16

// Registry maps full method paths ("/service/method") to handler
// descriptors. It is built incrementally at startup via Register, then
// becomes read-only once the server enters Serve (§5 "Method registry:
// built at server startup; after serve() is entered, it is read-only").
// Paths are spread over registryShards maps by xxhash of the path,
// mirroring the pack's use of xxhash for hash-routed lookup tables.
// Register and Lookup take no lock, so Register is not safe for concurrent
// use; Server.RegisterService calls it under the Server's mutex.
type Registry struct {
	shards [registryShards]map[string]registered
	frozen bool
}

type registered struct {
	svc  any
	desc MethodDesc
}

// NewRegistry returns an empty, writable Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = make(map[string]registered)
	}
	return r
}

func shardIndex(path string) int {
	return int(xxhash.Sum64String(path) % registryShards)
}

// Register associates path ("/service/method") with a handler bound to
// impl. It panics if called after Freeze, matching the teacher's
// RegisterService contract of rejecting registration after Serve.
func (r *Registry) Register(path string, impl any, desc MethodDesc) {
	if r.frozen {
		panic("server: Register called after the registry was frozen by Serve")
	}
	r.shards[shardIndex(path)][path] = registered{svc: impl, desc: desc}
}

// Freeze marks the registry read-only; subsequent Register calls panic.
func (r *Registry) Freeze() { r.frozen = true }

// Lookup returns the handler descriptor and bound service for path.
func (r *Registry) Lookup(path string) (any, MethodDesc, bool) {
	reg, ok := r.shards[shardIndex(path)][path]
	return reg.svc, reg.desc, ok
}
