/*
 *
 * Copyright 2018 gRPC authors.
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

// Package health is a health-checking service (§4.7 "Health/Keepalive")
// supplemented from the teacher's health package shape: a Check/Watch
// surface over per-service serving status, registered like any other
// service through server.Registry.
package health

import (
	"context"
	"sync"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/internal/grpclog"
	"github.com/coreproto/grpccore/server"
	"github.com/coreproto/grpccore/status"
)

var healthLogger = grpclog.Component("health")

// ServingStatus is the status of a service, matching the wire enum values
// of the standard grpc.health.v1.HealthCheckResponse.ServingStatus.
type ServingStatus int32

const (
	Unknown ServingStatus = iota
	Serving
	NotServing
	ServiceUnknown
)

// CheckRequest names the service to query; "" means the server as a whole.
type CheckRequest struct {
	Service string
}

// CheckResponse carries the current status.
type CheckResponse struct {
	Status ServingStatus
}

// Server implements the health-checking service (§4.7). The zero value is
// not usable; use NewServer.
type Server struct {
	mu       sync.RWMutex
	statuses map[string]ServingStatus
	watchers map[string]map[chan ServingStatus]struct{}
	shutdown bool
}

// NewServer returns a Server with the overall server ("") status Serving.
func NewServer() *Server {
	s := &Server{
		statuses: map[string]ServingStatus{"": Serving},
		watchers: map[string]map[chan ServingStatus]struct{}{},
	}
	return s
}

// SetServingStatus records service's status and notifies any active
// Watch subscribers. It is a no-op after Shutdown.
func (s *Server) SetServingStatus(service string, status ServingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		healthLogger.Warningf("SetServingStatus(%q, %v) called after Shutdown; ignoring", service, status)
		return
	}
	s.setServingStatusLocked(service, status)
}

func (s *Server) setServingStatusLocked(service string, st ServingStatus) {
	s.statuses[service] = st
	for ch := range s.watchers[service] {
		select {
		case ch <- st:
		default:
			// A slow watcher misses an intermediate update; it will see the
			// latest status on its next successful send (§9: Watch is a
			// best-effort stream, not a durable log).
		}
	}
}

// Shutdown marks every known service NotServing and stops accepting further
// SetServingStatus calls, mirroring the teacher's graceful-shutdown hook.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = true
	for service := range s.statuses {
		s.setServingStatusLocked(service, NotServing)
	}
}

// Resume reverses Shutdown, allowing SetServingStatus calls again.
func (s *Server) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = false
}

// Check implements a single point-in-time health query.
func (s *Server) Check(_ context.Context, req *CheckRequest) (*CheckResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.statuses[req.Service]; ok {
		return &CheckResponse{Status: st}, nil
	}
	return nil, status.New(codes.NotFound, "unknown service").Err()
}

// Watch streams status changes for req.Service to send until ctx is done.
// It delivers the current status immediately, then one update per change.
func (s *Server) Watch(ctx context.Context, req *CheckRequest, send func(*CheckResponse) error) error {
	ch := make(chan ServingStatus, 1)
	s.mu.Lock()
	st, ok := s.statuses[req.Service]
	if !ok {
		st = ServiceUnknown
	}
	if s.watchers[req.Service] == nil {
		s.watchers[req.Service] = map[chan ServingStatus]struct{}{}
	}
	s.watchers[req.Service][ch] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.watchers[req.Service], ch)
		s.mu.Unlock()
	}()

	if err := send(&CheckResponse{Status: st}); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		case st := <-ch:
			if err := send(&CheckResponse{Status: st}); err != nil {
				return err
			}
		}
	}
}

// ServiceName is the registration path's service component, matching the
// standard health-checking service name.
const ServiceName = "grpc.health.v1.Health"

// RegisterServer registers Server's Check/Watch methods with reg under the
// conventional health service name, for servers that want health-checking
// alongside their application services.
func RegisterServer(reg *server.Registry, hs *Server) {
	reg.Register("/"+ServiceName+"/Check", hs, server.MethodDesc{
		Kind: server.Unary,
		Handler: func(srv any, ss *server.ServerStream) error {
			h := srv.(*Server)
			req := &CheckRequest{}
			if err := ss.RecvMsg(req); err != nil {
				return err
			}
			resp, err := h.Check(ss.Context(), req)
			if err != nil {
				return err
			}
			return ss.SendMsg(resp)
		},
	})
	reg.Register("/"+ServiceName+"/Watch", hs, server.MethodDesc{
		Kind: server.ServerStreaming,
		Handler: func(srv any, ss *server.ServerStream) error {
			h := srv.(*Server)
			req := &CheckRequest{}
			if err := ss.RecvMsg(req); err != nil {
				return err
			}
			return h.Watch(ss.Context(), req, func(resp *CheckResponse) error {
				return ss.SendMsg(resp)
			})
		},
	})
}
