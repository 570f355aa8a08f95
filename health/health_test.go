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

package health_test

import (
	"context"
	"testing"
	"time"

	"github.com/coreproto/grpccore/codes"
	"github.com/coreproto/grpccore/health"
	"github.com/coreproto/grpccore/internal/grpctest"
	"github.com/coreproto/grpccore/server"
	"github.com/coreproto/grpccore/status"
)

type s struct {
	grpctest.Tester
}

func Test(t *testing.T) {
	grpctest.RunSubTests(t, s{})
}

func (s) TestRegister(t *testing.T) {
	reg := server.NewRegistry()
	health.RegisterServer(reg, health.NewServer())
	if _, _, ok := reg.Lookup("/" + health.ServiceName + "/Check"); !ok {
		t.Fatal("health service did not register its Check method")
	}
	if _, desc, ok := reg.Lookup("/" + health.ServiceName + "/Watch"); !ok {
		t.Fatal("health service did not register its Watch method")
	} else if desc.Kind != server.ServerStreaming {
		t.Fatalf("Watch registered with Kind = %v, want ServerStreaming", desc.Kind)
	}
}

func (s) TestCheckUnknownService(t *testing.T) {
	hs := health.NewServer()
	_, err := hs.Check(context.Background(), &health.CheckRequest{Service: "does.not.Exist"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("Check(unknown) = %v, want NotFound", err)
	}
}

func (s) TestCheckOverallServing(t *testing.T) {
	hs := health.NewServer()
	resp, err := hs.Check(context.Background(), &health.CheckRequest{})
	if err != nil {
		t.Fatalf("Check(\"\") failed: %v", err)
	}
	if resp.Status != health.Serving {
		t.Fatalf("Check(\"\") = %v, want Serving", resp.Status)
	}
}

func (s) TestSetServingStatus(t *testing.T) {
	hs := health.NewServer()
	hs.SetServingStatus("my.Service", health.NotServing)
	resp, err := hs.Check(context.Background(), &health.CheckRequest{Service: "my.Service"})
	if err != nil {
		t.Fatalf("Check(my.Service) failed: %v", err)
	}
	if resp.Status != health.NotServing {
		t.Fatalf("Check(my.Service) = %v, want NotServing", resp.Status)
	}
}

func (s) TestShutdownMarksAllNotServing(t *testing.T) {
	hs := health.NewServer()
	hs.SetServingStatus("my.Service", health.Serving)
	hs.Shutdown()

	for _, svc := range []string{"", "my.Service"} {
		resp, err := hs.Check(context.Background(), &health.CheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("Check(%q) failed: %v", svc, err)
		}
		if resp.Status != health.NotServing {
			t.Fatalf("Check(%q) after Shutdown = %v, want NotServing", svc, resp.Status)
		}
	}

	hs.SetServingStatus("my.Service", health.Serving)
	resp, _ := hs.Check(context.Background(), &health.CheckRequest{Service: "my.Service"})
	if resp.Status != health.NotServing {
		t.Fatal("SetServingStatus after Shutdown must be ignored")
	}
}

func (s) TestWatchReceivesCurrentThenUpdates(t *testing.T) {
	hs := health.NewServer()
	hs.SetServingStatus("my.Service", health.Serving)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan health.ServingStatus, 4)
	done := make(chan error, 1)
	go func() {
		done <- hs.Watch(ctx, &health.CheckRequest{Service: "my.Service"}, func(r *health.CheckResponse) error {
			got <- r.Status
			return nil
		})
	}()

	if st := <-got; st != health.Serving {
		t.Fatalf("first Watch status = %v, want Serving", st)
	}

	hs.SetServingStatus("my.Service", health.NotServing)
	if st := <-got; st != health.NotServing {
		t.Fatalf("second Watch status = %v, want NotServing", st)
	}

	cancel()
	if err := <-done; status.Code(err) != codes.Canceled && status.Code(err) != codes.DeadlineExceeded {
		t.Fatalf("Watch returned %v, want Canceled or DeadlineExceeded", err)
	}
}
