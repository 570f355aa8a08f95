/*
 *
 * Copyright 2019 gRPC authors.
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

// Package grpctest provides the common harness every package in this module
// uses to run its table of Test* methods as subtests, the way the teacher's
// own test files do (type s struct{ grpctest.Tester }; func Test(t
// *testing.T) { grpctest.RunSubTests(t, s{}) }).
package grpctest

import (
	"reflect"
	"strings"
	"testing"
)

// Tester is embedded by a package's internal test harness struct. Its
// Setup/Teardown are no-ops by default; a harness struct may shadow either
// to add its own per-test fixture.
type Tester struct{}

// Setup is the default, no-op fixture hook.
func (Tester) Setup(*testing.T) {}

// Teardown is the default, no-op fixture hook.
func (Tester) Teardown(*testing.T) {}

type subTester interface {
	Setup(t *testing.T)
	Teardown(t *testing.T)
}

// RunSubTests runs all Test* methods on s as subtests of t.
func RunSubTests(t *testing.T, s subTester) {
	v := reflect.ValueOf(s)
	for i := 0; i < v.NumMethod(); i++ {
		name := v.Type().Method(i).Name
		if !strings.HasPrefix(name, "Test") {
			continue
		}
		method := v.Method(i)
		t.Run(name, func(t *testing.T) {
			s.Setup(t)
			defer s.Teardown(t)
			method.Call([]reflect.Value{reflect.ValueOf(t)})
		})
	}
}
