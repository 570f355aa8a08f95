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

// Package timeout implements the grpc-timeout header grammar (§4.9, §6):
// "<integer><unit>" with unit one of H, M, S, m, u, n.
package timeout

import (
	"fmt"
	"strconv"
	"time"
)

const maxTimeoutValue = 100000000 - 1

// units, ordered from coarsest to finest, matching the wire grammar.
var units = []struct {
	suffix string
	d      time.Duration
}{
	{"H", time.Hour},
	{"M", time.Minute},
	{"S", time.Second},
	{"m", time.Millisecond},
	{"u", time.Microsecond},
	{"n", time.Nanosecond},
}

// Format renders d as a grpc-timeout header value. It picks the coarsest
// unit that represents d exactly with a value that fits the 8-digit-or-less
// wire convention, falling back to nanoseconds.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	for _, u := range units {
		if d%u.d == 0 {
			v := d / u.d
			if v <= maxTimeoutValue {
				return strconv.FormatInt(int64(v), 10) + u.suffix
			}
		}
	}
	return strconv.FormatInt(int64(d), 10) + "n"
}

// Parse parses a grpc-timeout header value, rejecting unknown units (§6).
func Parse(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("timeout: malformed value %q", s)
	}
	suffix := s[len(s)-1:]
	numPart := s[:len(s)-1]
	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("timeout: malformed value %q: %w", s, err)
	}
	for _, u := range units {
		if u.suffix == suffix {
			return time.Duration(n) * u.d, nil
		}
	}
	return 0, fmt.Errorf("timeout: unknown unit %q in %q", suffix, s)
}
