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

package timeout

import (
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{
		0, time.Nanosecond, 50 * time.Millisecond, 3 * time.Second,
		2 * time.Minute, 5 * time.Hour, 123456789 * time.Nanosecond,
	} {
		got, err := Parse(Format(d))
		if err != nil {
			t.Fatalf("Parse(Format(%v)) error: %v", d, err)
		}
		if got != d {
			t.Fatalf("Parse(Format(%v)) = %v; want %v", d, got, d)
		}
	}
}

func TestParseRejectsUnknownUnit(t *testing.T) {
	if _, err := Parse("50x"); err == nil {
		t.Fatal("Parse(\"50x\") = nil error; want error")
	}
}

func TestParseZero(t *testing.T) {
	d, err := Parse("0n")
	if err != nil {
		t.Fatalf("Parse(\"0n\") error: %v", err)
	}
	if d != 0 {
		t.Fatalf("Parse(\"0n\") = %v; want 0", d)
	}
}
