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

package headerframe

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coreproto/grpccore/metadata"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, hb := range []HeaderBlock{
		{Method: "POST", Path: "/echo.Echo/Say", Authority: "localhost", Metadata: metadata.New(nil)},
		{
			Method: "POST", Path: "/echo.Echo/Say", Authority: "localhost",
			Metadata: metadata.Pairs("content-type", "application/grpc", "x-custom", "a", "x-custom", "b"),
		},
	} {
		encoded := Encode(hb)
		got, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(Encode(%+v)) failed: %v", hb, err)
		}
		if diff := cmp.Diff(hb, got); diff != "" {
			t.Errorf("Decode(Encode(%+v)) mismatch (-want +got):\n%s", hb, diff)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte{0x01, 0x02}); err == nil {
		t.Fatal("Decode(truncated) = nil error, want non-nil")
	}
}
