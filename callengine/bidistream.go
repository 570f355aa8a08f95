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

package callengine

import "context"

// NewBidiStreamCall opens a bidirectional-streaming call (§4.6): the
// returned ClientStream's SendMsg/CloseSend and RecvMsg may be driven
// concurrently from independent goroutines, one per direction. Either side
// closing (CloseSend, or the peer's trailer) only half-closes the call; it
// completes once both directions are closed. Cancelling ctx unblocks both
// directions with a Cancelled status (§4.6, via watchCancellation).
func (cc *ClientConn) NewBidiStreamCall(ctx context.Context, method string, opts ...CallOption) (*ClientStream, error) {
	return cc.NewClientStream(ctx, method, opts...)
}
