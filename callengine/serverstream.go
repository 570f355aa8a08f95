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

// NewServerStreamCall opens a server-streaming call (§4.5): the single
// request is sent as in a unary call, then the returned ClientStream's
// RecvMsg is a lazy, single-pass, finite sequence of response messages
// terminated by io.EOF.
func (cc *ClientConn) NewServerStreamCall(ctx context.Context, method string, req any, opts ...CallOption) (*ClientStream, error) {
	cs, err := cc.NewClientStream(ctx, method, opts...)
	if err != nil {
		return nil, err
	}
	if err := cs.SendMsg(req); err != nil {
		cs.Close()
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		cs.Close()
		return nil, err
	}
	return cs, nil
}
