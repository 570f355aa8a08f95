/*
 *
 * Copyright 2016 gRPC authors.
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

// Package oauth adapts an OAuth2 token source into PerRPCCredentials. The
// core never implements OAuth2 itself (§1 Out of scope: "JWT/OAuth2
// helpers") — it only consumes golang.org/x/oauth2's TokenSource through
// this thin adapter, which the auth interceptor (§4.7) accepts as a
// credentials.PerRPCCredentials.
package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/coreproto/grpccore/credentials"
)

type tokenSource struct {
	oauth2.TokenSource
}

// TokenSource returns PerRPCCredentials backed by ts, attaching the token as
// a standard "authorization: Bearer <token>" header.
func TokenSource(ts oauth2.TokenSource) credentials.PerRPCCredentials {
	return tokenSource{TokenSource: ts}
}

func (ts tokenSource) GetRequestMetadata(ctx context.Context, _ ...string) (map[string]string, error) {
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("oauth: failed to get token: %w", err)
	}
	return map[string]string{
		"authorization": token.Type() + " " + token.AccessToken,
	}, nil
}

func (ts tokenSource) RequireTransportSecurity() bool { return true }
