// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package guard

import (
	"context"
	"net/http"
	"strings"

	"rivaas.dev/dispatch/router"
)

// Bearer returns a guard extracting a bearer token and passing it to
// verify. Its value is whatever verify returns, typically the token claims.
//
// A missing token is rejected with 401. An error from verify is rejected
// with 401 unless it already is a *Denial.
//
//	guard.Bearer(func(ctx context.Context, token string) (Claims, error) {
//	    return tokens.Verify(ctx, token)
//	})
func Bearer[V any](verify func(ctx context.Context, token string) (V, error)) router.Guard {
	const challenge = "Bearer"

	return router.GuardFunc[router.NoContext, V](func(ctx context.Context, head *http.Request, _ router.NoContext) (V, error) {
		var zero V

		auth := head.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			d := deny(http.StatusUnauthorized, "unauthorized", ErrMissingCredentials)
			d.Header.Set("WWW-Authenticate", challenge)

			return zero, d
		}

		v, err := verify(ctx, strings.TrimSpace(token))
		if err != nil {
			if d, isDenial := err.(*Denial); isDenial {
				return zero, d
			}
			d := deny(http.StatusUnauthorized, "unauthorized", err)
			d.Header.Set("WWW-Authenticate", challenge+` error="invalid_token"`)

			return zero, d
		}

		return v, nil
	})
}
