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
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"rivaas.dev/dispatch/router"
)

// BasicOption configures BasicAuth.
type BasicOption func(*basicConfig)

type basicConfig struct {
	// users maps usernames to passwords
	users map[string]string

	// realm is the authentication realm shown to the user
	realm string

	// validator replaces the users map when set
	validator func(ctx context.Context, username, password string) bool
}

// WithUsers sets the allowed username/password pairs.
// Passwords are compared in constant time.
func WithUsers(users map[string]string) BasicOption {
	return func(cfg *basicConfig) {
		cfg.users = users
	}
}

// WithRealm sets the authentication realm. Default: "Restricted"
func WithRealm(realm string) BasicOption {
	return func(cfg *basicConfig) {
		cfg.realm = realm
	}
}

// WithValidator sets a custom credential check, for example against a
// database. It takes precedence over WithUsers.
//
//	guard.BasicAuth(guard.WithValidator(func(ctx context.Context, user, pass string) bool {
//	    return accounts.Check(ctx, user, pass)
//	}))
func WithValidator(validator func(ctx context.Context, username, password string) bool) BasicOption {
	return func(cfg *basicConfig) {
		cfg.validator = validator
	}
}

// BasicAuth returns a guard checking HTTP Basic credentials. Its value is
// the authenticated username. Rejections are 401 with a WWW-Authenticate
// challenge.
func BasicAuth(opts ...BasicOption) router.Guard {
	cfg := &basicConfig{
		users: make(map[string]string),
		realm: "Restricted",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	challenge := `Basic realm="` + cfg.realm + `"`
	unauthorized := func(reason error) (string, error) {
		d := deny(http.StatusUnauthorized, "unauthorized", reason)
		d.Header.Set("WWW-Authenticate", challenge)

		return "", d
	}

	return router.GuardFunc[router.NoContext, string](func(ctx context.Context, head *http.Request, _ router.NoContext) (string, error) {
		auth := head.Header.Get("Authorization")
		if auth == "" {
			return unauthorized(ErrMissingCredentials)
		}

		const prefix = "Basic "
		if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
			return unauthorized(ErrMissingCredentials)
		}

		decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
		if err != nil {
			return unauthorized(ErrInvalidCredentials)
		}

		username, password, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return unauthorized(ErrInvalidCredentials)
		}

		var authenticated bool
		if cfg.validator != nil {
			authenticated = cfg.validator(ctx, username, password)
		} else if expected, exists := cfg.users[username]; exists {
			authenticated = subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
		}
		if !authenticated {
			return unauthorized(ErrInvalidCredentials)
		}

		return username, nil
	})
}
