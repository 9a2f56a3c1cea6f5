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
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"rivaas.dev/dispatch/router"
)

const maxRequestIDLength = 128

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	// header is the name of the header carrying a client supplied ID
	header string

	// generator creates IDs when the client sent none
	generator func() string

	// allowClient allows IDs provided by clients
	allowClient bool
}

// WithIDHeader sets the header read for client IDs. Default: "X-Request-ID"
func WithIDHeader(name string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.header = name
	}
}

// WithGenerator sets the ID generator. Default: UUID version 7.
func WithGenerator(generator func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.generator = generator
	}
}

// WithAllowClientID controls whether client supplied IDs are used.
// Default: true
func WithAllowClientID(allow bool) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.allowClient = allow
	}
}

func newUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// RequestID returns a guard yielding the request ID: the client supplied
// one when allowed and well formed, a generated one otherwise. Client IDs
// longer than 128 bytes or containing non-printable ASCII are rejected
// with 400.
func RequestID(opts ...RequestIDOption) router.Guard {
	cfg := &requestIDConfig{
		header:      "X-Request-ID",
		generator:   newUUIDv7,
		allowClient: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return router.GuardFunc[router.NoContext, string](func(_ context.Context, head *http.Request, _ router.NoContext) (string, error) {
		if !cfg.allowClient {
			return cfg.generator(), nil
		}

		id := head.Header.Get(cfg.header)
		if id == "" {
			return cfg.generator(), nil
		}
		if !validRequestID(id) {
			return "", deny(http.StatusBadRequest, "malformed_request_id",
				fmt.Errorf("%w in %s", ErrMalformedRequestID, cfg.header))
		}

		return id, nil
	})
}

func validRequestID(id string) bool {
	if len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}
