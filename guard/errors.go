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
	"errors"
	"fmt"
	"net/http"
)

// Sentinel reasons wrapped by Denial.
var (
	ErrMissingHeader      = errors.New("missing header")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnsupportedMedia   = errors.New("unsupported content type")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrMalformedRequestID = errors.New("malformed request id")
)

// Denial is returned by guards that reject a request.
type Denial struct {
	Status int
	Reason error
	Header http.Header // Headers the response should carry
	code   string
}

func deny(status int, code string, reason error) *Denial {
	return &Denial{Status: status, Reason: reason, Header: make(http.Header), code: code}
}

// Error implements error.
func (d *Denial) Error() string {
	return fmt.Sprintf("%s (%d)", d.Reason, d.Status)
}

// Unwrap returns the reason.
func (d *Denial) Unwrap() error {
	return d.Reason
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (d *Denial) HTTPStatus() int {
	return d.Status
}

// Code implements rivaas.dev/errors.ErrorCode.
func (d *Denial) Code() string {
	return d.code
}

// ResponseHeaders returns the headers to add to the error response.
func (d *Denial) ResponseHeaders() http.Header {
	return d.Header
}
