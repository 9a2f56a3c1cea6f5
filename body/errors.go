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

package body

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	rerrors "rivaas.dev/errors"
)

// ErrEmptyBody is returned by decoders that need content when the body is empty.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeError reports a body that could not be decoded in Format.
type DecodeError struct {
	Format string
	Err    error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s body: %v", e.Format, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
// It is 400 unless the underlying error reports its own status.
func (e *DecodeError) HTTPStatus() int {
	var typed rerrors.ErrorType
	if errors.As(e.Err, &typed) {
		return typed.HTTPStatus()
	}

	return http.StatusBadRequest
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *DecodeError) Code() string {
	return "invalid_body"
}

// UnsupportedMediaTypeError reports a Content-Type no decoder accepts.
type UnsupportedMediaTypeError struct {
	MediaType string
	Supported []string
}

// Error implements error.
func (e *UnsupportedMediaTypeError) Error() string {
	if e.MediaType == "" {
		return fmt.Sprintf("missing content type (supported: %s)", strings.Join(e.Supported, ", "))
	}

	return fmt.Sprintf("unsupported media type %q (supported: %s)", e.MediaType, strings.Join(e.Supported, ", "))
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (e *UnsupportedMediaTypeError) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *UnsupportedMediaTypeError) Code() string {
	return "unsupported_media_type"
}

// Details implements rivaas.dev/errors.ErrorDetails.
func (e *UnsupportedMediaTypeError) Details() any {
	return map[string]any{"supported": e.Supported}
}

// TooLargeError reports a body longer than the configured limit.
type TooLargeError struct {
	Limit int64
	Err   error
}

// Error implements error.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// Unwrap returns the underlying error.
func (e *TooLargeError) Unwrap() error {
	return e.Err
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (e *TooLargeError) HTTPStatus() int {
	return http.StatusRequestEntityTooLarge
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *TooLargeError) Code() string {
	return "body_too_large"
}
