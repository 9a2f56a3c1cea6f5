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

package service

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicError is rendered when a handler panics.
type PanicError struct {
	Value any
}

// Error implements error.
func (e *PanicError) Error() string {
	return "internal server error"
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (e *PanicError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *PanicError) Code() string {
	return "internal_error"
}

func (s *Service[T, C]) recoverPanic(w *responseWriter, r *http.Request, span trace.Span) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}

	if span.SpanContext().IsValid() {
		span.SetStatus(codes.Error, "panic recovered")
		span.SetAttributes(
			attribute.Bool("exception.escaped", true),
			attribute.String("exception.type", fmt.Sprintf("%T", rec)),
			attribute.String("exception.message", fmt.Sprintf("%v", rec)),
		)
		if err, ok := rec.(error); ok {
			span.RecordError(err)
		}
	}

	args := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"panic", fmt.Sprintf("%v", rec),
	}
	if s.cfg.stackTrace {
		stack := debug.Stack()
		if s.cfg.stackSize > 0 && len(stack) > s.cfg.stackSize {
			stack = stack[:s.cfg.stackSize]
		}
		args = append(args, "stack", string(stack))
	}
	s.logger.ErrorContext(r.Context(), "panic recovered", args...)

	if w.Written() {
		return
	}
	s.writeError(w, r, &PanicError{Value: rec})
}
