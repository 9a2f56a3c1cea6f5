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
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	rerrors "rivaas.dev/errors"

	"rivaas.dev/dispatch/router"
)

const instrumentationName = "rivaas.dev/dispatch/service"

// Handler serves a decoded route. A returned error is rendered like a
// decode error unless the handler already wrote a response.
type Handler[T any] func(w http.ResponseWriter, r *http.Request, route T) error

// NoContext supplies router.NoContext for tables that need no request
// context.
func NoContext(*http.Request) router.NoContext {
	return router.NoContext{}
}

// Service is an http.Handler dispatching through a router table.
type Service[T, C any] struct {
	table      *router.Table[T, C]
	contextFor func(*http.Request) C
	handle     Handler[T]

	formatter rerrors.Formatter
	logger    *slog.Logger
	tracer    trace.Tracer
	cfg       *config
}

// New returns a Service decoding with table. contextFor builds the request
// context handed to the table's guards and body decoders.
func New[T, C any](table *router.Table[T, C], contextFor func(*http.Request) C, handle Handler[T], opts ...Option) *Service[T, C] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Service[T, C]{
		table:      table,
		contextFor: contextFor,
		handle:     handle,
		formatter:  cfg.formatter,
		logger:     cfg.logger,
		tracer:     cfg.tracerProvider.Tracer(instrumentationName),
		cfg:        cfg,
	}
}

// ServeHTTP implements http.Handler.
func (s *Service[T, C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "dispatch.serve",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		),
	)
	defer span.End()
	r = r.WithContext(ctx)

	rw := newResponseWriter(w, r.Method == http.MethodHead)
	defer func() {
		span.SetAttributes(attribute.Int("http.response.status_code", rw.Status()))
	}()
	if s.cfg.recovery {
		defer s.recoverPanic(rw, r, span)
	}

	route, err := s.table.Decode(ctx, r, s.contextFor(r))
	if err != nil {
		s.writeError(rw, r, err)
		return
	}

	if err = s.handle(rw, r, route); err != nil {
		if rw.Written() {
			s.logger.WarnContext(ctx, "handler failed after writing response",
				"method", r.Method, "path", r.URL.Path, "error", err)
			return
		}
		s.writeError(rw, r, err)
	}
}

// Table returns the table the service decodes with.
func (s *Service[T, C]) Table() *router.Table[T, C] {
	return s.table
}

// Compile-time check.
var _ http.Handler = (*Service[struct{}, router.NoContext])(nil)

func (s *Service[T, C]) logFailure(ctx context.Context, r *http.Request, status int, err error) {
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	if !s.logger.Enabled(ctx, level) {
		return
	}
	s.logger.Log(ctx, level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
}
