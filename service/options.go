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
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	rerrors "rivaas.dev/errors"
)

// Option configures a Service.
type Option func(*config)

type config struct {
	formatter      rerrors.Formatter
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	recovery       bool
	stackTrace     bool
	stackSize      int
}

func defaultConfig() *config {
	problems := rerrors.NewRFC9457("")
	problems.ErrorIDGenerator = uuid.NewString

	return &config{
		formatter:      problems,
		logger:         slog.New(slog.DiscardHandler),
		tracerProvider: otel.GetTracerProvider(),
		recovery:       true,
		stackTrace:     true,
		stackSize:      4 << 10, // 4KB
	}
}

// WithFormatter sets how errors become responses.
// Default: RFC 9457 problem details with a UUID error_id.
//
//	service.WithFormatter(errors.NewSimple())
func WithFormatter(f rerrors.Formatter) Option {
	return func(c *config) {
		if f != nil {
			c.formatter = f
		}
	}
}

// WithLogger sets the logger for failed requests and recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the provider for request spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// WithRecovery controls whether handler panics are recovered. Default: true
func WithRecovery(enabled bool) Option {
	return func(c *config) {
		c.recovery = enabled
	}
}

// WithStackTrace controls stack capture for recovered panics and caps it at
// size bytes. A size of 0 keeps the whole stack.
func WithStackTrace(enabled bool, size int) Option {
	return func(c *config) {
		c.stackTrace = enabled
		c.stackSize = size
	}
}
