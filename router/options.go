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

package router

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Table.
type Option func(*config)

type config struct {
	name           string
	logger         *slog.Logger
	diagnostics    DiagnosticHandler
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	errorMapper    func(error) error
	highParamCount int
}

func defaultConfig() *config {
	return &config{
		logger:         slog.New(slog.DiscardHandler),
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		highParamCount: 8,
	}
}

// WithName names the table in logs, spans, and metrics.
// Naming nested tables makes forwarded requests easy to follow.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger used for route registration and decode
// failures, both at debug level. Defaults to a logger that discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDiagnostics sets a handler for table construction diagnostics.
//
// Example:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Info(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	table := router.MustNew[Route, router.NoContext](variants, router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(c *config) {
		c.diagnostics = handler
	}
}

// WithTracerProvider sets the provider for decode spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the provider for decode metrics.
// Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		if mp != nil {
			c.meterProvider = mp
		}
	}
}

// WithErrorMapper converts every error returned by Decode before it reaches
// the caller. Use it to lift decode errors into an application error type:
//
//	router.WithErrorMapper(func(err error) error {
//	    var de *router.Error
//	    if errors.As(err, &de) && de.Kind == router.KindGuard {
//	        return &AppError{Status: http.StatusUnauthorized, Cause: err}
//	    }
//	    return &AppError{Status: http.StatusBadRequest, Cause: err}
//	})
//
// The mapper only applies to the outermost table; nested tables reached by
// forwarding report their errors unmapped so that allowed methods can merge.
func WithErrorMapper(fn func(error) error) Option {
	return func(c *config) {
		c.errorMapper = fn
	}
}

// WithHighParamThreshold sets the placeholder count from which a
// DiagHighParamCount diagnostic is emitted. Defaults to 8.
func WithHighParamThreshold(n int) Option {
	return func(c *config) {
		c.highParamCount = n
	}
}
