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
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "rivaas.dev/dispatch/router"

// Span and metric attribute keys.
const (
	attrTable   = "dispatch.table"
	attrVariant = "dispatch.variant"
	attrOutcome = "dispatch.outcome"
	attrField   = "dispatch.field"
)

// observer records one span and two instruments per decode.
type observer struct {
	table    string
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newObserver(cfg *config) (*observer, error) {
	meter := cfg.meterProvider.Meter(instrumentationName)

	requests, err := meter.Int64Counter("dispatch.decode.requests",
		metric.WithDescription("Number of decoded requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("dispatch.decode.duration",
		metric.WithDescription("Time spent matching and decoding a request"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &observer{
		table:    cfg.name,
		tracer:   cfg.tracerProvider.Tracer(instrumentationName),
		requests: requests,
		duration: duration,
	}, nil
}

func (o *observer) start(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "dispatch.decode",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(attrTable, o.table),
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
}

func (o *observer) finish(ctx context.Context, span trace.Span, start time.Time, variant string, err error) {
	outcome := outcomeOf(err)
	attrs := []attribute.KeyValue{
		attribute.String(attrTable, o.table),
		attribute.String(attrOutcome, outcome),
	}
	if variant != "" {
		attrs = append(attrs, attribute.String(attrVariant, variant))
	}

	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()

	o.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	o.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
}

// outcomeOf maps err to a low-cardinality label.
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}

	var de *Error
	switch {
	case errors.As(err, &de):
		return de.Kind.String()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// stepEvent marks a pipeline step on the current span.
func stepEvent(ctx context.Context, step, field string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("dispatch."+step, trace.WithAttributes(attribute.String(attrField, field)))
}
