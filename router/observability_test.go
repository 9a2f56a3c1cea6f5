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
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDecodeSpans(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	rec := &recorder{}
	table := mustTable(t, []Variant[hit]{
		leafOf("User", GET("/users/{id}"), Path("id", Uint32), Require("g1", rec.guard("g1", false))),
	}, WithName("api"), WithTracerProvider(tp))

	_, err := decodeReq(t, table, http.MethodGet, "/users/1")
	require.NoError(t, err)
	_, err = decodeReq(t, table, http.MethodGet, "/users/nope")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "dispatch.decode", ok.Name())
	assert.Contains(t, ok.Attributes(), attribute.String("dispatch.table", "api"))
	assert.Contains(t, ok.Attributes(), attribute.String("dispatch.outcome", "ok"))
	assert.Contains(t, ok.Attributes(), attribute.String("dispatch.variant", "User"))
	assert.Contains(t, ok.Attributes(), attribute.String("http.request.method", http.MethodGet))
	require.Len(t, ok.Events(), 1)
	assert.Equal(t, "dispatch.guard", ok.Events()[0].Name)

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Contains(t, failed.Attributes(), attribute.String("dispatch.outcome", "path_segment"))
}

func TestDecodeMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(t.Context()) })

	table := mustTable(t, []Variant[hit]{
		leafOf("Index", GET("/")),
	}, WithName("site"), WithMeterProvider(mp))

	for _, target := range []string{"/", "/", "/missing"} {
		_, _ = decodeReq(t, table, http.MethodGet, target)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, instrumentationName, rm.ScopeMetrics[0].Scope.Name)

	counts := make(map[string]int64)
	var histogramSeen bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch data := m.Data.(type) {
		case metricdata.Sum[int64]:
			assert.Equal(t, "dispatch.decode.requests", m.Name)
			for _, dp := range data.DataPoints {
				outcome, _ := dp.Attributes.Value(attribute.Key("dispatch.outcome"))
				counts[outcome.AsString()] += dp.Value
			}
		case metricdata.Histogram[float64]:
			assert.Equal(t, "dispatch.decode.duration", m.Name)
			histogramSeen = true
		}
	}

	assert.Equal(t, map[string]int64{"ok": 2, "no_matching_route": 1}, counts)
	assert.True(t, histogramSeen)
}

func TestDecodeLogsFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	table := mustTable(t, []Variant[hit]{leafOf("Index", GET("/"))}, WithName("site"), WithLogger(logger))
	assert.Contains(t, buf.String(), `"msg":"route registered"`)

	buf.Reset()
	_, err := decodeReq(t, table, http.MethodPut, "/")
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"request decode failed"`)
	assert.Contains(t, buf.String(), `"outcome":"wrong_method"`)
	assert.Contains(t, buf.String(), `"table":"site"`)
}

func TestOutcomeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", outcomeOf(nil))
	assert.Equal(t, "guard", outcomeOf(&Error{Kind: KindGuard}))
	assert.Equal(t, "canceled", outcomeOf(context.Canceled))
	assert.Equal(t, "error", outcomeOf(assert.AnError))
}
