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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	rerrors "rivaas.dev/errors"

	"rivaas.dev/dispatch/manifest"
	"rivaas.dev/dispatch/router"
	"rivaas.dev/dispatch/service"
)

type serveCommand struct {
	*cobra.Command
	app *app

	addr              string
	metricsPath       string
	errorFormat       string
	problemBase       string
	trace             bool
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
}

func newServeCommand(a *app) *serveCommand {
	c := &serveCommand{
		Command: &cobra.Command{
			Use:   "serve MANIFEST",
			Short: "Serve a manifest, answering each request with its decoded match",
			Long: `Serve the route tables of a manifest over HTTP. Each decoded request is
answered with a JSON description of the variant and field values it decoded
to; decode failures are answered with error responses. Decode metrics are
exposed in Prometheus format.`,
			Args: cobra.ExactArgs(1),
		},
		app: a,
	}
	c.RunE = c.Run

	f := c.Flags()
	f.StringVar(&c.addr, "addr", ":8080", "listen address")
	f.StringVar(&c.metricsPath, "metrics-path", "/metrics", "path of the Prometheus endpoint; empty disables it")
	f.StringVar(&c.errorFormat, "error-format", "rfc9457", "error response format: rfc9457, jsonapi, or simple")
	f.StringVar(&c.problemBase, "problem-base", "", "base URL for RFC 9457 problem types")
	f.BoolVar(&c.trace, "trace", false, "write decode and request spans to stderr")
	f.DurationVar(&c.readHeaderTimeout, "read-header-timeout", service.DefaultReadHeaderTimeout, "time allowed to read request headers")
	f.DurationVar(&c.shutdownTimeout, "shutdown-timeout", service.DefaultShutdownTimeout, "time allowed for in-flight requests on shutdown")

	return c
}

func (c *serveCommand) Run(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(c.errorFormat, c.problemBase)
	if err != nil {
		return err
	}

	metrics, err := newMetrics()
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := metrics.provider.Shutdown(context.Background()); shutdownErr != nil {
			c.app.logger.Warn("failed to shut down meter provider", "error", shutdownErr)
		}
	}()

	tp, shutdownTracing, err := newTracerProvider(c.trace, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := shutdownTracing(context.Background()); shutdownErr != nil {
			c.app.logger.Warn("failed to shut down tracer provider", "error", shutdownErr)
		}
	}()

	routes, err := c.app.load(args[0],
		router.WithMeterProvider(metrics.provider),
		router.WithTracerProvider(tp),
	)
	if err != nil {
		return err
	}
	defer routes.Close()

	h := newServeHandler(routes, formatter, c.app.logger, c.metricsPath, metrics.handler, service.WithTracerProvider(tp))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return service.Run(ctx, c.addr, h,
		service.WithServerLogger(c.app.logger),
		service.WithReadHeaderTimeout(c.readHeaderTimeout),
		service.WithShutdownTimeout(c.shutdownTimeout),
		service.WithOnReady(func(addr net.Addr) {
			c.app.logger.Info("serving manifest", "manifest", args[0], "addr", addr.String())
		}),
	)
}

func newFormatter(format, problemBase string) (rerrors.Formatter, error) {
	switch format {
	case "rfc9457":
		f := rerrors.NewRFC9457(problemBase)
		f.ErrorIDGenerator = uuid.NewString
		return f, nil
	case "jsonapi":
		return rerrors.NewJSONAPI(), nil
	case "simple":
		return rerrors.NewSimple(), nil
	default:
		return nil, fmt.Errorf("invalid --error-format %q: want rfc9457, jsonapi, or simple", format)
	}
}

// metrics is an OpenTelemetry meter provider exported through a private
// Prometheus registry.
type metrics struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

func newMetrics() (*metrics, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	return &metrics{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// newServeHandler routes the metrics path to the Prometheus handler and
// everything else to the manifest service. Paths are compared exactly so
// that the service sees requests unmodified.
// newTracerProvider returns a provider exporting spans to w when enabled,
// and a no-op provider otherwise.
func newTracerProvider(enabled bool, w io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	if !enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))

	return tp, tp.Shutdown, nil
}

func newServeHandler(routes *manifest.Routes, formatter rerrors.Formatter, logger *slog.Logger, metricsPath string, metricsHandler http.Handler, opts ...service.Option) http.Handler {
	opts = append([]service.Option{
		service.WithFormatter(formatter),
		service.WithLogger(logger),
	}, opts...)
	svc := service.New(routes.Table, service.NoContext, writeMatch, opts...)
	if metricsPath == "" {
		return svc
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == metricsPath && r.Method == http.MethodGet {
			metricsHandler.ServeHTTP(w, r)
			return
		}
		svc.ServeHTTP(w, r)
	})
}

func writeMatch(w http.ResponseWriter, _ *http.Request, m manifest.Match) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(describe(m))
}

// describe turns a match into JSON-friendly data, expanding nested matches.
func describe(m manifest.Match) map[string]any {
	fields := make(map[string]any)
	if m.Values != nil {
		for _, name := range m.Values.Names() {
			v, _ := m.Value(name)
			if nested, ok := v.(manifest.Match); ok {
				v = describe(nested)
			}
			fields[name] = v
		}
	}

	return map[string]any{
		"variant": m.Variant,
		"fields":  fields,
	}
}
