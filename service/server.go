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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server defaults.
const (
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
)

// ServerOption configures Run.
type ServerOption func(*serverConfig)

type serverConfig struct {
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
	logger            *slog.Logger
	onReady           func(net.Addr)
}

// WithReadHeaderTimeout sets http.Server.ReadHeaderTimeout.
func WithReadHeaderTimeout(d time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.readHeaderTimeout = d
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.shutdownTimeout = d
	}
}

// WithServerLogger sets the logger for lifecycle events.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnReady registers a function called with the bound address once the
// server accepts connections.
func WithOnReady(fn func(net.Addr)) ServerOption {
	return func(c *serverConfig) {
		c.onReady = fn
	}
}

// Run serves h on addr until ctx is done, then shuts down gracefully.
// It returns nil after a clean shutdown.
func Run(ctx context.Context, addr string, h http.Handler, opts ...ServerOption) error {
	cfg := &serverConfig{
		readHeaderTimeout: DefaultReadHeaderTimeout,
		shutdownTimeout:   DefaultShutdownTimeout,
		logger:            slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: cfg.readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serverErr := make(chan error, 1)
	go func() {
		if serveErr := server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", serveErr)
		}
	}()

	cfg.logger.InfoContext(ctx, "server starting", "address", ln.Addr().String())
	if cfg.onReady != nil {
		cfg.onReady(ln.Addr())
	}

	select {
	case err = <-serverErr:
		return err
	case <-ctx.Done():
		cfg.logger.InfoContext(ctx, "server shutting down", "reason", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.shutdownTimeout)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	cfg.logger.InfoContext(shutdownCtx, "server exited")

	return nil
}
