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

// Command routecheck inspects and serves route manifests.
//
//	routecheck lint routes.yaml
//	routecheck routes routes.yaml
//	routecheck resolve routes.yaml GET /items/42
//	routecheck serve routes.yaml --addr :8080
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"rivaas.dev/logging"

	"rivaas.dev/dispatch/manifest"
	"rivaas.dev/dispatch/router"
)

// app holds the flags and resources shared by every command.
type app struct {
	logLevel  string
	logFormat string
	logger    *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:               "routecheck",
		Short:             "Inspect and serve declarative route manifests",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format: console, text, or json")

	root.AddCommand(
		newLintCommand(a).Command,
		newRoutesCommand(a).Command,
		newResolveCommand(a).Command,
		newServeCommand(a).Command,
		newSchemaCommand().Command,
		newCapabilitiesCommand().Command,
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}

	opts := []logging.Option{
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithLevel(level),
		logging.WithServiceName("routecheck"),
	}
	switch a.logFormat {
	case "console":
		opts = append(opts, logging.WithConsoleHandler())
	case "text":
		opts = append(opts, logging.WithTextHandler())
	case "json":
		opts = append(opts, logging.WithJSONHandler())
	default:
		return fmt.Errorf("invalid --log-format %q: want console, text, or json", a.logFormat)
	}

	l, err := logging.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = l.Logger()

	return nil
}

// load reads and builds a manifest with the shared logger.
func (a *app) load(path string, opts ...router.Option) (*manifest.Routes, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}

	opts = append([]router.Option{router.WithLogger(a.logger)}, opts...)

	return manifest.Build(m, manifest.DefaultRegistry(), opts...)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
