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
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"rivaas.dev/dispatch/router"
)

type resolveCommand struct {
	*cobra.Command
	app *app
}

func newResolveCommand(a *app) *resolveCommand {
	c := &resolveCommand{
		Command: &cobra.Command{
			Use:   "resolve MANIFEST METHOD PATH",
			Short: "Show which variants a request would reach",
			Long: `Follow a request through the route tables of a manifest without
running guards or decoders. Each line is one table; forwarded requests list
the outer table first.`,
			Args: cobra.ExactArgs(3),
		},
		app: a,
	}
	c.RunE = c.Run

	return c
}

func (c *resolveCommand) Run(cmd *cobra.Command, args []string) error {
	routes, err := c.app.load(args[0])
	if err != nil {
		return err
	}
	defer routes.Close()

	method := strings.ToUpper(args[1])
	target, err := url.Parse(args[2])
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", args[2], err)
	}

	chain, err := routes.Table.Trace(method, target.EscapedPath())
	if err != nil {
		var de *router.Error
		if errors.As(err, &de) {
			return fmt.Errorf("%s %s: %w (status %d)", method, args[2], err, de.HTTPStatus())
		}
		return err
	}

	out := cmd.OutOrStdout()
	for i, info := range chain {
		indent := strings.Repeat("  ", i)
		switch {
		case info.Fallback:
			fmt.Fprintf(out, "%s-> %s (fallback)\n", indent, info.Variant)
		case info.Implicit:
			fmt.Fprintf(out, "%s-> %s via %s %s (implicit)\n", indent, info.Variant, info.Method, info.Path)
		default:
			fmt.Fprintf(out, "%s-> %s via %s %s\n", indent, info.Variant, info.Method, info.Path)
		}
	}

	return nil
}
