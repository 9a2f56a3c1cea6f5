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
	"fmt"

	"github.com/spf13/cobra"
)

type lintCommand struct {
	*cobra.Command
	app *app
}

func newLintCommand(a *app) *lintCommand {
	c := &lintCommand{
		Command: &cobra.Command{
			Use:   "lint MANIFEST...",
			Short: "Check that manifests load and build",
			Long: `Load every manifest, validate it against the schema, resolve its
capabilities, and build its route tables. Overlapping routes and other table
errors are reported with the variants involved.`,
			Args: cobra.MinimumNArgs(1),
		},
		app: a,
	}
	c.RunE = c.Run

	return c
}

func (c *lintCommand) Run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	failed := 0
	for _, path := range args {
		routes, err := c.app.load(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s\n     %v\n", path, err)
			continue
		}

		count := 0
		for _, t := range routes.Tables() {
			count += len(t.Routes())
		}
		routes.Close()
		fmt.Fprintf(out, "ok   %s (%d tables, %d routes)\n", path, len(routes.Tables()), count)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d manifests failed", failed, len(args))
	}

	return nil
}
