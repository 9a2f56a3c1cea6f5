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

	"rivaas.dev/dispatch/manifest"
)

type schemaCommand struct {
	*cobra.Command
}

func newSchemaCommand() *schemaCommand {
	c := &schemaCommand{
		Command: &cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema of route manifests",
			Args:  cobra.NoArgs,
		},
	}
	c.RunE = func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(manifest.Schema())
		return err
	}

	return c
}

type capabilitiesCommand struct {
	*cobra.Command
}

func newCapabilitiesCommand() *capabilitiesCommand {
	c := &capabilitiesCommand{
		Command: &cobra.Command{
			Use:   "capabilities",
			Short: "List the capability names a manifest may use",
			Args:  cobra.NoArgs,
		},
	}
	c.RunE = c.Run

	return c
}

func (c *capabilitiesCommand) Run(cmd *cobra.Command, _ []string) error {
	reg := manifest.DefaultRegistry()
	out := cmd.OutOrStdout()

	for _, kind := range []manifest.Kind{manifest.KindParser, manifest.KindQuery, manifest.KindGuard, manifest.KindBody} {
		fmt.Fprintf(out, "%s:\n", kind)
		for _, name := range reg.Names(kind) {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}

	return nil
}
