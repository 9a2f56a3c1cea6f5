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
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"rivaas.dev/dispatch/manifest"
)

type routesCommand struct {
	*cobra.Command
	app   *app
	color bool
}

func newRoutesCommand(a *app) *routesCommand {
	c := &routesCommand{
		Command: &cobra.Command{
			Use:   "routes MANIFEST",
			Short: "Print the route table of a manifest",
			Args:  cobra.ExactArgs(1),
		},
		app: a,
	}
	c.RunE = c.Run
	c.Flags().BoolVar(&c.color, "color", false, "color the header row and HTTP methods")

	return c
}

func (c *routesCommand) Run(cmd *cobra.Command, args []string) error {
	routes, err := c.app.load(args[0])
	if err != nil {
		return err
	}
	defer routes.Close()

	renderRoutes(cmd.OutOrStdout(), routes, c.color)

	return nil
}

var methodColors = map[string]lipgloss.Color{
	"GET":     lipgloss.Color("42"),
	"HEAD":    lipgloss.Color("245"),
	"POST":    lipgloss.Color("33"),
	"PUT":     lipgloss.Color("214"),
	"PATCH":   lipgloss.Color("141"),
	"DELETE":  lipgloss.Color("196"),
	"OPTIONS": lipgloss.Color("245"),
}

// routeRows flattens every table into rows of table, method, path, variant,
// and notes. Fallbacks are listed after the routes of their table.
func routeRows(routes *manifest.Routes) [][]string {
	var rows [][]string
	for _, t := range routes.Tables() {
		for _, r := range t.Routes() {
			note := ""
			if r.Implicit {
				note = "implicit"
			}
			rows = append(rows, []string{t.Name(), r.Method, r.Path, r.Variant, note})
		}
		if name, ok := t.Fallback(); ok {
			rows = append(rows, []string{t.Name(), "*", "*", name, "fallback"})
		}
	}

	return rows
}

func renderRoutes(w io.Writer, routes *manifest.Routes, color bool) {
	rows := routeRows(routes)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if !color {
				return style
			}
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			if col == 1 && row >= 0 && row < len(rows) {
				if c, ok := methodColors[rows[row][1]]; ok {
					return style.Foreground(c)
				}
			}

			return style
		}).
		Headers("Table", "Method", "Path", "Variant", "Notes").
		Rows(rows...)

	fmt.Fprintln(w, t.Render())
}
