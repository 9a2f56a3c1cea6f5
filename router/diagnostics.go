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

// DiagnosticEvent reports something noteworthy about table construction.
// Diagnostics are informational; tables behave the same whether or not
// they are collected.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// DiagRouteRegistered is emitted for every declared route.
	DiagRouteRegistered DiagnosticKind = "route_registered"

	// DiagImplicitHead is emitted when a HEAD route is derived from a GET route.
	DiagImplicitHead DiagnosticKind = "implicit_head"

	// DiagFallbackRegistered is emitted for the fallback variant.
	DiagFallbackRegistered DiagnosticKind = "fallback_registered"

	// DiagHighParamCount is emitted for patterns with many placeholders.
	DiagHighParamCount DiagnosticKind = "route_param_count_high"
)

// DiagnosticHandler receives diagnostic events.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

// OnDiagnostic implements DiagnosticHandler.
func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}

func (c *config) emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if c.diagnostics == nil {
		return
	}
	c.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
}
