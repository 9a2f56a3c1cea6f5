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
	"errors"

	"rivaas.dev/dispatch/compiler"
	"rivaas.dev/dispatch/pattern"
)

// RouteInfo describes one method and pattern of a table.
type RouteInfo struct {
	Method   string // HTTP method; empty for the fallback
	Path     string // Pattern as declared
	Variant  string // Variant reached
	Implicit bool   // HEAD derived from GET
	Fallback bool   // Reached through the fallback
}

// Name returns the name set with WithName.
func (t *Table[T, C]) Name() string {
	return t.name
}

// Routes lists every route, grouped by pattern in declaration order. Within
// a group, methods appear in the order used for Allow headers.
func (t *Table[T, C]) Routes() []RouteInfo {
	var out []RouteInfo
	for _, g := range t.groups {
		out = append(out, g.records...)
	}

	return out
}

// Fallback returns the name of the fallback variant, if any.
func (t *Table[T, C]) Fallback() (string, bool) {
	if t.fallback == nil {
		return "", false
	}

	return t.fallback.name, true
}

// Stats returns the matcher statistics.
func (t *Table[T, C]) Stats() compiler.Stats {
	return t.matcher.Stats()
}

// Resolve reports which variant would handle method and the escaped path,
// without running any decode step. When the fallback would be tried the
// result has Fallback set. Otherwise the error is a *Error of kind
// NoMatchingRoute or WrongMethod.
func (t *Table[T, C]) Resolve(method, path string) (RouteInfo, error) {
	path = pattern.CanonicalPath(path)
	idx, ok := t.matcher.Match(path)
	if ok {
		g := t.groups[idx]
		if _, found := g.targets[method]; found {
			return g.record(method), nil
		}
		if t.fallback == nil {
			return RouteInfo{}, &Error{Kind: KindWrongMethod, Allowed: g.allowedFor(path)}
		}
	}

	if t.fallback == nil {
		return RouteInfo{}, &Error{Kind: KindNoMatchingRoute}
	}

	return RouteInfo{Variant: t.fallback.name, Fallback: true}, nil
}

// Allowed lists the methods of the group matching the escaped path, in the
// order used for Allow headers. Methods whose variant rejects the path's
// placeholder values are left out. It returns nil when no pattern matches.
// Nested tables are not consulted.
func (t *Table[T, C]) Allowed(path string) []string {
	path = pattern.CanonicalPath(path)
	idx, ok := t.matcher.Match(path)
	if !ok {
		return nil
	}

	return t.groups[idx].allowedFor(path)
}

// Trace is Resolve followed through forward fields. It returns the route
// taken in each table, outermost first, and reports the same routing errors
// as Decode without running any decode step.
func (t *Table[T, C]) Trace(method, path string) ([]RouteInfo, error) {
	return t.trace(method, pattern.CanonicalPath(path))
}

func (t *Table[T, C]) trace(method, path string) ([]RouteInfo, error) {
	idx, matched := t.matcher.Match(path)

	var allowed []string
	if matched {
		g := t.groups[idx]
		if l, ok := g.targets[method]; ok {
			return follow(g.record(method), l, method, path)
		}
		allowed = g.allowedFor(path)
		if t.fallback == nil {
			return nil, &Error{Kind: KindWrongMethod, Allowed: allowed}
		}
	}
	if t.fallback == nil {
		return nil, &Error{Kind: KindNoMatchingRoute}
	}

	chain, err := follow(RouteInfo{Variant: t.fallback.name, Fallback: true}, t.fallback, method, path)
	if err == nil || !matched {
		return chain, err
	}

	var inner *Error
	if errors.As(err, &inner) && inner.Kind == KindWrongMethod {
		return nil, &Error{Kind: KindWrongMethod, Allowed: mergeMethods(allowed, inner.Allowed)}
	}

	return chain, err
}

func follow[T any](info RouteInfo, l *leaf[T], method, path string) ([]RouteInfo, error) {
	chain := []RouteInfo{info}
	if l.forward == nil {
		return chain, nil
	}

	nested, err := l.forward.forward.trace(method, path)
	if err != nil {
		return nil, err
	}

	return append(chain, nested...), nil
}
