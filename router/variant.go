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

import "net/http"

// fieldKind tags how a field is filled.
type fieldKind uint8

const (
	pathField fieldKind = iota + 1
	queryField
	guardField
	bodyField
	forwardField
)

func (k fieldKind) String() string {
	switch k {
	case pathField:
		return "path"
	case queryField:
		return "query"
	case guardField:
		return "guard"
	case bodyField:
		return "body"
	case forwardField:
		return "forward"
	default:
		return "unknown"
	}
}

// Part is one element of a variant declaration: a route or a field.
// Parts are created with Route, GET, Path, Query, Require, Body, Forward, and
// their siblings.
type Part interface {
	part()
}

type routeDecl struct {
	method string
	path   string
}

func (routeDecl) part() {}

type field struct {
	kind    fieldKind
	name    string
	parser  Parser
	query   QueryDecoder
	guard   Guard
	body    BodyDecoder
	forward Forwarder
}

func (*field) part() {}

// Route declares that the variant is reached by method on path.
func Route(method, path string) Part {
	return routeDecl{method: method, path: path}
}

// GET declares a GET route. A HEAD route is added automatically unless one
// is declared for the same path.
func GET(path string) Part { return Route(http.MethodGet, path) }

// HEAD declares a HEAD route.
func HEAD(path string) Part { return Route(http.MethodHead, path) }

// POST declares a POST route.
func POST(path string) Part { return Route(http.MethodPost, path) }

// PUT declares a PUT route.
func PUT(path string) Part { return Route(http.MethodPut, path) }

// PATCH declares a PATCH route.
func PATCH(path string) Part { return Route(http.MethodPatch, path) }

// DELETE declares a DELETE route.
func DELETE(path string) Part { return Route(http.MethodDelete, path) }

// OPTIONS declares an OPTIONS route.
func OPTIONS(path string) Part { return Route(http.MethodOptions, path) }

// Path declares the field filled from the placeholder called name.
func Path(name string, p Parser) Part {
	return &field{kind: pathField, name: name, parser: p}
}

// Query declares the field filled from the query string.
func Query(name string, q QueryDecoder) Part {
	return &field{kind: queryField, name: name, query: q}
}

// Require declares a guard field. Guards run in declaration order, after
// path and query decoding and before the body is read.
func Require(name string, g Guard) Part {
	return &field{kind: guardField, name: name, guard: g}
}

// Body declares the field filled by decoding the request body.
func Body(name string, b BodyDecoder) Part {
	return &field{kind: bodyField, name: name, body: b}
}

// Forward declares the field filled by the nested table next, which decodes
// the same request. The nested table must use the same context type.
func Forward(name string, next Forwarder) Part {
	return &field{kind: forwardField, name: name, forward: next}
}

// Variant is one output alternative of a table.
type Variant[T any] struct {
	name      string
	construct func(*Values) T
	parts     []Part
	fallback  bool
}

// Name returns the variant name.
func (v Variant[T]) Name() string {
	return v.name
}

// Leaf declares a variant reached through its routes. construct assembles
// the output from the decoded field values.
//
// Example:
//
//	router.Leaf("UserInfo", func(v *router.Values) Route {
//	    return UserInfo{ID: router.Get[uint32](v, "id")}
//	},
//	    router.GET("/users/{id}"),
//	    router.Path("id", router.Uint32),
//	)
func Leaf[T any](name string, construct func(*Values) T, parts ...Part) Variant[T] {
	return Variant[T]{name: name, construct: construct, parts: parts}
}

// Fallback declares the variant receiving requests that no route accepts.
// It has no routes, must have a Forward field, and may have guards.
func Fallback[T any](name string, construct func(*Values) T, parts ...Part) Variant[T] {
	return Variant[T]{name: name, construct: construct, parts: parts, fallback: true}
}

// Values holds the decoded fields of one request.
type Values struct {
	values map[string]any
	order  []string
}

func newValues(capacity int) *Values {
	return &Values{
		values: make(map[string]any, capacity),
		order:  make([]string, 0, capacity),
	}
}

func (v *Values) set(name string, value any) {
	if _, ok := v.values[name]; !ok {
		v.order = append(v.order, name)
	}
	v.values[name] = value
}

// Value returns the raw value of the named field.
func (v *Values) Value(name string) (any, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Names returns the field names in the order they were decoded.
func (v *Values) Names() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)

	return out
}

// Len returns the number of decoded fields.
func (v *Values) Len() int {
	return len(v.order)
}

// Lookup returns the named field as a V.
// The second result is false when the field is absent or of another type.
func Lookup[V any](v *Values, name string) (V, bool) {
	raw, ok := v.values[name]
	if !ok {
		var zero V
		return zero, false
	}
	typed, ok := raw.(V)

	return typed, ok
}

// Get returns the named field as a V, or the zero value.
func Get[V any](v *Values, name string) V {
	typed, _ := Lookup[V](v, name)
	return typed
}
