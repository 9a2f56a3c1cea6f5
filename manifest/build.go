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

package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"rivaas.dev/dispatch/router"
)

// Match is the decoded form of a request routed by a manifest table.
type Match struct {
	Variant string
	Values  *router.Values
}

// Value returns a decoded field value. For forward fields the value is the
// nested Match.
func (m Match) Value(name string) (any, bool) {
	if m.Values == nil {
		return nil, false
	}

	return m.Values.Value(name)
}

// Table is a route table built from a manifest.
type Table = router.Table[Match, router.NoContext]

// Routes owns a built table and the resources its guards hold.
type Routes struct {
	Table *Table

	nested  []*Table
	closers []func()
}

// Tables returns the root table followed by every nested table, innermost
// tables before the tables that forward to them.
func (r *Routes) Tables() []*Table {
	return append([]*Table{r.Table}, r.nested...)
}

// Close releases guard resources such as rate limiter cleanup goroutines.
// The table must not be used afterwards.
func (r *Routes) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Build resolves every capability of m against reg and builds the table.
// Nested manifests become nested tables named after their manifest. opts
// apply to every table built.
func Build(m *Manifest, reg *Registry, opts ...router.Option) (*Routes, error) {
	b := &builder{reg: reg, opts: opts}

	table, err := b.table(m)
	if err != nil {
		(&Routes{closers: b.closers}).Close()
		return nil, err
	}

	return &Routes{Table: table, nested: b.tables[:len(b.tables)-1], closers: b.closers}, nil
}

type builder struct {
	reg     *Registry
	opts    []router.Option
	tables  []*Table
	closers []func()
}

func (b *builder) table(m *Manifest) (*Table, error) {
	src := m.label()

	variants := make([]router.Variant[Match], 0, len(m.Variants)+1)
	for i := range m.Variants {
		v, err := b.variant(src, fmt.Sprintf("variants[%d]", i), &m.Variants[i], false)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if m.Fallback != nil {
		v, err := b.variant(src, "fallback", m.Fallback, true)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}

	opts := b.opts
	if m.Name != "" {
		opts = append(slices.Clip(opts), router.WithName(m.Name))
	}

	t, err := router.New[Match, router.NoContext](variants, opts...)
	if err != nil {
		return nil, &Error{Source: src, Err: err}
	}
	b.tables = append(b.tables, t)

	return t, nil
}

func (b *builder) variant(src, where string, decl *Variant, fallback bool) (router.Variant[Match], error) {
	fail := func(at string, err error) (router.Variant[Match], error) {
		return router.Variant[Match]{}, &Error{Source: src, Where: where + at, Err: err}
	}

	var parts []router.Part
	for i, raw := range decl.Routes {
		method, path, err := splitRoute(raw)
		if err != nil {
			return fail(fmt.Sprintf(".routes[%d]", i), err)
		}
		parts = append(parts, router.Route(method, path))
	}

	for _, name := range slices.Sorted(maps.Keys(decl.Path)) {
		p, err := create(b.reg.parsers, KindParser, decl.Path[name])
		if err != nil {
			return fail(".path."+name, err)
		}
		parts = append(parts, router.Path(name, p))
	}

	if decl.Query != nil {
		q, err := create(b.reg.queries, KindQuery, *decl.Query)
		if err != nil {
			return fail(".query", err)
		}
		parts = append(parts, router.Query(decl.Query.Name, q))
	}

	for i, f := range decl.Guards {
		g, err := create(b.reg.guards, KindGuard, f)
		if err != nil {
			return fail(fmt.Sprintf(".guards[%d]", i), err)
		}
		if c, ok := g.(interface{ Close() }); ok {
			b.closers = append(b.closers, c.Close)
		}
		parts = append(parts, router.Require(f.Name, g))
	}

	if decl.Body != nil {
		d, err := create(b.reg.bodies, KindBody, *decl.Body)
		if err != nil {
			return fail(".body", err)
		}
		parts = append(parts, router.Body(decl.Body.Name, d))
	}

	if fwd := decl.Forward; fwd != nil {
		if fwd.Manifest == nil {
			return fail(".forward", fmt.Errorf("%w: %q", ErrUnresolvedInclude, fwd.Include))
		}
		nested, err := b.table(fwd.Manifest)
		if err != nil {
			return router.Variant[Match]{}, err
		}
		parts = append(parts, router.Forward(fwd.Name, nested))
	}

	name := decl.Name
	construct := func(v *router.Values) Match {
		return Match{Variant: name, Values: v}
	}
	if fallback {
		return router.Fallback(name, construct, parts...), nil
	}

	return router.Leaf(name, construct, parts...), nil
}

// splitRoute splits "GET /items/{id}" into method and path.
func splitRoute(raw string) (method, path string, err error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("%w: %q, want \"METHOD /path\"", ErrInvalidRoute, raw)
	}

	return fields[0], fields[1], nil
}
