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
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"slices"

	"rivaas.dev/dispatch/compiler"
	"rivaas.dev/dispatch/pattern"
)

// Table classifies requests into variants of T. C is the request context
// type passed to Decode.
//
// New compiles the variants in four steps:
//  1. Each leaf's routes are parsed and its field extractors checked
//     against its placeholders.
//  2. Routes are grouped by equivalent pattern. A pattern that starts a new
//     group must not overlap any existing group.
//  3. Every group with GET and no HEAD gets an implicit HEAD route.
//  4. The group patterns are handed to a compiler.Matcher, which dispatch
//     uses to find at most one group per request path.
//
// A Table is immutable after New and safe for concurrent use.
type Table[T, C any] struct {
	name     string            // set by WithName, used in logs
	groups   []*group[T]       // indexed by the matcher's group index
	matcher  *compiler.Matcher // path to group index
	fallback *leaf[T]          // forwarding variant, nil if none
	ctxType  reflect.Type      // type of C, checked when forwarding
	logger   *slog.Logger
	obs      *observer
	mapErr   func(error) error // optional rewrite of returned errors
}

// leaf is a compiled variant.
type leaf[T any] struct {
	name         string
	construct    func(*Values) T
	routes       []boundRoute
	placeholders []string          // shared by every route of the leaf
	paths        map[string]Parser // by placeholder name
	pathOrder    []string          // declaration order of paths
	query        *field
	guards       []*field // run in declaration order
	body         *field
	forward      *field // nested table; excludes body
	fields       int    // number of value slots in Values
}

// boundRoute is one method and pattern declared on a leaf.
type boundRoute struct {
	method  string
	pattern *pattern.Pattern
}

func (r boundRoute) String() string {
	return r.method + " " + r.pattern.String()
}

// group holds every route whose pattern is equivalent to pattern.
// Methods are unique within a group.
type group[T any] struct {
	pattern *pattern.Pattern
	methods []string            // registration order, reported by WrongMethod
	targets map[string]*leaf[T] // by method
	records []RouteInfo         // one per method, for Routes and Trace
}

func (g *group[T]) add(method string, l *leaf[T], raw string, implicit bool) {
	g.methods = append(g.methods, method)
	g.targets[method] = l
	g.records = append(g.records, RouteInfo{
		Method:   method,
		Path:     raw,
		Variant:  l.name,
		Implicit: implicit,
	})
}

func (g *group[T]) record(method string) RouteInfo {
	for _, r := range g.records {
		if r.Method == method {
			return r
		}
	}

	return RouteInfo{}
}

// New builds a Table from variants, in order. It fails with a *ConfigError
// when the variants do not describe a valid table.
//
// Example:
//
//	table, err := router.New[Route, router.NoContext]([]router.Variant[Route]{
//	    router.Leaf("Index", func(*router.Values) Route { return Index{} },
//	        router.GET("/"),
//	    ),
//	    router.Leaf("User", func(v *router.Values) Route {
//	        return User{ID: router.Get[uint32](v, "id")}
//	    },
//	        router.GET("/users/{id}"),
//	        router.PATCH("/users/{id}"),
//	        router.Path("id", router.Uint32),
//	    ),
//	})
func New[T, C any](variants []Variant[T], opts ...Option) (*Table[T, C], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	obs, err := newObserver(cfg)
	if err != nil {
		return nil, fmt.Errorf("router: observability setup: %w", err)
	}

	b := &builder[T]{
		cfg:     cfg,
		ctxType: reflect.TypeFor[C](),
		index:   make(map[string]int),
	}
	for _, v := range variants {
		if err = b.add(v); err != nil {
			return nil, err
		}
	}
	b.synthesizeHead()

	patterns := make([]*pattern.Pattern, len(b.groups))
	for i, g := range b.groups {
		patterns[i] = g.pattern
	}

	return &Table[T, C]{
		name:     cfg.name,
		groups:   b.groups,
		matcher:  compiler.New(patterns),
		fallback: b.fallback,
		ctxType:  b.ctxType,
		logger:   cfg.logger,
		obs:      obs,
		mapErr:   cfg.errorMapper,
	}, nil
}

// MustNew is like New but panics on error.
// Route tables are usually static, so a failure is a programming error.
func MustNew[T, C any](variants []Variant[T], opts ...Option) *Table[T, C] {
	t, err := New[T, C](variants, opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}

	return t
}

type builder[T any] struct {
	cfg      *config
	ctxType  reflect.Type
	groups   []*group[T]
	index    map[string]int
	fallback *leaf[T]
}

func (b *builder[T]) add(v Variant[T]) error {
	if v.construct == nil {
		return &ConfigError{Variant: v.name, Err: ErrNotConstructible,
			Detail: fmt.Sprintf("variant `%s` has no constructor", v.name)}
	}

	l, err := b.compileLeaf(v)
	if err != nil {
		return err
	}

	if v.fallback {
		return b.setFallback(l)
	}

	if len(l.routes) == 0 {
		return &ConfigError{Variant: l.name, Err: ErrNotConstructible,
			Detail: fmt.Sprintf("variant `%s` has no routes and is not a fallback", l.name)}
	}
	if err = b.bindPlaceholders(l); err != nil {
		return err
	}

	for _, r := range l.routes {
		if err = b.insert(l, r); err != nil {
			return err
		}
	}

	return nil
}

func (b *builder[T]) compileLeaf(v Variant[T]) (*leaf[T], error) {
	l := &leaf[T]{
		name:      v.name,
		construct: v.construct,
		paths:     make(map[string]Parser),
	}
	seen := make(map[string]bool)

	for _, part := range v.parts {
		switch p := part.(type) {
		case routeDecl:
			if !validMethod(p.method) {
				return nil, &ConfigError{Variant: l.name, Err: ErrInvalidMethod,
					Detail: fmt.Sprintf("invalid method %q on variant `%s`", p.method, l.name)}
			}
			pat, err := pattern.Parse(p.path)
			if err != nil {
				return nil, &ConfigError{Variant: l.name, Route: p.method + " " + p.path,
					Err:    fmt.Errorf("%w: %w", ErrInvalidPattern, err),
					Detail: fmt.Sprintf("variant `%s`: %v", l.name, err)}
			}
			l.routes = append(l.routes, boundRoute{method: p.method, pattern: pat})

		case *field:
			if p == nil {
				continue
			}
			if seen[p.name] {
				return nil, &ConfigError{Variant: l.name, Err: ErrDuplicateField,
					Detail: fmt.Sprintf("field `%s` declared twice on variant `%s`", p.name, l.name)}
			}
			seen[p.name] = true
			if err := b.addField(l, p); err != nil {
				return nil, err
			}
		}
	}

	return l, nil
}

func (b *builder[T]) addField(l *leaf[T], f *field) error {
	fail := func(sentinel error, format string, args ...any) error {
		return &ConfigError{Variant: l.name, Err: sentinel, Detail: fmt.Sprintf(format, args...)}
	}

	if f.parser == nil && f.query == nil && f.guard == nil && f.body == nil && f.forward == nil {
		return fail(ErrNilCapability, "%s field `%s` on variant `%s` has no capability", f.kind, f.name, l.name)
	}

	l.fields++
	switch f.kind {
	case pathField:
		l.paths[f.name] = f.parser
		l.pathOrder = append(l.pathOrder, f.name)

	case queryField:
		if l.query != nil {
			return fail(ErrMultipleQueries, "variant `%s` declares query fields `%s` and `%s`", l.name, l.query.name, f.name)
		}
		l.query = f

	case guardField:
		if !canProvide(b.ctxType, f.guard.Context()) {
			return fail(ErrContextUnavailable, "guard `%s` on variant `%s` needs %v, which %v cannot provide",
				f.name, l.name, f.guard.Context(), b.ctxType)
		}
		l.guards = append(l.guards, f)

	case bodyField:
		if l.forward != nil {
			return fail(ErrBodyAndForward, "variant `%s`: body field `%s` and forward field `%s` cannot be combined",
				l.name, f.name, l.forward.name)
		}
		if l.body != nil {
			return fail(ErrMultipleBodies, "variant `%s` declares body fields `%s` and `%s`", l.name, l.body.name, f.name)
		}
		if !canProvide(b.ctxType, f.body.Context()) {
			return fail(ErrContextUnavailable, "body `%s` on variant `%s` needs %v, which %v cannot provide",
				f.name, l.name, f.body.Context(), b.ctxType)
		}
		l.body = f

	case forwardField:
		if l.body != nil {
			return fail(ErrBodyAndForward, "variant `%s`: body field `%s` and forward field `%s` cannot be combined",
				l.name, l.body.name, f.name)
		}
		if l.forward != nil {
			return fail(ErrMultipleBodies, "variant `%s` declares forward fields `%s` and `%s`", l.name, l.forward.name, f.name)
		}
		if f.forward.contextType() != b.ctxType {
			return fail(ErrContextUnavailable, "forward `%s` on variant `%s` uses context %v, expected %v",
				f.name, l.name, f.forward.contextType(), b.ctxType)
		}
		l.forward = f
	}

	return nil
}

func (b *builder[T]) setFallback(l *leaf[T]) error {
	if len(l.routes) > 0 || len(l.paths) > 0 || l.query != nil || l.body != nil {
		return &ConfigError{Variant: l.name, Err: ErrFallbackFields,
			Detail: fmt.Sprintf("fallback variant `%s` cannot have routes or path, query, or body fields", l.name)}
	}
	if l.forward == nil {
		return &ConfigError{Variant: l.name, Err: ErrNotConstructible,
			Detail: fmt.Sprintf("fallback variant `%s` needs a forward field", l.name)}
	}
	if b.fallback != nil {
		return &ConfigError{Variant: l.name, Err: ErrMultipleFallbacks,
			Detail: fmt.Sprintf("cannot define multiple fallback variants: `%s` and `%s`", b.fallback.name, l.name)}
	}

	b.fallback = l
	b.cfg.logger.Debug("fallback registered", "variant", l.name, "forward", l.forward.name)
	b.cfg.emit(DiagFallbackRegistered, "fallback registered", map[string]any{
		"variant": l.name,
		"forward": l.forward.name,
	})

	return nil
}

// bindPlaceholders checks that every route of l uses the same placeholders
// in the same order and that they match the path fields one to one.
func (b *builder[T]) bindPlaceholders(l *leaf[T]) error {
	first := l.routes[0]
	names := first.pattern.Placeholders()

	for _, r := range l.routes[1:] {
		if !slices.Equal(names, r.pattern.Placeholders()) {
			return &ConfigError{Variant: l.name, Route: r.String(), Err: ErrPlaceholderMismatch,
				Detail: fmt.Sprintf("different placeholders used on variant `%s`: `%s` and `%s`", l.name, first, r)}
		}
	}

	for _, name := range names {
		if _, ok := l.paths[name]; !ok {
			return &ConfigError{Variant: l.name, Route: first.String(), Err: ErrUnknownPlaceholder,
				Detail: fmt.Sprintf("placeholder `{%s}` of route `%s` does not refer to a path field of variant `%s`",
					name, first, l.name)}
		}
	}
	for _, name := range l.pathOrder {
		if !slices.Contains(names, name) {
			return &ConfigError{Variant: l.name, Err: ErrUnusedPathField,
				Detail: fmt.Sprintf("path field `%s` of variant `%s` is not a placeholder of `%s`", name, l.name, first)}
		}
	}

	l.placeholders = names
	if len(names) >= b.cfg.highParamCount {
		b.cfg.emit(DiagHighParamCount, "route has many placeholders", map[string]any{
			"route":   first.String(),
			"variant": l.name,
			"count":   len(names),
		})
	}

	return nil
}

func (b *builder[T]) insert(l *leaf[T], r boundRoute) error {
	key := r.pattern.Key()

	for _, g := range b.groups {
		if g.pattern.Key() == key {
			continue
		}
		example, overlaps := r.pattern.FindOverlap(g.pattern)
		if !overlaps {
			continue
		}
		prev := g.records[0]

		return &ConfigError{Variant: l.name, Route: r.String(), Err: ErrOverlappingRoutes,
			Detail: fmt.Sprintf("route `%s` on `%s` overlaps with previously defined route `%s %s` on `%s` (both would match path `%s`)",
				r, l.name, prev.Method, prev.Path, prev.Variant, example)}
	}

	idx, ok := b.index[key]
	if !ok {
		idx = len(b.groups)
		b.groups = append(b.groups, &group[T]{
			pattern: r.pattern,
			targets: make(map[string]*leaf[T]),
		})
		b.index[key] = idx
	}
	g := b.groups[idx]

	if _, dup := g.targets[r.method]; dup {
		prev := g.record(r.method)
		return &ConfigError{Variant: l.name, Route: r.String(), Err: ErrDuplicateRoute,
			Detail: fmt.Sprintf("duplicate route: `%s %s` on `%s` matches the same requests as `%s` on `%s`",
				prev.Method, prev.Path, prev.Variant, r, l.name)}
	}

	g.add(r.method, l, r.pattern.String(), false)
	b.cfg.logger.Debug("route registered", "method", r.method, "path", r.pattern.String(), "variant", l.name)
	b.cfg.emit(DiagRouteRegistered, "route registered", map[string]any{
		"method":  r.method,
		"path":    r.pattern.String(),
		"variant": l.name,
	})

	return nil
}

// synthesizeHead adds HEAD to every group that has GET but no HEAD.
// Groups never overlap, so a HEAD declared on another pattern cannot accept
// any path of this group and only the group's own HEAD suppresses it.
func (b *builder[T]) synthesizeHead() {
	for _, g := range b.groups {
		get, hasGet := g.targets[http.MethodGet]
		if _, hasHead := g.targets[http.MethodHead]; !hasGet || hasHead {
			continue
		}

		raw := g.record(http.MethodGet).Path
		g.add(http.MethodHead, get, raw, true)
		b.cfg.logger.Debug("implicit HEAD route added", "path", raw, "variant", get.name)
		b.cfg.emit(DiagImplicitHead, "implicit HEAD route added", map[string]any{
			"path":    raw,
			"variant": get.name,
		})
	}
}

// validMethod reports whether m is an RFC 9110 token.
func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for i := 0; i < len(m); i++ {
		c := m[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '!', c == '#', c == '$', c == '%', c == '&', c == '\'', c == '*',
			c == '+', c == '-', c == '.', c == '^', c == '_', c == '`', c == '|', c == '~':
		default:
			return false
		}
	}

	return true
}
