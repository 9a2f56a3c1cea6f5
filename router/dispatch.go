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
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"

	"rivaas.dev/dispatch/pattern"
)

// request is the per-decode view shared by every step and nested table.
type request struct {
	head *http.Request // body replaced by http.NoBody
	body io.ReadCloser
	path string // escaped path used for matching
}

func newRequest(ctx context.Context, req *http.Request) *request {
	head := req.WithContext(ctx)
	head.Body = http.NoBody
	head.GetBody = nil

	body := req.Body
	if body == nil {
		body = http.NoBody
	}

	return &request{head: head, body: body, path: matchPath(req.URL)}
}

// matchPath returns the canonical escaped path so that an encoded slash
// stays inside its segment and escaped literals compare equal.
func matchPath(u *url.URL) string {
	if u.Path == pattern.Asterisk {
		return pattern.Asterisk
	}

	p := u.EscapedPath()
	if p == "" {
		return "/"
	}

	return pattern.CanonicalPath(p)
}

// parseCapture unescapes a captured segment and parses it.
func parseCapture(p Parser, raw string) (any, error) {
	s, err := url.PathUnescape(raw)
	if err != nil {
		return nil, err
	}

	return p.Parse(s)
}

// resolve matches the path and picks the variant for the method. It handles
// fallback delegation and the merging of allowed methods.
func (t *Table[T, C]) resolve(ctx context.Context, r *request, rc any) (T, string, error) {
	var zero T

	idx, ok := t.matcher.Match(r.path)
	if !ok {
		if t.fallback == nil {
			return zero, "", &Error{Kind: KindNoMatchingRoute}
		}
		v, err := t.run(ctx, t.fallback, nil, r, rc)

		return v, t.fallback.name, err
	}

	g := t.groups[idx]
	if l, ok := g.targets[r.head.Method]; ok {
		v, err := t.run(ctx, l, g, r, rc)
		return v, l.name, err
	}

	allowed := g.allowedFor(r.path)
	if t.fallback == nil {
		return zero, "", &Error{Kind: KindWrongMethod, Allowed: allowed}
	}

	v, err := t.run(ctx, t.fallback, nil, r, rc)
	if err == nil {
		return v, t.fallback.name, nil
	}

	// Only WrongMethod is merged; every other fallback error, NoMatchingRoute
	// included, propagates unchanged.
	var inner *Error
	if errors.As(err, &inner) && inner.Kind == KindWrongMethod {
		return zero, "", &Error{Kind: KindWrongMethod, Allowed: mergeMethods(allowed, inner.Allowed)}
	}

	return zero, t.fallback.name, err
}

// allowedFor lists the methods of g whose variant accepts the placeholder
// values of path.
func (g *group[T]) allowedFor(path string) []string {
	if !g.pattern.HasPlaceholders() {
		return slices.Clone(g.methods)
	}

	captures, ok := g.pattern.Match(path)
	if !ok {
		return nil
	}

	allowed := make([]string, 0, len(g.methods))
	for _, m := range g.methods {
		if g.targets[m].accepts(captures) {
			allowed = append(allowed, m)
		}
	}

	return allowed
}

func (l *leaf[T]) accepts(captures []string) bool {
	for i, raw := range captures {
		if _, err := parseCapture(l.paths[l.placeholders[i]], raw); err != nil {
			return false
		}
	}

	return true
}

// mergeMethods appends the inner methods missing from outer.
func mergeMethods(outer, inner []string) []string {
	merged := slices.Clone(outer)
	for _, m := range inner {
		if !slices.Contains(merged, m) {
			merged = append(merged, m)
		}
	}

	return merged
}
