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
	"net/http"
	"reflect"
	"time"
)

// Result is the outcome of DecodeAsync.
type Result[T any] struct {
	Value T
	Err   error
}

// Decode classifies req into a variant of T.
//
// Steps run one after another and the first failure ends the decode:
//
//  1. path placeholders, parsed in pattern order
//  2. the query string
//  3. guards, in declaration order
//  4. the body, or the nested table of a forward field
//  5. construction of the variant
//
// ctx is checked before each step; a canceled decode returns ctx.Err() and
// runs no further steps. The request context rc is handed to capabilities
// through projection and is never modified.
func (t *Table[T, C]) Decode(ctx context.Context, req *http.Request, rc C) (T, error) {
	start := time.Now()
	ctx, span := t.obs.start(ctx, req)

	v, variant, err := t.resolve(ctx, newRequest(ctx, req), any(rc))
	t.obs.finish(ctx, span, start, variant, err)

	if err != nil {
		t.logger.DebugContext(ctx, "request decode failed",
			"table", t.name,
			"method", req.Method,
			"path", req.URL.Path,
			"outcome", outcomeOf(err),
			"error", err,
		)
		if t.mapErr != nil {
			err = t.mapErr(err)
		}
		var zero T

		return zero, err
	}

	return v, nil
}

// DecodeAsync runs Decode on a new goroutine. The channel receives exactly
// one Result and is then closed. Cancel ctx to abandon the decode.
func (t *Table[T, C]) DecodeAsync(ctx context.Context, req *http.Request, rc C) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		v, err := t.Decode(ctx, req, rc)
		out <- Result[T]{Value: v, Err: err}
	}()

	return out
}

// DecodeSync decodes req under req.Context() and blocks until done.
//
// It is meant for call sites without a context of their own. Capabilities
// must not call it on the table that is currently running them, since the
// request body can only be consumed once.
func (t *Table[T, C]) DecodeSync(req *http.Request, rc C) (T, error) {
	return t.Decode(req.Context(), req, rc)
}

// run executes the pipeline for l. g is nil for the fallback.
func (t *Table[T, C]) run(ctx context.Context, l *leaf[T], g *group[T], r *request, rc any) (T, error) {
	var zero T
	values := newValues(l.fields)

	if g != nil && len(l.placeholders) > 0 {
		captures, _ := g.pattern.Match(r.path)
		for i, raw := range captures {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			name := l.placeholders[i]
			v, err := parseCapture(l.paths[name], raw)
			if err != nil {
				return zero, &Error{Kind: KindPathSegment, Field: name, Err: err}
			}
			values.set(name, v)
		}
	}

	if l.query != nil {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := l.query.query.DecodeQuery(r.head.URL.RawQuery)
		if err != nil {
			return zero, &Error{Kind: KindQueryParam, Field: l.query.name, Err: err}
		}
		values.set(l.query.name, v)
	}

	for _, f := range l.guards {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		stepEvent(ctx, "guard", f.name)
		v, err := checkGuard(ctx, f.guard, r.head, rc)
		if err != nil {
			return zero, &Error{Kind: KindGuard, Field: f.name, Err: err}
		}
		values.set(f.name, v)
	}

	switch {
	case l.body != nil:
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		stepEvent(ctx, "body", l.body.name)
		v, err := decodeBody(ctx, l.body.body, r, rc)
		if err != nil {
			return zero, &Error{Kind: KindBody, Field: l.body.name, Err: err}
		}
		values.set(l.body.name, v)

	case l.forward != nil:
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		stepEvent(ctx, "forward", l.forward.name)
		v, err := l.forward.forward.forward(ctx, r, rc)
		if err != nil {
			return zero, err
		}
		values.set(l.forward.name, v)
	}

	return l.construct(values), nil
}

func checkGuard(ctx context.Context, g Guard, head *http.Request, rc any) (any, error) {
	sub, err := project(rc, g.Context())
	if err != nil {
		return nil, err
	}

	return g.Check(ctx, head, sub)
}

func decodeBody(ctx context.Context, b BodyDecoder, r *request, rc any) (any, error) {
	sub, err := project(rc, b.Context())
	if err != nil {
		return nil, err
	}

	return b.DecodeBody(ctx, r.head, r.body, sub)
}

func (t *Table[T, C]) contextType() reflect.Type {
	return t.ctxType
}

// forward decodes a request handed over by an outer table. Errors are
// returned unmapped so the outer table can merge allowed methods.
func (t *Table[T, C]) forward(ctx context.Context, r *request, rc any) (any, error) {
	v, _, err := t.resolve(ctx, r, rc)
	if err != nil {
		return nil, err
	}

	return v, nil
}
