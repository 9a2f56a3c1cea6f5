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
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/dispatch/pattern"
)

func nestedTable(t *testing.T) *Table[hit, NoContext] {
	t.Helper()

	return mustTable(t, []Variant[hit]{leafOf("Inner", GET("/inner"))})
}

func TestNewConfigErrors(t *testing.T) {
	t.Parallel()

	inner := nestedTable(t)
	textBody := BodyFunc[NoContext, string](func(context.Context, *http.Request, io.Reader, NoContext) (string, error) {
		return "", nil
	})

	tests := []struct {
		name       string
		variants   []Variant[hit]
		wantErr    error
		wantDetail string
	}{
		{
			name: "overlapping routes",
			variants: []Variant[hit]{
				leafOf("Var", GET("/0")),
				leafOf("Variant", GET("/{ph}"), Path("ph", String)),
			},
			wantErr:    ErrOverlappingRoutes,
			wantDetail: "router: route `GET /{ph}` on `Variant` overlaps with previously defined route `GET /0` on `Var` (both would match path `/0`)",
		},
		{
			name: "overlap across methods",
			variants: []Variant[hit]{
				leafOf("Me", POST("/users/me")),
				leafOf("User", GET("/users/{id}"), Path("id", Uint32)),
			},
			wantErr: ErrOverlappingRoutes,
		},
		{
			name: "duplicate route",
			variants: []Variant[hit]{
				leafOf("A", GET("/{pl}"), Path("pl", String)),
				leafOf("B", GET("/{ph}"), Path("ph", String)),
			},
			wantErr:    ErrDuplicateRoute,
			wantDetail: "router: duplicate route: `GET /{pl}` on `A` matches the same requests as `GET /{ph}` on `B`",
		},
		{
			name: "invalid pattern",
			variants: []Variant[hit]{
				leafOf("Bad", GET("/{rest...}/tail"), Path("rest", String)),
			},
			wantErr: pattern.ErrRestNotLast,
		},
		{
			name:     "invalid method",
			variants: []Variant[hit]{leafOf("Bad", Route("GE T", "/"))},
			wantErr:  ErrInvalidMethod,
		},
		{
			name: "multiple fallbacks",
			variants: []Variant[hit]{
				fallbackOf("F1", Forward("a", inner)),
				fallbackOf("F2", Forward("b", inner)),
			},
			wantErr:    ErrMultipleFallbacks,
			wantDetail: "router: cannot define multiple fallback variants: `F1` and `F2`",
		},
		{
			name: "body and forward",
			variants: []Variant[hit]{
				leafOf("Both", POST("/x"), Body("data", textBody), Forward("next", inner)),
			},
			wantErr: ErrBodyAndForward,
		},
		{
			name: "two bodies",
			variants: []Variant[hit]{
				leafOf("Two", POST("/x"), Body("a", textBody), Body("b", textBody)),
			},
			wantErr: ErrMultipleBodies,
		},
		{
			name: "two query fields",
			variants: []Variant[hit]{
				leafOf("Two", GET("/x"), Query("a", RawQuery), Query("b", RawQuery)),
			},
			wantErr: ErrMultipleQueries,
		},
		{
			name: "placeholder mismatch",
			variants: []Variant[hit]{
				leafOf("Mixed", GET("/a/{x}"), POST("/b/{y}"), Path("x", String), Path("y", String)),
			},
			wantErr:    ErrPlaceholderMismatch,
			wantDetail: "router: different placeholders used on variant `Mixed`: `GET /a/{x}` and `POST /b/{y}`",
		},
		{
			name: "placeholder order mismatch",
			variants: []Variant[hit]{
				leafOf("Order", GET("/{a}/{b}"), POST("/{b}/{a}/x"), Path("a", String), Path("b", String)),
			},
			wantErr: ErrPlaceholderMismatch,
		},
		{
			name:     "unknown placeholder",
			variants: []Variant[hit]{leafOf("User", GET("/users/{id}"))},
			wantErr:  ErrUnknownPlaceholder,
		},
		{
			name:     "unused path field",
			variants: []Variant[hit]{leafOf("Users", GET("/users"), Path("id", Uint32))},
			wantErr:  ErrUnusedPathField,
		},
		{
			name:     "duplicate field",
			variants: []Variant[hit]{leafOf("Dup", GET("/{id}"), Path("id", Int), Path("id", Int))},
			wantErr:  ErrDuplicateField,
		},
		{
			name:     "nil capability",
			variants: []Variant[hit]{leafOf("Nil", GET("/{id}"), Path("id", nil))},
			wantErr:  ErrNilCapability,
		},
		{
			name:     "no routes",
			variants: []Variant[hit]{leafOf("Orphan")},
			wantErr:  ErrNotConstructible,
		},
		{
			name:     "nil constructor",
			variants: []Variant[hit]{Leaf[hit]("Nil", nil, GET("/"))},
			wantErr:  ErrNotConstructible,
		},
		{
			name:     "fallback without forward",
			variants: []Variant[hit]{fallbackOf("Lost")},
			wantErr:  ErrNotConstructible,
		},
		{
			name:     "fallback with route",
			variants: []Variant[hit]{fallbackOf("Routed", GET("/"), Forward("next", inner))},
			wantErr:  ErrFallbackFields,
		},
		{
			name:     "fallback with body",
			variants: []Variant[hit]{fallbackOf("Body", Forward("next", inner), Body("b", textBody))},
			wantErr:  ErrBodyAndForward,
		},
		{
			name:     "fallback with query",
			variants: []Variant[hit]{fallbackOf("Query", Forward("next", inner), Query("q", RawQuery))},
			wantErr:  ErrFallbackFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := New[hit, NoContext](tt.variants)
			require.Error(t, err)
			assert.Nil(t, table)
			require.ErrorIs(t, err, tt.wantErr)

			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, err.Error())
			}
		})
	}
}

func TestInvalidPatternWrapsBothSentinels(t *testing.T) {
	t.Parallel()

	_, err := New[hit, NoContext]([]Variant[hit]{leafOf("Bad", GET("users"))})
	require.ErrorIs(t, err, ErrInvalidPattern)
	require.ErrorIs(t, err, pattern.ErrMissingLeadingSlash)
}

func TestMustNewPanics(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t,
		"router.MustNew: router: variant `Orphan` has no routes and is not a fallback",
		func() { MustNew[hit, NoContext]([]Variant[hit]{leafOf("Orphan")}) })
}

func TestEquivalentPatternsShareGroup(t *testing.T) {
	t.Parallel()

	table := mustTable(t, []Variant[hit]{
		leafOf("Get", GET("/users/{id}"), Path("id", Uint32)),
		leafOf("Patch", PATCH("/users/{uid}"), Path("uid", Uint32)),
	})

	require.Len(t, table.groups, 1)
	assert.Equal(t, []string{http.MethodGet, http.MethodPatch, http.MethodHead}, table.groups[0].methods)

	got, err := decodeReq(t, table, http.MethodPatch, "/users/7")
	require.NoError(t, err)
	assert.Equal(t, hit{Variant: "Patch", Values: map[string]any{"uid": uint32(7)}}, got)
}

func TestImplicitHead(t *testing.T) {
	t.Parallel()

	table := mustTable(t, []Variant[hit]{
		leafOf("Page", GET("/page")),
		leafOf("Explicit", GET("/explicit")),
		leafOf("ExplicitHead", HEAD("/explicit")),
	})

	got, err := decodeReq(t, table, http.MethodHead, "/page")
	require.NoError(t, err)
	assert.Equal(t, "Page", got.Variant)

	got, err = decodeReq(t, table, http.MethodHead, "/explicit")
	require.NoError(t, err)
	assert.Equal(t, "ExplicitHead", got.Variant)

	assert.Contains(t, table.Routes(), RouteInfo{Method: http.MethodHead, Path: "/page", Variant: "Page", Implicit: true})
	assert.Contains(t, table.Routes(), RouteInfo{Method: http.MethodHead, Path: "/explicit", Variant: "ExplicitHead"})
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	var events []DiagnosticEvent
	handler := DiagnosticHandlerFunc(func(e DiagnosticEvent) {
		events = append(events, e)
	})

	inner := nestedTable(t)
	mustTable(t, []Variant[hit]{
		leafOf("Deep", GET("/{a}/{b}/{c}"), Path("a", String), Path("b", String), Path("c", String)),
		fallbackOf("Nested", Forward("inner", inner)),
	}, WithDiagnostics(handler), WithHighParamThreshold(3))

	kinds := make([]DiagnosticKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []DiagnosticKind{
		DiagHighParamCount,
		DiagRouteRegistered,
		DiagFallbackRegistered,
		DiagImplicitHead,
	}, kinds)
	assert.Equal(t, "/{a}/{b}/{c}", events[3].Fields["path"])
}

func TestImplicitHeadDiagnostics(t *testing.T) {
	t.Parallel()

	var events []DiagnosticEvent
	handler := DiagnosticHandlerFunc(func(e DiagnosticEvent) {
		if e.Kind == DiagImplicitHead {
			events = append(events, e)
		}
	})

	table := mustTable(t, []Variant[hit]{
		leafOf("Page", GET("/page")),
		leafOf("PageHead", HEAD("/page/{id}"), Path("id", String)),
		leafOf("Both", GET("/both"), HEAD("/both")),
	}, WithDiagnostics(handler))

	require.Len(t, events, 1, "only a group without its own HEAD gets one")
	assert.Equal(t, "/page", events[0].Fields["path"])
	assert.Contains(t, table.Routes(), RouteInfo{Method: http.MethodHead, Path: "/page", Variant: "Page", Implicit: true})
	assert.Contains(t, table.Routes(), RouteInfo{Method: http.MethodHead, Path: "/both", Variant: "Both"})
}

func siteVariants() []Variant[hit] {
	return []Variant[hit]{
		leafOf("Root", GET("/")),
		leafOf("Users", GET("/users"), POST("/users")),
		leafOf("User", GET("/users/{id}"), Path("id", String)),
		leafOf("Posts", GET("/users/{id}/posts/{post...}"), Path("id", String), Path("post", String)),
		leafOf("Files", GET("/files/{path...}"), Path("path", String)),
		leafOf("Options", OPTIONS("*")),
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	table := mustTable(t, siteVariants())

	tests := []struct {
		method  string
		path    string
		want    RouteInfo
		wantErr Kind
	}{
		{method: http.MethodGet, path: "/", want: RouteInfo{Method: http.MethodGet, Path: "/", Variant: "Root"}},
		{method: http.MethodPost, path: "/users", want: RouteInfo{Method: http.MethodPost, Path: "/users", Variant: "Users"}},
		{method: http.MethodGet, path: "/users/42", want: RouteInfo{Method: http.MethodGet, Path: "/users/{id}", Variant: "User"}},
		{method: http.MethodGet, path: "/users/42/posts/a/b", want: RouteInfo{Method: http.MethodGet, Path: "/users/{id}/posts/{post...}", Variant: "Posts"}},
		{method: http.MethodGet, path: "/files/", want: RouteInfo{Method: http.MethodGet, Path: "/files/{path...}", Variant: "Files"}},
		{method: http.MethodHead, path: "/files/x", want: RouteInfo{Method: http.MethodHead, Path: "/files/{path...}", Variant: "Files", Implicit: true}},
		{method: http.MethodOptions, path: "*", want: RouteInfo{Method: http.MethodOptions, Path: "*", Variant: "Options"}},
		{method: http.MethodGet, path: "/users/42/", wantErr: KindNoMatchingRoute},
		{method: http.MethodGet, path: "/nope", wantErr: KindNoMatchingRoute},
		{method: http.MethodDelete, path: "/users", wantErr: KindWrongMethod},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := table.Resolve(tt.method, tt.path)
			if tt.wantErr != 0 {
				requireKind(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFallback(t *testing.T) {
	t.Parallel()

	table := mustTable(t, []Variant[hit]{
		leafOf("Root", GET("/")),
		fallbackOf("Rest", Forward("inner", nestedTable(t))),
	})

	got, err := table.Resolve(http.MethodPost, "/")
	require.NoError(t, err)
	assert.Equal(t, RouteInfo{Variant: "Rest", Fallback: true}, got)

	name, ok := table.Fallback()
	assert.True(t, ok)
	assert.Equal(t, "Rest", name)
}

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	first := mustTable(t, siteVariants())
	second := mustTable(t, siteVariants())

	assert.Equal(t, first.Routes(), second.Routes())
	assert.Equal(t, first.Stats(), second.Stats())

	for _, path := range []string{"/", "/users", "/users/1", "/users/1/posts/x", "/files/a/b", "/other"} {
		a, errA := decodeReq(t, first, http.MethodGet, path)
		b, errB := decodeReq(t, second, http.MethodGet, path)
		assert.Equal(t, a, b, path)
		assert.Equal(t, errA, errB, path)
	}
}

func TestRoutesOrder(t *testing.T) {
	t.Parallel()

	table := mustTable(t, siteVariants(), WithName("site"))

	assert.Equal(t, "site", table.Name())
	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Path: "/", Variant: "Root"},
		{Method: http.MethodHead, Path: "/", Variant: "Root", Implicit: true},
		{Method: http.MethodGet, Path: "/users", Variant: "Users"},
		{Method: http.MethodPost, Path: "/users", Variant: "Users"},
		{Method: http.MethodHead, Path: "/users", Variant: "Users", Implicit: true},
	}, table.Routes()[:5])
}
