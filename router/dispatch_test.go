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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedMethods(t *testing.T) {
	t.Parallel()

	table := mustTable(t, []Variant[hit]{
		leafOf("UserInfo", GET("/users/{id}"), Path("id", Uint32)),
		leafOf("UserUpdate", PATCH("/users/{id}"), Path("id", Uint32)),
		leafOf("Item", GET("/items/{id}"), Path("id", Uint32)),
		leafOf("ItemByName", DELETE("/items/{name}"), Path("name", String)),
	})

	tests := []struct {
		name    string
		method  string
		target  string
		allowed []string
	}{
		{
			name:    "all methods of the group",
			method:  http.MethodPost,
			target:  "/users/1",
			allowed: []string{http.MethodGet, http.MethodPatch, http.MethodHead},
		},
		{
			name:    "methods whose placeholders parse",
			method:  http.MethodPost,
			target:  "/items/abc",
			allowed: []string{http.MethodDelete},
		},
		{
			name:    "numeric id accepted by every variant",
			method:  http.MethodPost,
			target:  "/items/12",
			allowed: []string{http.MethodGet, http.MethodDelete, http.MethodHead},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeReq(t, table, tt.method, tt.target)
			de := requireKind(t, err, KindWrongMethod)
			assert.Equal(t, tt.allowed, de.Allowed)
			assert.Equal(t, http.StatusMethodNotAllowed, de.HTTPStatus())
			require.ErrorIs(t, err, ErrWrongMethod)
		})
	}
}

func TestWrongMethodMessage(t *testing.T) {
	t.Parallel()

	table := mustTable(t, []Variant[hit]{leafOf("Index", GET("/"))})

	_, err := decodeReq(t, table, http.MethodDelete, "/")
	de := requireKind(t, err, KindWrongMethod)
	assert.Equal(t, "method not allowed (allowed: GET, HEAD)", err.Error())
	assert.Equal(t, "GET, HEAD", de.AllowHeader())
}

func TestEscapedLiterals(t *testing.T) {
	t.Parallel()

	table := mustTable(t, []Variant[hit]{
		leafOf("Brace", GET(`/\{x}`)),
		leafOf("Cafe", GET("/café")),
		leafOf("Spaced", GET("/a b")),
		leafOf("Menu", GET("/café/{item}"), Path("item", String)),
	})

	tests := []struct {
		name   string
		target string
		want   hit
	}{
		{name: "escaped brace", target: "/%7Bx%7D", want: hit{Variant: "Brace", Values: map[string]any{}}},
		{name: "raw brace", target: "/{x}", want: hit{Variant: "Brace", Values: map[string]any{}}},
		{name: "lower case escapes", target: "/%7bx%7d", want: hit{Variant: "Brace", Values: map[string]any{}}},
		{name: "utf-8 literal", target: "/caf%C3%A9", want: hit{Variant: "Cafe", Values: map[string]any{}}},
		{name: "over-escaped literal", target: "/%63af%c3%a9", want: hit{Variant: "Cafe", Values: map[string]any{}}},
		{name: "space", target: "/a%20b", want: hit{Variant: "Spaced", Values: map[string]any{}}},
		{
			name:   "placeholder after escaped literal",
			target: "/caf%C3%A9/cr%C3%AApe",
			want:   hit{Variant: "Menu", Values: map[string]any{"item": "crêpe"}},
		},
		{
			name:   "encoded slash stays in the segment",
			target: "/caf%C3%A9/a%2Fb",
			want:   hit{Variant: "Menu", Values: map[string]any{"item": "a/b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := decodeReq(t, table, http.MethodGet, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := decodeReq(t, table, http.MethodGet, "/cafe")
	requireKind(t, err, KindNoMatchingRoute)

	assert.Equal(t, []string{http.MethodGet, http.MethodHead}, table.Allowed("/caf%c3%a9"))
	info, err := table.Resolve(http.MethodGet, "/%7bx%7d")
	require.NoError(t, err)
	assert.Equal(t, "Brace", info.Variant)
}

func forwardingTables(t *testing.T, fallbackParts ...Part) *Table[hit, NoContext] {
	t.Helper()

	inner := mustTable(t, []Variant[hit]{
		leafOf("InnerGet", GET("/a")),
		leafOf("InnerCreate", POST("/a")),
		leafOf("InnerShared", PUT("/shared/{id}"), Path("id", Int)),
		leafOf("InnerSharedGet", GET("/shared/{id}"), Path("id", Int)),
		leafOf("InnerOnly", GET("/inner/{id}"), Path("id", Int)),
	}, WithName("inner"))

	parts := append([]Part{Forward("inner", inner)}, fallbackParts...)

	return mustTable(t, []Variant[hit]{
		leafOf("OuterGet", GET("/a")),
		leafOf("OuterShared", GET("/shared/{id}"), Path("id", Int)),
		leafOf("OuterOnly", GET("/b")),
		fallbackOf("Nested", parts...),
	}, WithName("outer"))
}

func TestFallbackForwarding(t *testing.T) {
	t.Parallel()

	table := forwardingTables(t)

	tests := []struct {
		name   string
		method string
		target string
		want   hit
	}{
		{
			name:   "outer route wins",
			method: http.MethodGet,
			target: "/a",
			want:   hit{Variant: "OuterGet", Values: map[string]any{}},
		},
		{
			name:   "outer route wins over the same nested route",
			method: http.MethodGet,
			target: "/shared/7",
			want:   hit{Variant: "OuterShared", Values: map[string]any{"id": 7}},
		},
		{
			name:   "outer implicit HEAD wins over nested HEAD",
			method: http.MethodHead,
			target: "/a",
			want:   hit{Variant: "OuterGet", Values: map[string]any{}},
		},
		{
			name:   "outer wrong method delegates to fallback",
			method: http.MethodPost,
			target: "/a",
			want: hit{Variant: "Nested", Values: map[string]any{
				"inner": hit{Variant: "InnerCreate", Values: map[string]any{}},
			}},
		},
		{
			name:   "unmatched path delegates to fallback",
			method: http.MethodGet,
			target: "/inner/5",
			want: hit{Variant: "Nested", Values: map[string]any{
				"inner": hit{Variant: "InnerOnly", Values: map[string]any{"id": 5}},
			}},
		},
		{
			name:   "implicit HEAD of nested route",
			method: http.MethodHead,
			target: "/inner/6",
			want: hit{Variant: "Nested", Values: map[string]any{
				"inner": hit{Variant: "InnerOnly", Values: map[string]any{"id": 6}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := decodeReq(t, table, tt.method, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackErrors(t *testing.T) {
	t.Parallel()

	table := forwardingTables(t)

	tests := []struct {
		name    string
		method  string
		target  string
		kind    Kind
		allowed []string
	}{
		{
			name:    "allowed methods merge outer first",
			method:  http.MethodDelete,
			target:  "/a",
			kind:    KindWrongMethod,
			allowed: []string{http.MethodGet, http.MethodHead, http.MethodPost},
		},
		{
			name:    "merge across placeholder groups",
			method:  http.MethodDelete,
			target:  "/shared/3",
			kind:    KindWrongMethod,
			allowed: []string{http.MethodGet, http.MethodHead, http.MethodPut},
		},
		{
			name:   "inner no match propagates unchanged",
			method: http.MethodDelete,
			target: "/b",
			kind:   KindNoMatchingRoute,
		},

		{
			name:    "inner wrong method on unmatched outer path",
			method:  http.MethodDelete,
			target:  "/inner/1",
			kind:    KindWrongMethod,
			allowed: []string{http.MethodGet, http.MethodHead},
		},
		{
			name:   "no table matches",
			method: http.MethodGet,
			target: "/nowhere",
			kind:   KindNoMatchingRoute,
		},
		{
			name:   "inner parse failure",
			method: http.MethodGet,
			target: "/inner/x",
			kind:   KindPathSegment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeReq(t, table, tt.method, tt.target)
			de := requireKind(t, err, tt.kind)
			if tt.allowed != nil {
				assert.Equal(t, tt.allowed, de.Allowed)
			}
		})
	}
}

func TestFallbackGuard(t *testing.T) {
	t.Parallel()

	deny := GuardFunc[NoContext, bool](func(context.Context, *http.Request, NoContext) (bool, error) {
		return false, errors.New("denied")
	})
	table := forwardingTables(t, Require("auth", deny))

	_, err := decodeReq(t, table, http.MethodGet, "/inner/1")
	de := requireKind(t, err, KindGuard)
	assert.Equal(t, "auth", de.Field)

	_, err = decodeReq(t, table, http.MethodDelete, "/a")
	requireKind(t, err, KindGuard)

	got, err := decodeReq(t, table, http.MethodGet, "/a")
	require.NoError(t, err)
	assert.Equal(t, "OuterGet", got.Variant)
}

func TestForwardedBody(t *testing.T) {
	t.Parallel()

	inner := mustTable(t, []Variant[hit]{
		leafOf("Create", POST("/items"), Body("data", textBody)),
	})
	table := mustTable(t, []Variant[hit]{
		leafOf("Api", POST("/api/{rest...}"), Path("rest", String), Forward("next", inner)),
		fallbackOf("Other", Forward("next", inner)),
	})

	got, err := decodeWithBody(t, table, http.MethodPost, "/items", "hello")
	require.NoError(t, err)
	assert.Equal(t, hit{Variant: "Other", Values: map[string]any{
		"next": hit{Variant: "Create", Values: map[string]any{"data": "hello"}},
	}}, got)

	_, err = decodeWithBody(t, table, http.MethodPost, "/api/items", "hello")
	requireKind(t, err, KindNoMatchingRoute)
}

func TestMergeMethods(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"GET", "HEAD", "POST"}, mergeMethods([]string{"GET", "HEAD"}, []string{"POST", "GET"}))
	assert.Equal(t, []string{"PUT"}, mergeMethods(nil, []string{"PUT"}))
	assert.Equal(t, []string{"GET"}, mergeMethods([]string{"GET"}, nil))
}
