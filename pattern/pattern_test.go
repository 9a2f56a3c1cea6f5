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

package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		raw          string
		wantSegments []Segment
		wantNames    []string
		wantKey      string
	}{
		{
			name:         "root",
			raw:          "/",
			wantSegments: []Segment{{Kind: KindLiteral, Value: ""}},
			wantKey:      "^/$",
		},
		{
			name: "static",
			raw:  "/api/v1/users",
			wantSegments: []Segment{
				{Kind: KindLiteral, Value: "api"},
				{Kind: KindLiteral, Value: "v1"},
				{Kind: KindLiteral, Value: "users"},
			},
			wantKey: "^/api/v1/users$",
		},
		{
			name: "placeholder and rest",
			raw:  "/users/{id}/files/{path...}",
			wantSegments: []Segment{
				{Kind: KindLiteral, Value: "users"},
				{Kind: KindPlaceholder, Value: "id"},
				{Kind: KindLiteral, Value: "files"},
				{Kind: KindRest, Value: "path"},
			},
			wantNames: []string{"id", "path"},
			wantKey:   "^/users/([^/]+)/files/(.*)$",
		},
		{
			name:         "escaped brace",
			raw:          `/\{id}`,
			wantSegments: []Segment{{Kind: KindLiteral, Value: "{id}"}},
			wantKey:      `^/%7Bid%7D$`,
		},
		{
			name:         "literal with regexp metacharacters",
			raw:          "/a.b+c",
			wantSegments: []Segment{{Kind: KindLiteral, Value: "a.b+c"}},
			wantKey:      `^/a\.b\+c$`,
		},
		{
			name: "trailing slash",
			raw:  "/users/",
			wantSegments: []Segment{
				{Kind: KindLiteral, Value: "users"},
				{Kind: KindLiteral, Value: ""},
			},
			wantKey: "^/users/$",
		},
		{
			name:      "underscore identifiers",
			raw:       "/{_id}/{user_2}",
			wantNames: []string{"_id", "user_2"},
			wantSegments: []Segment{
				{Kind: KindPlaceholder, Value: "_id"},
				{Kind: KindPlaceholder, Value: "user_2"},
			},
			wantKey: "^/([^/]+)/([^/]+)$",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, p.String())
			assert.Equal(t, tt.wantSegments, p.Segments())
			assert.Equal(t, len(tt.wantNames), len(p.Placeholders()))
			if len(tt.wantNames) > 0 {
				assert.Equal(t, tt.wantNames, p.Placeholders())
			}
			assert.Equal(t, tt.wantKey, p.Key())
			assert.False(t, p.IsAsterisk())
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "", ErrMissingLeadingSlash},
		{"relative", "users", ErrMissingLeadingSlash},
		{"double asterisk", "**", ErrMissingLeadingSlash},
		{"empty placeholder", "/{}", ErrEmptyPlaceholder},
		{"empty rest", "/{...}", ErrEmptyPlaceholder},
		{"underscore alone", "/{_}", ErrInvalidPlaceholder},
		{"leading digit", "/{1abc}", ErrInvalidPlaceholder},
		{"dash", "/{user-id}", ErrInvalidPlaceholder},
		{"unclosed", "/{id", ErrUnclosedPlaceholder},
		{"lone brace", "/{", ErrUnclosedPlaceholder},
		{"duplicate", "/{id}/x/{id}", ErrDuplicatePlaceholder},
		{"duplicate with rest", "/{id}/{id...}", ErrDuplicatePlaceholder},
		{"rest not last", "/{rest...}/tail", ErrRestNotLast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.raw)
			require.Error(t, err)
			assert.Nil(t, p)
			require.ErrorIs(t, err, tt.wantErr)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.raw, perr.Pattern)
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t,
		`pattern.MustParse: invalid pattern "nope": pattern must start with '/' or be '*'`,
		func() { MustParse("nope") })
	assert.NotPanics(t, func() { MustParse("/ok") })
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		pattern      string
		path         string
		wantMatch    bool
		wantCaptures []string
	}{
		{"root", "/", "/", true, []string{}},
		{"root rejects segment", "/", "/a", false, nil},
		{"static", "/users", "/users", true, []string{}},
		{"static rejects trailing slash", "/users", "/users/", false, nil},
		{"placeholder", "/users/{id}", "/users/42", true, []string{"42"}},
		{"placeholder rejects empty", "/users/{id}", "/users/", false, nil},
		{"placeholder rejects slash", "/users/{id}", "/users/4/2", false, nil},
		{"rest captures remainder", "/{ph}/{rest...}", "/1234/bla/bli", true, []string{"1234", "bla/bli"}},
		{"rest accepts empty", "/files/{path...}", "/files/", true, []string{""}},
		{"rest needs separator", "/files/{path...}", "/files", false, nil},
		{"asterisk", "*", "*", true, []string{}},
		{"asterisk rejects root", "*", "/", false, nil},
		{"root rejects asterisk", "/", "*", false, nil},
		{"escaped literal", `/\{id}`, "/%7Bid%7D", true, []string{}},
		{"escaped literal needs escaped path", `/\{id}`, "/{id}", false, nil},
		{"non-ascii literal", "/café", "/caf%C3%A9", true, []string{}},
		{"space in literal", "/a b", "/a%20b", true, []string{}},
		{"escaped literal is not a placeholder", `/\{id}`, "/42", false, nil},
		{"metacharacters are literal", "/a.b", "/axb", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := MustParse(tt.pattern)
			captures, ok := p.Match(tt.path)
			assert.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.wantMatch, p.Matches(tt.path))
			if tt.wantMatch {
				assert.Equal(t, tt.wantCaptures, captures)
			}
		})
	}
}

func TestEquivalent(t *testing.T) {
	t.Parallel()

	assert.True(t, MustParse("/users/{id}").Equivalent(MustParse("/users/{uid}")))
	assert.True(t, MustParse("/{a}/{b...}").Equivalent(MustParse("/{x}/{y...}")))
	assert.False(t, MustParse("/users/{id}").Equivalent(MustParse("/users/{id...}")))
	assert.False(t, MustParse("/users").Equivalent(MustParse("/users/")))
	assert.True(t, MustParse("*").Equivalent(MustParse("*")))
	assert.False(t, MustParse("*").Equivalent(MustParse("/")))
}

func TestAsterisk(t *testing.T) {
	t.Parallel()

	p := MustParse("*")
	assert.True(t, p.IsAsterisk())
	assert.Empty(t, p.Segments())
	assert.False(t, p.HasPlaceholders())
	assert.False(t, p.HasRest())
	assert.Equal(t, "*", p.String())
}

func TestStaticPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"/", "/", true},
		{"/users/", "/users/", true},
		{`/\{id}/x`, "/%7Bid%7D/x", true},
		{"/café", "/caf%C3%A9", true},
		{"*", "*", true},
		{"/users/{id}", "", false},
		{"/{rest...}", "", false},
	}

	for _, tt := range tests {
		got, ok := MustParse(tt.raw).StaticPath()
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestEscapeSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"users", "users"},
		{"{id}", "%7Bid%7D"},
		{"café", "caf%C3%A9"},
		{"a b", "a%20b"},
		{"a/b", "a%2Fb"},
		{"a:b;c=d@e", "a:b;c=d@e"},
		{"100%", "100%25"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeSegment(tt.in), tt.in)
	}
}

func TestCanonicalPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/users/42", "/users/42"},
		{"/", "/"},
		{"*", "*"},
		{"/caf%c3%a9", "/caf%C3%A9"},
		{"/%63af%C3%A9", "/caf%C3%A9"},
		{"/a%2fb/c", "/a%2Fb/c"},
		{"/{x}", "/%7Bx%7D"},
		{"/a!b", "/a%21b"},
		{"/bad%zz/ok", "/bad%zz/ok"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalPath(tt.in), tt.in)
	}
}
