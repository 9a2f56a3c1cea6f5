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
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// hit is the output type used by most tests: the variant name plus every
// decoded field.
type hit struct {
	Variant string
	Values  map[string]any
}

func leafOf(name string, parts ...Part) Variant[hit] {
	return Leaf(name, collect(name), parts...)
}

func fallbackOf(name string, parts ...Part) Variant[hit] {
	return Fallback(name, collect(name), parts...)
}

func collect(name string) func(*Values) hit {
	return func(v *Values) hit {
		values := make(map[string]any, v.Len())
		for _, n := range v.Names() {
			values[n], _ = v.Value(n)
		}

		return hit{Variant: name, Values: values}
	}
}

func mustTable(t *testing.T, variants []Variant[hit], opts ...Option) *Table[hit, NoContext] {
	t.Helper()

	table, err := New[hit, NoContext](variants, opts...)
	require.NoError(t, err)

	return table
}

func decodeReq(t *testing.T, table *Table[hit, NoContext], method, target string) (hit, error) {
	t.Helper()

	return table.Decode(t.Context(), httptest.NewRequest(method, target, nil), NoContext{})
}

func decodeWithBody(t *testing.T, table *Table[hit, NoContext], method, target, body string) (hit, error) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	return table.Decode(t.Context(), httptest.NewRequest(method, target, r), NoContext{})
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()

	require.Error(t, err)
	var de *Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, kind, de.Kind, "error: %v", err)

	return de
}
