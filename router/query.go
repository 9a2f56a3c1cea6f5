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
	"net/url"

	"rivaas.dev/binding"
)

// URLQuery returns a decoder binding the query string into a V struct
// using its `query` tags.
//
//	type Pagination struct {
//	    Page    int `query:"page" default:"1"`
//	    PerPage int `query:"per_page" default:"20"`
//	}
//
//	router.Query("page", router.URLQuery[Pagination]())
func URLQuery[V any](opts ...binding.Option) QueryDecoder {
	return QueryFunc[V](func(raw string) (V, error) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			var zero V
			return zero, err
		}

		return binding.Query[V](values, opts...)
	})
}

// OptionalQuery is like URLQuery but yields a nil *V when the query string
// is empty.
func OptionalQuery[V any](opts ...binding.Option) QueryDecoder {
	return QueryFunc[*V](func(raw string) (*V, error) {
		if raw == "" {
			return nil, nil
		}
		values, err := url.ParseQuery(raw)
		if err != nil {
			return nil, err
		}

		v, err := binding.Query[V](values, opts...)
		if err != nil {
			return nil, err
		}

		return &v, nil
	})
}

// RawQuery yields the parsed url.Values.
var RawQuery QueryDecoder = QueryFunc[url.Values](url.ParseQuery)
