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
	"reflect"
)

// Parser turns one captured path segment into a field value.
type Parser interface {
	Parse(segment string) (any, error)
}

// ParserFunc adapts a typed parse function to Parser.
type ParserFunc[V any] func(segment string) (V, error)

// Parse implements Parser.
func (f ParserFunc[V]) Parse(segment string) (any, error) {
	v, err := f(segment)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// QueryDecoder turns the raw query string into a field value.
// An absent query string is passed as "".
type QueryDecoder interface {
	DecodeQuery(rawQuery string) (any, error)
}

// QueryFunc adapts a typed query function to QueryDecoder.
type QueryFunc[V any] func(rawQuery string) (V, error)

// DecodeQuery implements QueryDecoder.
func (f QueryFunc[V]) DecodeQuery(rawQuery string) (any, error) {
	v, err := f(rawQuery)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Guard inspects request metadata before the body is read.
//
// The request passed to Check has its body replaced by http.NoBody. sub is
// the value of type Context() projected from the request context.
type Guard interface {
	Context() reflect.Type
	Check(ctx context.Context, head *http.Request, sub any) (any, error)
}

// GuardFunc adapts a typed guard function to Guard. S is the sub-context the
// guard needs; use NoContext when it needs none.
type GuardFunc[S, V any] func(ctx context.Context, head *http.Request, sub S) (V, error)

// Context implements Guard.
func (f GuardFunc[S, V]) Context() reflect.Type {
	return reflect.TypeFor[S]()
}

// Check implements Guard.
func (f GuardFunc[S, V]) Check(ctx context.Context, head *http.Request, sub any) (any, error) {
	s, _ := sub.(S)

	v, err := f(ctx, head, s)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// BodyDecoder consumes the request body.
//
// At most one BodyDecoder runs per request. The body must not be used after
// DecodeBody returns.
type BodyDecoder interface {
	Context() reflect.Type
	DecodeBody(ctx context.Context, head *http.Request, body io.Reader, sub any) (any, error)
}

// BodyFunc adapts a typed body function to BodyDecoder.
type BodyFunc[S, V any] func(ctx context.Context, head *http.Request, body io.Reader, sub S) (V, error)

// Context implements BodyDecoder.
func (f BodyFunc[S, V]) Context() reflect.Type {
	return reflect.TypeFor[S]()
}

// DecodeBody implements BodyDecoder.
func (f BodyFunc[S, V]) DecodeBody(ctx context.Context, head *http.Request, body io.Reader, sub any) (any, error) {
	s, _ := sub.(S)

	v, err := f(ctx, head, body, s)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Forwarder is a nested route table that takes over the remaining request.
// *Table implements it; the interface is sealed.
type Forwarder interface {
	contextType() reflect.Type
	forward(ctx context.Context, req *request, rc any) (any, error)
	trace(method, path string) ([]RouteInfo, error)
}
