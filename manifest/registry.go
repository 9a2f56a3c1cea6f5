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
	"time"

	"github.com/go-viper/mapstructure/v2"

	"rivaas.dev/dispatch/router"
)

// Kind names a capability family in the registry.
type Kind string

// Capability kinds.
const (
	KindParser Kind = "parser"
	KindQuery  Kind = "query"
	KindGuard  Kind = "guard"
	KindBody   Kind = "body"
)

// Args holds the "with" arguments of a field.
type Args map[string]any

// Decode copies the arguments into out, a pointer to a struct with
// mapstructure tags. Strings are converted to durations and comma separated
// strings to slices. Unknown keys are an error.
func (a Args) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(map[string]any(a)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}

	return nil
}

// Factory creates a capability from its arguments.
type Factory[V any] func(args Args) (V, error)

// Static returns a factory that always yields v and rejects arguments.
//
//	reg.RegisterQuery("pagination", manifest.Static(router.URLQuery[Pagination]()))
func Static[V any](v V) Factory[V] {
	return func(args Args) (V, error) {
		if len(args) > 0 {
			var zero V
			return zero, fmt.Errorf("%w: takes no arguments, got %s",
				ErrInvalidArgs, strings.Join(slices.Sorted(maps.Keys(args)), ", "))
		}

		return v, nil
	}
}

// Registry maps capability names to factories. It is not safe for
// concurrent registration; fill it before calling Build.
type Registry struct {
	parsers map[string]Factory[router.Parser]
	queries map[string]Factory[router.QueryDecoder]
	guards  map[string]Factory[router.Guard]
	bodies  map[string]Factory[router.BodyDecoder]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]Factory[router.Parser]),
		queries: make(map[string]Factory[router.QueryDecoder]),
		guards:  make(map[string]Factory[router.Guard]),
		bodies:  make(map[string]Factory[router.BodyDecoder]),
	}
}

// DefaultRegistry returns a registry holding the built-in capabilities:
//
//   - parsers: string, int, int64, uint, uint32, uint64, float64, bool, uuid,
//     enum (values), time (layouts), duration (aliases)
//   - queries: raw
//   - guards: basic_auth (users, realm), header (header), optional_header
//     (header), content_type (types), rate_limit (rate, burst, key, cleanup),
//     request_id (header, allow_client_id)
//   - bodies: json, yaml, toml, msgpack, auto, text, bytes, all accepting
//     limit and required
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)

	return r
}

// RegisterParser adds a placeholder parser factory.
func (r *Registry) RegisterParser(name string, f Factory[router.Parser]) error {
	return register(r.parsers, KindParser, name, f)
}

// RegisterQuery adds a query decoder factory.
func (r *Registry) RegisterQuery(name string, f Factory[router.QueryDecoder]) error {
	return register(r.queries, KindQuery, name, f)
}

// RegisterGuard adds a guard factory. Guards with a Close method are closed
// by Routes.Close.
func (r *Registry) RegisterGuard(name string, f Factory[router.Guard]) error {
	return register(r.guards, KindGuard, name, f)
}

// RegisterBody adds a body decoder factory.
func (r *Registry) RegisterBody(name string, f Factory[router.BodyDecoder]) error {
	return register(r.bodies, KindBody, name, f)
}

// Names lists the registered names of a kind in sorted order.
func (r *Registry) Names(kind Kind) []string {
	switch kind {
	case KindParser:
		return slices.Sorted(maps.Keys(r.parsers))
	case KindQuery:
		return slices.Sorted(maps.Keys(r.queries))
	case KindGuard:
		return slices.Sorted(maps.Keys(r.guards))
	case KindBody:
		return slices.Sorted(maps.Keys(r.bodies))
	default:
		return nil
	}
}

func register[V any](m map[string]Factory[V], kind Kind, name string, f Factory[V]) error {
	if name == "" || f == nil {
		return fmt.Errorf("%w: %s %q", ErrNilFactory, kind, name)
	}
	if _, dup := m[name]; dup {
		return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, name)
	}
	m[name] = f

	return nil
}

func create[V any](m map[string]Factory[V], kind Kind, f Field) (V, error) {
	var zero V

	factory, ok := m[f.Use]
	if !ok {
		return zero, fmt.Errorf("%w: %s %q", ErrUnknownCapability, kind, f.Use)
	}
	v, err := factory(f.With)
	if err != nil {
		return zero, fmt.Errorf("%s %q: %w", kind, f.Use, err)
	}

	return v, nil
}
