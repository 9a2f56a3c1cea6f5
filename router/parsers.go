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
	"encoding"
	"strconv"
	"time"

	"github.com/google/uuid"
	"rivaas.dev/binding"
)

// Built-in placeholder parsers.
var (
	// String accepts any segment unchanged.
	String Parser = ParserFunc[string](func(s string) (string, error) { return s, nil })

	// Int parses a base 10 int.
	Int Parser = ParserFunc[int](strconv.Atoi)

	// Int64 parses a base 10 int64.
	Int64 Parser = ParserFunc[int64](func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})

	// Uint parses a base 10 uint.
	Uint Parser = ParserFunc[uint](func(s string) (uint, error) {
		v, err := strconv.ParseUint(s, 10, 0)
		return uint(v), err
	})

	// Uint32 parses a base 10 uint32.
	Uint32 Parser = ParserFunc[uint32](func(s string) (uint32, error) {
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err
	})

	// Uint64 parses a base 10 uint64.
	Uint64 Parser = ParserFunc[uint64](func(s string) (uint64, error) {
		return strconv.ParseUint(s, 10, 64)
	})

	// Float64 parses a float64.
	Float64 Parser = ParserFunc[float64](func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})

	// Bool parses the forms accepted by strconv.ParseBool.
	Bool Parser = ParserFunc[bool](strconv.ParseBool)

	// UUID parses a UUID in any form accepted by uuid.Parse.
	UUID Parser = ParserFunc[uuid.UUID](uuid.Parse)
)

// Text returns a parser for types implementing encoding.TextUnmarshaler on
// their pointer. The field value has type V.
//
//	router.Path("ip", router.Text[netip.Addr]())
func Text[V any, PV interface {
	*V
	encoding.TextUnmarshaler
}]() Parser {
	return ParserFunc[V](func(s string) (V, error) {
		var v V
		err := PV(&v).UnmarshalText([]byte(s))

		return v, err
	})
}

// Enum returns a parser accepting only the given values, compared without
// regard to case.
func Enum[V ~string](allowed ...V) Parser {
	return ParserFunc[V](binding.EnumConverter(allowed...))
}

// Time returns a parser trying each layout in order. Without layouts it
// accepts RFC 3339.
func Time(layouts ...string) Parser {
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339}
	}

	return ParserFunc[time.Time](binding.TimeConverter(layouts...))
}

// Duration returns a parser for time.ParseDuration strings and the given
// case-insensitive aliases.
func Duration(aliases map[string]time.Duration) Parser {
	return ParserFunc[time.Duration](binding.DurationConverter(aliases))
}
