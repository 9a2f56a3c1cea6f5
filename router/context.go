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
	"fmt"
	"reflect"
)

// NoContext is the empty request context. Capabilities that need nothing
// from the request context ask for it, and every context can provide it.
type NoContext struct{}

// ContextProvider is implemented by request contexts that carry several
// sub-contexts. ProvideContext returns the value of type t, if present.
//
// Example:
//
//	type AppContext struct {
//	    DB    *sql.DB
//	    Auth  *AuthService
//	}
//
//	func (c AppContext) ProvideContext(t reflect.Type) (any, bool) {
//	    switch t {
//	    case reflect.TypeFor[*sql.DB]():
//	        return c.DB, c.DB != nil
//	    case reflect.TypeFor[*AuthService]():
//	        return c.Auth, c.Auth != nil
//	    }
//	    return nil, false
//	}
type ContextProvider interface {
	ProvideContext(t reflect.Type) (any, bool)
}

var (
	noContextType       = reflect.TypeFor[NoContext]()
	contextProviderType = reflect.TypeFor[ContextProvider]()
)

// ContextAs projects the request context rc onto S.
func ContextAs[S any](rc any) (S, bool) {
	v, err := project(rc, reflect.TypeFor[S]())
	if err != nil {
		var zero S
		return zero, false
	}
	s, ok := v.(S)

	return s, ok
}

// project returns the value of type want carried by rc.
func project(rc any, want reflect.Type) (any, error) {
	if want == nil || want == noContextType {
		return NoContext{}, nil
	}
	if rc != nil && reflect.TypeOf(rc).AssignableTo(want) {
		return rc, nil
	}
	if p, ok := rc.(ContextProvider); ok {
		if v, ok := p.ProvideContext(want); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, want)
}

// canProvide reports whether a request context of static type have may be
// able to provide want. Interface contexts and providers are checked at
// request time.
func canProvide(have, want reflect.Type) bool {
	switch {
	case want == nil, want == noContextType:
		return true
	case have.AssignableTo(want):
		return true
	case have.Kind() == reflect.Interface:
		return true
	case have.Implements(contextProviderType):
		return true
	default:
		return false
	}
}
