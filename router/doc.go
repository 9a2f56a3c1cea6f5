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

// Package router turns HTTP requests into typed values.
//
// A Table is declared as a list of variants. Each variant names the routes
// that reach it and the fields it is built from:
//
//	type Route interface{}
//
//	type UserInfo struct {
//	    ID    uint32
//	    Page  Pagination
//	    Login Login
//	}
//
//	table := router.MustNew[Route, router.NoContext]([]router.Variant[Route]{
//	    router.Leaf("UserInfo", func(v *router.Values) Route {
//	        return UserInfo{
//	            ID:    router.Get[uint32](v, "id"),
//	            Page:  router.Get[Pagination](v, "page"),
//	            Login: router.Get[Login](v, "login"),
//	        }
//	    },
//	        router.GET("/users/{id}"),
//	        router.Path("id", router.Uint32),
//	        router.Query("page", router.URLQuery[Pagination]()),
//	        router.Require("login", sessionGuard),
//	    ),
//	})
//
//	route, err := table.Decode(ctx, req, router.NoContext{})
//
// # Routing rules
//
// Patterns are parsed by package pattern. Two routes whose patterns accept
// a common path are rejected when the table is built, unless the patterns
// are equivalent; equivalent patterns form one group that may carry several
// methods, each reaching its own variant. Every path therefore matches at
// most one group.
//
// A GET route without a HEAD counterpart also answers HEAD, unless a
// declared HEAD route accepts the same paths.
//
// When the path matches but the method does not, decoding fails with a
// WrongMethod *Error listing the allowed methods. For patterns with
// placeholders, a method is only listed when its variant can parse the
// placeholder values of the request.
//
// # Fallback and forwarding
//
// A Forward field hands the request to a nested Table with the same context
// type. A Fallback variant, which has no routes, receives every request that
// no route accepts, and also requests with a matching path but a wrong
// method. Routes of the outer table always win over the nested one. When
// both tables report WrongMethod, the allowed methods are merged, outer
// first.
//
// # Errors
//
// Build failures are *ConfigError values. Decode failures are *Error values
// with a Kind; placeholder parse failures report "not found" (404), query
// failures "bad request" (400). Guard and body errors are wrapped unchanged
// and keep their own status. *Error implements the rivaas.dev/errors
// interfaces, so any of its formatters can render it.
//
// # Context
//
// Decode takes a request context of type C. Guards and body decoders
// declare the sub-context they need and receive it through projection; see
// ContextProvider. NoContext is always available.
package router
