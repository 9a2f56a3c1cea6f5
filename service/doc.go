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

// Package service serves a router table over net/http.
//
// A Service decodes each request with its table and hands the decoded
// route to a handler. Decode failures and handler errors are rendered
// with a rivaas.dev/errors formatter, RFC 9457 problem details by default,
// including the Allow header for 405 responses and the headers requested by
// guard denials. Panics in handlers are recovered, logged with a stack
// trace, and recorded on the request span.
//
//	svc := service.New(table, service.NoContext, func(w http.ResponseWriter, r *http.Request, route Route) error {
//	    switch route := route.(type) {
//	    case UserInfo:
//	        return writeUser(w, route.ID)
//	    }
//	    return nil
//	})
//	err := service.Run(ctx, ":8080", svc, service.WithLogger(logger))
//
// Responses to HEAD requests have their bodies discarded.
package service
