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

// Package guard provides request guards for router tables.
//
// Guards inspect request metadata before any body is read: headers,
// credentials, client identity, request rates. Each guard yields a value
// stored in its field, such as the authenticated username, and rejects
// requests with a *Denial carrying the HTTP status and response headers to
// send.
//
//	router.Leaf("AdminPanel", newAdminPanel,
//	    router.GET("/admin"),
//	    router.Require("user", guard.BasicAuth(guard.WithUsers(users))),
//	    router.Require("quota", limiter),
//	)
package guard
